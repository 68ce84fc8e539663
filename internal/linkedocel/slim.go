package linkedocel

import "github.com/pmlab-io/pmcore/internal/ocel"

// SlimOCEL is the direct-scan realization of LinkedOCELAccess: no
// precomputed tables, every query walks the owning log. Semantics are
// identical to LinkedOCEL's; the trade is build cost (none) against query
// cost (linear scans), which suits one-shot queries over small logs where
// an index would never amortize.
type SlimOCEL struct {
	log *ocel.Log
}

var _ LinkedOCELAccess = (*SlimOCEL)(nil)

// Slim wraps log in a direct-scan view. The log must not be mutated while
// the view is in use, same as for Build.
func Slim(log *ocel.Log) *SlimOCEL {
	return &SlimOCEL{log: log}
}

func (s *SlimOCEL) GetEvsOfType(objType string) []int {
	out := make([]int, 0)

	for i, ev := range s.log.Events {
		if ev.Type == objType {
			out = append(out, i)
		}
	}

	return out
}

func (s *SlimOCEL) GetObsOfType(objType string) []int {
	out := make([]int, 0)

	for i, ob := range s.log.Objects {
		if ob.Type == objType {
			out = append(out, i)
		}
	}

	return out
}

func (s *SlimOCEL) GetEv(idx int) (ocel.Event, bool) {
	if idx < 0 || idx >= len(s.log.Events) {
		return ocel.Event{}, false
	}

	return s.log.Events[idx], true
}

func (s *SlimOCEL) GetOb(idx int) (ocel.Object, bool) {
	if idx < 0 || idx >= len(s.log.Objects) {
		return ocel.Object{}, false
	}

	return s.log.Objects[idx], true
}

func (s *SlimOCEL) GetObByID(id string) (int, bool) {
	for i, ob := range s.log.Objects {
		if ob.ID == id {
			return i, true
		}
	}

	return 0, false
}

func (s *SlimOCEL) GetEvByID(id string) (int, bool) {
	for i, ev := range s.log.Events {
		if ev.ID == id {
			return i, true
		}
	}

	return 0, false
}

func (s *SlimOCEL) GetE2O(eventIdx int) []E2OEdge {
	if eventIdx < 0 || eventIdx >= len(s.log.Events) {
		return nil
	}

	out := make([]E2OEdge, 0)

	for _, rel := range s.log.Events[eventIdx].Relationships {
		obIdx, ok := s.GetObByID(rel.ObjectID)
		if !ok {
			obIdx = -1
		}

		out = append(out, E2OEdge{Qualifier: rel.Qualifier, ObjectIdx: obIdx})
	}

	return out
}

func (s *SlimOCEL) GetE2ORev(objectIdx int) []E2OEdgeRev {
	if objectIdx < 0 || objectIdx >= len(s.log.Objects) {
		return nil
	}

	id := s.log.Objects[objectIdx].ID

	out := make([]E2OEdgeRev, 0)

	for evIdx, ev := range s.log.Events {
		for _, rel := range ev.Relationships {
			if rel.ObjectID == id {
				out = append(out, E2OEdgeRev{Qualifier: rel.Qualifier, EventIdx: evIdx})
			}
		}
	}

	return out
}

func (s *SlimOCEL) GetO2O(objectIdx int) []O2OEdge {
	if objectIdx < 0 || objectIdx >= len(s.log.Objects) {
		return nil
	}

	out := make([]O2OEdge, 0)

	for _, rel := range s.log.Objects[objectIdx].Relationships {
		targetIdx, ok := s.GetObByID(rel.ObjectID)
		if !ok {
			targetIdx = -1
		}

		out = append(out, O2OEdge{Qualifier: rel.Qualifier, ObjectIdx: targetIdx})
	}

	return out
}

func (s *SlimOCEL) GetO2ORev(objectIdx int) []O2OEdge {
	if objectIdx < 0 || objectIdx >= len(s.log.Objects) {
		return nil
	}

	id := s.log.Objects[objectIdx].ID

	out := make([]O2OEdge, 0)

	for srcIdx, ob := range s.log.Objects {
		for _, rel := range ob.Relationships {
			if rel.ObjectID == id {
				out = append(out, O2OEdge{Qualifier: rel.Qualifier, ObjectIdx: srcIdx})
			}
		}
	}

	return out
}

func (s *SlimOCEL) GetObAttrs(objectIdx int) []string {
	if objectIdx < 0 || objectIdx >= len(s.log.Objects) {
		return nil
	}

	seen := make(map[string]struct{})

	out := make([]string, 0)

	for _, oa := range s.log.Objects[objectIdx].Attributes {
		if _, dup := seen[oa.Name]; dup {
			continue
		}

		seen[oa.Name] = struct{}{}
		out = append(out, oa.Name)
	}

	return out
}

func (s *SlimOCEL) GetObAttrVals(objectIdx int, name string) []TimedValue {
	if objectIdx < 0 || objectIdx >= len(s.log.Objects) {
		return nil
	}

	out := make([]TimedValue, 0)

	for _, oa := range s.log.Objects[objectIdx].Attributes {
		if oa.Name == name {
			out = append(out, TimedValue{Time: oa.Time, Value: oa})
		}
	}

	return out
}

func (s *SlimOCEL) GetObTypes() []string {
	seen := make(map[string]struct{})

	out := make([]string, 0)

	for _, ob := range s.log.Objects {
		if _, dup := seen[ob.Type]; dup {
			continue
		}

		seen[ob.Type] = struct{}{}
		out = append(out, ob.Type)
	}

	return out
}
