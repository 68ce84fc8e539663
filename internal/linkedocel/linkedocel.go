// Package linkedocel builds and exposes the dense, indexed view over an
// OCEL log: ordinal tables, type buckets, bidirectional E2O/O2O indices,
// and per-object attribute histories in input order (assumed
// chronological; not re-sorted).
//
// The index holds borrowed references into the owning *ocel.Log rather
// than back-pointers: it stores plain indices and looks records up in the
// owning log's slices on demand. This mirrors a three-synchronized-map
// shape (ids-by-index, index-by-id, grouped-by-type), adapted from a
// single flat keyspace to the richer event/object/relationship indices
// this model needs.
package linkedocel

import (
	"errors"
	"time"

	"github.com/pmlab-io/pmcore/internal/ocel"
)

// ErrMutationNotSupported documents that LinkedOCEL offers no mutating
// operations; the underlying OCEL must be changed (invalidating any
// existing index) and re-linked.
var ErrMutationNotSupported = errors.New("linkedocel: index is read-only; mutate the underlying OCEL and re-link")

// E2OEdge is a forward event->object edge: the object reached and the
// qualifier under which it was reached.
type E2OEdge struct {
	Qualifier ocel.Qualifier
	ObjectIdx int
}

// E2OEdgeRev is a reverse object->event edge.
type E2OEdgeRev struct {
	Qualifier ocel.Qualifier
	EventIdx  int
}

// O2OEdge is an object->object edge (used both forward and reverse; the
// direction is determined by which table it is read from).
type O2OEdge struct {
	Qualifier ocel.Qualifier
	ObjectIdx int
}

// TimedValue is one entry in an object's attribute history.
type TimedValue struct {
	Time  time.Time
	Value ocel.ObjectAttribute
}

// LinkedOCELAccess is the capability-set interface algorithms take,
// satisfied identically by both realizations in this package: LinkedOCEL
// (indexed, precomputed tables, pays a build pass) and SlimOCEL (direct
// scans over the owning log, no build cost). Pick LinkedOCEL when queries
// repeat enough to amortize the build, SlimOCEL for one-shot queries over
// small logs.
type LinkedOCELAccess interface {
	GetEvsOfType(objType string) []int
	GetObsOfType(objType string) []int
	GetEv(idx int) (ocel.Event, bool)
	GetOb(idx int) (ocel.Object, bool)
	GetObByID(id string) (int, bool)
	GetEvByID(id string) (int, bool)
	GetE2O(eventIdx int) []E2OEdge
	GetE2ORev(objectIdx int) []E2OEdgeRev
	GetO2O(objectIdx int) []O2OEdge
	GetO2ORev(objectIdx int) []O2OEdge
	GetObAttrs(objectIdx int) []string
	GetObAttrVals(objectIdx int, name string) []TimedValue
	GetObTypes() []string
}

// LinkedOCEL is the indexed realization of LinkedOCELAccess.
type LinkedOCEL struct {
	log *ocel.Log

	eventIDToIdx  map[string]int
	objectIDToIdx map[string]int

	eventsByType  map[string][]int
	objectsByType map[string][]int

	e2oForward [][]E2OEdge
	e2oReverse [][]E2OEdgeRev
	o2oForward [][]O2OEdge
	o2oReverse [][]O2OEdge

	objAttrHistory []map[string][]TimedValue
}

var _ LinkedOCELAccess = (*LinkedOCEL)(nil)

// Build performs a deterministic single-pass construction: dense ordinal
// tables, type buckets, and bidirectional E2O/O2O indices over log. The
// returned index holds indices into log, not copies; log must not be
// mutated while the index is in use.
func Build(log *ocel.Log) *LinkedOCEL {
	l := &LinkedOCEL{
		log:           log,
		eventIDToIdx:  make(map[string]int, len(log.Events)),
		objectIDToIdx: make(map[string]int, len(log.Objects)),
		eventsByType:  make(map[string][]int),
		objectsByType: make(map[string][]int),
		e2oForward:     make([][]E2OEdge, len(log.Events)),
		e2oReverse:     make([][]E2OEdgeRev, len(log.Objects)),
		o2oForward:     make([][]O2OEdge, len(log.Objects)),
		o2oReverse:     make([][]O2OEdge, len(log.Objects)),
		objAttrHistory: make([]map[string][]TimedValue, len(log.Objects)),
	}

	// 1. dense indices in input order, id->index.
	for i, ev := range log.Events {
		l.eventIDToIdx[ev.ID] = i
	}

	for i, ob := range log.Objects {
		l.objectIDToIdx[ob.ID] = i
	}

	// 2. type buckets.
	for i, ev := range log.Events {
		l.eventsByType[ev.Type] = append(l.eventsByType[ev.Type], i)
	}

	for i, ob := range log.Objects {
		l.objectsByType[ob.Type] = append(l.objectsByType[ob.Type], i)
	}

	// 3. E2O forward by scanning events, reverse by inversion.
	for evIdx, ev := range log.Events {
		for _, rel := range ev.Relationships {
			obIdx, ok := l.objectIDToIdx[rel.ObjectID]
			if !ok {
				// Dangling relationship: the reference is retained on the
				// forward edge but not indexed into the reverse table (there
				// is no object record to index it against).
				l.e2oForward[evIdx] = append(l.e2oForward[evIdx], E2OEdge{Qualifier: rel.Qualifier, ObjectIdx: -1})

				continue
			}

			l.e2oForward[evIdx] = append(l.e2oForward[evIdx], E2OEdge{Qualifier: rel.Qualifier, ObjectIdx: obIdx})
			l.e2oReverse[obIdx] = append(l.e2oReverse[obIdx], E2OEdgeRev{Qualifier: rel.Qualifier, EventIdx: evIdx})
		}
	}

	// 4. O2O forward by scanning objects, reverse by inversion.
	for obIdx, ob := range log.Objects {
		for _, rel := range ob.Relationships {
			targetIdx, ok := l.objectIDToIdx[rel.ObjectID]
			if !ok {
				l.o2oForward[obIdx] = append(l.o2oForward[obIdx], O2OEdge{Qualifier: rel.Qualifier, ObjectIdx: -1})

				continue
			}

			l.o2oForward[obIdx] = append(l.o2oForward[obIdx], O2OEdge{Qualifier: rel.Qualifier, ObjectIdx: targetIdx})
			l.o2oReverse[targetIdx] = append(l.o2oReverse[targetIdx], O2OEdge{Qualifier: rel.Qualifier, ObjectIdx: obIdx})
		}
	}

	// 5. per-object attribute histories, retaining original (assumed
	// chronological) order.
	for obIdx, ob := range log.Objects {
		hist := make(map[string][]TimedValue)

		for _, oa := range ob.Attributes {
			hist[oa.Name] = append(hist[oa.Name], TimedValue{Time: oa.Time, Value: oa})
		}

		l.objAttrHistory[obIdx] = hist
	}

	return l
}

// Unlink discards the index and returns the owning log, so the log can be
// mutated and linked again later.
func (l *LinkedOCEL) Unlink() *ocel.Log { return l.log }

func (l *LinkedOCEL) GetEvsOfType(objType string) []int {
	return cloneInts(l.eventsByType[objType])
}

func (l *LinkedOCEL) GetObsOfType(objType string) []int {
	return cloneInts(l.objectsByType[objType])
}

func (l *LinkedOCEL) GetEv(idx int) (ocel.Event, bool) {
	if idx < 0 || idx >= len(l.log.Events) {
		return ocel.Event{}, false
	}

	return l.log.Events[idx], true
}

func (l *LinkedOCEL) GetOb(idx int) (ocel.Object, bool) {
	if idx < 0 || idx >= len(l.log.Objects) {
		return ocel.Object{}, false
	}

	return l.log.Objects[idx], true
}

func (l *LinkedOCEL) GetObByID(id string) (int, bool) {
	idx, ok := l.objectIDToIdx[id]

	return idx, ok
}

func (l *LinkedOCEL) GetEvByID(id string) (int, bool) {
	idx, ok := l.eventIDToIdx[id]

	return idx, ok
}

func (l *LinkedOCEL) GetE2O(eventIdx int) []E2OEdge {
	if eventIdx < 0 || eventIdx >= len(l.e2oForward) {
		return nil
	}

	return cloneE2O(l.e2oForward[eventIdx])
}

func (l *LinkedOCEL) GetE2ORev(objectIdx int) []E2OEdgeRev {
	if objectIdx < 0 || objectIdx >= len(l.e2oReverse) {
		return nil
	}

	return cloneE2ORev(l.e2oReverse[objectIdx])
}

func (l *LinkedOCEL) GetO2O(objectIdx int) []O2OEdge {
	if objectIdx < 0 || objectIdx >= len(l.o2oForward) {
		return nil
	}

	return cloneO2O(l.o2oForward[objectIdx])
}

func (l *LinkedOCEL) GetO2ORev(objectIdx int) []O2OEdge {
	if objectIdx < 0 || objectIdx >= len(l.o2oReverse) {
		return nil
	}

	return cloneO2O(l.o2oReverse[objectIdx])
}

func (l *LinkedOCEL) GetObAttrs(objectIdx int) []string {
	if objectIdx < 0 || objectIdx >= len(l.objAttrHistory) {
		return nil
	}

	names := make([]string, 0, len(l.objAttrHistory[objectIdx]))
	for name := range l.objAttrHistory[objectIdx] {
		names = append(names, name)
	}

	return names
}

func (l *LinkedOCEL) GetObAttrVals(objectIdx int, name string) []TimedValue {
	if objectIdx < 0 || objectIdx >= len(l.objAttrHistory) {
		return nil
	}

	vals := l.objAttrHistory[objectIdx][name]
	cp := make([]TimedValue, len(vals))
	copy(cp, vals)

	return cp
}

func (l *LinkedOCEL) GetObTypes() []string {
	types := make([]string, 0, len(l.objectsByType))
	for t := range l.objectsByType {
		types = append(types, t)
	}

	return types
}

func cloneInts(in []int) []int {
	cp := make([]int, len(in))
	copy(cp, in)

	return cp
}

func cloneE2O(in []E2OEdge) []E2OEdge {
	cp := make([]E2OEdge, len(in))
	copy(cp, in)

	return cp
}

func cloneE2ORev(in []E2OEdgeRev) []E2OEdgeRev {
	cp := make([]E2OEdgeRev, len(in))
	copy(cp, in)

	return cp
}

func cloneO2O(in []O2OEdge) []O2OEdge {
	cp := make([]O2OEdge, len(in))
	copy(cp, in)

	return cp
}
