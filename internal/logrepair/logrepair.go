// Package logrepair inserts artificial silent activities into an activity
// projection to make implicit skips and self-loops explicit, so the
// Alpha+++ candidate-building stage can reason over a well-behaved DFG.
package logrepair

import (
	"sort"

	"github.com/pmlab-io/pmcore/internal/dfg"
	"github.com/pmlab-io/pmcore/internal/ids"
	"github.com/pmlab-io/pmcore/internal/projection"
)

// Options configures both repair passes.
type Options struct {
	// SkipAbsoluteThresh: a direct (u,v) DFG edge and a candidate
	// intermediate (u,w) + (w,v) pair must each meet this count to be
	// treated as an exposed skip.
	SkipAbsoluteThresh int
	// LoopAbsoluteThresh: an activity's self-follow (a,a) DFG edge count
	// must meet this to trigger loop repair.
	LoopAbsoluteThresh int
}

// Repair runs skip repair followed by loop repair over proj, using g as
// the DFG computed from proj prior to repair. Both passes operate on (and
// return) a copy; proj itself is never mutated.
func Repair(proj *projection.Projection, g *dfg.Graph, opts Options) *projection.Projection {
	repaired := RepairSkips(proj, g, opts.SkipAbsoluteThresh)
	afterSkip := dfg.Induce(repaired)

	return RepairLoops(repaired, afterSkip, opts.LoopAbsoluteThresh)
}

// RepairSkips inserts a silent SILENT_SKIP_<uid> activity on every
// observed direct u->v transition where a frequent u->w->v path also
// exists in g, exposing the skip over w. When multiple candidate w exist
// for a given (u,v), the lexicographically smallest activity name is
// chosen for determinism.
func RepairSkips(proj *projection.Projection, g *dfg.Graph, absThresh int) *projection.Projection {
	skipFor := findSkipIntermediates(proj, g, absThresh)
	if len(skipFor) == 0 {
		return cloneProjection(proj)
	}

	out := &projection.Projection{
		Activities: append([]string(nil), proj.Activities...),
		ActToIndex: cloneIndex(proj.ActToIndex),
	}

	nameCache := make(map[[3]int]int) // (u,w,v) -> interned silent activity ordinal

	for _, variant := range proj.Traces {
		seq := variant.Sequence
		newSeq := make([]int, 0, len(seq))

		for i, a := range seq {
			newSeq = append(newSeq, a)

			if i+1 >= len(seq) {
				continue
			}

			b := seq[i+1]

			w, ok := skipFor[[2]int{a, b}]
			if !ok {
				continue
			}

			key := [3]int{a, w, b}

			silentIdx, ok := nameCache[key]
			if !ok {
				uName, wName, vName := proj.Activities[a], proj.Activities[w], proj.Activities[b]
				name := ids.SkipActivityName(uName, wName, vName)
				silentIdx = internInto(out, name)
				nameCache[key] = silentIdx
			}

			newSeq = append(newSeq, silentIdx)
		}

		out.Traces = append(out.Traces, projection.Variant{Sequence: newSeq, Multiplicity: variant.Multiplicity})
	}

	return out
}

// findSkipIntermediates returns, for each (u,v) pair whose direct edge
// count in g meets absThresh, the smallest-named w such that (u,w) and
// (w,v) both meet absThresh too — the implied skip.
func findSkipIntermediates(proj *projection.Projection, g *dfg.Graph, absThresh int) map[[2]int]int {
	result := make(map[[2]int]int)

	for uv, count := range g.Edges {
		if count < absThresh {
			continue
		}

		var candidates []int

		for uw, c1 := range g.Edges {
			if uw.From != uv.From || c1 < absThresh {
				continue
			}

			w := uw.To
			if w == uv.From || w == uv.To {
				continue
			}

			wv, ok := g.Edges[dfg.Edge{From: w, To: uv.To}]
			if !ok || wv < absThresh {
				continue
			}

			candidates = append(candidates, w)
		}

		if len(candidates) == 0 {
			continue
		}

		sort.Slice(candidates, func(i, j int) bool {
			return proj.Activities[candidates[i]] < proj.Activities[candidates[j]]
		})

		result[[2]int{uv.From, uv.To}] = candidates[0]
	}

	return result
}

// RepairLoops inserts a silent SILENT_LOOP_<uid> activity between every
// pair of consecutive identical activities a, for each activity whose
// self-follow count in g meets thresh.
func RepairLoops(proj *projection.Projection, g *dfg.Graph, thresh int) *projection.Projection {
	loopActivities := make(map[int]struct{})

	for e, count := range g.Edges {
		if e.From == e.To && count >= thresh {
			loopActivities[e.From] = struct{}{}
		}
	}

	if len(loopActivities) == 0 {
		return cloneProjection(proj)
	}

	out := &projection.Projection{
		Activities: append([]string(nil), proj.Activities...),
		ActToIndex: cloneIndex(proj.ActToIndex),
	}

	nameCache := make(map[int]int)

	for _, variant := range proj.Traces {
		seq := variant.Sequence
		newSeq := make([]int, 0, len(seq))

		for i, a := range seq {
			newSeq = append(newSeq, a)

			if i+1 >= len(seq) || seq[i+1] != a {
				continue
			}

			if _, loop := loopActivities[a]; !loop {
				continue
			}

			silentIdx, ok := nameCache[a]
			if !ok {
				name := ids.LoopActivityName(proj.Activities[a])
				silentIdx = internInto(out, name)
				nameCache[a] = silentIdx
			}

			newSeq = append(newSeq, silentIdx)
		}

		out.Traces = append(out.Traces, projection.Variant{Sequence: newSeq, Multiplicity: variant.Multiplicity})
	}

	return out
}

func internInto(p *projection.Projection, name string) int {
	if idx, ok := p.ActToIndex[name]; ok {
		return idx
	}

	idx := len(p.Activities)
	p.Activities = append(p.Activities, name)
	p.ActToIndex[name] = idx

	return idx
}

func cloneIndex(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

func cloneProjection(p *projection.Projection) *projection.Projection {
	out := &projection.Projection{
		Activities: append([]string(nil), p.Activities...),
		ActToIndex: cloneIndex(p.ActToIndex),
		Traces:     append([]projection.Variant(nil), p.Traces...),
	}

	return out
}
