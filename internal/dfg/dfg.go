// Package dfg implements the directly-follows graph: a weighted directed
// multigraph over activities with start/end node sets, plus filtering by
// absolute/relative edge-frequency thresholds.
package dfg

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pmlab-io/pmcore/internal/projection"
)

// ErrThresholdOutOfRange is returned when a relative threshold is outside
// [0,1].
var ErrThresholdOutOfRange = errors.New("dfg: relative threshold must be in [0,1]")

// Edge is an ordered pair of activity ordinals.
type Edge struct {
	From, To int
}

// Graph is the directly-follows graph over a projection's alphabet:
// node frequencies, edge frequencies, and start/end activity sets.
type Graph struct {
	Activities      map[int]int
	Edges           map[Edge]int
	StartActivities map[int]struct{}
	EndActivities   map[int]struct{}
}

// newGraph returns an empty graph with initialized maps.
func newGraph() *Graph {
	return &Graph{
		Activities:      make(map[int]int),
		Edges:           make(map[Edge]int),
		StartActivities: make(map[int]struct{}),
		EndActivities:   make(map[int]struct{}),
	}
}

// Induce computes activities[a] = sum of multiplicities of traces
// containing a, edges[(a,b)] += m for each adjacent pair in each
// canonical trace repeated m times, and start/end activities from the
// first/last symbols of each trace.
func Induce(proj *projection.Projection) *Graph {
	g := newGraph()

	for _, variant := range proj.Traces {
		seen := make(map[int]struct{}, len(variant.Sequence))
		for _, a := range variant.Sequence {
			seen[a] = struct{}{}
		}

		for a := range seen {
			g.Activities[a] += variant.Multiplicity
		}

		for i := 0; i+1 < len(variant.Sequence); i++ {
			e := Edge{From: variant.Sequence[i], To: variant.Sequence[i+1]}
			g.Edges[e] += variant.Multiplicity
		}

		if len(variant.Sequence) > 0 {
			g.StartActivities[variant.Sequence[0]] = struct{}{}
			g.EndActivities[variant.Sequence[len(variant.Sequence)-1]] = struct{}{}
		}
	}

	return g
}

// FilterOptions configures Filter.
type FilterOptions struct {
	AbsoluteThresh int
	RelativeThresh float64
}

// Filter removes edges with count < AbsoluteThresh OR count <
// RelativeThresh * (max outgoing edge count from the same source).
// Orphan nodes are kept. The result's edges are a map with no order of
// their own; SortedEdges gives them in (from, to) order.
func Filter(g *Graph, opts FilterOptions) (*Graph, error) {
	if opts.RelativeThresh < 0 || opts.RelativeThresh > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrThresholdOutOfRange, opts.RelativeThresh)
	}

	maxOut := make(map[int]int)

	for e, count := range g.Edges {
		if count > maxOut[e.From] {
			maxOut[e.From] = count
		}
	}

	keys := make([]Edge, 0, len(g.Edges))
	for e := range g.Edges {
		keys = append(keys, e)
	}

	results := make([]bool, len(keys))

	var eg errgroup.Group

	const parallelThreshold = 64
	if len(keys) < parallelThreshold {
		for i, e := range keys {
			results[i] = keepEdge(g.Edges[e], maxOut[e.From], opts)
		}
	} else {
		for i := range keys {
			i := i
			eg.Go(func() error {
				e := keys[i]
				results[i] = keepEdge(g.Edges[e], maxOut[e.From], opts)

				return nil
			})
		}

		_ = eg.Wait()
	}

	out := newGraph()
	for a, c := range g.Activities {
		out.Activities[a] = c
	}

	for a := range g.StartActivities {
		out.StartActivities[a] = struct{}{}
	}

	for a := range g.EndActivities {
		out.EndActivities[a] = struct{}{}
	}

	for i, e := range keys {
		if results[i] {
			out.Edges[e] = g.Edges[e]
		}
	}

	return out, nil
}

func keepEdge(count, maxOutFromSource int, opts FilterOptions) bool {
	if count < opts.AbsoluteThresh {
		return false
	}

	if float64(count) < opts.RelativeThresh*float64(maxOutFromSource) {
		return false
	}

	return true
}

// SortedEdges returns g's edges sorted by (from, to), the canonicalization
// step required after any parallel evaluation.
func SortedEdges(g *Graph) []Edge {
	edges := make([]Edge, 0, len(g.Edges))
	for e := range g.Edges {
		edges = append(edges, e)
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}

		return edges[i].To < edges[j].To
	})

	return edges
}
