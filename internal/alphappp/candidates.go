// Package alphappp implements the Alpha+++ discovery pipeline: candidate
// place construction over a filtered DFG's directly-follows relation,
// candidate pruning (balance, replay fitness, dominance), and Petri-net
// assembly.
//
// Two behaviors that an earlier generation of this algorithm got wrong
// are fixed here: seeds require the ABSENCE of a self-loop on either seed
// activity, and notAllDFsBetween returns false exactly when every checked
// pair holds (not unconditionally true).
package alphappp

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pmlab-io/pmcore/internal/dfg"
)

// Candidate is a place candidate (A, B): A is deduplicated, sorted and
// forms the place's preset transitions; B likewise forms its postset.
type Candidate struct {
	A, B []int
}

// key returns a string uniquely identifying (A,B) for set membership and
// deterministic lexicographic sort after parallel evaluation.
func (c Candidate) key() string {
	var sb strings.Builder

	writeInts(&sb, c.A)
	sb.WriteByte('|')
	writeInts(&sb, c.B)

	return sb.String()
}

func writeInts(sb *strings.Builder, xs []int) {
	for i, x := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(strconv.Itoa(x))
	}
}

// relation is the DF relation R over activity ordinals, derived from a
// filtered DFG's edge set (existence only, not counts).
type relation map[dfg.Edge]struct{}

func relationFromGraph(g *dfg.Graph) relation {
	r := make(relation, len(g.Edges))
	for e := range g.Edges {
		r[e] = struct{}{}
	}

	return r
}

func (r relation) holds(a, b int) bool {
	_, ok := r[dfg.Edge{From: a, To: b}]

	return ok
}

// notAllDFsBetween reports whether at least one pair (x,y) in X x Y is
// absent from R. A false result means every pair holds.
func (r relation) notAllDFsBetween(x, y []int) bool {
	for _, a := range x {
		for _, b := range y {
			if !r.holds(a, b) {
				return true
			}
		}
	}

	return false
}

// Satisfies implements the place-candidate admission predicate
// satisfies(A,B) over the directly-follows relation r.
func Satisfies(r relation, a, b []int) bool {
	aMinusB := setMinus(a, b)
	bMinusA := setMinus(b, a)

	// 1. No R-edge from any element of A to any element of A\B.
	for _, x := range a {
		for _, y := range aMinusB {
			if r.holds(x, y) {
				return false
			}
		}
	}

	// 2. No R-edge from any element of B\A to any element of B.
	for _, x := range bMinusA {
		for _, y := range b {
			if r.holds(x, y) {
				return false
			}
		}
	}

	// 3. Every pair (a in A, b in B) is in R.
	if r.notAllDFsBetween(a, b) {
		return false
	}

	// 4. At least one pair (a in B\A, b in A\B) is not in R.
	if !r.notAllDFsBetween(bMinusA, aMinusB) {
		return false
	}

	return true
}

func setMinus(a, b []int) []int {
	excl := make(map[int]struct{}, len(b))
	for _, x := range b {
		excl[x] = struct{}{}
	}

	var out []int

	for _, x := range a {
		if _, ok := excl[x]; !ok {
			out = append(out, x)
		}
	}

	return out
}

func sortedDedup(xs []int) []int {
	if len(xs) == 0 {
		return nil
	}

	seen := make(map[int]struct{}, len(xs))
	out := make([]int, 0, len(xs))

	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}

		seen[x] = struct{}{}
		out = append(out, x)
	}

	sort.Ints(out)

	return out
}

// BuildOptions configures candidate seeding.
type BuildOptions struct {
	// RequireSelfLoopSeeds inverts the seed condition on self-loops:
	// instead of rejecting seed pairs whose activities carry a DF
	// self-loop (the corrected behavior, and the default), it admits only
	// pairs where both do. Kept for comparison against nets discovered
	// under the older seeding rule; leave false otherwise.
	RequireSelfLoopSeeds bool
}

// BuildCandidates runs seeding and monotone frontier expansion over the
// filtered DFG g with default options, returning the finalized set of
// place candidates. An empty alphabet or an edgeless DFG both yield an
// empty candidate set.
func BuildCandidates(g *dfg.Graph) []Candidate {
	return BuildCandidatesWith(g, BuildOptions{})
}

// BuildCandidatesWith is BuildCandidates with explicit options.
func BuildCandidatesWith(g *dfg.Graph, opts BuildOptions) []Candidate {
	r := relationFromGraph(g)

	finalized := make(map[string]Candidate)
	allSeen := make(map[string]Candidate)

	var frontier []Candidate

	activities := make(map[int]struct{})
	for a := range g.Activities {
		activities[a] = struct{}{}
	}

	for e := range g.Edges {
		a, b := e.From, e.To
		if a == b {
			continue
		}

		cand := Candidate{A: []int{a}, B: []int{b}}
		k := cand.key()

		if _, dup := allSeen[k]; !dup {
			allSeen[k] = cand
			frontier = append(frontier, cand)
		}

		// Seeding: R(a,b) and not R(b,a), plus the self-loop condition —
		// by default neither a->a nor b->b in R.
		if r.holds(b, a) {
			continue
		}

		selfLoopOK := !r.holds(a, a) && !r.holds(b, b)
		if opts.RequireSelfLoopSeeds {
			selfLoopOK = r.holds(a, a) && r.holds(b, b)
		}

		if selfLoopOK {
			finalized[k] = cand
		}
	}

	for len(frontier) > 0 {
		next := expandRound(r, frontier, allSeen, finalized)
		for k, c := range next {
			allSeen[k] = c
		}

		frontier = frontierSlice(next)
	}

	return candidateSlice(finalized)
}

// expandRound combines every candidate in frontier with every candidate in
// allSeen (including itself), admitting novel, satisfies-passing unions.
// The combine fold may run in parallel over the frontier; uniqueness is
// enforced at merge time under a single accumulator.
func expandRound(r relation, frontier []Candidate, allSeen, finalized map[string]Candidate) map[string]Candidate {
	others := candidateSlice(allSeen)

	admittedPerFrontier := make([][]Candidate, len(frontier))

	var eg errgroup.Group

	for i, c1 := range frontier {
		i, c1 := i, c1

		eg.Go(func() error {
			var admitted []Candidate

			for _, c2 := range others {
				a := sortedDedup(append(append([]int{}, c1.A...), c2.A...))
				b := sortedDedup(append(append([]int{}, c1.B...), c2.B...))

				if equalInts(a, b) {
					continue
				}

				cand := Candidate{A: a, B: b}
				k := cand.key()

				if _, dup := allSeen[k]; dup {
					continue
				}

				// Cheap rejection short-circuit before the full predicate:
				// A1->B2 and A2->B1 must hold entirely.
				if r.notAllDFsBetween(c1.A, c2.B) || r.notAllDFsBetween(c2.A, c1.B) {
					continue
				}

				if !Satisfies(r, a, b) {
					continue
				}

				admitted = append(admitted, cand)
			}

			admittedPerFrontier[i] = admitted

			return nil
		})
	}

	_ = eg.Wait()

	next := make(map[string]Candidate)

	for _, admitted := range admittedPerFrontier {
		for _, cand := range admitted {
			k := cand.key()
			next[k] = cand
			finalized[k] = cand
		}
	}

	return next
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func frontierSlice(m map[string]Candidate) []Candidate {
	out := make([]Candidate, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })

	return out
}

func candidateSlice(m map[string]Candidate) []Candidate {
	out := make([]Candidate, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })

	return out
}
