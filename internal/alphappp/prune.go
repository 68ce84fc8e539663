package alphappp

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pmlab-io/pmcore/internal/dfg"
	"github.com/pmlab-io/pmcore/internal/projection"
)

// ErrThresholdOutOfRange is returned when balance/fitness thresholds fall
// outside [0,1].
var ErrThresholdOutOfRange = errors.New("alphappp: threshold must be in [0,1]")

// PruneOptions carries the balance and fitness thresholds used to filter
// place candidates.
type PruneOptions struct {
	BalanceThresh float64
	FitnessThresh float64
}

func (o PruneOptions) validate() error {
	if o.BalanceThresh < 0 || o.BalanceThresh > 1 {
		return fmt.Errorf("%w: balance_thresh=%v", ErrThresholdOutOfRange, o.BalanceThresh)
	}

	if o.FitnessThresh < 0 || o.FitnessThresh > 1 {
		return fmt.Errorf("%w: fitness_thresh=%v", ErrThresholdOutOfRange, o.FitnessThresh)
	}

	return nil
}

// Prune filters candidates by balance, local replay fitness, and
// per-activity fitness, then removes dominated candidates.
func Prune(candidates []Candidate, proj *projection.Projection, g *dfg.Graph, opts PruneOptions) ([]Candidate, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	kept := make([]bool, len(candidates))

	var eg errgroup.Group

	for i, c := range candidates {
		i, c := i, c

		eg.Go(func() error {
			kept[i] = passesBalance(c, g, opts.BalanceThresh) && passesFitness(c, proj, opts.FitnessThresh)

			return nil
		})
	}

	_ = eg.Wait()

	var survivors []Candidate

	for i, c := range candidates {
		if kept[i] {
			survivors = append(survivors, c)
		}
	}

	return dominanceFilter(survivors), nil
}

func passesBalance(c Candidate, g *dfg.Graph, balanceThresh float64) bool {
	var ai, bi int

	for _, a := range c.A {
		ai += g.Activities[a]
	}

	for _, b := range c.B {
		bi += g.Activities[b]
	}

	maxAB := ai
	if bi > maxAB {
		maxAB = bi
	}

	if maxAB == 0 {
		return true
	}

	diff := ai - bi
	if diff < 0 {
		diff = -diff
	}

	return float64(diff)/float64(maxAB) <= balanceThresh
}

func passesFitness(c Candidate, proj *projection.Projection, fitnessThresh float64) bool {
	inAOrB := make(map[int]struct{}, len(c.A)+len(c.B))
	inA := make(map[int]struct{}, len(c.A))
	inB := make(map[int]struct{}, len(c.B))

	for _, a := range c.A {
		inA[a] = struct{}{}
		inAOrB[a] = struct{}{}
	}

	for _, b := range c.B {
		inB[b] = struct{}{}
		inAOrB[b] = struct{}{}
	}

	var fittingMult, consideredMult int

	// variantsContaining[c] = total multiplicity of considered variants
	// mentioning activity c; fittingContaining[c] = the fitting subset.
	variantsContaining := make(map[int]int)
	fittingContaining := make(map[int]int)

	for _, variant := range proj.Traces {
		projected := make([]int, 0, len(variant.Sequence))

		for _, a := range variant.Sequence {
			if _, ok := inAOrB[a]; ok {
				projected = append(projected, a)
			}
		}

		if len(projected) == 0 {
			continue
		}

		consideredMult += variant.Multiplicity

		mentioned := make(map[int]struct{})
		for _, a := range projected {
			mentioned[a] = struct{}{}
		}

		for a := range mentioned {
			variantsContaining[a] += variant.Multiplicity
		}

		count := 0
		fits := true

		for _, a := range projected {
			if _, ok := inA[a]; ok {
				count++
			} else if _, ok := inB[a]; ok {
				count--
			}

			if count < 0 {
				fits = false

				break
			}
		}

		if fits && count == 0 {
			fittingMult += variant.Multiplicity

			for a := range mentioned {
				fittingContaining[a] += variant.Multiplicity
			}
		}
	}

	if consideredMult == 0 {
		return false
	}

	localFitness := float64(fittingMult) / float64(consideredMult)
	if localFitness < fitnessThresh {
		return false
	}

	minPerActivity := 1.0

	for c := range inAOrB {
		denom := variantsContaining[c]
		if denom == 0 {
			minPerActivity = 0

			break
		}

		v := float64(fittingContaining[c]) / float64(denom)
		if v < minPerActivity {
			minPerActivity = v
		}
	}

	return minPerActivity >= fitnessThresh
}

// dominanceFilter removes (A,B) when a strictly-more-general (A',B')
// exists: |A'|>=|A|, |B'|>=|B|, A⊆A', B⊆B', and (A',B') != (A,B). The
// output is an antichain under subset-pair order.
func dominanceFilter(candidates []Candidate) []Candidate {
	dominated := make([]bool, len(candidates))

	for i, ci := range candidates {
		for j, cj := range candidates {
			if i == j {
				continue
			}

			if len(cj.A) >= len(ci.A) && len(cj.B) >= len(ci.B) &&
				isSubset(ci.A, cj.A) && isSubset(ci.B, cj.B) &&
				!(equalInts(ci.A, cj.A) && equalInts(ci.B, cj.B)) {
				dominated[i] = true

				break
			}
		}
	}

	var out []Candidate

	for i, c := range candidates {
		if !dominated[i] {
			out = append(out, c)
		}
	}

	return out
}

func isSubset(a, b []int) bool {
	set := make(map[int]struct{}, len(b))
	for _, x := range b {
		set[x] = struct{}{}
	}

	for _, x := range a {
		if _, ok := set[x]; !ok {
			return false
		}
	}

	return true
}
