package alphappp

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/pmlab-io/pmcore/internal/config"
	"github.com/pmlab-io/pmcore/internal/dfg"
	"github.com/pmlab-io/pmcore/internal/eventlog"
	"github.com/pmlab-io/pmcore/internal/ids"
	"github.com/pmlab-io/pmcore/internal/logrepair"
	"github.com/pmlab-io/pmcore/internal/petrinet"
	"github.com/pmlab-io/pmcore/internal/projection"
)

// Options configures the full Alpha+++ pipeline end to end.
type Options struct {
	Classifier eventlog.Classifier

	DFGAbsoluteThresh int
	DFGRelativeThresh float64

	SkipRepairAbsoluteThresh int
	LoopRepairAbsoluteThresh int

	Prune PruneOptions

	Logger *slog.Logger
}

// DefaultOptions returns thresholds that are permissive enough to be a
// reasonable starting point: no DFG filtering, lenient pruning, and log
// repair thresholds of zero, so every exposed skip and every self-loop
// in the DFG is repaired.
func DefaultOptions() Options {
	return Options{
		Classifier:               eventlog.DefaultClassifier,
		DFGAbsoluteThresh:        0,
		DFGRelativeThresh:        0,
		SkipRepairAbsoluteThresh: 0,
		LoopRepairAbsoluteThresh: 0,
		Prune: PruneOptions{
			BalanceThresh: 1,
			FitnessThresh: 0,
		},
	}
}

// OptionsFromDiscoveryConfig translates a config.DiscoveryConfig (loaded
// from .pmcore.yaml or defaults) into Options, keeping the classifier and
// logger at their Discover-time defaults.
func OptionsFromDiscoveryConfig(cfg config.DiscoveryConfig) Options {
	return Options{
		Classifier:               eventlog.DefaultClassifier,
		DFGAbsoluteThresh:        cfg.DFGAbsoluteThresh,
		DFGRelativeThresh:        cfg.DFGRelativeThresh,
		SkipRepairAbsoluteThresh: cfg.SkipRepairAbsoluteThresh,
		LoopRepairAbsoluteThresh: cfg.LoopRepairAbsoluteThresh,
		Prune: PruneOptions{
			BalanceThresh: cfg.BalanceThresh,
			FitnessThresh: cfg.FitnessThresh,
		},
	}
}

// Discover runs the full Alpha+++ pipeline end to end: activity
// projection -> add-start-end -> log repair -> DFG -> filter -> candidate
// build -> prune -> Petri net assembly.
//
// An empty activity alphabet returns an empty Petri net, not an error.
// Out-of-range thresholds are a fatal, structured error.
func Discover(log *eventlog.Log, opts Options) (*petrinet.Net, error) {
	if err := opts.Prune.validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	classifier := opts.Classifier
	if classifier.Name == "" {
		classifier = eventlog.DefaultClassifier
	}

	proj := projection.FromLog(log, classifier)
	if len(proj.Activities) == 0 {
		return petrinet.New(), nil
	}

	proj = projection.AddStartEnd(proj, logger)

	baseDFG := dfg.Induce(proj)

	repaired := logrepair.Repair(proj, baseDFG, logrepair.Options{
		SkipAbsoluteThresh: opts.SkipRepairAbsoluteThresh,
		LoopAbsoluteThresh: opts.LoopRepairAbsoluteThresh,
	})

	repairedDFG := dfg.Induce(repaired)

	filtered, err := dfg.Filter(repairedDFG, dfg.FilterOptions{
		AbsoluteThresh: opts.DFGAbsoluteThresh,
		RelativeThresh: opts.DFGRelativeThresh,
	})
	if err != nil {
		return nil, err
	}

	candidates := BuildCandidates(filtered)

	pruned, err := Prune(candidates, repaired, filtered, opts.Prune)
	if err != nil {
		return nil, err
	}

	return assemble(pruned, repaired), nil
}

// assemble builds the Petri net from the surviving candidates: one place
// per candidate, transition(a)->place for every a in A, place->
// transition(b) for every b in B. Transitions for silent-prefixed
// activities are created unlabelled. An explicit source place (initial
// marking, one token) feeds every transition with an empty preset, and an
// explicit sink place (the sole final marking, one token) is fed by every
// transition with an empty postset — the natural choice given Alpha-style
// nets otherwise leave boundary transitions floating.
func assemble(candidates []Candidate, proj *projection.Projection) *petrinet.Net {
	net := petrinet.New()

	transitionFor := make(map[int]uuid.UUID)

	ensureTransition := func(a int) uuid.UUID {
		if id, ok := transitionFor[a]; ok {
			return id
		}

		name := proj.Activities[a]
		id := net.AddTransition(transitionLabel(name))
		transitionFor[a] = id

		return id
	}

	hasPreset := make(map[int]bool)
	hasPostset := make(map[int]bool)

	for _, cand := range candidates {
		place := net.AddPlace()

		for _, a := range cand.A {
			id := ensureTransition(a)
			_ = net.AddArc(petrinet.TransitionToPlace, place, id, 1)
			hasPostset[a] = true
		}

		for _, b := range cand.B {
			id := ensureTransition(b)
			_ = net.AddArc(petrinet.PlaceToTransition, place, id, 1)
			hasPreset[b] = true
		}
	}

	// Ensure every activity observed in the repaired projection has a
	// transition, even if no candidate survived pruning that references
	// it (an isolated activity still needs boundary wiring below).
	for a := range proj.ActToIndex {
		idx := proj.ActToIndex[a]
		ensureTransition(idx)
	}

	source := net.AddPlace()
	sink := net.AddPlace()

	for a, id := range transitionFor {
		if !hasPreset[a] {
			_ = net.AddArc(petrinet.PlaceToTransition, source, id, 1)
		}

		if !hasPostset[a] {
			_ = net.AddArc(petrinet.TransitionToPlace, sink, id, 1)
		}
	}

	net.InitialMarking[source] = 1
	net.FinalMarkings = []petrinet.Marking{{sink: 1}}

	return net
}

func transitionLabel(name string) *string {
	if ids.IsSilent(name) {
		return nil
	}

	label := name

	return &label
}
