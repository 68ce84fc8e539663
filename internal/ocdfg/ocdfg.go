// Package ocdfg implements object-centric directly-follows graph
// discovery: per-object-type flattening of a linked OCEL to a case-centric
// log, DFG induction over each flattened log, and aggregation into one
// graph per object type.
package ocdfg

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pmlab-io/pmcore/internal/config"
	"github.com/pmlab-io/pmcore/internal/dfg"
	"github.com/pmlab-io/pmcore/internal/eventlog"
	"github.com/pmlab-io/pmcore/internal/linkedocel"
	"github.com/pmlab-io/pmcore/internal/projection"
)

// Init/exit activity names synthesized by WithInitExit. These carry no
// reserved silent prefix: they are real (synthetic) activities in the
// flattened log, not artificial Alpha+++ repair nodes.
const (
	InitActivity = "ocel:init"
	ExitActivity = "ocel:exit"
)

// Options configures discovery.
type Options struct {
	// Classifier derives each flattened event's class identity. Defaults
	// to eventlog.DefaultClassifier (concept:name) when zero-valued.
	Classifier eventlog.Classifier

	// WithInitExit brackets each object's flattened trace with synthetic
	// InitActivity/ExitActivity events at its first/last observed event
	// time. Off by default, leaving plain flatten-then-induce behavior.
	WithInitExit bool
}

// DefaultOptions returns the default classifier with init/exit synthesis
// disabled.
func DefaultOptions() Options {
	return Options{Classifier: eventlog.DefaultClassifier}
}

// OptionsFromDiscoveryConfig translates a config.DiscoveryConfig into
// Options, keeping the classifier at eventlog.DefaultClassifier.
func OptionsFromDiscoveryConfig(cfg config.DiscoveryConfig) Options {
	return Options{
		Classifier:   eventlog.DefaultClassifier,
		WithInitExit: cfg.WithInitExit,
	}
}

// PerTypeDFG bundles a flattened object type's DFG with the projection it
// was induced from, so callers can translate activity ordinals in g back
// to names via proj.Activities.
type PerTypeDFG struct {
	Projection *projection.Projection
	Graph      *dfg.Graph
}

// Graph is the object-centric DFG: one PerTypeDFG per object type, the
// per-type DFG induced from that type's flattened log.
type Graph struct {
	ObjectTypeToDFG map[string]PerTypeDFG
}

// Discover builds an object-centric DFG from locel: for each object type,
// flatten to a case-centric log and induce a DFG from it. Object types are
// flattened in parallel once there are enough of them to be worth it; the
// result map has no ordering concerns of its own, so no further
// canonicalization step is needed beyond the per-type Projection/Graph
// each carry.
func Discover(locel linkedocel.LinkedOCELAccess, opts Options) *Graph {
	classifier := opts.Classifier
	if classifier.Name == "" {
		classifier = eventlog.DefaultClassifier
	}

	types := locel.GetObTypes()
	sort.Strings(types)

	out := &Graph{ObjectTypeToDFG: make(map[string]PerTypeDFG, len(types))}

	var mu sync.Mutex

	var eg errgroup.Group

	const parallelThreshold = 4
	if len(types) < parallelThreshold {
		for _, t := range types {
			log := FlattenObjectType(locel, t, opts)
			proj := projection.FromLog(log, classifier)
			out.ObjectTypeToDFG[t] = PerTypeDFG{Projection: proj, Graph: dfg.Induce(proj)}
		}
	} else {
		for _, t := range types {
			t := t
			eg.Go(func() error {
				log := FlattenObjectType(locel, t, opts)
				proj := projection.FromLog(log, classifier)
				entry := PerTypeDFG{Projection: proj, Graph: dfg.Induce(proj)}

				mu.Lock()
				out.ObjectTypeToDFG[t] = entry
				mu.Unlock()

				return nil
			})
		}

		_ = eg.Wait()
	}

	return out
}
