package dfg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/attribute"
	"github.com/pmlab-io/pmcore/internal/dfg"
	"github.com/pmlab-io/pmcore/internal/eventlog"
	"github.com/pmlab-io/pmcore/internal/projection"
)

func traceOf(names ...string) eventlog.Trace {
	events := make([]eventlog.Event, len(names))
	for i, n := range names {
		attrs := attribute.NewAttributes()
		attrs.Set(attribute.Attribute{Key: eventlog.ConceptName, Value: attribute.NewString(n)})
		events[i] = eventlog.Event{Attributes: attrs}
	}

	return eventlog.Trace{Attributes: attribute.NewAttributes(), Events: events}
}

// TestInduce_SingleTraceSequenceABC checks a single trace a,b,c induces
// the expected edges and start/end activities.
func TestInduce_SingleTraceSequenceABC(t *testing.T) {
	log := eventlog.NewLog()
	log.Traces = []eventlog.Trace{traceOf("a", "b", "c")}

	proj := projection.FromLog(log, eventlog.DefaultClassifier)
	g := dfg.Induce(proj)

	a, b, c := proj.ActToIndex["a"], proj.ActToIndex["b"], proj.ActToIndex["c"]

	assert.Equal(t, 1, g.Edges[dfg.Edge{From: a, To: b}])
	assert.Equal(t, 1, g.Edges[dfg.Edge{From: b, To: c}])
	assert.Contains(t, g.StartActivities, a)
	assert.Contains(t, g.EndActivities, c)
}

func TestFilter_RemovesBelowAbsoluteThreshold(t *testing.T) {
	log := eventlog.NewLog()
	log.Traces = []eventlog.Trace{traceOf("a", "b")}

	proj := projection.FromLog(log, eventlog.DefaultClassifier)
	g := dfg.Induce(proj)

	filtered, err := dfg.Filter(g, dfg.FilterOptions{AbsoluteThresh: 2, RelativeThresh: 0})
	require.NoError(t, err)
	assert.Empty(t, filtered.Edges)
}

func TestFilter_RejectsOutOfRangeThreshold(t *testing.T) {
	g := dfg.Induce(&projection.Projection{})

	_, err := dfg.Filter(g, dfg.FilterOptions{RelativeThresh: 1.5})
	require.ErrorIs(t, err, dfg.ErrThresholdOutOfRange)
}

func TestFilter_KeepsOrphanNodes(t *testing.T) {
	log := eventlog.NewLog()
	log.Traces = []eventlog.Trace{traceOf("a", "b")}

	proj := projection.FromLog(log, eventlog.DefaultClassifier)
	g := dfg.Induce(proj)

	filtered, err := dfg.Filter(g, dfg.FilterOptions{AbsoluteThresh: 5})
	require.NoError(t, err)
	assert.Equal(t, g.Activities, filtered.Activities)
}

func TestSortedEdges_Deterministic(t *testing.T) {
	g := &dfg.Graph{Edges: map[dfg.Edge]int{
		{From: 2, To: 1}: 1,
		{From: 1, To: 2}: 1,
		{From: 1, To: 1}: 1,
	}}

	sorted := dfg.SortedEdges(g)
	require.Len(t, sorted, 3)
	assert.Equal(t, dfg.Edge{From: 1, To: 1}, sorted[0])
	assert.Equal(t, dfg.Edge{From: 1, To: 2}, sorted[1])
	assert.Equal(t, dfg.Edge{From: 2, To: 1}, sorted[2])
}
