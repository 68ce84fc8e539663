package projection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/attribute"
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

func TestFromLog_SingleTraceABC(t *testing.T) {
	log := eventlog.NewLog()
	log.Traces = []eventlog.Trace{traceOf("a", "b", "c")}

	proj := projection.FromLog(log, eventlog.DefaultClassifier)

	require.Equal(t, []string{"a", "b", "c"}, proj.Activities)
	require.Len(t, proj.Traces, 1)
	assert.Equal(t, []int{0, 1, 2}, proj.Traces[0].Sequence)
	assert.Equal(t, 1, proj.Traces[0].Multiplicity)
}

func TestFromLog_GroupsIdenticalVariants(t *testing.T) {
	log := eventlog.NewLog()
	log.Traces = []eventlog.Trace{
		traceOf("a", "b"),
		traceOf("a", "b"),
		traceOf("a", "c"),
	}

	proj := projection.FromLog(log, eventlog.DefaultClassifier)

	require.Len(t, proj.Traces, 2)

	total := 0
	for _, v := range proj.Traces {
		total += v.Multiplicity
	}

	assert.Equal(t, 3, total)
}

func TestFromLog_EmptySequenceKept(t *testing.T) {
	log := eventlog.NewLog()
	log.Traces = []eventlog.Trace{{Attributes: attribute.NewAttributes()}}

	proj := projection.FromLog(log, eventlog.DefaultClassifier)

	require.Len(t, proj.Traces, 1)
	assert.Empty(t, proj.Traces[0].Sequence)
}

func TestAddStartEnd_Idempotent(t *testing.T) {
	log := eventlog.NewLog()
	log.Traces = []eventlog.Trace{traceOf("a")}

	proj := projection.FromLog(log, eventlog.DefaultClassifier)
	once := projection.AddStartEnd(proj, nil)
	twice := projection.AddStartEnd(once, nil)

	assert.Equal(t, once.Activities, twice.Activities)
	assert.Equal(t, once.Traces, twice.Traces)
}

func TestAddStartEnd_WrapsEverySequence(t *testing.T) {
	log := eventlog.NewLog()
	log.Traces = []eventlog.Trace{traceOf("a", "b")}

	proj := projection.FromLog(log, eventlog.DefaultClassifier)
	wrapped := projection.AddStartEnd(proj, nil)

	startIdx := wrapped.ActToIndex[projection.StartSymbol]
	endIdx := wrapped.ActToIndex[projection.EndSymbol]

	require.Len(t, wrapped.Traces, 1)
	seq := wrapped.Traces[0].Sequence
	assert.Equal(t, startIdx, seq[0])
	assert.Equal(t, endIdx, seq[len(seq)-1])
}
