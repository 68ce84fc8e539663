package alphappp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/attribute"
	"github.com/pmlab-io/pmcore/internal/eventlog"
)

func traceOf(activities ...string) eventlog.Trace {
	tr := eventlog.Trace{Attributes: attribute.NewAttributes()}

	for _, act := range activities {
		attrs := attribute.NewAttributes()
		attrs.Set(attribute.Attribute{Key: eventlog.ConceptName, Value: attribute.NewString(act)})
		tr.Events = append(tr.Events, eventlog.Event{Attributes: attrs})
	}

	return tr
}

func TestDiscover_EmptyLogReturnsEmptyNet(t *testing.T) {
	net, err := Discover(eventlog.NewLog(), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, net.Transitions)
	assert.Empty(t, net.Arcs)
}

func TestDiscover_RejectsOutOfRangeThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.Prune.FitnessThresh = 1.5

	_, err := Discover(eventlog.NewLog(), opts)
	require.ErrorIs(t, err, ErrThresholdOutOfRange)
}

// TestDiscover_DiamondLog runs the whole pipeline over a log with two
// variants a,b,d and a,c,d (an exclusive choice between b and c) and
// checks the assembled net: one labelled transition per activity plus the
// trace boundary symbols, a marked source and sink, and a non-empty set of
// places and arcs.
func TestDiscover_DiamondLog(t *testing.T) {
	log := eventlog.NewLog()

	for i := 0; i < 5; i++ {
		log.Traces = append(log.Traces, traceOf("a", "b", "d"))
		log.Traces = append(log.Traces, traceOf("a", "c", "d"))
	}

	opts := DefaultOptions()
	opts.Prune.BalanceThresh = 0.1
	opts.Prune.FitnessThresh = 1.0

	net, err := Discover(log, opts)
	require.NoError(t, err)

	labels := make(map[string]int)

	for _, tr := range net.Transitions {
		require.NotNil(t, tr.Label)
		labels[*tr.Label]++
	}

	for _, want := range []string{"a", "b", "c", "d", eventlog.StartSymbol, eventlog.EndSymbol} {
		assert.Equal(t, 1, labels[want], "expected exactly one transition labelled %q", want)
	}

	assert.Len(t, net.InitialMarking, 1)
	require.Len(t, net.FinalMarkings, 1)
	assert.Len(t, net.FinalMarkings[0], 1)

	assert.NotEmpty(t, net.Places)
	assert.NotEmpty(t, net.Arcs)
}
