package xes_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/xes"
)

func TestExport_RoundTripPreservesLog(t *testing.T) {
	orig, err := xes.Import(strings.NewReader(sampleXES), xes.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, xes.Export(&buf, orig, xes.ExportOptions{}))

	again, err := xes.Import(&buf, xes.Options{Strict: true})
	require.NoError(t, err)

	assert.Equal(t, orig.Extensions, again.Extensions)
	assert.Equal(t, orig.Classifiers, again.Classifiers)
	assert.True(t, orig.Attributes.Equal(again.Attributes))
	assert.True(t, orig.GlobalEventAttrs.Equal(again.GlobalEventAttrs))

	require.Len(t, again.Traces, len(orig.Traces))

	for i, tr := range orig.Traces {
		got := again.Traces[i]
		assert.True(t, tr.Attributes.Equal(got.Attributes))

		require.Len(t, got.Events, len(tr.Events))

		for j, ev := range tr.Events {
			assert.True(t, ev.Attributes.Equal(got.Events[j].Attributes))
		}
	}
}

func TestExport_CompressedRoundTrip(t *testing.T) {
	orig, err := xes.Import(strings.NewReader(sampleXES), xes.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, xes.Export(&buf, orig, xes.ExportOptions{Compress: true}))

	// Gzip magic number must lead the stream so Import's sniffing kicks in.
	require.GreaterOrEqual(t, buf.Len(), 2)
	assert.Equal(t, byte(0x1f), buf.Bytes()[0])
	assert.Equal(t, byte(0x8b), buf.Bytes()[1])

	again, err := xes.Import(&buf, xes.Options{})
	require.NoError(t, err)
	require.Len(t, again.Traces, len(orig.Traces))
}

func TestExport_NestedOwnAttributesSurvive(t *testing.T) {
	orig, err := xes.Import(strings.NewReader(sampleXES), xes.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, xes.Export(&buf, orig, xes.ExportOptions{}))

	again, err := xes.Import(&buf, xes.Options{})
	require.NoError(t, err)

	amountAttr, ok := again.Traces[0].Events[0].Attributes.Get("amount")
	require.True(t, ok)
	require.NotNil(t, amountAttr.OwnAttributes)
	assert.Equal(t, "EUR", amountAttr.OwnAttributes.Value("currency").StringOrEmpty())
}
