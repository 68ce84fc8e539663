package oceljson_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/ocel"
	"github.com/pmlab-io/pmcore/internal/oceljson"
)

func TestExport_RoundTripPreservesLog(t *testing.T) {
	orig, err := oceljson.Import(strings.NewReader(sampleJSON), oceljson.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, oceljson.Export(&buf, orig))

	again, err := oceljson.Import(&buf, oceljson.Options{})
	require.NoError(t, err)

	assert.Equal(t, orig.EventTypes, again.EventTypes)
	assert.Equal(t, orig.ObjectTypes, again.ObjectTypes)

	require.Len(t, again.Events, len(orig.Events))

	for i, ev := range orig.Events {
		got := again.Events[i]
		assert.Equal(t, ev.ID, got.ID)
		assert.Equal(t, ev.Type, got.Type)
		assert.True(t, ev.Time.Equal(got.Time))
		assert.Equal(t, ev.Relationships, got.Relationships)

		require.Len(t, got.Attributes, len(ev.Attributes))

		for j, ea := range ev.Attributes {
			assert.Equal(t, ea.Name, got.Attributes[j].Name)
			assert.True(t, ea.Value.Equal(got.Attributes[j].Value))
		}
	}

	require.Len(t, again.Objects, len(orig.Objects))

	for i, ob := range orig.Objects {
		got := again.Objects[i]
		assert.Equal(t, ob.ID, got.ID)
		assert.Equal(t, ob.Type, got.Type)

		require.Len(t, got.Attributes, len(ob.Attributes))

		for j, oa := range ob.Attributes {
			assert.Equal(t, oa.Name, got.Attributes[j].Name)
			assert.True(t, oa.Value.Equal(got.Attributes[j].Value))
			assert.True(t, oa.Time.Equal(got.Attributes[j].Time))
		}
	}
}

func TestExport_TimeDeclaredAttributeSurvivesRoundTrip(t *testing.T) {
	const withTimeAttr = `{
	  "eventTypes": [{"name": "t", "attributes": [{"name": "scheduled", "type": "time"}]}],
	  "objectTypes": [],
	  "events": [{"id": "e1", "type": "t", "time": "2023-01-01T00:00:00Z",
	    "attributes": [{"name": "scheduled", "value": "2023-06-01T00:00:00Z"}]}],
	  "objects": []
	}`

	orig, err := oceljson.Import(strings.NewReader(withTimeAttr), oceljson.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, oceljson.Export(&buf, orig))

	again, err := oceljson.Import(&buf, oceljson.Options{})
	require.NoError(t, err)

	val := again.Events[0].Attributes[0].Value
	ts, ok := val.AsTime()
	require.True(t, ok)
	assert.Equal(t, 2023, ts.Year())
	assert.True(t, orig.Events[0].Attributes[0].Value.Equal(val))
}

func TestExport_EmptyLog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, oceljson.Export(&buf, ocel.NewLog()))

	again, err := oceljson.Import(&buf, oceljson.Options{})
	require.NoError(t, err)
	assert.Empty(t, again.Events)
	assert.Empty(t, again.Objects)
}
