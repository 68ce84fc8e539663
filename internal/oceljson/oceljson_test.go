package oceljson_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/oceljson"
)

const sampleJSON = `{
  "eventTypes": [{"name": "place order", "attributes": [{"name": "weight", "type": "integer"}]}],
  "objectTypes": [{"name": "order", "attributes": [{"name": "price", "type": "float"}]}],
  "events": [
    {
      "id": "e1",
      "type": "place order",
      "time": "2023-05-01T10:00:00Z",
      "attributes": [{"name": "weight", "value": 10}],
      "relationships": [{"objectId": "o1", "qualifier": "places"}]
    }
  ],
  "objects": [
    {
      "id": "o1",
      "type": "order",
      "attributes": [{"name": "price", "value": 100.5, "time": "2023-04-30T09:00:00Z"}],
      "relationships": []
    }
  ]
}`

func TestImport_ParsesUntypedUnion(t *testing.T) {
	log, err := oceljson.Import(strings.NewReader(sampleJSON), oceljson.Options{})
	require.NoError(t, err)

	require.Len(t, log.Events, 1)
	weight, ok := log.Events[0].Attributes[0].Value.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(10), weight)

	require.Len(t, log.Objects, 1)
	price, ok := log.Objects[0].Attributes[0].Value.AsFloat()
	require.True(t, ok)
	assert.InDelta(t, 100.5, price, 0.0001)
	assert.Equal(t, 2023, log.Objects[0].Attributes[0].Time.Year())
}

func TestImport_TimeDeclaredAttributeParsesAsTimeVariant(t *testing.T) {
	const withTimeAttr = `{
	  "eventTypes": [{"name": "t", "attributes": [{"name": "scheduled", "type": "time"}]}],
	  "objectTypes": [],
	  "events": [{"id": "e1", "type": "t", "time": "2023-01-01T00:00:00Z",
	    "attributes": [{"name": "scheduled", "value": "2023-06-01T00:00:00Z"}]}],
	  "objects": []
	}`

	log, err := oceljson.Import(strings.NewReader(withTimeAttr), oceljson.Options{})
	require.NoError(t, err)

	val := log.Events[0].Attributes[0].Value

	ts, ok := val.AsTime()
	require.True(t, ok)
	assert.Equal(t, 2023, ts.Year())
}

func TestImport_MalformedJSON(t *testing.T) {
	_, err := oceljson.Import(strings.NewReader("{not json"), oceljson.Options{})
	require.ErrorIs(t, err, oceljson.ErrMalformedJSON)
}

func TestImport_EmptyLog(t *testing.T) {
	log, err := oceljson.Import(strings.NewReader(`{"eventTypes":[],"objectTypes":[],"events":[],"objects":[]}`), oceljson.Options{})
	require.NoError(t, err)
	assert.Empty(t, log.Events)
	assert.Empty(t, log.Objects)
}
