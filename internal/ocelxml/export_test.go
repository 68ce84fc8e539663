package ocelxml_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/ocel"
	"github.com/pmlab-io/pmcore/internal/ocelxml"
)

func TestExport_RoundTripPreservesLog(t *testing.T) {
	orig, err := ocelxml.Import(strings.NewReader(sampleXML), ocelxml.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ocelxml.Export(&buf, orig))

	again, err := ocelxml.Import(&buf, ocelxml.Options{Strict: true})
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
		assert.Equal(t, ob.Relationships, got.Relationships)

		require.Len(t, got.Attributes, len(ob.Attributes))

		for j, oa := range ob.Attributes {
			assert.Equal(t, oa.Name, got.Attributes[j].Name)
			assert.True(t, oa.Value.Equal(got.Attributes[j].Value))
			assert.True(t, oa.Time.Equal(got.Attributes[j].Time))
		}
	}
}

func TestExport_DanglingRelationshipIsRetained(t *testing.T) {
	orig, err := ocelxml.Import(strings.NewReader(sampleXML), ocelxml.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ocelxml.Export(&buf, orig))

	again, err := ocelxml.Import(&buf, ocelxml.Options{})
	require.NoError(t, err)

	require.Len(t, again.Events, 1)
	require.Len(t, again.Events[0].Relationships, 2)
	assert.Equal(t, "x-missing", again.Events[0].Relationships[1].ObjectID)
}

func TestExport_EmptyLog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ocelxml.Export(&buf, ocel.NewLog()))

	again, err := ocelxml.Import(&buf, ocelxml.Options{})
	require.NoError(t, err)
	assert.Empty(t, again.Events)
	assert.Empty(t, again.Objects)
	assert.Empty(t, again.EventTypes)
	assert.Empty(t, again.ObjectTypes)
}
