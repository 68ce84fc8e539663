package ocdfg_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/attribute"
	"github.com/pmlab-io/pmcore/internal/config"
	"github.com/pmlab-io/pmcore/internal/dfg"
	"github.com/pmlab-io/pmcore/internal/linkedocel"
	"github.com/pmlab-io/pmcore/internal/ocdfg"
	"github.com/pmlab-io/pmcore/internal/ocel"
)

func at(minute int) time.Time {
	return time.Date(2024, 1, 1, 0, minute, 0, 0, time.UTC)
}

func ocelWithOneOrder() *ocel.Log {
	log := ocel.NewLog()
	log.ObjectTypes = []ocel.ObjectType{{Name: "order"}}
	log.Objects = []ocel.Object{{ID: "o1", Type: "order"}}
	log.Events = []ocel.Event{
		{
			ID: "e1", Type: "place order", Time: at(0),
			Relationships: []ocel.E2ORelationship{{ObjectID: "o1", Qualifier: "involves"}},
		},
		{
			ID: "e2", Type: "ship order", Time: at(5),
			Relationships: []ocel.E2ORelationship{{ObjectID: "o1", Qualifier: "involves"}},
		},
	}

	return log
}

// TestDiscover_EmptyOCEL checks that an empty OCEL log's OC-DFG has no
// per-type DFGs.
func TestDiscover_EmptyOCEL(t *testing.T) {
	locel := linkedocel.Build(ocel.NewLog())

	g := ocdfg.Discover(locel, ocdfg.DefaultOptions())

	assert.Empty(t, g.ObjectTypeToDFG)
}

func TestFlattenObjectType_SortsEventsByTime(t *testing.T) {
	log := ocelWithOneOrder()
	// Swap event order in the log itself; flatten must re-sort by time.
	log.Events[0], log.Events[1] = log.Events[1], log.Events[0]

	locel := linkedocel.Build(log)

	flat := ocdfg.FlattenObjectType(locel, "order", ocdfg.DefaultOptions())

	require.Len(t, flat.Traces, 1)
	require.Len(t, flat.Traces[0].Events, 2)

	first, _ := flat.Traces[0].Events[0].Attributes.Get("concept:name")
	second, _ := flat.Traces[0].Events[1].Attributes.Get("concept:name")
	assert.Equal(t, "place order", first.Value.StringOrEmpty())
	assert.Equal(t, "ship order", second.Value.StringOrEmpty())
}

func TestFlattenObjectType_TraceIdentityIsObjectID(t *testing.T) {
	locel := linkedocel.Build(ocelWithOneOrder())

	flat := ocdfg.FlattenObjectType(locel, "order", ocdfg.DefaultOptions())

	require.Len(t, flat.Traces, 1)

	name, ok := flat.Traces[0].Attributes.Get("concept:name")
	require.True(t, ok)
	assert.Equal(t, "o1", name.Value.StringOrEmpty())
}

func TestFlattenObjectType_CarriesObjectAttributes(t *testing.T) {
	log := ocelWithOneOrder()
	log.Objects[0].Attributes = []ocel.ObjectAttribute{
		{Name: "price", Value: attribute.NewInt(42), Time: at(0)},
	}

	locel := linkedocel.Build(log)

	flat := ocdfg.FlattenObjectType(locel, "order", ocdfg.DefaultOptions())

	price, ok := flat.Traces[0].Attributes.Get("price")
	require.True(t, ok)

	v, _ := price.Value.AsInt()
	assert.Equal(t, int64(42), v)
}

func TestFlattenObjectType_WithInitExit(t *testing.T) {
	locel := linkedocel.Build(ocelWithOneOrder())

	flat := ocdfg.FlattenObjectType(locel, "order", ocdfg.Options{WithInitExit: true})

	require.Len(t, flat.Traces, 1)
	require.Len(t, flat.Traces[0].Events, 4)

	first, _ := flat.Traces[0].Events[0].Attributes.Get("concept:name")
	last, _ := flat.Traces[0].Events[3].Attributes.Get("concept:name")
	assert.Equal(t, ocdfg.InitActivity, first.Value.StringOrEmpty())
	assert.Equal(t, ocdfg.ExitActivity, last.Value.StringOrEmpty())
}

func TestDiscover_InducesDFGPerObjectType(t *testing.T) {
	locel := linkedocel.Build(ocelWithOneOrder())

	g := ocdfg.Discover(locel, ocdfg.DefaultOptions())

	require.Contains(t, g.ObjectTypeToDFG, "order")

	entry := g.ObjectTypeToDFG["order"]
	place := entry.Projection.ActToIndex["place order"]
	ship := entry.Projection.ActToIndex["ship order"]

	assert.Equal(t, 1, entry.Graph.Edges[dfg.Edge{From: place, To: ship}])
}

func TestOptionsFromDiscoveryConfig_CarriesWithInitExit(t *testing.T) {
	opts := ocdfg.OptionsFromDiscoveryConfig(config.DiscoveryConfig{WithInitExit: true})

	assert.True(t, opts.WithInitExit)
	assert.Equal(t, "__DEFAULT__", opts.Classifier.Name)
}
