package ocel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/ocel"
)

func TestLog_Validate_DuplicateEventID(t *testing.T) {
	log := ocel.NewLog()
	log.Events = []ocel.Event{
		{ID: "e1", Type: "place order", Time: time.Now()},
		{ID: "e1", Type: "ship order", Time: time.Now()},
	}

	require.ErrorIs(t, log.Validate(), ocel.ErrDuplicateEventID)
}

func TestLog_Validate_DanglingRelationshipIsNotFatal(t *testing.T) {
	log := ocel.NewLog()
	log.Events = []ocel.Event{
		{
			ID:   "e1",
			Type: "place order",
			Time: time.Now(),
			Relationships: []ocel.E2ORelationship{
				{ObjectID: "x1", Qualifier: "places"},
			},
		},
	}

	require.NoError(t, log.Validate())
	assert.Len(t, log.Events[0].Relationships, 1)
}

func TestLog_Validate_EmptyLogIsValid(t *testing.T) {
	log := ocel.NewLog()
	require.NoError(t, log.Validate())
}
