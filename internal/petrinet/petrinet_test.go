package petrinet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/petrinet"
)

func TestNet_AddArc_UnknownNode(t *testing.T) {
	n := petrinet.New()
	place := n.AddPlace()

	err := n.AddArc(petrinet.PlaceToTransition, place, [16]byte{}, 1)
	require.ErrorIs(t, err, petrinet.ErrUnknownNode)
}

func TestNet_PresetAndPostset(t *testing.T) {
	n := petrinet.New()
	p := n.AddPlace()

	label := "a"
	tIn := n.AddTransition(&label)
	tOut := n.AddTransition(nil)

	require.NoError(t, n.AddArc(petrinet.PlaceToTransition, p, tOut, 1))
	require.NoError(t, n.AddArc(petrinet.TransitionToPlace, p, tIn, 1))

	assert.Contains(t, n.PresetOfPlace(p), tIn)
	assert.Contains(t, n.PostsetOfPlace(p), tOut)
	assert.True(t, n.Transitions[tOut].IsSilent())
	assert.False(t, n.Transitions[tIn].IsSilent())
}
