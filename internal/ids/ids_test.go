package ids_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pmlab-io/pmcore/internal/ids"
)

func TestSkipActivityName_Deterministic(t *testing.T) {
	a := ids.SkipActivityName("u", "w", "v")
	b := ids.SkipActivityName("u", "w", "v")
	assert.Equal(t, a, b)
	assert.True(t, ids.IsSilent(a))
}

func TestSkipActivityName_DistinguishesBoundaries(t *testing.T) {
	a := ids.SkipActivityName("ab", "c", "d")
	b := ids.SkipActivityName("a", "bc", "d")
	assert.NotEqual(t, a, b)
}

func TestIsSilent(t *testing.T) {
	assert.True(t, ids.IsSilent(ids.LoopActivityName("x")))
	assert.False(t, ids.IsSilent("regular_activity"))
}
