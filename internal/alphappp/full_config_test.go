package alphappp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pmlab-io/pmcore/internal/alphappp"
	"github.com/pmlab-io/pmcore/internal/config"
)

func TestOptionsFromDiscoveryConfig_CarriesThresholds(t *testing.T) {
	cfg := config.DiscoveryConfig{
		DFGAbsoluteThresh:        3,
		DFGRelativeThresh:        0.2,
		SkipRepairAbsoluteThresh: 4,
		LoopRepairAbsoluteThresh: 5,
		BalanceThresh:            0.3,
		FitnessThresh:            0.8,
	}

	opts := alphappp.OptionsFromDiscoveryConfig(cfg)

	assert.Equal(t, 3, opts.DFGAbsoluteThresh)
	assert.InDelta(t, 0.2, opts.DFGRelativeThresh, 0.0001)
	assert.Equal(t, 4, opts.SkipRepairAbsoluteThresh)
	assert.Equal(t, 5, opts.LoopRepairAbsoluteThresh)
	assert.InDelta(t, 0.3, opts.Prune.BalanceThresh, 0.0001)
	assert.InDelta(t, 0.8, opts.Prune.FitnessThresh, 0.0001)
}
