package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlab-io/pmcore/internal/config"
)

func TestLoadDiscoveryConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.LoadDiscoveryConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, config.DefaultDiscoveryConfig(), cfg)
}

func TestLoadDiscoveryConfig_EmptyFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cfg, err := config.LoadDiscoveryConfig(path)

	require.NoError(t, err)
	assert.Equal(t, config.DefaultDiscoveryConfig(), cfg)
}

func TestLoadDiscoveryConfig_MalformedYAMLReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dfg_absolute_thresh: [not a number"), 0o600))

	cfg, err := config.LoadDiscoveryConfig(path)

	require.NoError(t, err)
	assert.Equal(t, config.DefaultDiscoveryConfig(), cfg)
}

func TestLoadDiscoveryConfig_ParsesThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresh.yaml")
	contents := "dfg_absolute_thresh: 2\ndfg_relative_thresh: 0.25\nbalance_thresh: 0.1\nfitness_thresh: 0.9\nwith_init_exit: true\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := config.LoadDiscoveryConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.DFGAbsoluteThresh)
	assert.InDelta(t, 0.25, cfg.DFGRelativeThresh, 0.0001)
	assert.InDelta(t, 0.1, cfg.BalanceThresh, 0.0001)
	assert.InDelta(t, 0.9, cfg.FitnessThresh, 0.0001)
	assert.True(t, cfg.WithInitExit)
}

func TestLoadDiscoveryConfigFromEnv_UsesConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dfg_absolute_thresh: 7\n"), 0o600))

	t.Setenv(config.DiscoveryConfigPathEnvVar, path)

	cfg, err := config.LoadDiscoveryConfigFromEnv()

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DFGAbsoluteThresh)
}

func TestLoadDiscoveryConfigFromEnv_FieldOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresh.yaml")
	contents := "dfg_absolute_thresh: 2\nbalance_thresh: 0.5\nwith_init_exit: false\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	t.Setenv(config.DiscoveryConfigPathEnvVar, path)
	t.Setenv(config.DFGAbsoluteThreshEnvVar, "9")
	t.Setenv(config.BalanceThreshEnvVar, "0.125")
	t.Setenv(config.WithInitExitEnvVar, "true")

	cfg, err := config.LoadDiscoveryConfigFromEnv()

	require.NoError(t, err)
	assert.Equal(t, 9, cfg.DFGAbsoluteThresh)
	assert.InDelta(t, 0.125, cfg.BalanceThresh, 0.0001)
	assert.True(t, cfg.WithInitExit)

	// Fields without an override keep the file value.
	assert.InDelta(t, 0, cfg.DFGRelativeThresh, 0.0001)
}
