package config

import (
	"errors"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DiscoveryConfig holds the thresholds the Alpha+++ and OC-DFG discovery
// pipelines read, loadable from a YAML file alongside (or instead of) the
// programmatic Options structs each package also exposes.
//
// Example configuration (.pmcore.yaml):
//
//	dfg_absolute_thresh: 1
//	dfg_relative_thresh: 0.05
//	skip_repair_absolute_thresh: 5
//	loop_repair_absolute_thresh: 5
//	balance_thresh: 0.3
//	fitness_thresh: 0.9
//	with_init_exit: false
type DiscoveryConfig struct {
	DFGAbsoluteThresh int     `yaml:"dfg_absolute_thresh"`
	DFGRelativeThresh float64 `yaml:"dfg_relative_thresh"`

	SkipRepairAbsoluteThresh int `yaml:"skip_repair_absolute_thresh"`
	LoopRepairAbsoluteThresh int `yaml:"loop_repair_absolute_thresh"`

	BalanceThresh float64 `yaml:"balance_thresh"`
	FitnessThresh float64 `yaml:"fitness_thresh"`

	WithInitExit bool `yaml:"with_init_exit"`
}

// DefaultDiscoveryConfigPath is the default location for the discovery
// threshold file, a hidden dotfile in the working directory.
const DefaultDiscoveryConfigPath = ".pmcore.yaml"

// DiscoveryConfigPathEnvVar names the environment variable carrying a
// custom config path.
const DiscoveryConfigPathEnvVar = "PMCORE_CONFIG_PATH"

// Environment variables overriding individual discovery thresholds on top
// of whatever the config file (or its absence) produced.
const (
	DFGAbsoluteThreshEnvVar        = "PMCORE_DFG_ABSOLUTE_THRESH"
	DFGRelativeThreshEnvVar        = "PMCORE_DFG_RELATIVE_THRESH"
	SkipRepairAbsoluteThreshEnvVar = "PMCORE_SKIP_REPAIR_ABSOLUTE_THRESH"
	LoopRepairAbsoluteThreshEnvVar = "PMCORE_LOOP_REPAIR_ABSOLUTE_THRESH"
	BalanceThreshEnvVar            = "PMCORE_BALANCE_THRESH"
	FitnessThreshEnvVar            = "PMCORE_FITNESS_THRESH"
	WithInitExitEnvVar             = "PMCORE_WITH_INIT_EXIT"
)

// DefaultDiscoveryConfig returns the permissive thresholds alphappp.DefaultOptions
// also uses, so a missing or malformed config file degrades to the same
// behavior as passing no config at all.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		DFGAbsoluteThresh:        0,
		DFGRelativeThresh:        0,
		SkipRepairAbsoluteThresh: 0,
		LoopRepairAbsoluteThresh: 0,
		BalanceThresh:            1,
		FitnessThresh:            0,
		WithInitExit:             false,
	}
}

// LoadDiscoveryConfig loads threshold configuration from a YAML file at
// path.
//
// Behavior:
//   - Missing file: returns DefaultDiscoveryConfig(), not an error.
//   - Empty file: returns DefaultDiscoveryConfig().
//   - Malformed YAML: logs a warning and returns DefaultDiscoveryConfig()
//     rather than failing the caller's startup path.
//   - Present and well-formed: returns the parsed config, merged over
//     DefaultDiscoveryConfig() (unset fields keep their default).
func LoadDiscoveryConfig(path string) (DiscoveryConfig, error) {
	cfg := DefaultDiscoveryConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is from a trusted local config source
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("discovery config not found, using defaults", "path", path)

			return cfg, nil
		}

		slog.Warn("failed to read discovery config, using defaults", "path", path, "error", err)

		return cfg, nil
	}

	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		slog.Warn("failed to parse discovery config, using defaults", "path", path, "error", err)

		return DefaultDiscoveryConfig(), nil
	}

	return cfg, nil
}

// LoadDiscoveryConfigFromEnv loads the discovery config from the path in
// PMCORE_CONFIG_PATH (falling back to DefaultDiscoveryConfigPath in the
// current directory when unset), then applies per-field environment
// overrides: each PMCORE_*_THRESH / PMCORE_WITH_INIT_EXIT variable, when
// set and parseable, wins over the file value.
func LoadDiscoveryConfigFromEnv() (DiscoveryConfig, error) {
	path := GetEnvStr(DiscoveryConfigPathEnvVar, DefaultDiscoveryConfigPath)

	cfg, err := LoadDiscoveryConfig(path)
	if err != nil {
		return cfg, err
	}

	cfg.DFGAbsoluteThresh = GetEnvInt(DFGAbsoluteThreshEnvVar, cfg.DFGAbsoluteThresh)
	cfg.DFGRelativeThresh = GetEnvFloat(DFGRelativeThreshEnvVar, cfg.DFGRelativeThresh)
	cfg.SkipRepairAbsoluteThresh = GetEnvInt(SkipRepairAbsoluteThreshEnvVar, cfg.SkipRepairAbsoluteThresh)
	cfg.LoopRepairAbsoluteThresh = GetEnvInt(LoopRepairAbsoluteThreshEnvVar, cfg.LoopRepairAbsoluteThresh)
	cfg.BalanceThresh = GetEnvFloat(BalanceThreshEnvVar, cfg.BalanceThresh)
	cfg.FitnessThresh = GetEnvFloat(FitnessThreshEnvVar, cfg.FitnessThresh)
	cfg.WithInitExit = GetEnvBool(WithInitExitEnvVar, cfg.WithInitExit)

	return cfg, nil
}
