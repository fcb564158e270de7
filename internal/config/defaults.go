package config

import (
	"github.com/spf13/viper"

	"github.com/dockfix/dockfix/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Command:         constants.DefaultBuildCommand,
			Timeout:         constants.DefaultBuildTimeout,
			OutputTailBytes: constants.DefaultOutputTailBytes,
		},
		Repair: RepairConfig{
			// Tier: medium is the fallback budget when no tier is declared.
			Tier:        constants.TierMedium.String(),
			Concurrency: constants.DefaultRepairConcurrency,
			ReportDir:   ".",
		},
		Patterns: PatternsConfig{
			DisabledCategories: []string{},
			ExtraFile:          "",
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig().
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	// Build defaults
	v.SetDefault("build.command", constants.DefaultBuildCommand)
	v.SetDefault("build.timeout", constants.DefaultBuildTimeout.String())
	v.SetDefault("build.output_tail_bytes", constants.DefaultOutputTailBytes)

	// Repair defaults
	v.SetDefault("repair.tier", constants.TierMedium.String())
	v.SetDefault("repair.concurrency", constants.DefaultRepairConcurrency)
	v.SetDefault("repair.report_dir", ".")
	// Zero budget overrides keep the built-in per-tier budgets.
	v.SetDefault("repair.budgets.simple", 0)
	v.SetDefault("repair.budgets.medium", 0)
	v.SetDefault("repair.budgets.complex", 0)

	// Patterns defaults
	v.SetDefault("patterns.disabled_categories", []string{})
	v.SetDefault("patterns.extra_file", "")
}
