package config

import (
	"github.com/dockfix/dockfix/internal/constants"
	"github.com/dockfix/dockfix/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - Build command must not be empty
//   - Build timeout must be positive
//   - Build output tail must be positive
//   - Repair tier must be a known tier
//   - Repair concurrency must be at least 1
//   - Repair budget overrides must not be negative
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateBuildConfig(&cfg.Build); err != nil {
		return err
	}

	if err := validateRepairConfig(&cfg.Repair); err != nil {
		return err
	}

	return validatePatternsConfig(&cfg.Patterns)
}

// validateBuildConfig checks build-specific configuration values.
func validateBuildConfig(cfg *BuildConfig) error {
	if cfg.Command == "" {
		return errors.Wrap(errors.ErrConfigInvalidBuild,
			"build.command must not be empty")
	}

	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBuild,
			"build.timeout must be positive, got %s", cfg.Timeout)
	}

	if cfg.OutputTailBytes <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBuild,
			"build.output_tail_bytes must be positive, got %d", cfg.OutputTailBytes)
	}

	return nil
}

// validateRepairConfig checks repair-specific configuration values.
func validateRepairConfig(cfg *RepairConfig) error {
	if _, ok := constants.ParseTier(cfg.Tier); !ok {
		return errors.Wrapf(errors.ErrConfigInvalidRepair,
			"repair.tier must be one of %v, got %q", constants.Tiers(), cfg.Tier)
	}

	if cfg.Concurrency < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidRepair,
			"repair.concurrency must be at least 1, got %d", cfg.Concurrency)
	}

	if cfg.ReportDir == "" {
		return errors.Wrap(errors.ErrConfigInvalidRepair,
			"repair.report_dir must not be empty")
	}

	for tier, budget := range cfg.Budgets.Budgets() {
		if budget < 0 {
			return errors.Wrapf(errors.ErrConfigInvalidRepair,
				"repair.budgets.%s must not be negative, got %d", tier, budget)
		}
	}

	return nil
}

// validatePatternsConfig checks pattern-specific configuration values.
// Category names are checked against the pattern table at startup, not here,
// so config stays decoupled from the table.
func validatePatternsConfig(cfg *PatternsConfig) error {
	for _, cat := range cfg.DisabledCategories {
		if cat == "" {
			return errors.Wrap(errors.ErrConfigInvalidPatterns,
				"patterns.disabled_categories must not contain empty entries")
		}
	}
	return nil
}
