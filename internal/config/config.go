// Package config provides layered configuration for dockfix.
//
// Configuration is loaded from built-in defaults, a global file
// (~/.dockfix/config.yaml), a project file (.dockfix/config.yaml), and
// DOCKFIX_* environment variables, in ascending precedence.
//
// Import rules:
//   - CAN import: internal/constants, internal/errors, std lib
//   - MUST NOT import: internal/engine, internal/cli, internal/pattern
package config

import (
	"time"

	"github.com/dockfix/dockfix/internal/constants"
)

// Config holds all dockfix configuration.
type Config struct {
	Build    BuildConfig    `yaml:"build" mapstructure:"build"`
	Repair   RepairConfig   `yaml:"repair" mapstructure:"repair"`
	Patterns PatternsConfig `yaml:"patterns" mapstructure:"patterns"`
}

// BuildConfig controls how build attempts are executed.
type BuildConfig struct {
	// Command is the shell command used to run a build attempt.
	Command string `yaml:"command" mapstructure:"command"`

	// Timeout bounds a single build attempt. Timed-out builds are treated
	// as classifiable failures, not infrastructure faults.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// OutputTailBytes limits how much build output is retained for
	// classification and reporting. Oldest output is discarded first.
	OutputTailBytes int `yaml:"output_tail_bytes" mapstructure:"output_tail_bytes"`
}

// RepairConfig controls the repair loop.
type RepairConfig struct {
	// Tier selects the iteration budget: simple, medium, or complex.
	Tier string `yaml:"tier" mapstructure:"tier"`

	// Concurrency bounds how many independent artifacts are repaired in
	// parallel. Iterations within a single run are always sequential.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	// ReportDir is where build-result.json is written.
	ReportDir string `yaml:"report_dir" mapstructure:"report_dir"`

	// Budgets overrides the per-tier iteration budgets. A zero entry keeps
	// the built-in budget for that tier.
	Budgets BudgetsConfig `yaml:"budgets" mapstructure:"budgets"`
}

// BudgetsConfig holds per-tier iteration budget overrides.
type BudgetsConfig struct {
	Simple  int `yaml:"simple" mapstructure:"simple"`
	Medium  int `yaml:"medium" mapstructure:"medium"`
	Complex int `yaml:"complex" mapstructure:"complex"`
}

// Budgets converts the configured overrides into the lookup the engine uses.
func (b BudgetsConfig) Budgets() constants.Budgets {
	return constants.Budgets{
		constants.TierSimple:  b.Simple,
		constants.TierMedium:  b.Medium,
		constants.TierComplex: b.Complex,
	}
}

// PatternsConfig controls the error pattern table.
type PatternsConfig struct {
	// DisabledCategories removes built-in patterns by category.
	DisabledCategories []string `yaml:"disabled_categories" mapstructure:"disabled_categories"`

	// ExtraFile is an optional YAML file of user patterns appended after
	// the built-in table, preserving built-in priority.
	ExtraFile string `yaml:"extra_file" mapstructure:"extra_file"`
}
