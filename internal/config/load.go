package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/dockfix/dockfix/internal/errors"
)

// newViperInstance creates a Viper instance carrying the dockfix defaults
// and DOCKFIX_* environment variable binding.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DOCKFIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from all available sources. Precedence, highest
// first: DOCKFIX_* environment variables, the project file
// (.dockfix/config.yaml), the global file (~/.dockfix/config.yaml), and the
// built-in defaults. Missing config files are normal and skipped; only
// unreadable or invalid ones are errors.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	// Later paths merge over earlier ones, so the project file wins.
	for _, path := range configFilePaths() {
		if err := mergeConfigFile(v, path); err != nil {
			return nil, err
		}
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("build.command", cfg.Build.Command).
		Dur("build.timeout", cfg.Build.Timeout).
		Str("repair.tier", cfg.Repair.Tier).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from explicit file paths, bypassing
// discovery. The project path merges over the global path; either may be
// empty or missing. Used by tests and scripted invocations.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	for _, path := range []string{globalConfigPath, projectConfigPath} {
		if err := mergeConfigFile(v, path); err != nil {
			return nil, err
		}
	}

	return unmarshalAndValidate(v)
}

// configFilePaths returns the discovered config file locations in ascending
// precedence. The global path is omitted when the home directory is unknown.
func configFilePaths() []string {
	paths := make([]string, 0, 2)
	if global, err := GlobalConfigPath(); err == nil {
		paths = append(paths, global)
	}
	return append(paths, ProjectConfigPath())
}

// mergeConfigFile merges the file at path into v. Empty paths and missing
// files are skipped.
func mergeConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return nil
}

// isConfigNotFoundError returns true if the error is a viper config file not
// found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals the viper state into a Config and runs
// validation on it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// viperDecoderOption configures mapstructure to decode duration strings
// like "15m" into time.Duration fields.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
