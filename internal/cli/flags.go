// Package cli provides the command-line interface for dockfix.
package cli

import (
	stderrors "errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dockfix/dockfix/internal/errors"
)

// Exit codes for the CLI. Runs that end in partial success or failure exit
// with ExitError so CI pipelines see the build is still broken; bad flags
// and arguments exit with ExitInvalidInput.
const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitInvalidInput = 2
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = "text"
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = "json"
)

// globalFlagNames are the persistent flags shared by every subcommand, in
// the order they are registered and bound.
var globalFlagNames = []string{"output", "verbose", "quiet"} //nolint:gochecknoglobals // Read-only flag registry

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output selects text or json output.
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
}

// Validate checks the flag values that cobra cannot check itself.
func (f *GlobalFlags) Validate() error {
	if !IsValidOutputFormat(f.Output) {
		return errors.Wrapf(errors.ErrInvalidOutputFormat,
			"%q must be one of %v", f.Output, ValidOutputFormats())
	}
	return nil
}

// AddGlobalFlags registers the persistent flags on cmd. Verbose and quiet
// are mutually exclusive.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds the persistent flags to Viper so DOCKFIX_*
// environment variables (DOCKFIX_OUTPUT, DOCKFIX_VERBOSE, DOCKFIX_QUIET)
// can set them. Flags are looked up on the root command so binding works
// from a subcommand's PersistentPreRunE.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	rootFlags := cmd.Root().PersistentFlags()
	for _, name := range globalFlagNames {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix("DOCKFIX")
	v.AutomaticEnv()
	return nil
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	return format == OutputText || format == OutputJSON
}

// ExitCodeForError maps an error to the process exit code: nil is
// ExitSuccess, invalid user input is ExitInvalidInput, and everything else,
// including a repair run that ended partial or failed, is ExitError.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case isInvalidInput(err):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

// isInvalidInput reports whether the error came from bad user input: one of
// dockfix's own input sentinels, or a cobra flag/argument parsing error,
// which cobra only exposes through its message text.
func isInvalidInput(err error) bool {
	if stderrors.Is(err, errors.ErrInvalidOutputFormat) || stderrors.Is(err, errors.ErrInvalidTier) {
		return true
	}

	msg := err.Error()
	for _, fragment := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
