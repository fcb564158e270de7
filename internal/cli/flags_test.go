package cli

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockfix/dockfix/internal/constants"
	"github.com/dockfix/dockfix/internal/errors"
)

// TestIsValidOutputFormat verifies format validation.
func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
}

// TestExitCodeForError verifies the exit code mapping.
func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: ExitSuccess},
		{name: "invalid output format", err: errors.ErrInvalidOutputFormat, want: ExitInvalidInput},
		{name: "invalid tier", err: errors.Wrap(errors.ErrInvalidTier, "tier gigantic"), want: ExitInvalidInput},
		{name: "unknown flag", err: stderrors.New("unknown flag: --bogus"), want: ExitInvalidInput},
		{name: "mutually exclusive flags", err: stderrors.New("if any flags in the group [verbose quiet] are set none of the others can be"), want: ExitInvalidInput},
		{name: "unknown command", err: stderrors.New(`unknown command "fix" for "dockfix"`), want: ExitInvalidInput},
		{name: "unmatched failure", err: errors.ErrUnmatchedFailure, want: ExitError},
		{name: "budget exhausted", err: errors.ErrBudgetExhausted, want: ExitError},
		{name: "generic error", err: stderrors.New("boom"), want: ExitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}

// TestGlobalFlags_Validate verifies output format validation on the flags.
func TestGlobalFlags_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&GlobalFlags{Output: OutputText}).Validate())
	require.NoError(t, (&GlobalFlags{Output: OutputJSON}).Validate())

	err := (&GlobalFlags{Output: "yaml"}).Validate()
	require.ErrorIs(t, err, errors.ErrInvalidOutputFormat)
}

// TestAddGlobalFlags verifies the flag set and defaults.
func TestAddGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "test"}
	flags := &GlobalFlags{}
	AddGlobalFlags(cmd, flags)

	require.NoError(t, cmd.PersistentFlags().Parse([]string{}))
	assert.Equal(t, OutputText, flags.Output)
	assert.False(t, flags.Verbose)
	assert.False(t, flags.Quiet)

	require.NotNil(t, cmd.PersistentFlags().ShorthandLookup("o"))
	require.NotNil(t, cmd.PersistentFlags().ShorthandLookup("v"))
	require.NotNil(t, cmd.PersistentFlags().ShorthandLookup("q"))
}

// TestBindGlobalFlags verifies flag values reach viper.
func TestBindGlobalFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	flags := &GlobalFlags{}
	AddGlobalFlags(cmd, flags)
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--output", "json"}))

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))
	assert.Equal(t, "json", v.GetString("output"))
}

// TestFormatVersion verifies the version string and its fallbacks.
func TestFormatVersion(t *testing.T) {
	t.Parallel()

	full := formatVersion(BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-08-29"})
	assert.Equal(t, "1.2.3 (commit: abc1234, built: 2026-08-29)", full)

	empty := formatVersion(BuildInfo{})
	assert.Equal(t, "dev (commit: none, built: unknown)", empty)
}

// TestLogFilePath_HonorsDockfixHome verifies the DOCKFIX_HOME override.
func TestLogFilePath_HonorsDockfixHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DOCKFIX_HOME", home)

	path, err := LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.LogDirName, constants.LogFileName), path)
}

// TestSelectLevel verifies verbosity flags map to log levels.
func TestSelectLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "debug", selectLevel(true, false).String())
	assert.Equal(t, "warn", selectLevel(false, true).String())
	assert.Equal(t, "info", selectLevel(false, false).String())
}
