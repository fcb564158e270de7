// Package runner provides build command execution for the repair loop.
//
// SECURITY NOTE: The build command executed by this package comes from
// project configuration (.dockfix/config.yaml) or the user's global config
// (~/.dockfix/config.yaml). These are treated as trusted input, the same
// trust model as Makefiles or CI configuration: anyone who can modify them
// already has the access the command would grant. The sh -c invocation is
// intentional so build commands can use shell features like pipes and
// environment expansion.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// CommandRunner defines the interface for executing the builder command.
// This allows tests to inject stub builders.
type CommandRunner interface {
	// Run executes a shell command in workDir and returns its combined
	// stdout+stderr output and exit status. A non-nil error is returned
	// only when the command could not be started at all; a command that
	// ran and exited non-zero yields a nil error with a non-zero exit code.
	Run(ctx context.Context, workDir, command string) (combined string, exitCode int, err error)
}

// DefaultCommandRunner implements CommandRunner using os/exec.
type DefaultCommandRunner struct{}

// Run executes a shell command using sh -c with combined output capture.
// The command process is killed when ctx is canceled, so cancellation
// propagates to the external build rather than merely abandoning it.
func (r *DefaultCommandRunner) Run(ctx context.Context, workDir, command string) (string, int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command) //#nosec G204 -- command comes from trusted configuration
	cmd.Dir = workDir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	combined := buf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return combined, exitErr.ExitCode(), nil
		}
		// The command never ran: missing shell, bad work dir, or similar.
		return combined, -1, err
	}

	return combined, 0, nil
}

// Ensure DefaultCommandRunner implements CommandRunner.
var _ CommandRunner = (*DefaultCommandRunner)(nil)
