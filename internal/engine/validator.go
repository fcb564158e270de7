package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/dockfix/dockfix/internal/artifact"
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
	"github.com/dockfix/dockfix/internal/runner"
)

// Validator probes an artifact whose build succeeded. Output is empty when
// the artifact passes. Non-empty output describes a validation failure and
// is classified like build output, so patterns can repair artifacts that
// build but still misbehave. A non-nil error is an infrastructure fault and
// aborts the run.
type Validator interface {
	Validate(ctx context.Context, art *artifact.BuildArtifact) (output string, err error)
}

// CommandValidator validates by running a probe command against the
// materialized artifact. A zero exit means the artifact passes.
type CommandValidator struct {
	command string
	runner  runner.CommandRunner
}

// NewCommandValidator creates a validator that runs command in a directory
// holding the materialized artifact.
func NewCommandValidator(command string) *CommandValidator {
	return &CommandValidator{
		command: command,
		runner:  &runner.DefaultCommandRunner{},
	}
}

// Validate materializes the artifact into a temp directory and runs the
// probe command there.
func (v *CommandValidator) Validate(ctx context.Context, art *artifact.BuildArtifact) (string, error) {
	dir, err := os.MkdirTemp("", "dockfix-validate-*")
	if err != nil {
		return "", dockfixerrors.Wrap(err, "failed to create validation directory")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if err := art.Materialize(dir); err != nil {
		return "", err
	}

	output, exitCode, err := v.runner.Run(ctx, dir, v.command)
	if err != nil {
		return "", dockfixerrors.Wrap(dockfixerrors.ErrBuilderUnavailable, err.Error())
	}
	if exitCode == 0 {
		return "", nil
	}
	if output == "" {
		// A silent probe failure still needs classifiable text.
		output = fmt.Sprintf("dockfix: validation command failed with exit code %d", exitCode)
	}
	return output, nil
}

// Ensure CommandValidator implements Validator.
var _ Validator = (*CommandValidator)(nil)
