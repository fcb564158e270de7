package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dockfix/dockfix/internal/artifact"
	"github.com/dockfix/dockfix/internal/clock"
	"github.com/dockfix/dockfix/internal/constants"
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
)

// truncationMarker prefixes output that was cut down to its tail.
const truncationMarker = "... (output truncated)\n"

// BuildResult is the observable outcome of one build attempt.
type BuildResult struct {
	// Success reports whether the build exited zero within its budget.
	Success bool

	// ExitCode is the builder's exit status, or the synthetic timeout code.
	ExitCode int

	// Output is the combined stdout+stderr, truncated to the configured
	// tail size. Timeout text is appended here so timeouts classify like
	// any other failure.
	Output string

	// TimedOut reports whether the wall-clock budget was exceeded.
	TimedOut bool

	// Duration is how long the attempt took.
	Duration time.Duration
}

// Runner invokes the external builder collaborator against a materialized
// artifact, enforcing a hard wall-clock timeout.
type Runner struct {
	runner    CommandRunner
	command   string
	timeout   time.Duration
	tailBytes int
	clock     clock.Clock
	logger    zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(r CommandRunner) Option {
	return func(b *Runner) {
		b.runner = r
	}
}

// WithTimeout sets the per-attempt wall-clock budget.
func WithTimeout(d time.Duration) Option {
	return func(b *Runner) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithTailBytes bounds the combined output kept for classification.
func WithTailBytes(n int) Option {
	return func(b *Runner) {
		if n > 0 {
			b.tailBytes = n
		}
	}
}

// WithClock sets the clock used for duration measurement.
func WithClock(c clock.Clock) Option {
	return func(b *Runner) {
		b.clock = c
	}
}

// WithLogger sets the runner's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Runner) {
		b.logger = logger
	}
}

// NewRunner creates a build runner for the given builder command.
// The command runs via sh -c inside the materialized artifact directory.
func NewRunner(command string, opts ...Option) *Runner {
	r := &Runner{
		runner:    &DefaultCommandRunner{},
		command:   command,
		timeout:   constants.DefaultBuildTimeout,
		tailBytes: constants.DefaultOutputTailBytes,
		clock:     clock.RealClock{},
		logger:    zerolog.Nop(),
	}
	if r.command == "" {
		r.command = constants.DefaultBuildCommand
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run materializes the artifact into a temporary directory and invokes the
// builder there.
//
// The result is always classifiable: a build exceeding the wall-clock budget
// returns a synthetic timeout failure with explanatory text appended to the
// output rather than hanging. A non-nil error is returned only for
// infrastructure faults (the builder could not be invoked, wrapping
// ErrBuilderUnavailable) or caller cancellation.
func (r *Runner) Run(ctx context.Context, art *artifact.BuildArtifact) (*BuildResult, error) {
	if art == nil {
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrEmptyValue, "artifact is nil")
	}

	dir, err := os.MkdirTemp("", constants.AppName+"-build-*")
	if err != nil {
		return nil, dockfixerrors.Wrap(err, "failed to create build directory")
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	if err := art.Materialize(dir); err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("command", r.command).
		Int("artifact_version", art.Version()).
		Dur("timeout", r.timeout).
		Msg("invoking builder")

	start := r.clock.Now()
	cmdCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	combined, exitCode, runErr := r.runner.Run(cmdCtx, dir, r.command)
	duration := r.clock.Now().Sub(start)

	result := &BuildResult{
		ExitCode: exitCode,
		Output:   truncateTail(combined, r.tailBytes),
		Duration: duration,
	}

	// Timeout becomes observable text for the classifier, never a hang.
	// The sentinel supplies the canonical message so the synthetic line
	// and errors.Is checks stay in sync.
	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = constants.TimeoutExitCode
		result.Output += fmt.Sprintf("\ndockfix: %s after %s\n", dockfixerrors.ErrBuildTimeout, r.timeout)

		r.logger.Error().
			Err(dockfixerrors.ErrBuildTimeout).
			Dur("duration", duration).
			Msg("build timed out")

		return result, nil
	}

	// Caller cancellation aborts the run; it is not a build failure.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// The builder could not be invoked at all.
	if runErr != nil {
		r.logger.Error().
			Err(runErr).
			Str("command", r.command).
			Msg("builder unavailable")
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrBuilderUnavailable, runErr.Error())
	}

	result.Success = exitCode == 0

	if result.Success {
		r.logger.Info().
			Dur("duration", duration).
			Msg("build succeeded")
	} else {
		r.logger.Warn().
			Int("exit_code", exitCode).
			Dur("duration", duration).
			Msg("build failed")
	}

	return result, nil
}

// truncateTail keeps the last max bytes of s, prefixing a marker when
// content was dropped. Error text appears at the end of build logs, so the
// tail is what the classifier needs.
func truncateTail(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return truncationMarker + s[len(s)-max:]
}
