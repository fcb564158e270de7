package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dockfix/dockfix/internal/artifact"
	"github.com/dockfix/dockfix/internal/clock"
	"github.com/dockfix/dockfix/internal/constants"
	"github.com/dockfix/dockfix/internal/ctxutil"
	"github.com/dockfix/dockfix/internal/domain"
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
	"github.com/dockfix/dockfix/internal/fix"
	"github.com/dockfix/dockfix/internal/pattern"
	"github.com/dockfix/dockfix/internal/runner"
)

// excerptLength bounds the error excerpt recorded per iteration.
const excerptLength = 400

// BuildRunner abstracts the build runner so tests can stub build attempts.
// It is implemented by *runner.Runner.
type BuildRunner interface {
	Run(ctx context.Context, art *artifact.BuildArtifact) (*runner.BuildResult, error)
}

// Engine drives the repair loop: run the build, classify the failure, apply
// exactly one fix, and retry until success, exhaustion, or an unfixable
// error. A single Engine may serve many concurrent runs; it holds no
// per-run state and the pattern table is immutable.
type Engine struct {
	runner     BuildRunner
	table      *pattern.Table
	applicator *fix.Applicator
	validator  Validator
	budgets    constants.Budgets
	clock      clock.Clock
	logger     zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock sets the clock used for run timestamps.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithApplicator sets a custom fix applicator (for instrumentation in tests).
func WithApplicator(a *fix.Applicator) Option {
	return func(e *Engine) {
		e.applicator = a
	}
}

// WithBudgets sets per-tier iteration budget overrides from configuration.
// Zero entries keep the built-in budgets.
func WithBudgets(b constants.Budgets) Option {
	return func(e *Engine) {
		e.budgets = b
	}
}

// WithValidator sets a post-build validator. When the build succeeds but the
// validator reports failure output, that output is classified like a build
// failure instead of ending the run. The default is no validation.
func WithValidator(v Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// New creates a repair engine. The build runner and pattern table are
// required; an engine without either is a configuration error.
func New(buildRunner BuildRunner, table *pattern.Table, opts ...Option) (*Engine, error) {
	if buildRunner == nil {
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrEmptyValue, "build runner is nil")
	}
	if table == nil || table.Len() == 0 {
		return nil, dockfixerrors.ErrEmptyTable
	}
	e := &Engine{
		runner:     buildRunner,
		table:      table,
		applicator: fix.NewApplicator(),
		clock:      clock.RealClock{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes the repair loop for one artifact.
//
// The loop is strictly sequential: each build attempt completes (or times
// out) before classification, and classification completes before the fix.
// Exactly one fix is applied per failing, classified iteration, which bounds
// the loop to the tier's budget and makes every artifact change attributable
// to a single logged cause.
//
// The returned RunResult carries the full iteration log even on failure. The
// accompanying error is nil on success, ErrBudgetExhausted on partial
// success, and the terminal failure cause otherwise. Infrastructure faults
// and caller cancellation abort the run with a nil result.
func (e *Engine) Run(ctx context.Context, art *artifact.BuildArtifact, tier constants.ComplexityTier) (*domain.RunResult, error) {
	if art == nil {
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrEmptyValue, "artifact is nil")
	}

	maxIterations := e.budgets.For(tier)
	result := &domain.RunResult{
		RunID:         uuid.NewString(),
		Tier:          tier,
		MaxIterations: maxIterations,
		StartedAt:     e.clock.Now(),
	}

	logger := e.logger.With().
		Str("run_id", result.RunID).
		Str("tier", tier.String()).
		Logger()

	logger.Info().
		Int("max_iterations", maxIterations).
		Int("patterns", e.table.Len()).
		Msg("starting repair run")

	state := constants.RunStateRunning
	var terminalErr error

	for i := 0; state == constants.RunStateRunning; i++ {
		// Cancellation is cooperative and only observed between iterations.
		if err := ctxutil.Canceled(ctx); err != nil {
			return nil, err
		}

		iteration, nextArtifact, nextState, err := e.iterate(ctx, logger, i, art)
		if err != nil {
			// Infrastructure fault or mid-build cancellation.
			return nil, err
		}

		result.Iterations = append(result.Iterations, *iteration)
		art = nextArtifact

		switch {
		case nextState != constants.RunStateRunning:
			state, terminalErr = e.settle(state, nextState, iteration)
		case i+1 == maxIterations:
			// Budget reached while still failing. The last artifact is
			// retained as the best-known version, worth inspecting.
			state, terminalErr = e.settle(state, constants.RunStatePartialSuccess, iteration)
		}
	}

	result.Outcome = state
	result.FinalArtifact = art
	result.TotalIterations = len(result.Iterations)
	result.CompletedAt = e.clock.Now()

	logger.Info().
		Str("outcome", state.String()).
		Int("iterations", result.TotalIterations).
		Msg("repair run finished")

	return result, terminalErr
}

// iterate performs one loop pass: build, classify, apply. It returns the
// iteration record, the artifact for the next pass, and the state the run
// should move to (Running to continue). A non-nil error aborts the run.
func (e *Engine) iterate(ctx context.Context, logger zerolog.Logger, index int, art *artifact.BuildArtifact) (*domain.Iteration, *artifact.BuildArtifact, constants.RunState, error) {
	iteration := &domain.Iteration{
		Index:           index,
		ArtifactVersion: art.Version(),
		StartedAt:       e.clock.Now(),
	}

	build, err := e.runner.Run(ctx, art)
	if err != nil {
		return nil, nil, constants.RunStateRunning, err
	}
	iteration.Duration = build.Duration

	failureOutput := build.Output
	if build.Success {
		validationOutput, verr := e.validate(ctx, art)
		if verr != nil {
			return nil, nil, constants.RunStateRunning, verr
		}
		if validationOutput == "" {
			iteration.Status = constants.IterationSuccess
			logger.Info().Int("iteration", index).Msg("build succeeded")
			return iteration, art, constants.RunStateSuccess, nil
		}
		logger.Warn().Int("iteration", index).Msg("build succeeded but validation failed")
		failureOutput = validationOutput
	}

	iteration.ErrorExcerpt = excerpt(failureOutput)

	classification := pattern.Classify(failureOutput, e.table)
	if !classification.Matched {
		iteration.Status = constants.IterationUnmatched
		logger.Warn().
			Int("iteration", index).
			Int("exit_code", build.ExitCode).
			Msg("no pattern matched build failure")
		return iteration, art, constants.RunStateFailed, nil
	}

	iteration.PatternID = classification.Pattern.ID
	iteration.Category = string(classification.Pattern.Category)
	iteration.Confidence = string(classification.Pattern.Confidence)
	iteration.Captures = classification.Captures

	logger.Info().
		Int("iteration", index).
		Str("pattern", classification.Pattern.ID).
		Str("category", iteration.Category).
		Str("confidence", iteration.Confidence).
		Msg("classified build failure")

	next, err := e.applicator.Apply(classification.Pattern, classification.Captures, art)
	if err != nil {
		iteration.Status = constants.IterationFixFailed
		logger.Warn().
			Int("iteration", index).
			Str("pattern", classification.Pattern.ID).
			Err(err).
			Msg("fix could not be applied")
		return iteration, art, constants.RunStateFailed, nil
	}

	iteration.Status = constants.IterationFixedRetry
	iteration.ArtifactVersion = next.Version()
	return iteration, next, constants.RunStateRunning, nil
}

// validate runs the configured validator, if any, against a successfully
// built artifact.
func (e *Engine) validate(ctx context.Context, art *artifact.BuildArtifact) (string, error) {
	if e.validator == nil {
		return "", nil
	}
	return e.validator.Validate(ctx, art)
}

// settle moves the run to a terminal state and derives the error the caller
// receives alongside the result.
func (e *Engine) settle(from, to constants.RunState, iteration *domain.Iteration) (constants.RunState, error) {
	state, err := transition(from, to)
	if err != nil {
		// Transitions here come from the loop itself; a violation is a bug.
		return from, err
	}

	switch state {
	case constants.RunStateSuccess:
		return state, nil
	case constants.RunStatePartialSuccess:
		return state, dockfixerrors.ErrBudgetExhausted
	case constants.RunStateFailed:
		if iteration.Status == constants.IterationFixFailed {
			return state, dockfixerrors.Wrapf(dockfixerrors.ErrFixApplication, "pattern %s", iteration.PatternID)
		}
		return state, dockfixerrors.ErrUnmatchedFailure
	default:
		return state, nil
	}
}

// excerpt keeps the trailing portion of build output for the iteration log.
func excerpt(output string) string {
	trimmed := strings.TrimSpace(output)
	if len(trimmed) <= excerptLength {
		return trimmed
	}
	return trimmed[len(trimmed)-excerptLength:]
}
