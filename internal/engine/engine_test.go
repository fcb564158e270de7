package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockfix/dockfix/internal/artifact"
	"github.com/dockfix/dockfix/internal/constants"
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
	"github.com/dockfix/dockfix/internal/fix"
	"github.com/dockfix/dockfix/internal/pattern"
	"github.com/dockfix/dockfix/internal/runner"
)

const nodeDockerfile = `FROM node:20-alpine
WORKDIR /app
COPY . .
RUN npm ci
CMD ["node", "index.js"]
`

// scriptedRunner returns one scripted build result per call, repeating the
// last entry when attempts exceed the script.
type scriptedRunner struct {
	script []runner.BuildResult
	errs   []error
	calls  int

	artifactVersions []int
}

func (s *scriptedRunner) Run(_ context.Context, art *artifact.BuildArtifact) (*runner.BuildResult, error) {
	idx := s.calls
	s.calls++
	s.artifactVersions = append(s.artifactVersions, art.Version())

	if idx < len(s.errs) && s.errs[idx] != nil {
		return nil, s.errs[idx]
	}
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	result := s.script[idx]
	return &result, nil
}

// failure builds a scripted failing result with the given output.
func failure(output string) runner.BuildResult {
	return runner.BuildResult{Success: false, ExitCode: 1, Output: output, Duration: 10 * time.Millisecond}
}

// success builds a scripted passing result.
func success() runner.BuildResult {
	return runner.BuildResult{Success: true, ExitCode: 0, Duration: 10 * time.Millisecond}
}

// newTestEngine wires an engine with the default table and an instrumented
// applicator.
func newTestEngine(t *testing.T, build BuildRunner) (*Engine, *fix.Applicator) {
	t.Helper()
	applicator := fix.NewApplicator()
	eng, err := New(build, pattern.Default(), WithApplicator(applicator))
	require.NoError(t, err)
	return eng, applicator
}

// TestNew_RequiresRunnerAndTable verifies constructor validation.
func TestNew_RequiresRunnerAndTable(t *testing.T) {
	t.Parallel()

	_, err := New(nil, pattern.Default())
	require.ErrorIs(t, err, dockfixerrors.ErrEmptyValue)

	_, err = New(&scriptedRunner{}, nil)
	require.ErrorIs(t, err, dockfixerrors.ErrEmptyTable)
}

// TestRun_FixThenSuccess verifies the classic two-iteration repair: a known
// failure is fixed, then the retry succeeds.
func TestRun_FixThenSuccess(t *testing.T) {
	t.Parallel()

	build := &scriptedRunner{script: []runner.BuildResult{
		failure("npm ERR! The `npm ci` command can only install with an existing package-lock.json"),
		success(),
	}}
	eng, applicator := newTestEngine(t, build)

	result, err := eng.Run(context.Background(), artifact.New(nodeDockerfile), constants.TierMedium)
	require.NoError(t, err)

	assert.Equal(t, constants.RunStateSuccess, result.Outcome)
	require.Len(t, result.Iterations, 2)

	first := result.Iterations[0]
	assert.Equal(t, constants.IterationFixedRetry, first.Status)
	assert.Equal(t, "npm-ci-lockfile", first.PatternID)
	assert.Equal(t, "installer", first.Category)
	assert.NotEmpty(t, first.ErrorExcerpt)
	assert.Equal(t, 1, first.ArtifactVersion)

	second := result.Iterations[1]
	assert.Equal(t, constants.IterationSuccess, second.Status)
	assert.Empty(t, second.PatternID)

	// The second attempt built the repaired artifact version.
	assert.Equal(t, []int{0, 1}, build.artifactVersions)
	assert.Equal(t, int64(1), applicator.Calls())
	assert.True(t, result.FinalArtifact.ContainsLine("RUN npm install"))
	assert.NotEmpty(t, result.RunID)
}

// TestRun_ImmediateSuccess verifies a passing build ends after one iteration
// with no fix applied.
func TestRun_ImmediateSuccess(t *testing.T) {
	t.Parallel()

	build := &scriptedRunner{script: []runner.BuildResult{success()}}
	eng, applicator := newTestEngine(t, build)

	original := artifact.New(nodeDockerfile)
	result, err := eng.Run(context.Background(), original, constants.TierSimple)
	require.NoError(t, err)

	assert.Equal(t, constants.RunStateSuccess, result.Outcome)
	assert.Len(t, result.Iterations, 1)
	assert.Equal(t, int64(0), applicator.Calls())
	assert.Equal(t, 0, result.FinalArtifact.Version())
}

// TestRun_UnmatchedFailureEndsImmediately verifies an unrecognized error is
// terminal on the first iteration regardless of remaining budget.
func TestRun_UnmatchedFailureEndsImmediately(t *testing.T) {
	t.Parallel()

	build := &scriptedRunner{script: []runner.BuildResult{
		failure("some completely novel explosion nobody has seen before"),
	}}
	eng, applicator := newTestEngine(t, build)

	result, err := eng.Run(context.Background(), artifact.New(nodeDockerfile), constants.TierComplex)

	require.Error(t, err)
	require.ErrorIs(t, err, dockfixerrors.ErrUnmatchedFailure)
	require.NotNil(t, result)

	assert.Equal(t, constants.RunStateFailed, result.Outcome)
	require.Len(t, result.Iterations, 1)
	assert.Equal(t, constants.IterationUnmatched, result.Iterations[0].Status)
	assert.Empty(t, result.Iterations[0].PatternID)
	assert.NotEmpty(t, result.Iterations[0].ErrorExcerpt)
	assert.Equal(t, int64(0), applicator.Calls())
}

// TestRun_BudgetExhaustionIsPartialSuccess verifies a persistently failing
// but always-classifiable build consumes exactly the tier budget, applies a
// fix every iteration including the last, and settles as partial success.
func TestRun_BudgetExhaustionIsPartialSuccess(t *testing.T) {
	t.Parallel()

	build := &scriptedRunner{script: []runner.BuildResult{
		failure("curl: (6) Could not resolve host: registry.npmjs.org"),
	}}
	eng, applicator := newTestEngine(t, build)

	result, err := eng.Run(context.Background(), artifact.New(nodeDockerfile), constants.TierMedium)

	require.Error(t, err)
	require.ErrorIs(t, err, dockfixerrors.ErrBudgetExhausted)
	require.NotNil(t, result)

	budget := constants.TierMedium.MaxIterations()
	assert.Equal(t, constants.RunStatePartialSuccess, result.Outcome)
	assert.Len(t, result.Iterations, budget)
	assert.Equal(t, budget, result.TotalIterations)
	assert.Equal(t, budget, result.MaxIterations)
	assert.Equal(t, int64(budget), applicator.Calls())

	for _, iter := range result.Iterations {
		assert.Equal(t, constants.IterationFixedRetry, iter.Status)
		assert.Equal(t, "network-flake", iter.PatternID)
	}

	// The best-known artifact is retained, one version per iteration.
	assert.Equal(t, budget, result.FinalArtifact.Version())
}

// TestRun_ConfiguredBudgetOverridesBuiltIn verifies a budget override from
// configuration replaces the built-in tier budget for the run.
func TestRun_ConfiguredBudgetOverridesBuiltIn(t *testing.T) {
	t.Parallel()

	build := &scriptedRunner{script: []runner.BuildResult{
		failure("curl: (6) Could not resolve host: registry.npmjs.org"),
	}}
	eng, err := New(build, pattern.Default(),
		WithApplicator(fix.NewApplicator()),
		WithBudgets(constants.Budgets{constants.TierMedium: 2}),
	)
	require.NoError(t, err)

	result, runErr := eng.Run(context.Background(), artifact.New(nodeDockerfile), constants.TierMedium)

	require.ErrorIs(t, runErr, dockfixerrors.ErrBudgetExhausted)
	require.NotNil(t, result)
	assert.Equal(t, constants.RunStatePartialSuccess, result.Outcome)
	assert.Equal(t, 2, result.MaxIterations)
	assert.Len(t, result.Iterations, 2)
	assert.NotEqual(t, constants.TierMedium.MaxIterations(), result.TotalIterations)
}

// TestRun_SimpleTierAllowsOneIteration verifies the smallest budget.
func TestRun_SimpleTierAllowsOneIteration(t *testing.T) {
	t.Parallel()

	build := &scriptedRunner{script: []runner.BuildResult{
		failure("Could not resolve host: deb.debian.org"),
	}}
	eng, _ := newTestEngine(t, build)

	result, err := eng.Run(context.Background(), artifact.New(nodeDockerfile), constants.TierSimple)

	require.ErrorIs(t, err, dockfixerrors.ErrBudgetExhausted)
	assert.Equal(t, constants.RunStatePartialSuccess, result.Outcome)
	assert.Len(t, result.Iterations, 1)
	assert.Equal(t, constants.IterationFixedRetry, result.Iterations[0].Status)
}

// TestRun_FixFailureIsTerminal verifies an unapplicable fix fails the run.
func TestRun_FixFailureIsTerminal(t *testing.T) {
	t.Parallel()

	// npm ci error against an artifact with no npm invocation at all.
	build := &scriptedRunner{script: []runner.BuildResult{
		failure("npm ERR! The `npm ci` command can only install with an existing package-lock.json"),
	}}
	eng, _ := newTestEngine(t, build)

	result, err := eng.Run(context.Background(), artifact.New("FROM alpine\nRUN true\n"), constants.TierMedium)

	require.Error(t, err)
	require.ErrorIs(t, err, dockfixerrors.ErrFixApplication)
	require.NotNil(t, result)

	assert.Equal(t, constants.RunStateFailed, result.Outcome)
	require.Len(t, result.Iterations, 1)
	assert.Equal(t, constants.IterationFixFailed, result.Iterations[0].Status)
	assert.Equal(t, "npm-ci-lockfile", result.Iterations[0].PatternID)
}

// TestRun_TimeoutOutputClassifies verifies the synthetic timeout text flows
// through classification like any other failure.
func TestRun_TimeoutOutputClassifies(t *testing.T) {
	t.Parallel()

	timedOut := runner.BuildResult{
		Success:  false,
		ExitCode: constants.TimeoutExitCode,
		TimedOut: true,
		Output:   "step 7/9 compiling\ndockfix: build timed out after 15m0s\n",
		Duration: time.Second,
	}
	build := &scriptedRunner{script: []runner.BuildResult{timedOut, success()}}
	eng, _ := newTestEngine(t, build)

	result, err := eng.Run(context.Background(), artifact.New(nodeDockerfile), constants.TierMedium)
	require.NoError(t, err)

	assert.Equal(t, constants.RunStateSuccess, result.Outcome)
	require.Len(t, result.Iterations, 2)
	assert.Equal(t, "build-timeout", result.Iterations[0].PatternID)
	assert.Equal(t, "timeout", result.Iterations[0].Category)
}

// TestRun_InfrastructureFaultAborts verifies builder unavailability aborts
// the run with no result.
func TestRun_InfrastructureFaultAborts(t *testing.T) {
	t.Parallel()

	build := &scriptedRunner{errs: []error{dockfixerrors.ErrBuilderUnavailable}}
	eng, _ := newTestEngine(t, build)

	result, err := eng.Run(context.Background(), artifact.New(nodeDockerfile), constants.TierMedium)

	require.Error(t, err)
	require.ErrorIs(t, err, dockfixerrors.ErrBuilderUnavailable)
	assert.Nil(t, result)
}

// TestRun_CancellationBetweenIterations verifies cooperative cancellation.
func TestRun_CancellationBetweenIterations(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	build := &scriptedRunner{script: []runner.BuildResult{success()}}
	eng, _ := newTestEngine(t, build)

	result, err := eng.Run(ctx, artifact.New(nodeDockerfile), constants.TierMedium)

	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Zero(t, build.calls)
}

// TestRun_NilArtifact verifies the input guard.
func TestRun_NilArtifact(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, &scriptedRunner{script: []runner.BuildResult{success()}})

	_, err := eng.Run(context.Background(), nil, constants.TierMedium)

	require.Error(t, err)
	require.ErrorIs(t, err, dockfixerrors.ErrEmptyValue)
}

// TestRun_OneFixPerIteration verifies the applicator is invoked exactly once
// per failing classified iteration across a mixed run.
func TestRun_OneFixPerIteration(t *testing.T) {
	t.Parallel()

	build := &scriptedRunner{script: []runner.BuildResult{
		failure("Error: DATABASE_URL is not set"),
		failure("COPY failed: stat /app/config: no such file or directory"),
		success(),
	}}
	eng, applicator := newTestEngine(t, build)

	result, err := eng.Run(context.Background(), artifact.New(nodeDockerfile), constants.TierComplex)
	require.NoError(t, err)

	assert.Equal(t, constants.RunStateSuccess, result.Outcome)
	require.Len(t, result.Iterations, 3)
	assert.Equal(t, int64(2), applicator.Calls())
	assert.Equal(t, "env-var-missing", result.Iterations[0].PatternID)
	assert.Equal(t, "DATABASE_URL", result.Iterations[0].Captures["name"])
	assert.Equal(t, "missing-directory", result.Iterations[1].PatternID)
	assert.Equal(t, "/app/config", result.Iterations[1].Captures["path"])
	assert.True(t, result.FinalArtifact.ContainsLine(`ENV DATABASE_URL=""`))
	assert.True(t, result.FinalArtifact.ContainsLine("RUN mkdir -p /app/config"))
}

// TestExcerpt_KeepsTail verifies the excerpt bound keeps trailing output.
func TestExcerpt_KeepsTail(t *testing.T) {
	t.Parallel()

	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	tail := string(long) + "final error"

	got := excerpt(tail)

	assert.Len(t, got, excerptLength)
	assert.Contains(t, got, "final error")
}
