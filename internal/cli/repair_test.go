package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockfix/dockfix/internal/constants"
	"github.com/dockfix/dockfix/internal/domain"
	"github.com/dockfix/dockfix/internal/errors"
)

// TestOutcomeError_Success verifies terminal success maps to no error.
func TestOutcomeError_Success(t *testing.T) {
	t.Parallel()

	result := &domain.RunResult{Outcome: constants.RunStateSuccess}
	require.NoError(t, outcomeError(result))
}

// TestOutcomeError_PartialSuccess verifies budget exhaustion surfaces the
// budget sentinel with the iteration count.
func TestOutcomeError_PartialSuccess(t *testing.T) {
	t.Parallel()

	result := &domain.RunResult{
		Outcome:         constants.RunStatePartialSuccess,
		TotalIterations: 3,
	}

	err := outcomeError(result)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBudgetExhausted)
	assert.Contains(t, err.Error(), "3 iterations")
}

// TestOutcomeError_UnmatchedFailure verifies an unmatched failure wraps both
// the build-failed umbrella and the unmatched sentinel.
func TestOutcomeError_UnmatchedFailure(t *testing.T) {
	t.Parallel()

	result := &domain.RunResult{
		Outcome: constants.RunStateFailed,
		Iterations: []domain.Iteration{
			{Index: 0, Status: constants.IterationUnmatched},
		},
	}

	err := outcomeError(result)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBuildFailed)
	assert.ErrorIs(t, err, errors.ErrUnmatchedFailure)
}

// TestOutcomeError_FixFailed verifies a failed fix application wraps the
// build-failed umbrella, the fix sentinel, and names the pattern.
func TestOutcomeError_FixFailed(t *testing.T) {
	t.Parallel()

	result := &domain.RunResult{
		Outcome: constants.RunStateFailed,
		Iterations: []domain.Iteration{
			{Index: 0, Status: constants.IterationFixedRetry, PatternID: "apt-get-update"},
			{Index: 1, Status: constants.IterationFixFailed, PatternID: "missing-env-var"},
		},
	}

	err := outcomeError(result)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBuildFailed)
	assert.ErrorIs(t, err, errors.ErrFixApplication)
	assert.Contains(t, err.Error(), "missing-env-var")
}

// TestOutcomeError_ExitCode verifies failed outcomes keep the general failure
// exit code rather than the invalid-input one.
func TestOutcomeError_ExitCode(t *testing.T) {
	t.Parallel()

	result := &domain.RunResult{Outcome: constants.RunStateFailed}
	assert.Equal(t, ExitError, ExitCodeForError(outcomeError(result)))
}
