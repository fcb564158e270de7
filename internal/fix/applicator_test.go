package fix

import (
	stderrors "errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockfix/dockfix/internal/artifact"
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
	"github.com/dockfix/dockfix/internal/pattern"
)

// testPattern builds a pattern around an arbitrary fix func.
func testPattern(id string, fn pattern.FixFunc) *pattern.ErrorPattern {
	return pattern.NewPattern(id, pattern.CategoryNetwork, pattern.ConfidenceLow, regexp.MustCompile("x"), fn)
}

// TestApply_BumpsVersion verifies a mutating fix yields a newer version.
func TestApply_BumpsVersion(t *testing.T) {
	t.Parallel()

	applicator := NewApplicator()
	art := artifact.New("FROM alpine\nRUN true\n")

	p := testPattern("insert", func(_ pattern.Captures, a *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
		return a.InsertAfterStage("RUN echo fixed")
	})

	next, err := applicator.Apply(p, nil, art)
	require.NoError(t, err)

	assert.Greater(t, next.Version(), art.Version())
	assert.True(t, next.ContainsLine("RUN echo fixed"))
}

// TestApply_NoOpFixStillBumpsVersion verifies every iteration gets a distinct
// artifact version even when the fix detected prior application.
func TestApply_NoOpFixStillBumpsVersion(t *testing.T) {
	t.Parallel()

	applicator := NewApplicator()
	art := artifact.New("FROM alpine\nRUN true\n")

	p := testPattern("noop", func(_ pattern.Captures, a *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
		return a, nil
	})

	next, err := applicator.Apply(p, nil, art)
	require.NoError(t, err)

	assert.Equal(t, art.Version()+1, next.Version())
	assert.Equal(t, art.Normalized(), next.Normalized())
}

// TestApply_CountsEveryCall verifies Calls tracks one apply per invocation.
func TestApply_CountsEveryCall(t *testing.T) {
	t.Parallel()

	applicator := NewApplicator()
	art := artifact.New("FROM alpine\n")

	p := testPattern("noop", func(_ pattern.Captures, a *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
		return a, nil
	})

	for range 3 {
		var err error
		art, err = applicator.Apply(p, nil, art)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), applicator.Calls())
}

// TestApply_FixErrorIsTerminal verifies structural failures keep the sentinel.
func TestApply_FixErrorIsTerminal(t *testing.T) {
	t.Parallel()

	applicator := NewApplicator()
	art := artifact.New("RUN true\n")

	p := testPattern("anchored", func(_ pattern.Captures, a *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
		return a.InsertAfterStage("RUN echo fixed")
	})

	_, err := applicator.Apply(p, nil, art)

	require.Error(t, err)
	require.ErrorIs(t, err, dockfixerrors.ErrAnchorNotFound)
	assert.Equal(t, "RUN true\n", art.Dockerfile())
}

// TestApply_WrapsForeignErrors verifies unexpected fix errors are normalized
// onto ErrFixApplication.
func TestApply_WrapsForeignErrors(t *testing.T) {
	t.Parallel()

	applicator := NewApplicator()
	art := artifact.New("FROM alpine\n")

	p := testPattern("broken", func(_ pattern.Captures, _ *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
		return nil, stderrors.New("disk exploded")
	})

	_, err := applicator.Apply(p, nil, art)

	require.Error(t, err)
	require.ErrorIs(t, err, dockfixerrors.ErrFixApplication)
	assert.Contains(t, err.Error(), "disk exploded")
}

// TestApply_NilInputs verifies nil pattern and artifact are application errors.
func TestApply_NilInputs(t *testing.T) {
	t.Parallel()

	applicator := NewApplicator()

	_, err := applicator.Apply(nil, nil, artifact.New("FROM alpine\n"))
	require.ErrorIs(t, err, dockfixerrors.ErrFixApplication)

	p := testPattern("ok", func(_ pattern.Captures, a *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
		return a, nil
	})
	_, err = applicator.Apply(p, nil, nil)
	require.ErrorIs(t, err, dockfixerrors.ErrFixApplication)
}
