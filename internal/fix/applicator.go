// Package fix provides the fix applicator for the repair loop.
//
// The applicator takes a classified error and the current artifact and
// produces a new artifact version with exactly one corrective mutation
// applied. It never mutates its input and never loops: a fix that cannot be
// structurally applied is reported as an explicit application error, which
// the controller treats as terminal.
//
// Import rules:
//   - CAN import: internal/artifact, internal/errors, internal/pattern, std lib
//   - MUST NOT import: internal/engine, internal/cli
package fix

import (
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dockfix/dockfix/internal/artifact"
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
	"github.com/dockfix/dockfix/internal/pattern"
)

// Applicator applies pattern fixes to artifacts.
type Applicator struct {
	logger zerolog.Logger
	calls  atomic.Int64
}

// Option configures an Applicator.
type Option func(*Applicator)

// WithLogger sets the applicator's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Applicator) {
		a.logger = logger
	}
}

// NewApplicator creates a fix applicator.
func NewApplicator(opts ...Option) *Applicator {
	a := &Applicator{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Calls returns how many times Apply has been invoked. The controller's
// one-fix-per-iteration invariant means this equals the number of iterations
// in which a pattern matched.
func (a *Applicator) Calls() int64 {
	return a.calls.Load()
}

// Apply runs the matched pattern's fix against the artifact and returns a
// new artifact version. The returned artifact always carries a higher
// version than the input, even when the fix detected prior application and
// left the content unchanged, so every iteration is attributable to a
// distinct artifact version.
//
// An error wrapping ErrFixApplication is returned when the fix cannot be
// structurally applied; the input artifact is never modified.
func (a *Applicator) Apply(p *pattern.ErrorPattern, caps pattern.Captures, art *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
	a.calls.Add(1)

	if p == nil || p.Fix() == nil {
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrFixApplication, "pattern has no fix")
	}
	if art == nil {
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrFixApplication, "artifact is nil")
	}

	next, err := p.Fix()(caps, art)
	if err != nil {
		a.logger.Warn().
			Str("pattern", p.ID).
			Err(err).
			Msg("fix application failed")
		if !isApplicationError(err) {
			err = dockfixerrors.Wrap(dockfixerrors.ErrFixApplication, err.Error())
		}
		return nil, err
	}

	// A no-op fix returns its input; bump the version so the iteration log
	// still references a distinct artifact.
	if next == art || next.Version() == art.Version() {
		next = art.Touch()
	}

	a.logger.Debug().
		Str("pattern", p.ID).
		Str("category", string(p.Category)).
		Int("artifact_version", next.Version()).
		Msg("applied fix")

	return next, nil
}

// isApplicationError reports whether err already carries one of the fix
// application sentinels.
func isApplicationError(err error) bool {
	return errors.Is(err, dockfixerrors.ErrFixApplication) || errors.Is(err, dockfixerrors.ErrAnchorNotFound)
}
