// Package report persists repair run results as build-result.json.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain,
//     internal/errors, std lib
//   - MUST NOT import: internal/engine, internal/cli
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dockfix/dockfix/internal/clock"
	"github.com/dockfix/dockfix/internal/constants"
	"github.com/dockfix/dockfix/internal/domain"
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
)

// Writer saves run reports to disk.
type Writer struct {
	logger zerolog.Logger
	clock  clock.Clock
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the writer's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// WithClock sets the clock used for the report timestamp.
func WithClock(c clock.Clock) Option {
	return func(w *Writer) {
		w.clock = c
	}
}

// NewWriter creates a report writer.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		logger: zerolog.Nop(),
		clock:  clock.RealClock{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Build constructs the report structure from a run result.
func (w *Writer) Build(result *domain.RunResult) *domain.BuildReport {
	rep := &domain.BuildReport{
		RunID:                result.RunID,
		Outcome:              result.Outcome.String(),
		Tier:                 result.Tier.String(),
		TotalIterations:      result.TotalIterations,
		MaxIterationsAllowed: result.MaxIterations,
		Timestamp:            w.clock.Now().UTC().Format(time.RFC3339),
	}
	if result.FinalArtifact != nil {
		rep.FinalArtifactDigest = result.FinalArtifact.Digest()
	}

	rep.Iterations = make([]domain.IterationReport, 0, len(result.Iterations))
	for _, iter := range result.Iterations {
		rep.Iterations = append(rep.Iterations, domain.IterationReport{
			Index:           iter.Index,
			Status:          iter.Status.String(),
			ErrorCategory:   iter.Category,
			ErrorExcerpt:    iter.ErrorExcerpt,
			FixApplied:      iter.PatternID,
			DurationSeconds: iter.Duration.Seconds(),
		})
	}
	return rep
}

// Write saves the run report to build-result.json inside dir, creating the
// directory if needed. Returns the report path.
func (w *Writer) Write(result *domain.RunResult, dir string) (string, error) {
	if result == nil {
		return "", dockfixerrors.Wrap(dockfixerrors.ErrEmptyValue, "run result is nil")
	}
	if dir == "" {
		return "", dockfixerrors.Wrap(dockfixerrors.ErrEmptyValue, "report directory is empty")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", dockfixerrors.Wrap(err, "failed to create report directory")
	}

	rep := w.Build(result)

	path := filepath.Join(dir, constants.ReportFileName)
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", dockfixerrors.Wrap(err, "failed to marshal report")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", dockfixerrors.Wrap(err, "failed to write report")
	}

	w.logger.Info().
		Str("path", path).
		Str("outcome", rep.Outcome).
		Int("iterations", rep.TotalIterations).
		Msg("saved run report")

	return path, nil
}
