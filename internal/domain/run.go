// Package domain provides shared data types for dockfix.
//
// Import rules:
//   - CAN import: internal/artifact, internal/constants, std lib
//   - MUST NOT import: internal/engine, internal/cli
package domain

import (
	"time"

	"github.com/dockfix/dockfix/internal/artifact"
	"github.com/dockfix/dockfix/internal/constants"
)

// Iteration records one pass of the repair loop. Iterations are created in
// order, appended to the run's log, and never mutated afterwards.
type Iteration struct {
	// Index is the zero-based iteration number.
	Index int

	// Status is the iteration outcome.
	Status constants.IterationStatus

	// PatternID identifies the matched pattern; empty when unmatched.
	PatternID string

	// Category is the matched pattern's error category; empty when unmatched.
	Category string

	// Confidence is the matched pattern's confidence; empty when unmatched.
	Confidence string

	// Captures holds the matcher's named submatches.
	Captures map[string]string

	// ErrorExcerpt is the tail of the failing build output.
	ErrorExcerpt string

	// ArtifactVersion is the artifact version resulting from this
	// iteration: the version built on success, or the version produced by
	// the applied fix.
	ArtifactVersion int

	// StartedAt is when the iteration's build attempt began.
	StartedAt time.Time

	// Duration is how long the build attempt took.
	Duration time.Duration
}

// RunResult is the terminal record of a repair run. It is created once at
// loop termination and handed to the caller immutable, including the full
// iteration log even when the run failed, so attempted fixes are always
// presentable.
type RunResult struct {
	// RunID uniquely identifies the run.
	RunID string

	// Outcome is the terminal run state.
	Outcome constants.RunState

	// Tier is the complexity tier the run was started with.
	Tier constants.ComplexityTier

	// Iterations is the append-only iteration log in order.
	Iterations []Iteration

	// FinalArtifact is the last artifact version. On partial success this
	// is the best-known artifact, retained for inspection.
	FinalArtifact *artifact.BuildArtifact

	// TotalIterations is len(Iterations).
	TotalIterations int

	// MaxIterations is the tier's iteration budget.
	MaxIterations int

	// StartedAt is when the run began.
	StartedAt time.Time

	// CompletedAt is when the run reached a terminal state.
	CompletedAt time.Time
}
