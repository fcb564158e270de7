// Package errors provides centralized error handling for dockfix.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be checked
// using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrEmptyTable indicates a pattern table was constructed with no
	// patterns. An empty table is a configuration error, not a silent
	// no-match, so construction fails fast.
	ErrEmptyTable = errors.New("pattern table is empty")

	// ErrDuplicatePattern indicates two table entries share an ID.
	ErrDuplicatePattern = errors.New("duplicate pattern id")

	// ErrPatternInvalid indicates a pattern is missing a matcher or fix.
	ErrPatternInvalid = errors.New("invalid pattern")

	// ErrPatternFile indicates a user-supplied pattern file could not be
	// loaded or parsed.
	ErrPatternFile = errors.New("pattern file invalid")

	// ErrUnmatchedFailure indicates no pattern matched the build output.
	// The run ends immediately with its full iteration log.
	ErrUnmatchedFailure = errors.New("no matching pattern for build failure")

	// ErrFixApplication indicates a matched fix could not be structurally
	// applied to the artifact (for example, a missing insertion point).
	ErrFixApplication = errors.New("fix could not be applied")

	// ErrAnchorNotFound indicates an artifact has no line suitable as an
	// insertion point for a fix.
	ErrAnchorNotFound = errors.New("insertion anchor not found")

	// ErrBuildFailed indicates a repair run concluded with the build still
	// failing. It wraps the terminal cause (unmatched failure or a fix
	// that could not be applied) for the process exit path.
	ErrBuildFailed = errors.New("build failed")

	// ErrBuildTimeout indicates a build attempt exceeded its wall-clock
	// budget. The runner injects its message into the build output as a
	// classifiable synthetic line rather than returning it.
	ErrBuildTimeout = errors.New("build timed out")

	// ErrBuilderUnavailable indicates the builder collaborator could not be
	// invoked at all. This is an infrastructure fault and aborts the run,
	// distinct from an ordinary build failure.
	ErrBuilderUnavailable = errors.New("builder unavailable")

	// ErrBudgetExhausted indicates the iteration budget was reached before
	// the build succeeded. The run outcome is partial success.
	ErrBudgetExhausted = errors.New("iteration budget exhausted")

	// ErrInvalidTransition indicates an attempt to make an invalid run
	// state transition.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidTier indicates an unknown complexity tier was specified.
	ErrInvalidTier = errors.New("invalid complexity tier")

	// ErrArtifactEmpty indicates an artifact has no content to repair.
	ErrArtifactEmpty = errors.New("artifact is empty")

	// ErrArtifactNotFound indicates the artifact file does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidBuild indicates an invalid build configuration value.
	ErrConfigInvalidBuild = errors.New("invalid build configuration")

	// ErrConfigInvalidRepair indicates an invalid repair configuration value.
	ErrConfigInvalidRepair = errors.New("invalid repair configuration")

	// ErrConfigInvalidPatterns indicates an invalid patterns configuration value.
	ErrConfigInvalidPatterns = errors.New("invalid patterns configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")
)
