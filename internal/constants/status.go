package constants

// RunState represents the state of a repair run in the dockfix state machine.
// Values use snake_case for JSON serialization compatibility.
type RunState string

// Run state constants define the valid states a run can be in.
// These follow the state machine:
//
//	Running → Success, PartialSuccess, Failed
//
// Success, PartialSuccess, and Failed are terminal.
const (
	// RunStateRunning indicates the repair loop is actively iterating.
	RunStateRunning RunState = "running"

	// RunStateSuccess indicates a build attempt exited successfully.
	RunStateSuccess RunState = "success"

	// RunStatePartialSuccess indicates the iteration budget was exhausted
	// while the build still failed. The best-known artifact is retained
	// because it may be worth inspecting, distinguishing this from Failed.
	RunStatePartialSuccess RunState = "partial_success"

	// RunStateFailed indicates an unmatched error or an unapplicable fix
	// ended the run before the budget mattered.
	RunStateFailed RunState = "failed"
)

// String returns the string representation of the RunState.
func (s RunState) String() string {
	return string(s)
}

// IterationStatus represents the outcome of a single loop pass.
// Values use snake_case for JSON serialization compatibility.
type IterationStatus string

// Iteration status constants.
const (
	// IterationSuccess indicates the build attempt succeeded.
	IterationSuccess IterationStatus = "success"

	// IterationFixedRetry indicates a failure was classified, one fix was
	// applied, and the loop will retry with the new artifact version.
	IterationFixedRetry IterationStatus = "fixed_retry"

	// IterationUnmatched indicates no pattern matched the build output.
	// This is terminal for the run.
	IterationUnmatched IterationStatus = "unmatched_failure"

	// IterationFixFailed indicates a pattern matched but its fix could not
	// be structurally applied. This is terminal for the run.
	IterationFixFailed IterationStatus = "fix_failed"
)

// String returns the string representation of the IterationStatus.
func (s IterationStatus) String() string {
	return string(s)
}
