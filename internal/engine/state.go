// Package engine provides the bounded repair loop for dockfix.
//
// This file implements the run state machine, which enforces valid state
// transitions for a repair run.
//
// Import rules:
//   - CAN import: internal/artifact, internal/constants, internal/ctxutil,
//     internal/domain, internal/errors, internal/fix, internal/pattern,
//     internal/runner, std lib
//   - MUST NOT import: internal/cli, internal/config
package engine

import (
	"fmt"

	"github.com/dockfix/dockfix/internal/constants"
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
)

// ValidTransitions defines all allowed state transitions for a repair run.
// Format: from_state -> []to_states
//
// The state machine follows this flow:
//
//	Running → Success, PartialSuccess, Failed
//
// Success, PartialSuccess, and Failed are terminal; no transitions leave them.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.RunState][]constants.RunState{
	constants.RunStateRunning: {
		constants.RunStateSuccess,
		constants.RunStatePartialSuccess,
		constants.RunStateFailed,
	},
}

// IsValidTransition checks if a transition from one state to another is allowed.
// Returns false for transitions from terminal states or to the same state.
func IsValidTransition(from, to constants.RunState) bool {
	if from == to {
		return false
	}
	targets, exists := ValidTransitions[from]
	if !exists {
		return false
	}
	for _, target := range targets {
		if target == to {
			return true
		}
	}
	return false
}

// IsTerminalState returns true for states where no further transitions are
// allowed: Success, PartialSuccess, Failed.
func IsTerminalState(state constants.RunState) bool {
	_, exists := ValidTransitions[state]
	return !exists
}

// transition validates a state change, returning the new state.
// Returns a wrapped ErrInvalidTransition for disallowed changes.
func transition(from, to constants.RunState) (constants.RunState, error) {
	if !IsValidTransition(from, to) {
		return from, fmt.Errorf("%w: cannot transition from %s to %s",
			dockfixerrors.ErrInvalidTransition, from, to)
	}
	return to, nil
}
