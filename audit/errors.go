// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"errors"
	"fmt"
)

// Input errors: the scanned code is wrong for this context. Report to the
// operator; never retried automatically.
var (
	ErrInvalidCode        = errors.New("invalid code")
	ErrUnexpectedChemical = errors.New("unexpected chemical")
	ErrInvalidRound       = errors.New("invalid audit round")
)

// State errors: the operation is illegal in the current lifecycle state.
var (
	ErrRoundNotFound           = errors.New("audit round not found")
	ErrSessionNotFound         = errors.New("audit not found")
	ErrSessionNotActive        = errors.New("audit not active")
	ErrSessionAlreadyCompleted = errors.New("audit already completed")
	ErrInvalidStateTransition  = errors.New("invalid state transition")
)

// StateError carries the status the entity was in when an operation was
// rejected, so callers can resync their view.
type StateError struct {
	Op     string
	Err    error
	Status string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v (current status %s)", e.Op, e.Err, e.Status)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

func stateError[S ~string](op string, err error, status S) error {
	return &StateError{Op: op, Err: err, Status: string(status)}
}

// CurrentStatus returns the status recorded in a StateError anywhere in the chain.
func CurrentStatus(err error) (string, bool) {
	var se *StateError
	if errors.As(err, &se) {
		return se.Status, true
	}
	return "", false
}

// Code maps an error to a stable identifier for API clients. Unknown errors
// (persistence failures) map to "internal".
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, ErrUnexpectedChemical):
		return "unexpected_chemical"
	case errors.Is(err, ErrInvalidRound):
		return "invalid_round"
	case errors.Is(err, ErrRoundNotFound):
		return "round_not_found"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrSessionNotActive):
		return "session_not_active"
	case errors.Is(err, ErrSessionAlreadyCompleted):
		return "session_already_completed"
	case errors.Is(err, ErrInvalidStateTransition):
		return "invalid_state_transition"
	}
	return "internal"
}
