package lifecycle

import (
	"context"
	"errors"
	"fmt"
)

// State represents the lifecycle state of a service.
type State int32

const (
	StateCreated State = iota
	StateSettingUp
	StateRunning
	StateStopRequested
	StateTearingDown
	StateStopped
	StateFaulted
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateSettingUp:
		return "SettingUp"
	case StateRunning:
		return "Running"
	case StateStopRequested:
		return "StopRequested"
	case StateTearingDown:
		return "TearingDown"
	case StateStopped:
		return "Stopped"
	case StateFaulted:
		return "Faulted"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transition can leave s.
func (s State) IsTerminal() bool {
	return s == StateStopped || s == StateFaulted
}

// SetupResult classifies how the setup phase ended.
type SetupResult int32

const (
	// SetupNotStarted means setup never ran, or declared it had no effect.
	SetupNotStarted SetupResult = iota
	// SetupSuccessful means setup completed and execution was started.
	SetupSuccessful
	// SetupUnsuccessful means setup ran and failed or was canceled.
	SetupUnsuccessful
)

// String returns a human-readable representation of the result.
func (r SetupResult) String() string {
	switch r {
	case SetupNotStarted:
		return "NotStarted"
	case SetupSuccessful:
		return "Successful"
	case SetupUnsuccessful:
		return "Unsuccessful"
	default:
		return "Unknown"
	}
}

// Service is the set of phase hooks the engine drives.
type Service interface {
	// Setup prepares the service. It runs at most once, on a context that
	// is canceled when the start context is done or a stop is requested.
	// Returning an error that matches ErrNotStarted tells the engine that
	// nothing was set up and nothing needs to be undone.
	Setup(ctx context.Context) error

	// Execute is the service body. It runs in its own goroutine after a
	// successful setup; its context is canceled when a stop is requested.
	Execute(ctx context.Context) error

	// Teardown releases whatever Setup acquired. It runs at most once and
	// its context is never canceled.
	Teardown(ctx context.Context) error
}

// Common lifecycle errors.
var (
	ErrNotStarted        = errors.New("setup not started")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrHookPanic         = errors.New("hook panicked")
)

// TransitionError reports an attempt to move between two states that the
// state machine does not connect. The engine raises it only on an internal
// contract violation.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

// Is makes TransitionError match ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ValidTransition reports whether the state machine allows from -> to.
func ValidTransition(from, to State) bool {
	switch from {
	case StateCreated:
		return to == StateSettingUp || to == StateStopped
	case StateSettingUp:
		return to == StateRunning || to == StateTearingDown || to == StateStopped || to == StateFaulted
	case StateRunning:
		return to == StateStopRequested || to == StateFaulted
	case StateStopRequested:
		return to == StateTearingDown
	case StateTearingDown:
		return to == StateStopped || to == StateFaulted
	default:
		return false
	}
}
