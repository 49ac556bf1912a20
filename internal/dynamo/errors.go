package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrNonPositiveStep indicates a time step that is zero or negative.
	ErrNonPositiveStep = errors.New("dynamo: time step must be positive")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownTrajectory indicates a lookup for a trajectory id that does not exist.
	ErrUnknownTrajectory = errors.New("dynamo: unknown trajectory")

	// ErrTrajectoryLimit indicates every trajectory slot holds a projectile in flight.
	ErrTrajectoryLimit = errors.New("dynamo: too many trajectories in flight")
)

// StepError wraps an error with the trajectory and step it happened on.
type StepError struct {
	Trajectory int
	Step       int
	Time       float64
	Wrapped    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("trajectory %d step %d (t=%.4f): %v", e.Trajectory, e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
