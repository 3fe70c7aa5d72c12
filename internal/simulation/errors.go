package simulation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotHosted indicates an entity that this simulation does not list.
	ErrNotHosted = errors.New("simulation: entity not hosted here")

	// ErrDuplicate indicates an entity added twice.
	ErrDuplicate = errors.New("simulation: entity already added")

	// ErrInvalidConfig indicates a config that cannot be stepped.
	ErrInvalidConfig = errors.New("simulation: invalid config")
)

// StepError wraps an error with the step it interrupted.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
