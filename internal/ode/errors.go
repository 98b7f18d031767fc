package ode

import (
	"errors"
	"fmt"
)

// Domain errors for integration runs.
var (
	// ErrInvalidConfig indicates a problem that must not be dispatched.
	ErrInvalidConfig = errors.New("ode: invalid configuration")

	// ErrWorkerFailed indicates an integrator terminated abnormally.
	ErrWorkerFailed = errors.New("ode: worker failed")

	// ErrUnknownMethod indicates an integrator name with no registration.
	ErrUnknownMethod = errors.New("ode: unknown integration method")

	// ErrUnknownModel indicates a model name with no registration.
	ErrUnknownModel = errors.New("ode: unknown model")
)

// WorkerError wraps a panic recovered from an integrator run.
type WorkerError struct {
	Method string
	Policy string
	Value  any
	Stack  []byte
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("%s/%s: %v: %v", e.Policy, e.Method, ErrWorkerFailed, e.Value)
}

func (e *WorkerError) Unwrap() error {
	return ErrWorkerFailed
}
