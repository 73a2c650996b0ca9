package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrInstanceNotFound indicates no workflow instance exists for the identifier.
	ErrInstanceNotFound = errors.New("workflow instance not found")

	// ErrInstanceAlreadyExists indicates an instance with the same identifier exists.
	ErrInstanceAlreadyExists = errors.New("workflow instance already exists")

	// ErrStaleInstance indicates the optimistic-concurrency version check
	// failed: another writer updated the instance since it was read.
	ErrStaleInstance = errors.New("workflow instance version is stale")
)

// InstanceError wraps instance-related failures with operation context.
type InstanceError struct {
	Op         string
	InstanceID string
	Err        error
}

func (e *InstanceError) Error() string {
	return fmt.Sprintf("%s operation failed for instance %s: %v", e.Op, e.InstanceID, e.Err)
}

func (e *InstanceError) Unwrap() error {
	return e.Err
}

func (e *InstanceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewInstanceError creates a new instance error with context.
func NewInstanceError(op, instanceID string, err error) *InstanceError {
	return &InstanceError{Op: op, InstanceID: instanceID, Err: err}
}

// IsInstanceNotFound checks if an error indicates a missing instance.
func IsInstanceNotFound(err error) bool {
	return errors.Is(err, ErrInstanceNotFound)
}

// IsStaleInstance checks if an error indicates a failed version check.
func IsStaleInstance(err error) bool {
	return errors.Is(err, ErrStaleInstance)
}
