// Package services implements the business operations over workflow
// instances and defines the error taxonomy surfaced to the API layer.
package services

import (
	"errors"
	"fmt"

	"github.com/bmadhq/platform/pkg/persistence"
	"github.com/bmadhq/platform/pkg/registry"
)

var (
	// ErrWorkflowNotFound indicates the requested workflow kind is not registered.
	ErrWorkflowNotFound = registry.ErrWorkflowNotFound

	// ErrInstanceNotFound indicates no instance exists for the identifier.
	ErrInstanceNotFound = persistence.ErrInstanceNotFound

	// ErrAccessDenied indicates the caller does not own the instance.
	ErrAccessDenied = errors.New("access to workflow instance denied")

	// ErrWorkflowDefinitionMissing indicates an instance references a
	// workflow kind that is no longer registered. Defensive: should not
	// happen while the built-in catalog is intact.
	ErrWorkflowDefinitionMissing = errors.New("workflow definition missing for instance")

	// ErrInvalidTransition indicates the requested phase move is not an
	// enumerated edge of the workflow definition.
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrStaleInstance indicates a concurrent writer won the version race.
	ErrStaleInstance = persistence.ErrStaleInstance
)

// InvalidTransitionError reports both the attempted and the current phase.
type InvalidTransitionError struct {
	CurrentPhase   string
	RequestedPhase string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %q to %q", e.CurrentPhase, e.RequestedPhase)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// IsAccessDenied checks for an ownership violation.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidTransition checks for an illegal phase move.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsWorkflowDefinitionMissing checks for a registry/instance desync.
func IsWorkflowDefinitionMissing(err error) bool {
	return errors.Is(err, ErrWorkflowDefinitionMissing)
}
