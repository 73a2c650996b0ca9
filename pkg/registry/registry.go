// Package registry exposes read-only access to the built-in workflow
// definitions held in the catalog.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bmadhq/platform/pkg/catalog"
	"github.com/bmadhq/platform/pkg/models"
)

// ErrWorkflowNotFound indicates the requested workflow kind is not registered.
var ErrWorkflowNotFound = errors.New("workflow not found")

// Registry is a pure lookup layer over the catalog store's workflow section.
type Registry struct {
	store  *catalog.Store
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger, store *catalog.Store) *Registry {
	return &Registry{
		store:  store,
		logger: logger.With("module", "registry"),
	}
}

// Get returns the definition for the given workflow kind.
func (r *Registry) Get(ctx context.Context, workflowType models.WorkflowType) (*models.WorkflowDefinition, error) {
	cat, err := r.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow catalog: %w", err)
	}

	definition := cat.WorkflowByType(workflowType)
	if definition == nil {
		return nil, fmt.Errorf("workflow type %q: %w", workflowType, ErrWorkflowNotFound)
	}

	return definition, nil
}

// List returns every registered workflow definition.
func (r *Registry) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	cat, err := r.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow catalog: %w", err)
	}

	return cat.Workflows, nil
}

// IsWorkflowNotFound reports whether the error is a missing-workflow lookup.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}
