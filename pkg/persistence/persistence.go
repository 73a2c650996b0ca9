// Package persistence provides the storage abstraction for workflow
// instances and telemetry events.
package persistence

import (
	"context"

	"github.com/bmadhq/platform/pkg/models"
)

// Persistence bundles the repositories of one storage backend.
type Persistence interface {
	Instances() InstanceRepository
	Telemetry() TelemetryRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// InstanceRepository stores workflow instances. The state machine holds no
// long-lived instance references; every operation is a read-modify-write
// through this repository.
type InstanceRepository interface {
	Create(ctx context.Context, instance *models.WorkflowInstance) error
	GetByID(ctx context.Context, id string) (*models.WorkflowInstance, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.WorkflowInstance, error)

	// Update persists the instance only when the stored version matches
	// instance.Version; on success the stored version is incremented and
	// instance.Version is updated to match. A mismatch fails with
	// ErrStaleInstance, rejecting the stale writer.
	Update(ctx context.Context, instance *models.WorkflowInstance) error
}

// TelemetryRepository appends usage events.
type TelemetryRepository interface {
	Record(ctx context.Context, event *models.TelemetryEvent) error
}
