// Package file provides a file-system persistence implementation, used for
// local development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/bmadhq/platform/pkg/persistence"
)

// Persistence implements persistence.Persistence on top of a directory tree:
// one JSON document per workflow instance plus an append-only telemetry log.
type Persistence struct {
	root          string
	instanceRepo  *InstanceRepository
	telemetryRepo *TelemetryRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.TrimPrefix(root, "file://")

	return &Persistence{
		root:          cleanRoot,
		instanceRepo:  NewInstanceRepository(cleanRoot),
		telemetryRepo: NewTelemetryRepository(cleanRoot),
	}
}

func (p *Persistence) Instances() persistence.InstanceRepository {
	return p.instanceRepo
}

func (p *Persistence) Telemetry() persistence.TelemetryRepository {
	return p.telemetryRepo
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close is a no-op for file persistence.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
