package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmadhq/platform/pkg/models"
	"github.com/bmadhq/platform/pkg/persistence"
)

// InstanceRepository stores one JSON document per workflow instance under
// <root>/instances. A process-wide mutex serializes writers; the version
// check still applies so stale writers are rejected rather than silently
// overwriting.
type InstanceRepository struct {
	dir string
	mu  sync.Mutex
}

func NewInstanceRepository(root string) *InstanceRepository {
	return &InstanceRepository{dir: filepath.Join(root, "instances")}
}

func (r *InstanceRepository) Create(ctx context.Context, instance *models.WorkflowInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return persistence.NewInstanceError("Create", instance.ID, err)
	}

	if _, err := os.Stat(r.path(instance.ID)); err == nil {
		return persistence.NewInstanceError("Create", instance.ID, persistence.ErrInstanceAlreadyExists)
	}

	if instance.Version == 0 {
		instance.Version = 1
	}

	if err := r.write(instance); err != nil {
		return persistence.NewInstanceError("Create", instance.ID, err)
	}

	return nil
}

func (r *InstanceRepository) GetByID(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	raw, err := os.ReadFile(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewInstanceError("GetByID", id, persistence.ErrInstanceNotFound)
		}

		return nil, persistence.NewInstanceError("GetByID", id, err)
	}

	var instance models.WorkflowInstance
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, persistence.NewInstanceError("GetByID", id, err)
	}

	return &instance, nil
}

func (r *InstanceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.WorkflowInstance, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.WorkflowInstance{}, nil
		}

		return nil, fmt.Errorf("failed to read instance directory: %w", err)
	}

	instances := make([]*models.WorkflowInstance, 0)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		instance, err := r.GetByID(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}

		if instance.OwnerID == ownerID {
			instances = append(instances, instance)
		}
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].CreatedAt.After(instances[j].CreatedAt)
	})

	return instances, nil
}

func (r *InstanceRepository) Update(ctx context.Context, instance *models.WorkflowInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.GetByID(ctx, instance.ID)
	if err != nil {
		return persistence.NewInstanceError("Update", instance.ID, persistence.ErrInstanceNotFound)
	}

	if stored.Version != instance.Version {
		return persistence.NewInstanceError("Update", instance.ID, persistence.ErrStaleInstance)
	}

	instance.Version++

	if err := r.write(instance); err != nil {
		instance.Version--

		return persistence.NewInstanceError("Update", instance.ID, err)
	}

	return nil
}

func (r *InstanceRepository) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

// write persists the document atomically via a temp file rename.
func (r *InstanceRepository) write(instance *models.WorkflowInstance) error {
	raw, err := json.MarshalIndent(instance, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode instance: %w", err)
	}

	tmp := r.path(instance.ID) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write instance file: %w", err)
	}

	if err := os.Rename(tmp, r.path(instance.ID)); err != nil {
		return fmt.Errorf("failed to commit instance file: %w", err)
	}

	return nil
}
