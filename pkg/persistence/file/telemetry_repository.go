package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmadhq/platform/pkg/models"
)

// TelemetryRepository appends events as JSON lines to <root>/telemetry.jsonl.
type TelemetryRepository struct {
	path string
	mu   sync.Mutex
}

func NewTelemetryRepository(root string) *TelemetryRepository {
	return &TelemetryRepository{path: filepath.Join(root, "telemetry.jsonl")}
}

func (r *TelemetryRepository) Record(_ context.Context, event *models.TelemetryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode telemetry event: %w", err)
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open telemetry log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("failed to append telemetry event: %w", err)
	}

	return nil
}
