package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bmadhq/platform/pkg/models"
)

// TelemetryRepository appends usage events to the telemetry_events table.
type TelemetryRepository struct {
	db *sql.DB
}

func NewTelemetryRepository(db *sql.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

func (r *TelemetryRepository) Record(ctx context.Context, event *models.TelemetryEvent) error {
	data := event.Data
	if data == nil {
		data = map[string]any{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode telemetry data: %w", err)
	}

	query := `
		INSERT INTO telemetry_events (id, event_type, user_id, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.ExecContext(ctx, query, event.ID, event.EventType, event.UserID, raw, event.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert telemetry event: %w", err)
	}

	return nil
}
