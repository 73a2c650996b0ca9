package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/bmadhq/platform/pkg/models"
	"github.com/bmadhq/platform/pkg/persistence"
	"github.com/google/uuid"
)

// Telemetry records API usage events. Recording is best-effort: a failed
// write is logged and swallowed so it can never fail a user request.
type Telemetry struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewTelemetry(logger *slog.Logger, p persistence.Persistence) *Telemetry {
	return &Telemetry{
		persistence: p,
		logger:      logger.With("module", "telemetry"),
	}
}

// Record stores a usage event attributed to userID.
func (t *Telemetry) Record(ctx context.Context, eventType, userID string, data map[string]any) {
	event := &models.TelemetryEvent{
		ID:        uuid.New().String(),
		EventType: eventType,
		UserID:    userID,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	if err := t.persistence.Telemetry().Record(ctx, event); err != nil {
		t.logger.WarnContext(ctx, "Failed to record telemetry event",
			"event_type", eventType,
			"error", err,
		)
	}
}
