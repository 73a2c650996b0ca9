package models

import "time"

// PhaseCompletion records how a phase was closed out. Entries are append-only,
// one per phase ever exited.
type PhaseCompletion struct {
	CompletedAt        time.Time `json:"completed_at"`
	CompletionCriteria []string  `json:"completion_criteria"`
	Notes              string    `json:"notes,omitempty"`
}

// WorkflowInstance is the one mutable, persisted entity: a running workflow
// for a single owner, tracked by its current phase. The transition operation
// is the sole writer of CurrentPhase, PhaseProgress and ActiveAgents.
type WorkflowInstance struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	ProjectID   *string      `json:"project_id,omitempty"`
	ProjectName string       `json:"project_name"`
	Type        WorkflowType `json:"workflow_type"`

	CurrentPhase  string                     `json:"current_phase"`
	PhaseProgress map[string]PhaseCompletion `json:"phase_progress"`
	ActiveAgents  []string                   `json:"active_agents"`

	Context map[string]any `json:"context,omitempty"`

	// Version is the optimistic-concurrency token. Every write checks the
	// stored version and increments it; stale writers are rejected.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TelemetryEvent is a usage record written on API access and lifecycle
// operations. Best-effort: recording failures never fail a request.
type TelemetryEvent struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	UserID    string         `json:"user_id"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
