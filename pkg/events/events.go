// Package events defines the lifecycle events published by the platform.
package events

import (
	"time"

	"github.com/bmadhq/platform/pkg/models"
)

type EventType string

// Topic carries every platform lifecycle event.
const Topic = "bmad.platform.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	InstanceStartedEvent      EventType = "workflow.instance.started"
	InstanceTransitionedEvent EventType = "workflow.instance.transitioned"
	CatalogReloadedEvent      EventType = "catalog.reloaded"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// InstanceStarted is published when a workflow instance is created.
type InstanceStarted struct {
	BaseEvent

	InstanceID   string              `json:"instance_id"`
	OwnerID      string              `json:"owner_id"`
	WorkflowType models.WorkflowType `json:"workflow_type"`
	InitialPhase string              `json:"initial_phase"`
	ProjectName  string              `json:"project_name"`
	ActiveAgents []string            `json:"active_agents"`
}

func (e InstanceStarted) GetType() EventType {
	return InstanceStartedEvent
}

// InstanceTransitioned is published after a successful phase transition.
type InstanceTransitioned struct {
	BaseEvent

	InstanceID         string   `json:"instance_id"`
	OwnerID            string   `json:"owner_id"`
	FromPhase          string   `json:"from_phase"`
	ToPhase            string   `json:"to_phase"`
	CompletionCriteria []string `json:"completion_criteria,omitempty"`
	ActiveAgents       []string `json:"active_agents"`
}

func (e InstanceTransitioned) GetType() EventType {
	return InstanceTransitionedEvent
}

// CatalogReloaded is published after a forced framework reload.
type CatalogReloaded struct {
	BaseEvent

	Agents    int `json:"agents"`
	Templates int `json:"templates"`
	Workflows int `json:"workflows"`
}

func (e CatalogReloaded) GetType() EventType {
	return CatalogReloadedEvent
}
