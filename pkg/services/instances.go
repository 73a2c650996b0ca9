package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bmadhq/platform/pkg/catalog"
	"github.com/bmadhq/platform/pkg/eventbus"
	"github.com/bmadhq/platform/pkg/events"
	"github.com/bmadhq/platform/pkg/models"
	"github.com/bmadhq/platform/pkg/otelhelper"
	"github.com/bmadhq/platform/pkg/persistence"
	"github.com/bmadhq/platform/pkg/registry"
	"github.com/bmadhq/platform/pkg/selector"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultComplexity is the tier used when computing an instance's active
// agent set; callers of the recommendation endpoint pick their own tier.
const DefaultComplexity = models.ComplexityMedium

// activeAgentLimit caps the agent subset assigned to an instance.
const activeAgentLimit = 3

// Instances is the workflow-instance state machine. Every operation is a
// read-modify-write against the persistence layer; the version column
// rejects concurrent writers.
type Instances struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	store       *catalog.Store
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewInstances creates the instance service. The publisher may be nil, in
// which case lifecycle events are not emitted.
func NewInstances(
	logger *slog.Logger,
	p persistence.Persistence,
	reg *registry.Registry,
	store *catalog.Store,
	publisher eventbus.EventPublisher,
) *Instances {
	return &Instances{
		persistence: p,
		registry:    reg,
		store:       store,
		publisher:   publisher,
		logger:      logger.With("module", "instances"),
		tracer:      otel.Tracer("platform/instances"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Instances) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := s.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// StartRequest creates a new workflow instance.
type StartRequest struct {
	WorkflowType models.WorkflowType
	OwnerID      string
	OwnerRole    string
	ProjectID    *string
	ProjectName  string
	Context      map[string]any
}

// StartResult returns the created instance together with the definition and
// the recommended agents for the initial phase.
type StartResult struct {
	Instance          *models.WorkflowInstance
	Workflow          *models.WorkflowDefinition
	RecommendedAgents []selector.ScoredAgent
}

// Start creates an instance at the workflow's initial phase with an empty
// progress map and the agent set selected for that phase at the default
// complexity.
func (s *Instances) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "instance.start",
		attribute.String(otelhelper.WorkflowTypeKey, string(req.WorkflowType)),
		attribute.String(otelhelper.OwnerIDKey, req.OwnerID),
	)
	defer span.End()

	definition, err := s.registry.Get(ctx, req.WorkflowType)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	cat, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent catalog: %w", err)
	}

	initialPhase := definition.InitialPhase()
	recommended := selector.Select(cat.Agents, initialPhase, DefaultComplexity, req.OwnerRole)

	now := time.Now().UTC()
	instance := &models.WorkflowInstance{
		ID:            uuid.New().String(),
		OwnerID:       req.OwnerID,
		ProjectID:     req.ProjectID,
		ProjectName:   req.ProjectName,
		Type:          req.WorkflowType,
		CurrentPhase:  initialPhase,
		PhaseProgress: map[string]models.PhaseCompletion{},
		ActiveAgents:  selector.IDs(recommended, activeAgentLimit),
		Context:       req.Context,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.persistence.Instances().Create(ctx, instance); err != nil {
		err = fmt.Errorf("failed to persist workflow instance: %w", err)
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.InstanceIDKey, instance.ID))

	s.publish(ctx, instance.ID, events.InstanceStarted{
		BaseEvent:    s.baseEvent(events.InstanceStartedEvent),
		InstanceID:   instance.ID,
		OwnerID:      instance.OwnerID,
		WorkflowType: instance.Type,
		InitialPhase: instance.CurrentPhase,
		ProjectName:  instance.ProjectName,
		ActiveAgents: instance.ActiveAgents,
	})

	s.logger.InfoContext(ctx, "Workflow instance started",
		"instance_id", instance.ID,
		"workflow_type", instance.Type,
		"phase", instance.CurrentPhase,
	)

	return &StartResult{
		Instance:          instance,
		Workflow:          definition,
		RecommendedAgents: recommended,
	}, nil
}

// TransitionRequest advances an instance to the next phase.
type TransitionRequest struct {
	InstanceID         string
	CallerID           string
	CallerRole         string
	NextPhase          string
	CompletionCriteria []string
	Notes              string
}

// TransitionResult reports the completed move.
type TransitionResult struct {
	InstanceID     string    `json:"instance_id"`
	PreviousPhase  string    `json:"previous_phase"`
	CurrentPhase   string    `json:"current_phase"`
	ActiveAgents   []string  `json:"active_agents"`
	TransitionedAt time.Time `json:"transitioned_at"`
}

// Transition validates the move against the workflow definition, appends the
// completion record for the departed phase, recomputes the active agent set
// and persists under the version guard. Errors map one-to-one onto the
// taxonomy: instance missing, access denied, definition missing, illegal
// move, stale version.
func (s *Instances) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "instance.transition",
		attribute.String(otelhelper.InstanceIDKey, req.InstanceID),
		attribute.String(otelhelper.PhaseKey, req.NextPhase),
	)
	defer span.End()

	instance, err := s.persistence.Instances().GetByID(ctx, req.InstanceID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if instance.OwnerID != req.CallerID {
		return nil, fmt.Errorf("instance %s: %w", req.InstanceID, ErrAccessDenied)
	}

	definition, err := s.registry.Get(ctx, instance.Type)
	if err != nil {
		if registry.IsWorkflowNotFound(err) {
			return nil, fmt.Errorf("workflow type %q: %w", instance.Type, ErrWorkflowDefinitionMissing)
		}

		return nil, err
	}

	if !definition.CanTransition(instance.CurrentPhase, req.NextPhase) {
		return nil, &InvalidTransitionError{
			CurrentPhase:   instance.CurrentPhase,
			RequestedPhase: req.NextPhase,
		}
	}

	cat, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent catalog: %w", err)
	}

	nextAgents := selector.IDs(
		selector.Select(cat.Agents, req.NextPhase, DefaultComplexity, req.CallerRole),
		activeAgentLimit,
	)

	now := time.Now().UTC()
	previousPhase := instance.CurrentPhase

	instance.PhaseProgress[previousPhase] = models.PhaseCompletion{
		CompletedAt:        now,
		CompletionCriteria: req.CompletionCriteria,
		Notes:              req.Notes,
	}
	instance.CurrentPhase = req.NextPhase
	instance.ActiveAgents = nextAgents
	instance.UpdatedAt = now

	if err := s.persistence.Instances().Update(ctx, instance); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	s.publish(ctx, instance.ID, events.InstanceTransitioned{
		BaseEvent:          s.baseEvent(events.InstanceTransitionedEvent),
		InstanceID:         instance.ID,
		OwnerID:            instance.OwnerID,
		FromPhase:          previousPhase,
		ToPhase:            instance.CurrentPhase,
		CompletionCriteria: req.CompletionCriteria,
		ActiveAgents:       nextAgents,
	})

	s.logger.InfoContext(ctx, "Workflow instance transitioned",
		"instance_id", instance.ID,
		"from", previousPhase,
		"to", instance.CurrentPhase,
	)

	return &TransitionResult{
		InstanceID:     instance.ID,
		PreviousPhase:  previousPhase,
		CurrentPhase:   instance.CurrentPhase,
		ActiveAgents:   nextAgents,
		TransitionedAt: now,
	}, nil
}

// Recommend returns the scored agent ranking for a phase at the given tier.
// An unknown phase yields an empty ranking, not an error.
func (s *Instances) Recommend(ctx context.Context, phase string, tier models.ComplexityTier, role string) ([]selector.ScoredAgent, error) {
	cat, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent catalog: %w", err)
	}

	return selector.Select(cat.Agents, phase, tier, role), nil
}

// FetchByID loads an instance and enforces ownership.
func (s *Instances) FetchByID(ctx context.Context, instanceID, callerID string) (*models.WorkflowInstance, error) {
	instance, err := s.persistence.Instances().GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	if instance.OwnerID != callerID {
		return nil, fmt.Errorf("instance %s: %w", instanceID, ErrAccessDenied)
	}

	return instance, nil
}

// ListByOwner returns the caller's instances, newest first.
func (s *Instances) ListByOwner(ctx context.Context, ownerID string) ([]*models.WorkflowInstance, error) {
	return s.persistence.Instances().ListByOwner(ctx, ownerID)
}

func (s *Instances) baseEvent(eventType events.EventType) events.BaseEvent {
	id := uuid.New().String()
	if generator, ok := s.publisher.(interface{ GenerateID() string }); ok {
		id = generator.GenerateID()
	}

	return events.BaseEvent{
		ID:        id,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// publish emits a lifecycle event best-effort; failures are logged, never
// surfaced to the caller.
func (s *Instances) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish lifecycle event",
			"event_type", event.GetType(),
			"error", err,
		)
	}
}
