// Package web provides HTTP handlers and REST API endpoints for the
// framework catalog and workflow instance lifecycle.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bmadhq/platform/pkg/catalog"
	"github.com/bmadhq/platform/pkg/eventbus"
	"github.com/bmadhq/platform/pkg/events"
	"github.com/bmadhq/platform/pkg/models"
	"github.com/bmadhq/platform/pkg/registry"
	"github.com/bmadhq/platform/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type APIHandlers struct {
	store            *catalog.Store
	registry         *registry.Registry
	instanceService  *services.Instances
	telemetryService *services.Telemetry
	publisher        eventbus.EventPublisher
	validator        *validator.Validate
	logger           *slog.Logger
}

// NewAPIHandlers creates the REST handler set. The publisher may be nil, in
// which case catalog lifecycle events are not emitted.
func NewAPIHandlers(
	logger *slog.Logger,
	store *catalog.Store,
	registry *registry.Registry,
	instanceService *services.Instances,
	telemetryService *services.Telemetry,
	publisher eventbus.EventPublisher,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		store:            store,
		registry:         registry,
		instanceService:  instanceService,
		telemetryService: telemetryService,
		publisher:        publisher,
		validator:        validator,
		logger:           logger.With("module", "web"),
	}
}

func (h *APIHandlers) ListAgents(c fiber.Ctx) error {
	cat, err := h.store.Get(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	h.record(c, "list_agents", nil)

	return c.JSON(fiber.Map{
		"agents": cat.Agents,
		"count":  len(cat.Agents),
	})
}

func (h *APIHandlers) GetAgent(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Agent ID is required")
	}

	cat, err := h.store.Get(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	agent := cat.AgentByID(id)
	if agent == nil {
		return notFound(c, "Agent not found")
	}

	h.record(c, "get_agent", map[string]any{"agent_id": id})

	return c.JSON(agent)
}

func (h *APIHandlers) RecommendAgents(c fiber.Ctx) error {
	var req RecommendAgentsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	tier := models.ComplexityTier(req.Complexity)
	if tier == "" {
		tier = services.DefaultComplexity
	}

	user := UserFromCtx(c)

	result, err := h.instanceService.Recommend(c.Context(), req.Phase, tier, user.Role)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.record(c, "recommend_agents", map[string]any{
		"phase":      req.Phase,
		"complexity": string(tier),
	})

	return c.JSON(fiber.Map{
		"phase":      req.Phase,
		"complexity": tier,
		"agents":     result,
	})
}

func (h *APIHandlers) ListTemplates(c fiber.Ctx) error {
	cat, err := h.store.Get(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	phase := c.Query("phase")
	track := models.WorkflowType(c.Query("track"))

	templates := make([]*models.TemplateDefinition, 0, len(cat.Templates))

	for _, t := range cat.Templates {
		if phase != "" && !strings.EqualFold(t.Phase, phase) {
			continue
		}

		if track != "" && !t.AppliesToTrack(track) {
			continue
		}

		templates = append(templates, t)
	}

	h.record(c, "list_templates", nil)

	return c.JSON(fiber.Map{
		"templates": templates,
		"count":     len(templates),
	})
}

func (h *APIHandlers) GetTemplatesByType(c fiber.Ctx) error {
	templateType := c.Params("type")
	if templateType == "" {
		return badRequest(c, "Template type is required")
	}

	cat, err := h.store.Get(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	templates := cat.TemplatesByType(strings.ToUpper(templateType))

	h.record(c, "get_templates_by_type", map[string]any{"type": templateType})

	return c.JSON(fiber.Map{
		"templates": templates,
		"count":     len(templates),
	})
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	workflows, err := h.registry.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	h.record(c, "list_workflows", nil)

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflowType := models.WorkflowType(c.Params("type"))

	workflow, err := h.registry.Get(c.Context(), workflowType)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) StartWorkflow(c fiber.Ctx) error {
	workflowType := models.WorkflowType(c.Params("type"))

	var req StartWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	user := UserFromCtx(c)

	result, err := h.instanceService.Start(c.Context(), services.StartRequest{
		WorkflowType: workflowType,
		OwnerID:      user.ID,
		OwnerRole:    user.Role,
		ProjectID:    req.ProjectID,
		ProjectName:  req.ProjectName,
		Context:      req.Context,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	h.record(c, "start_workflow", map[string]any{
		"workflow_type": string(workflowType),
		"instance_id":   result.Instance.ID,
	})

	return c.JSON(fiber.Map{
		"instance":           result.Instance,
		"workflow":           result.Workflow,
		"recommended_agents": result.RecommendedAgents,
	})
}

func (h *APIHandlers) TransitionWorkflow(c fiber.Ctx) error {
	instanceID := c.Params("instanceId")
	if instanceID == "" {
		return badRequest(c, "Instance ID is required")
	}

	var req TransitionWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	user := UserFromCtx(c)

	result, err := h.instanceService.Transition(c.Context(), services.TransitionRequest{
		InstanceID:         instanceID,
		CallerID:           user.ID,
		CallerRole:         user.Role,
		NextPhase:          req.NextPhase,
		CompletionCriteria: req.CompletionCriteria,
		Notes:              req.Notes,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	h.record(c, "transition_workflow", map[string]any{
		"instance_id": instanceID,
		"from":        result.PreviousPhase,
		"to":          result.CurrentPhase,
	})

	return c.JSON(result)
}

func (h *APIHandlers) ListInstances(c fiber.Ctx) error {
	user := UserFromCtx(c)

	instances, err := h.instanceService.ListByOwner(c.Context(), user.ID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"instances": instances,
		"count":     len(instances),
	})
}

func (h *APIHandlers) GetInstance(c fiber.Ctx) error {
	instanceID := c.Params("id")
	if instanceID == "" {
		return badRequest(c, "Instance ID is required")
	}

	user := UserFromCtx(c)

	instance, err := h.instanceService.FetchByID(c.Context(), instanceID, user.ID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(instance)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	catalogCheck := h.store.HealthCheck(c.Context())
	repositoryCheck, repOk := h.instanceService.HealthCheck(c.Context())

	status := "degraded"
	httpStatus := http.StatusOK

	switch {
	case catalogCheck.Status == "healthy" && repOk:
		status = "healthy"
	case catalogCheck.Status != "healthy" && !repOk:
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"catalog":    catalogCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) ReloadCatalog(c fiber.Ctx) error {
	cat, err := h.store.Refresh(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	h.publish(c.Context(), "catalog", events.CatalogReloaded{
		BaseEvent: h.baseEvent(events.CatalogReloadedEvent),
		Agents:    len(cat.Agents),
		Templates: len(cat.Templates),
		Workflows: len(cat.Workflows),
	})

	h.record(c, "reload_catalog", map[string]any{
		"agents":    len(cat.Agents),
		"templates": len(cat.Templates),
		"workflows": len(cat.Workflows),
	})

	return c.JSON(fiber.Map{
		"status":    "reloaded",
		"agents":    len(cat.Agents),
		"templates": len(cat.Templates),
		"workflows": len(cat.Workflows),
		"loaded_at": cat.LoadedAt,
	})
}

func (h *APIHandlers) baseEvent(eventType events.EventType) events.BaseEvent {
	id := uuid.New().String()
	if generator, ok := h.publisher.(interface{ GenerateID() string }); ok {
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
func (h *APIHandlers) publish(ctx context.Context, key string, event eventbus.Event) {
	if h.publisher == nil {
		return
	}

	if err := h.publisher.Publish(ctx, key, event); err != nil {
		h.logger.WarnContext(ctx, "Failed to publish lifecycle event",
			"event_type", event.GetType(),
			"error", err,
		)
	}
}

// record emits a telemetry event for the current caller, if any.
func (h *APIHandlers) record(c fiber.Ctx, eventType string, data map[string]any) {
	if h.telemetryService == nil {
		return
	}

	userID := "anonymous"
	if user := UserFromCtx(c); user != nil {
		userID = user.ID
	}

	h.telemetryService.Record(c.Context(), eventType, userID, data)
}
