package main

import (
	"log/slog"
	"strconv"

	"github.com/bmadhq/platform/pkg/catalog"
	"github.com/bmadhq/platform/pkg/eventbus"
	"github.com/bmadhq/platform/pkg/persistence"
	"github.com/bmadhq/platform/pkg/registry"
	"github.com/bmadhq/platform/pkg/services"
	"github.com/bmadhq/platform/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	store       *catalog.Store
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	jwtSecret   string
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	store *catalog.Store,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	jwtSecret string,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		store:       store,
		registry:    registry,
		eventBus:    eventBus,
		jwtSecret:   jwtSecret,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	instanceService := services.NewInstances(a.logger, a.persistence, a.registry, a.store, a.eventBus)
	telemetryService := services.NewTelemetry(a.logger, a.persistence)

	handlers := web.NewAPIHandlers(a.logger, a.store, a.registry, instanceService, telemetryService, a.eventBus, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("BMad Platform API")
	})

	v1 := app.Group("/api/v1")
	v1.Get("/health", handlers.HealthCheck)

	authed := v1.Group("", web.NewAuthMiddleware(a.jwtSecret))

	agents := authed.Group("/agents")
	agents.Get("/", handlers.ListAgents)
	agents.Post("/recommend", handlers.RecommendAgents)
	agents.Get("/:id", handlers.GetAgent)

	templates := authed.Group("/templates")
	templates.Get("/", handlers.ListTemplates)
	templates.Get("/:type", handlers.GetTemplatesByType)

	workflows := authed.Group("/workflows")
	workflows.Get("/", handlers.ListWorkflows)
	workflows.Get("/:type", handlers.GetWorkflow)
	workflows.Post("/:type/start", handlers.StartWorkflow)
	workflows.Put("/:instanceId/transition", handlers.TransitionWorkflow)

	instances := authed.Group("/instances")
	instances.Get("/", handlers.ListInstances)
	instances.Get("/:id", handlers.GetInstance)

	authed.Post("/reload", handlers.ReloadCatalog, web.RequireRole(web.RoleAdmin))

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
