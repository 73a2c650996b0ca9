package web

import (
	"github.com/bmadhq/platform/pkg/persistence"
	"github.com/bmadhq/platform/pkg/registry"
	"github.com/bmadhq/platform/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func unauthorized(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(401).
		WithInstance(c.Path()).
		WithType("unauthorized").
		WithDetail(detail)

	return c.Status(fiber.StatusUnauthorized).JSON(problem)
}

func forbidden(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(403).
		WithInstance(c.Path()).
		WithType("forbidden").
		WithDetail(detail)

	return c.Status(fiber.StatusForbidden).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps service layer errors onto problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsAccessDenied(err):
		return forbidden(c, "You do not have access to this workflow instance")

	case services.IsInvalidTransition(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("invalid_transition").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsWorkflowDefinitionMissing(err):
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("workflow_definition_missing").
			WithDetail("Workflow definition for this instance is no longer available")

		return c.Status(fiber.StatusInternalServerError).JSON(problem)

	case persistence.IsStaleInstance(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail("Instance was modified concurrently, retry with fresh state")

		return c.Status(fiber.StatusConflict).JSON(problem)

	case persistence.IsInstanceNotFound(err):
		return notFound(c, "Workflow instance not found")

	case registry.IsWorkflowNotFound(err):
		return notFound(c, "Workflow type not found")

	default:
		return internalError(c, err)
	}
}
