package handler

import (
	"errors"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/port"
	"github.com/gofiber/fiber/v3"
)

// respondError maps the core error taxonomy onto HTTP status codes:
// validation failures 400, access violations 403, missing entities 404,
// everything else 500.
func respondError(c fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  ve.Reason,
			"detail": ve.Detail,
		})
	case errors.Is(err, port.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
	case errors.Is(err, port.ErrAnnotationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "annotation not found"})
	case errors.Is(err, port.ErrResourceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
