package handler

import (
	"github.com/arturoeanton/go-annotate-ollama/internal/middleware"
	"github.com/arturoeanton/go-annotate-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
)

// ExportHandler exposes the Markdown and JSON export pipelines.
type ExportHandler struct {
	export *service.ExportService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(export *service.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Register sets up export routes.
func (h *ExportHandler) Register(api fiber.Router) {
	export := api.Group("/export")
	export.Get("/markdown", h.Markdown)
	export.Get("/json", h.JSON)
}

// Markdown exports the caller's visible annotations as a Markdown document.
// ?scope= is a resource id or "all" (default); ?limit= bounds the export,
// unbounded when absent.
func (h *ExportHandler) Markdown(c fiber.Ctx) error {
	doc, err := h.export.Markdown(c.Context(), c.Query("scope", service.ScopeAll), middleware.GetUserID(c), exportLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.SendString(doc)
}

// JSON exports the caller's visible annotations as flat records with the
// resource title denormalized in.
func (h *ExportHandler) JSON(c fiber.Ctx) error {
	records, err := h.export.JSON(c.Context(), c.Query("scope", service.ScopeAll), middleware.GetUserID(c), exportLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"annotations": records, "count": len(records)})
}
