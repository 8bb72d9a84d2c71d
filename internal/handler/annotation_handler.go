package handler

import (
	"encoding/json"
	"strconv"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/middleware"
	"github.com/arturoeanton/go-annotate-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// AnnotationHandler handles annotation CRUD endpoints.
type AnnotationHandler struct {
	annotations *service.AnnotationService
}

// NewAnnotationHandler creates a new annotation handler.
func NewAnnotationHandler(annotations *service.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{annotations: annotations}
}

// Register sets up annotation routes.
func (h *AnnotationHandler) Register(api fiber.Router) {
	api.Post("/annotations", h.Create)
	api.Get("/annotations", h.ListVisible)
	api.Get("/annotations/:id", h.Get)
	api.Put("/annotations/:id", h.Update)
	api.Delete("/annotations/:id", h.Delete)
	api.Get("/resources/:id/annotations", h.ListByResource)
}

// Create creates an annotation from a client text selection.
func (h *AnnotationHandler) Create(c fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var body struct {
		ResourceID  string   `json:"resource_id"`
		StartOffset int      `json:"start_offset"`
		EndOffset   int      `json:"end_offset"`
		Text        string   `json:"highlighted_text"`
		Note        string   `json:"note"`
		Tags        []string `json:"tags"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	a, err := h.annotations.Create(c.Context(), userID, service.CreateRequest{
		ResourceID:  body.ResourceID,
		StartOffset: body.StartOffset,
		EndOffset:   body.EndOffset,
		ClaimedText: body.Text,
		Note:        body.Note,
		Tags:        body.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// Get returns a single annotation the caller may read.
func (h *AnnotationHandler) Get(c fiber.Ctx) error {
	a, err := h.annotations.Get(c.Context(), c.Params("id"), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(a)
}

// Update patches note, tags, or is_shared. The raw body keys are checked
// first so a request naming a frozen field (offsets, highlighted_text, ...)
// fails loudly instead of being silently ignored.
func (h *AnnotationHandler) Update(c fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	if err := domain.ValidateMutableFields(keys); err != nil {
		return respondError(c, err)
	}

	patch, err := decodePatch(raw)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	a, err := h.annotations.Update(c.Context(), c.Params("id"), userID, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(a)
}

// Delete hard-deletes an annotation, owner-only.
func (h *AnnotationHandler) Delete(c fiber.Ctx) error {
	if err := h.annotations.Delete(c.Context(), c.Params("id"), middleware.GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListByResource returns the caller-visible annotations on one resource,
// optionally filtered by ?tag=.
func (h *AnnotationHandler) ListByResource(c fiber.Ctx) error {
	list, err := h.annotations.ListByResource(
		c.Context(), c.Params("id"), middleware.GetUserID(c), c.Query("tag"), queryLimit(c),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"annotations": list, "count": len(list)})
}

// ListVisible returns every annotation visible to the caller.
func (h *AnnotationHandler) ListVisible(c fiber.Ctx) error {
	list, err := h.annotations.ListVisible(c.Context(), middleware.GetUserID(c), queryLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"annotations": list, "count": len(list)})
}

func decodePatch(raw map[string]json.RawMessage) (domain.Patch, error) {
	var patch domain.Patch
	if v, ok := raw["note"]; ok {
		var note string
		if err := json.Unmarshal(v, &note); err != nil {
			return patch, err
		}
		patch.Note = &note
	}
	if v, ok := raw["tags"]; ok {
		var tags []string
		if err := json.Unmarshal(v, &tags); err != nil {
			return patch, err
		}
		patch.Tags = &tags
	}
	if v, ok := raw["is_shared"]; ok {
		var shared bool
		if err := json.Unmarshal(v, &shared); err != nil {
			return patch, err
		}
		patch.IsShared = &shared
	}
	return patch, nil
}

// queryLimit parses ?limit= with a sane default and cap.
func queryLimit(c fiber.Ctx) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// exportLimit parses ?limit= for exports, which are unbounded by default so
// a full dump stays a full dump.
func exportLimit(c fiber.Ctx) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
