package handler

import (
	"strconv"
	"strings"

	"github.com/arturoeanton/go-annotate-ollama/internal/middleware"
	"github.com/arturoeanton/go-annotate-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
)

// SearchHandler exposes the three retrieval modes.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Register sets up search routes.
func (h *SearchHandler) Register(api fiber.Router) {
	search := api.Group("/search")
	search.Get("/fulltext", h.Fulltext)
	search.Get("/tags", h.ByTags)
	search.Get("/semantic", h.Semantic)
}

// Fulltext performs a case-insensitive substring search over highlighted
// text and notes.
func (h *SearchHandler) Fulltext(c fiber.Ctx) error {
	results, err := h.search.Fulltext(c.Context(), c.Query("q"), middleware.GetUserID(c), queryLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"results": results, "count": len(results)})
}

// ByTags searches by tag membership; ?tags=a,b&mode=any|all.
func (h *SearchHandler) ByTags(c fiber.Ctx) error {
	var tags []string
	if raw := c.Query("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	mode := service.TagModeAny
	if strings.EqualFold(c.Query("mode"), string(service.TagModeAll)) {
		mode = service.TagModeAll
	}

	results, err := h.search.ByTags(c.Context(), tags, mode, middleware.GetUserID(c), queryLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"results": results, "count": len(results), "mode": mode})
}

// Semantic ranks annotations by embedding similarity to the query. The
// response carries a degraded flag when the embedding provider was
// unavailable, so an empty list is distinguishable from no matches.
func (h *SearchHandler) Semantic(c fiber.Ctx) error {
	minSimilarity := 0.0
	if raw := c.Query("min_similarity"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid min_similarity"})
		}
		minSimilarity = f
	}

	result, err := h.search.Semantic(c.Context(), c.Query("q"), middleware.GetUserID(c), queryLimit(c), minSimilarity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"results":  result.Hits,
		"count":    len(result.Hits),
		"degraded": result.Degraded,
	})
}
