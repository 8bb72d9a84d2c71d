package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arturoeanton/go-annotate-ollama/internal/adapter/resource"
	"github.com/arturoeanton/go-annotate-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/middleware"
	"github.com/arturoeanton/go-annotate-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContent = "The quick brown fox jumps over the lazy dog."

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	mem := store.NewMemoryStore()
	resources := resource.NewMemoryProvider(
		domain.Resource{ID: "doc-1", Title: "Pangrams", Content: testContent},
	)

	annotations := service.NewAnnotationService(mem, resources, nil, 50)
	search := service.NewSearchService(mem, nil)
	export := service.NewExportService(mem, resources)

	app := fiber.New()
	api := app.Group("/api/v1", middleware.IdentityMiddleware())
	NewAnnotationHandler(annotations).Register(api)
	NewSearchHandler(search).Register(api)
	NewExportHandler(export).Register(api)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, userID string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var payload map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}
	return resp, payload
}

func createAnnotation(t *testing.T, app *fiber.App, userID string) string {
	t.Helper()
	resp, payload := doJSON(t, app, http.MethodPost, "/api/v1/annotations", userID, map[string]any{
		"resource_id":      "doc-1",
		"start_offset":     4,
		"end_offset":       19,
		"highlighted_text": "quick brown fox",
		"tags":             []string{"animals"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return payload["id"].(string)
}

func TestMissingIdentityHeader(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/annotations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAndGet(t *testing.T) {
	app := newTestApp(t)
	id := createAnnotation(t, app, "alice")

	resp, payload := doJSON(t, app, http.MethodGet, "/api/v1/annotations/"+id, "alice", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "quick brown fox", payload["highlighted_text"])
	assert.Equal(t, "The ", payload["context_before"])
}

func TestCreate_ValidationErrorIs400(t *testing.T) {
	app := newTestApp(t)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/v1/annotations", "alice", map[string]any{
		"resource_id":      "doc-1",
		"start_offset":     0,
		"end_offset":       5,
		"highlighted_text": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.ReasonTextMismatch, payload["error"])
}

func TestCreate_UnknownResourceIs404(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/annotations", "alice", map[string]any{
		"resource_id":      "doc-404",
		"start_offset":     0,
		"end_offset":       3,
		"highlighted_text": "The",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGet_NonOwnerPrivateIs403(t *testing.T) {
	app := newTestApp(t)
	id := createAnnotation(t, app, "alice")

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/annotations/"+id, "bob", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGet_MissingIs404(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/annotations/nope", "alice", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdate_ImmutableFieldRejected(t *testing.T) {
	app := newTestApp(t)
	id := createAnnotation(t, app, "alice")

	resp, payload := doJSON(t, app, http.MethodPut, "/api/v1/annotations/"+id, "alice", map[string]any{
		"note":         "fine",
		"start_offset": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.ReasonInvalidMutationTarget, payload["error"])
}

func TestUpdate_NonOwnerIs403EvenWhenShared(t *testing.T) {
	app := newTestApp(t)
	id := createAnnotation(t, app, "alice")

	resp, _ := doJSON(t, app, http.MethodPut, "/api/v1/annotations/"+id, "alice", map[string]any{"is_shared": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/annotations/"+id, "bob", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/annotations/"+id, "bob", map[string]any{"tags": []string{"x"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDelete(t *testing.T) {
	app := newTestApp(t)
	id := createAnnotation(t, app, "alice")

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/v1/annotations/"+id, "bob", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/annotations/"+id, "alice", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/annotations/"+id, "alice", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchFulltext_EmptyQuery(t *testing.T) {
	app := newTestApp(t)
	createAnnotation(t, app, "alice")

	resp, payload := doJSON(t, app, http.MethodGet, "/api/v1/search/fulltext?q=", "alice", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, payload["count"])
}

func TestSearchSemantic_DegradedWithoutProvider(t *testing.T) {
	app := newTestApp(t)
	createAnnotation(t, app, "alice")

	resp, payload := doJSON(t, app, http.MethodGet, "/api/v1/search/semantic?q=fox", "alice", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["degraded"])
	assert.EqualValues(t, 0, payload["count"])
}

func TestExportJSON_UnknownScopeIs404(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/export/json?scope=doc-404", "alice", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportMarkdown(t *testing.T) {
	app := newTestApp(t)
	createAnnotation(t, app, "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/markdown", nil)
	req.Header.Set("X-User-ID", "alice")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "## Pangrams")
	assert.Contains(t, string(raw), "quick brown fox")
}
