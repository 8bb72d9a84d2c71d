package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/arturoeanton/go-annotate-ollama/internal/adapter/ai"
	"github.com/arturoeanton/go-annotate-ollama/internal/adapter/events"
	"github.com/arturoeanton/go-annotate-ollama/internal/adapter/resource"
	"github.com/arturoeanton/go-annotate-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-annotate-ollama/internal/handler"
	"github.com/arturoeanton/go-annotate-ollama/internal/middleware"
	"github.com/arturoeanton/go-annotate-ollama/internal/port"
	"github.com/arturoeanton/go-annotate-ollama/internal/service"
	"github.com/arturoeanton/go-annotate-ollama/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("starting annotation service",
		"port", cfg.Port,
		"semantic", cfg.SemanticEnabled,
		"ollama_embed", cfg.OllamaEmbedURL,
	)

	// ── Storage + resources ──────────────────────────────────────────────
	var (
		annotationStore port.AnnotationStore
		resources       port.ResourceProvider
	)
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(cfg.DatabaseURL, cfg.EmbeddingDimension)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		annotationStore = pgStore
		resources = resource.NewPostgresProvider(pgStore.DB())
	} else {
		slog.Warn("DATABASE_URL not set, running on the in-memory store")
		annotationStore = store.NewMemoryStore()
		resources = resource.NewMemoryProvider()
	}

	// ── Embedding provider (optional) ────────────────────────────────────
	var embedder port.Embedder
	if cfg.SemanticEnabled {
		embedder = ai.NewOllamaEmbedder(ai.OllamaConfig{
			BaseURL: cfg.OllamaEmbedURL,
			Model:   cfg.OllamaEmbedModel,
			Token:   cfg.OllamaEmbedToken,
		})
	}

	// ── Events + async embedding ─────────────────────────────────────────
	bus := events.NewBus()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := service.NewEmbeddingWorker(annotationStore, embedder, bus.Subscribe())
	go worker.Run(ctx)

	// ── Services ─────────────────────────────────────────────────────────
	annotationService := service.NewAnnotationService(annotationStore, resources, bus, cfg.ContextWindow)
	searchService := service.NewSearchService(annotationStore, embedder)
	exportService := service.NewExportService(annotationStore, resources)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-User-ID"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"app":    cfg.AppName,
		})
	})

	// ── Routes ───────────────────────────────────────────────────────────
	api := app.Group("/api/v1", middleware.IdentityMiddleware())

	handler.NewAnnotationHandler(annotationService).Register(api)
	handler.NewSearchHandler(searchService).Register(api)
	handler.NewExportHandler(exportService).Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
