package service

import (
	"context"
	"log/slog"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/port"
)

// EmbeddingWorker consumes annotation.created events and attaches an
// embedding to each new annotation. Create never blocks on embedding
// computation: until the worker gets there, the annotation simply has no
// vector and semantic search skips it.
type EmbeddingWorker struct {
	store    port.AnnotationStore
	embedder port.Embedder // nil disables the worker's work, not its loop
	events   <-chan domain.Event
}

// NewEmbeddingWorker creates a worker reading from the given event stream.
func NewEmbeddingWorker(store port.AnnotationStore, embedder port.Embedder, events <-chan domain.Event) *EmbeddingWorker {
	return &EmbeddingWorker{store: store, embedder: embedder, events: events}
}

// Run processes events until the context is canceled or the stream closes.
// Failures are logged and dropped: embedding is best-effort and a miss just
// leaves the annotation out of semantic results.
func (w *EmbeddingWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-w.events:
			if !ok {
				return
			}
			w.handle(ctx, evt)
		}
	}
}

func (w *EmbeddingWorker) handle(ctx context.Context, evt domain.Event) {
	if evt.Name != domain.EventAnnotationCreated || w.embedder == nil {
		return
	}

	vector, err := w.embedder.Embed(ctx, evt.Text)
	if err != nil {
		slog.Warn("embed annotation failed", "annotation_id", evt.AnnotationID, "error", err)
		return
	}

	if err := w.store.AttachEmbedding(ctx, evt.AnnotationID, vector); err != nil {
		// The annotation may have been deleted between event and embed.
		slog.Warn("attach embedding failed", "annotation_id", evt.AnnotationID, "error", err)
		return
	}
	slog.Debug("embedding attached", "annotation_id", evt.AnnotationID, "dimensions", len(vector))
}
