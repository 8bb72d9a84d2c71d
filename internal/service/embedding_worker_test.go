package service

import (
	"context"
	"testing"
	"time"

	"github.com/arturoeanton/go-annotate-ollama/internal/adapter/events"
	"github.com/arturoeanton/go-annotate-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingWorker_AttachesOnCreated(t *testing.T) {
	mem := store.NewMemoryStore()
	seed(t, mem, &domain.Annotation{ID: "a1", ResourceID: "r", OwnerID: "alice", CreatedAt: time.Now().UTC()})

	bus := events.NewBus()
	embedder := &fakeEmbedder{fallback: []float32{0.1, 0.2, 0.3}}
	worker := NewEmbeddingWorker(mem, embedder, bus.Subscribe())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	bus.Emit(ctx, domain.Event{
		Name:         domain.EventAnnotationCreated,
		AnnotationID: "a1",
		Text:         "highlight",
		At:           time.Now().UTC(),
	})

	require.Eventually(t, func() bool {
		a, err := mem.GetByID(ctx, "a1")
		return err == nil && len(a.Embedding) == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEmbeddingWorker_IgnoresOtherEvents(t *testing.T) {
	mem := store.NewMemoryStore()
	seed(t, mem, &domain.Annotation{ID: "a1", ResourceID: "r", OwnerID: "alice", CreatedAt: time.Now().UTC()})

	ch := make(chan domain.Event, 1)
	worker := NewEmbeddingWorker(mem, &fakeEmbedder{fallback: []float32{1}}, ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	ch <- domain.Event{Name: domain.EventAnnotationUpdated, AnnotationID: "a1"}

	time.Sleep(50 * time.Millisecond)
	a, err := mem.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, a.Embedding)
}

func TestEmbeddingWorker_NilEmbedderIdles(t *testing.T) {
	mem := store.NewMemoryStore()
	seed(t, mem, &domain.Annotation{ID: "a1", ResourceID: "r", OwnerID: "alice", CreatedAt: time.Now().UTC()})

	ch := make(chan domain.Event, 1)
	worker := NewEmbeddingWorker(mem, nil, ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	ch <- domain.Event{Name: domain.EventAnnotationCreated, AnnotationID: "a1", Text: "x"}

	time.Sleep(50 * time.Millisecond)
	a, err := mem.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, a.Embedding)
}

func TestEmbeddingWorker_SurvivesEmbedFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	seed(t, mem, &domain.Annotation{ID: "a1", ResourceID: "r", OwnerID: "alice", CreatedAt: time.Now().UTC()})

	embedder := &fakeEmbedder{err: assert.AnError, fallback: []float32{0.1, 0.2, 0.3}}
	ch := make(chan domain.Event, 2)
	worker := NewEmbeddingWorker(mem, embedder, ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	ch <- domain.Event{Name: domain.EventAnnotationCreated, AnnotationID: "a1", Text: "x"}
	time.Sleep(50 * time.Millisecond)

	// Worker keeps running after the failure and picks up later events.
	embedder.setErr(nil)
	ch <- domain.Event{Name: domain.EventAnnotationCreated, AnnotationID: "a1", Text: "x"}

	require.Eventually(t, func() bool {
		a, err := mem.GetByID(ctx, "a1")
		return err == nil && len(a.Embedding) > 0
	}, 2*time.Second, 10*time.Millisecond)
}
