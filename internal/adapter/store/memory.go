package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/port"
)

// MemoryStore is a map-backed AnnotationStore. It serves tests and the dev
// fallback when no DATABASE_URL is configured. The single mutex gives the
// same atomic single-record write guarantee the Postgres store gets from
// single-statement writes.
type MemoryStore struct {
	mu          sync.RWMutex
	annotations map[string]*domain.Annotation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{annotations: make(map[string]*domain.Annotation)}
}

var _ port.AnnotationStore = (*MemoryStore)(nil)

// Create persists a copy of the annotation.
func (m *MemoryStore) Create(_ context.Context, a *domain.Annotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.annotations[a.ID] = cloneAnnotation(a)
	return nil
}

// GetByID returns a copy of the annotation or ErrAnnotationNotFound.
func (m *MemoryStore) GetByID(_ context.Context, id string) (*domain.Annotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.annotations[id]
	if !ok {
		return nil, port.ErrAnnotationNotFound
	}
	return cloneAnnotation(a), nil
}

// Update applies the patch under the write lock, making the read-modify-write
// atomic with respect to other writers.
func (m *MemoryStore) Update(_ context.Context, id string, patch domain.Patch, updatedAt time.Time) (*domain.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.annotations[id]
	if !ok {
		return nil, port.ErrAnnotationNotFound
	}
	if patch.Note != nil {
		a.Note = *patch.Note
	}
	if patch.Tags != nil {
		a.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.IsShared != nil {
		a.IsShared = *patch.IsShared
	}
	a.UpdatedAt = updatedAt
	return cloneAnnotation(a), nil
}

// Delete removes the annotation or reports ErrAnnotationNotFound.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.annotations[id]; !ok {
		return port.ErrAnnotationNotFound
	}
	delete(m.annotations, id)
	return nil
}

// AttachEmbedding stores the vector without touching updated_at.
func (m *MemoryStore) AttachEmbedding(_ context.Context, id string, vector []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.annotations[id]
	if !ok {
		return port.ErrAnnotationNotFound
	}
	a.Embedding = append([]float32(nil), vector...)
	return nil
}

// ListByResource returns every annotation on a resource, newest first.
func (m *MemoryStore) ListByResource(_ context.Context, resourceID string) ([]*domain.Annotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Annotation
	for _, a := range m.annotations {
		if a.ResourceID == resourceID {
			out = append(out, cloneAnnotation(a))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListVisible returns annotations owned by userID plus shared ones, newest
// first.
func (m *MemoryStore) ListVisible(_ context.Context, userID string) ([]*domain.Annotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Annotation
	for _, a := range m.annotations {
		if a.OwnerID == userID || a.IsShared {
			out = append(out, cloneAnnotation(a))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(list []*domain.Annotation) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}

func cloneAnnotation(a *domain.Annotation) *domain.Annotation {
	c := *a
	c.Tags = append([]string(nil), a.Tags...)
	if a.Embedding != nil {
		c.Embedding = append([]float32(nil), a.Embedding...)
	}
	return &c
}
