package resource

import (
	"context"
	"sync"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/port"
)

// MemoryProvider serves resources from memory, for tests and the dev
// fallback when no database is configured.
type MemoryProvider struct {
	mu        sync.RWMutex
	resources map[string]domain.Resource
}

// NewMemoryProvider creates a provider pre-loaded with the given resources.
func NewMemoryProvider(resources ...domain.Resource) *MemoryProvider {
	m := &MemoryProvider{resources: make(map[string]domain.Resource, len(resources))}
	for _, r := range resources {
		m.resources[r.ID] = r
	}
	return m
}

var _ port.ResourceProvider = (*MemoryProvider)(nil)

// Put adds or replaces a resource.
func (m *MemoryProvider) Put(r domain.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[r.ID] = r
}

// GetContent returns the resource body or ErrResourceNotFound.
func (m *MemoryProvider) GetContent(_ context.Context, resourceID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.resources[resourceID]
	if !ok {
		return "", port.ErrResourceNotFound
	}
	return r.Content, nil
}

// GetTitle returns the resource title or ErrResourceNotFound.
func (m *MemoryProvider) GetTitle(_ context.Context, resourceID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.resources[resourceID]
	if !ok {
		return "", port.ErrResourceNotFound
	}
	return r.Title, nil
}

// GetTitles resolves titles for the given ids; unknown ids are omitted.
func (m *MemoryProvider) GetTitles(_ context.Context, resourceIDs []string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	titles := make(map[string]string, len(resourceIDs))
	for _, id := range resourceIDs {
		if r, ok := m.resources[id]; ok {
			titles[id] = r.Title
		}
	}
	return titles, nil
}
