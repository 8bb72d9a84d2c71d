package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/port"
	"github.com/google/uuid"
)

// AnnotationService orchestrates annotation CRUD: it validates highlight
// ranges against live resource content, derives context snippets, enforces
// the owner/shared access policy, and emits lifecycle events.
type AnnotationService struct {
	store         port.AnnotationStore
	resources     port.ResourceProvider
	events        port.EventSink
	contextWindow int
}

// NewAnnotationService creates a new annotation service. contextWindow is
// the max length of the derived before/after snippets.
func NewAnnotationService(store port.AnnotationStore, resources port.ResourceProvider, events port.EventSink, contextWindow int) *AnnotationService {
	if events == nil {
		events = port.NopSink{}
	}
	return &AnnotationService{
		store:         store,
		resources:     resources,
		events:        events,
		contextWindow: contextWindow,
	}
}

// CreateRequest carries everything needed to create an annotation. Offsets
// and claimed text come from the client's selection; the service verifies
// them against the resource content before anything is persisted.
type CreateRequest struct {
	ResourceID  string
	StartOffset int
	EndOffset   int
	ClaimedText string
	Note        string
	Tags        []string
}

// Create validates the highlight range, derives context, persists the
// annotation, and emits annotation.created. The embedding starts unset and
// is attached later by the event consumer.
func (s *AnnotationService) Create(ctx context.Context, userID string, req CreateRequest) (*domain.Annotation, error) {
	content, err := s.resources.GetContent(ctx, req.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("fetch resource %s: %w", req.ResourceID, err)
	}

	if err := domain.ValidateRange(content, req.StartOffset, req.EndOffset, req.ClaimedText); err != nil {
		return nil, err
	}
	before, after := domain.ExtractContext(content, req.StartOffset, req.EndOffset, s.contextWindow)

	now := time.Now().UTC()
	a := &domain.Annotation{
		ID:              uuid.New().String(),
		ResourceID:      req.ResourceID,
		OwnerID:         userID,
		HighlightedText: req.ClaimedText,
		StartOffset:     req.StartOffset,
		EndOffset:       req.EndOffset,
		ContextBefore:   before,
		ContextAfter:    after,
		Note:            req.Note,
		Tags:            domain.NormalizeTags(req.Tags),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("persist annotation: %w", err)
	}

	s.emit(ctx, domain.EventAnnotationCreated, a)
	return a, nil
}

// Get returns the annotation if the requesting user owns it or it is shared.
func (s *AnnotationService) Get(ctx context.Context, id, userID string) (*domain.Annotation, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanRead(a, userID) {
		return nil, port.ErrAccessDenied
	}
	return a, nil
}

// Update applies an owner-only patch to note, tags, or is_shared. All other
// fields are frozen at creation; the handler rejects attempts to name them
// before the patch ever reaches here.
func (s *AnnotationService) Update(ctx context.Context, id, userID string, patch domain.Patch) (*domain.Annotation, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanModify(a, userID) {
		return nil, port.ErrAccessDenied
	}

	if patch.Tags != nil {
		normalized := domain.NormalizeTags(*patch.Tags)
		patch.Tags = &normalized
	}

	updated, err := s.store.Update(ctx, id, patch, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update annotation %s: %w", id, err)
	}

	s.emit(ctx, domain.EventAnnotationUpdated, updated)
	return updated, nil
}

// Delete removes an annotation, owner-only. Deleting an absent annotation
// fails with ErrAnnotationNotFound rather than succeeding idempotently.
func (s *AnnotationService) Delete(ctx context.Context, id, userID string) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanModify(a, userID) {
		return port.ErrAccessDenied
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.emit(ctx, domain.EventAnnotationDeleted, a)
	return nil
}

// ListByResource returns the annotations on a resource visible to the user
// (their own plus shared ones), optionally filtered to those carrying
// tagFilter, newest first, truncated to limit (0 = no limit).
func (s *AnnotationService) ListByResource(ctx context.Context, resourceID, userID, tagFilter string, limit int) ([]*domain.Annotation, error) {
	all, err := s.store.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list annotations for resource %s: %w", resourceID, err)
	}

	tagQuery := domain.NormalizeTags([]string{tagFilter})
	visible := make([]*domain.Annotation, 0, len(all))
	for _, a := range all {
		if !domain.CanRead(a, userID) {
			continue
		}
		if len(tagQuery) > 0 && !a.HasTag(tagQuery[0]) {
			continue
		}
		visible = append(visible, a)
	}
	return truncate(visible, limit), nil
}

// ListVisible returns every annotation visible to the user across all
// resources, newest first, truncated to limit (0 = no limit).
func (s *AnnotationService) ListVisible(ctx context.Context, userID string, limit int) ([]*domain.Annotation, error) {
	visible, err := s.store.ListVisible(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list visible annotations: %w", err)
	}
	return truncate(visible, limit), nil
}

func (s *AnnotationService) emit(ctx context.Context, name string, a *domain.Annotation) {
	text := a.HighlightedText
	if a.Note != "" {
		text += "\n" + a.Note
	}
	s.events.Emit(ctx, domain.Event{
		Name:         name,
		AnnotationID: a.ID,
		ResourceID:   a.ResourceID,
		OwnerID:      a.OwnerID,
		Text:         text,
		At:           time.Now().UTC(),
	})
	slog.Debug("event emitted", "name", name, "annotation_id", a.ID)
}

func truncate(list []*domain.Annotation, limit int) []*domain.Annotation {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
