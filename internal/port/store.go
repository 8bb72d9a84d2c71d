package port

import (
	"context"
	"time"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
)

// AnnotationStore is the persistence boundary for annotations. It carries no
// business rules: access control, validation, and ordering semantics beyond
// created_at live in the services. Implementations must guarantee atomic
// single-record writes; no cross-record transactions are required.
type AnnotationStore interface {
	// Create persists a fully-populated annotation.
	Create(ctx context.Context, a *domain.Annotation) error

	// GetByID returns the annotation or ErrAnnotationNotFound.
	GetByID(ctx context.Context, id string) (*domain.Annotation, error)

	// Update applies the mutable-field patch as a single atomic write,
	// setting updated_at, and returns the resulting record.
	// ErrAnnotationNotFound if the id is absent.
	Update(ctx context.Context, id string, patch domain.Patch, updatedAt time.Time) (*domain.Annotation, error)

	// Delete removes the annotation. ErrAnnotationNotFound if already absent.
	Delete(ctx context.Context, id string) error

	// AttachEmbedding stores the vector for an existing annotation without
	// touching updated_at (embedding attachment is not a user mutation).
	AttachEmbedding(ctx context.Context, id string, vector []float32) error

	// ListByResource returns every annotation on a resource, created_at
	// descending.
	ListByResource(ctx context.Context, resourceID string) ([]*domain.Annotation, error)

	// ListVisible returns annotations owned by userID plus anyone's shared
	// ones, created_at descending.
	ListVisible(ctx context.Context, userID string) ([]*domain.Annotation, error)
}
