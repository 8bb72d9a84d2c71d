package port

import "context"

// ResourceProvider exposes the documents annotations point into. Resources
// are owned by the surrounding system; this core only reads them.
type ResourceProvider interface {
	// GetContent returns the raw text body of a resource, or
	// ErrResourceNotFound.
	GetContent(ctx context.Context, resourceID string) (string, error)

	// GetTitle returns the resource title, or ErrResourceNotFound.
	GetTitle(ctx context.Context, resourceID string) (string, error)

	// GetTitles resolves many titles in one round trip. Unknown ids are
	// simply missing from the result map, not an error; export needs this
	// to stay one query regardless of annotation count.
	GetTitles(ctx context.Context, resourceIDs []string) (map[string]string, error)
}
