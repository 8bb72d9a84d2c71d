package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrAccessDenied       = errors.New("access denied")

	// ErrEmbedderUnavailable marks the one failure the core absorbs instead
	// of propagating: semantic search degrades to an empty, flagged result.
	ErrEmbedderUnavailable = errors.New("embedding provider unavailable")
)
