package domain

import "time"

// Lifecycle event names emitted by the annotation service.
const (
	EventAnnotationCreated = "annotation.created"
	EventAnnotationUpdated = "annotation.updated"
	EventAnnotationDeleted = "annotation.deleted"
)

// Event is the fire-and-forget lifecycle notification handed to the event
// sink. Consumers (like the embedding worker) receive enough to act without
// a read-back for the common case.
type Event struct {
	Name         string    `json:"name"`
	AnnotationID string    `json:"annotation_id"`
	ResourceID   string    `json:"resource_id"`
	OwnerID      string    `json:"owner_id"`
	Text         string    `json:"text,omitempty"` // highlighted text + note, for embedding
	At           time.Time `json:"at"`
}
