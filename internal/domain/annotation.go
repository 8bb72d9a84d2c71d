package domain

import (
	"strings"
	"time"
)

// Annotation represents a highlighted text range inside a resource, with an
// optional note, tags, and an embedding attached asynchronously after creation.
type Annotation struct {
	ID              string    `json:"id"               db:"id"`
	ResourceID      string    `json:"resource_id"      db:"resource_id"`
	OwnerID         string    `json:"owner_id"         db:"owner_id"`
	HighlightedText string    `json:"highlighted_text" db:"highlighted_text"`
	StartOffset     int       `json:"start_offset"     db:"start_offset"`
	EndOffset       int       `json:"end_offset"       db:"end_offset"`
	ContextBefore   string    `json:"context_before"   db:"context_before"`
	ContextAfter    string    `json:"context_after"    db:"context_after"`
	Note            string    `json:"note,omitempty"   db:"note"`
	Tags            []string  `json:"tags"             db:"tags"`
	IsShared        bool      `json:"is_shared"        db:"is_shared"`
	Embedding       []float32 `json:"-"                db:"embedding"`
	CreatedAt       time.Time `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"       db:"updated_at"`
}

// HasTag reports whether the annotation carries the given (normalized) tag.
func (a *Annotation) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the annotation's tag set intersects tags.
func (a *Annotation) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if a.HasTag(t) {
			return true
		}
	}
	return false
}

// HasAllTags reports whether the annotation's tag set is a superset of tags.
func (a *Annotation) HasAllTags(tags []string) bool {
	for _, t := range tags {
		if !a.HasTag(t) {
			return false
		}
	}
	return true
}

// Resource is the external document annotations point into. Read-only here:
// resources are owned by the surrounding system, this service only consumes
// their content and title.
type Resource struct {
	ID      string `json:"id"      db:"id"`
	Title   string `json:"title"   db:"title"`
	Content string `json:"content" db:"content"`
}

// Patch carries the owner-mutable annotation fields. Nil means "leave as is".
type Patch struct {
	Note     *string
	Tags     *[]string
	IsShared *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Note == nil && p.Tags == nil && p.IsShared == nil
}

// NormalizeTags trims, lowercases, and deduplicates a tag list, dropping
// empties and preserving first-occurrence order. Applied both when writing
// annotations and to query tag lists, so matching is case-insensitive.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// mutableFields are the only annotation fields an owner may change after
// creation. Offsets, highlighted text, and identity fields are frozen.
var mutableFields = map[string]struct{}{
	"note":      {},
	"tags":      {},
	"is_shared": {},
}

// ValidateMutableFields rejects any update naming a field outside the
// mutable set with ValidationError("invalid_mutation_target").
func ValidateMutableFields(keys []string) error {
	for _, k := range keys {
		if _, ok := mutableFields[k]; !ok {
			return NewValidationError(ReasonInvalidMutationTarget, "field %q is immutable", k)
		}
	}
	return nil
}
