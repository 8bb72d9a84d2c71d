package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/port"
)

// ScopeAll exports across every resource the user can see.
const ScopeAll = "all"

// ExportRecord is one flat JSON export row: the full annotation with the
// resource title denormalized in.
type ExportRecord struct {
	*domain.Annotation
	ResourceTitle string `json:"resource_title"`
}

// ExportService serializes a user's visible annotations to Markdown or JSON.
// Resource titles are resolved with one batch lookup per export, never one
// provider round trip per annotation.
type ExportService struct {
	store     port.AnnotationStore
	resources port.ResourceProvider
}

// NewExportService creates an export service.
func NewExportService(store port.AnnotationStore, resources port.ResourceProvider) *ExportService {
	return &ExportService{store: store, resources: resources}
}

// Markdown renders the visible annotations in scope as a Markdown document:
// one heading per resource, one bullet per annotation. Resources with zero
// visible annotations produce no heading at all. limit bounds the exported
// annotation count (0 = no limit).
func (s *ExportService) Markdown(ctx context.Context, scope, userID string, limit int) (string, error) {
	visible, titles, err := s.collect(ctx, scope, userID, limit)
	if err != nil {
		return "", err
	}

	// Group by resource, keeping newest-first order inside each group.
	grouped := make(map[string][]*domain.Annotation)
	order := []string{}
	for _, a := range visible {
		if _, seen := grouped[a.ResourceID]; !seen {
			order = append(order, a.ResourceID)
		}
		grouped[a.ResourceID] = append(grouped[a.ResourceID], a)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return titles[order[i]] < titles[order[j]]
	})

	var b strings.Builder
	b.WriteString("# Annotations\n")
	for _, resourceID := range order {
		title := titles[resourceID]
		if title == "" {
			title = resourceID
		}
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		for _, a := range grouped[resourceID] {
			fmt.Fprintf(&b, "- > %s\n", strings.ReplaceAll(a.HighlightedText, "\n", " "))
			if a.Note != "" {
				fmt.Fprintf(&b, "  - Note: %s\n", strings.ReplaceAll(a.Note, "\n", " "))
			}
			if len(a.Tags) > 0 {
				fmt.Fprintf(&b, "  - Tags: %s\n", strings.Join(a.Tags, ", "))
			}
		}
	}
	return b.String(), nil
}

// JSON returns the visible annotations in scope as flat records, newest
// first across the whole scope, truncated to limit (0 = no limit).
func (s *ExportService) JSON(ctx context.Context, scope, userID string, limit int) ([]ExportRecord, error) {
	visible, titles, err := s.collect(ctx, scope, userID, limit)
	if err != nil {
		return nil, err
	}

	records := make([]ExportRecord, 0, len(visible))
	for _, a := range visible {
		records = append(records, ExportRecord{Annotation: a, ResourceTitle: titles[a.ResourceID]})
	}
	return records, nil
}

// collect resolves the scoped visible annotation set plus a title map in a
// single batch. A scope naming an unknown resource fails with
// ErrResourceNotFound.
func (s *ExportService) collect(ctx context.Context, scope, userID string, limit int) ([]*domain.Annotation, map[string]string, error) {
	var (
		visible []*domain.Annotation
		err     error
	)

	if scope == "" || scope == ScopeAll {
		visible, err = s.store.ListVisible(ctx, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("collect visible annotations: %w", err)
		}
	} else {
		// Probe the resource first so an unknown scope is an error even
		// when it would export zero annotations.
		if _, err := s.resources.GetTitle(ctx, scope); err != nil {
			return nil, nil, err
		}
		all, err := s.store.ListByResource(ctx, scope)
		if err != nil {
			return nil, nil, fmt.Errorf("collect resource annotations: %w", err)
		}
		for _, a := range all {
			if domain.CanRead(a, userID) {
				visible = append(visible, a)
			}
		}
	}

	visible = truncate(visible, limit)

	ids := make([]string, 0, len(visible))
	seen := make(map[string]struct{}, len(visible))
	for _, a := range visible {
		if _, ok := seen[a.ResourceID]; ok {
			continue
		}
		seen[a.ResourceID] = struct{}{}
		ids = append(ids, a.ResourceID)
	}

	titles := map[string]string{}
	if len(ids) > 0 {
		titles, err = s.resources.GetTitles(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve resource titles: %w", err)
		}
	}
	return visible, titles, nil
}
