package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/port"
)

// TagMode selects how a tag query combines multiple tags.
type TagMode string

const (
	// TagModeAny matches annotations sharing at least one query tag.
	TagModeAny TagMode = "any"
	// TagModeAll matches annotations carrying every query tag.
	TagModeAll TagMode = "all"
)

// ScoredAnnotation pairs an annotation with its semantic similarity score.
type ScoredAnnotation struct {
	*domain.Annotation
	Similarity float64 `json:"similarity"`
}

// SemanticResult carries semantic search hits plus a degradation flag so
// callers can tell "provider was down" apart from "nothing matched".
type SemanticResult struct {
	Hits     []ScoredAnnotation `json:"hits"`
	Degraded bool               `json:"degraded"`
}

// SearchService runs the three retrieval modes over the store. Every mode
// scopes its candidate set to "owned by the requesting user, plus anyone's
// shared annotations" before any matching or ranking happens.
type SearchService struct {
	store    port.AnnotationStore
	embedder port.Embedder // nil when no provider is configured
}

// NewSearchService creates a search service. embedder may be nil; semantic
// search then always returns a degraded empty result.
func NewSearchService(store port.AnnotationStore, embedder port.Embedder) *SearchService {
	return &SearchService{store: store, embedder: embedder}
}

// Fulltext performs a case-insensitive substring match of query against the
// highlighted text or note of each visible annotation. No relevance scoring:
// results keep the store's newest-first order, truncated to limit. An empty
// query matches nothing rather than everything.
func (s *SearchService) Fulltext(ctx context.Context, query, userID string, limit int) ([]*domain.Annotation, error) {
	if strings.TrimSpace(query) == "" {
		return []*domain.Annotation{}, nil
	}

	candidates, err := s.store.ListVisible(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fulltext candidates: %w", err)
	}

	needle := strings.ToLower(query)
	matches := make([]*domain.Annotation, 0, len(candidates))
	for _, a := range candidates {
		if strings.Contains(strings.ToLower(a.HighlightedText), needle) ||
			strings.Contains(strings.ToLower(a.Note), needle) {
			matches = append(matches, a)
		}
	}
	return truncate(matches, limit), nil
}

// ByTags returns visible annotations matching the query tags under the given
// mode. An empty query tag list returns nothing for both modes, which keeps
// the guarantee that ALL results are always a subset of ANY results.
func (s *SearchService) ByTags(ctx context.Context, tags []string, mode TagMode, userID string, limit int) ([]*domain.Annotation, error) {
	query := domain.NormalizeTags(tags)
	if len(query) == 0 {
		return []*domain.Annotation{}, nil
	}

	candidates, err := s.store.ListVisible(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("tag candidates: %w", err)
	}

	matches := make([]*domain.Annotation, 0, len(candidates))
	for _, a := range candidates {
		switch mode {
		case TagModeAll:
			if a.HasAllTags(query) {
				matches = append(matches, a)
			}
		default:
			if a.HasAnyTag(query) {
				matches = append(matches, a)
			}
		}
	}
	return truncate(matches, limit), nil
}

// Semantic embeds the query and ranks visible annotations by cosine
// similarity, highest first, ties broken newest-first. Annotations whose
// embedding has not landed yet are skipped silently — that is the expected
// state right after creation. Provider absence or failure degrades to an
// empty flagged result instead of an error; fulltext and tag search remain
// the reliable paths.
func (s *SearchService) Semantic(ctx context.Context, query, userID string, limit int, minSimilarity float64) (*SemanticResult, error) {
	if s.embedder == nil {
		return &SemanticResult{Hits: []ScoredAnnotation{}, Degraded: true}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		slog.Warn("semantic search degraded", "error", err)
		return &SemanticResult{Hits: []ScoredAnnotation{}, Degraded: true}, nil
	}

	candidates, err := s.store.ListVisible(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("semantic candidates: %w", err)
	}

	hits := make([]ScoredAnnotation, 0, len(candidates))
	for _, a := range candidates {
		if len(a.Embedding) == 0 {
			continue
		}
		sim := CosineSimilarity(queryVec, a.Embedding)
		if sim < minSimilarity {
			continue
		}
		hits = append(hits, ScoredAnnotation{Annotation: a, Similarity: sim})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].CreatedAt.After(hits[j].CreatedAt)
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return &SemanticResult{Hits: hits}, nil
}

// CosineSimilarity computes dot(a,b)/(‖a‖·‖b‖), in [-1, 1]. Mismatched
// dimensions or a zero vector score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
