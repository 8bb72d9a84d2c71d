package port

import (
	"context"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
)

// EventSink receives lifecycle notifications. Emit is fire-and-forget: a
// sink failure must never fail the operation that produced the event.
type EventSink interface {
	Emit(ctx context.Context, evt domain.Event)
}

// NopSink discards all events. Useful when no consumer is wired.
type NopSink struct{}

func (NopSink) Emit(context.Context, domain.Event) {}
