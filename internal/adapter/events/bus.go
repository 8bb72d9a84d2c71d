package events

import (
	"context"
	"sync"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/port"
)

// Bus is an in-process fan-out event sink. Publish never blocks: a
// subscriber with a full buffer misses the event, which is acceptable for
// fire-and-forget lifecycle notifications.
type Bus struct {
	mu   sync.RWMutex
	subs []chan domain.Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

var _ port.EventSink = (*Bus)(nil)

// Emit broadcasts the event to all subscribers, dropping it for any whose
// buffer is full.
func (b *Bus) Emit(_ context.Context, evt domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a new consumer and returns its event channel.
func (b *Bus) Subscribe() chan domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan domain.Event, 64)
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes a consumer and closes its channel.
func (b *Bus) Unsubscribe(ch chan domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}
