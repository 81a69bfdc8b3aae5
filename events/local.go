package events

import (
	"context"
	"log/slog"
	"sync"
)

const subscriberBuffer = 64

// LocalBus delivers within one process. Slow subscribers drop events rather
// than block publishers.
type LocalBus struct {
	mu   sync.Mutex
	subs map[chan OrderEvent]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[chan OrderEvent]struct{})}
}

func (b *LocalBus) Publish(_ context.Context, ev OrderEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("order event dropped for slow subscriber", "order", ev.OrderID)
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context) (<-chan OrderEvent, error) {
	ch := make(chan OrderEvent, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}
