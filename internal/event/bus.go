// Package event fans committed domain events out to in-process consumers
// (SSE clients, the webhook notifier). Delivery is best effort: a subscriber
// whose buffer is full misses the event and can catch up from the outbox feed.
package event

import (
	"sync"

	"go.uber.org/zap"

	"github.com/fadilmartias/jobmarket/internal/model"
)

// Publisher is what usecases need from the bus.
type Publisher interface {
	Publish(events ...model.SessionEvent)
}

type subscriber struct {
	name string
	ch   chan model.SessionEvent
}

type Bus struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
	log    *zap.SugaredLogger
}

func NewBus(log *zap.SugaredLogger) *Bus {
	return &Bus{subs: make(map[*subscriber]struct{}), log: log}
}

// Subscribe registers a consumer with a buffer of size n. The returned func
// unsubscribes and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(name string, n int) (<-chan model.SessionEvent, func()) {
	if n < 1 {
		n = 1
	}
	s := &subscriber{name: name, ch: make(chan model.SessionEvent, n)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[s]; ok {
				delete(b.subs, s)
				close(s.ch)
			}
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Publish(events ...model.SessionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ev := range events {
		for s := range b.subs {
			select {
			case s.ch <- ev:
			default:
				b.log.Warnw("Event dropped, subscriber buffer full",
					"subscriber", s.name,
					"kind", ev.Kind,
					"seq", ev.Seq,
				)
			}
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel; later Publish calls are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
		delete(b.subs, s)
	}
}
