// Package bus fans out bot lifecycle events to in-process subscribers.
package bus

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 100

type EventType string

const (
	EventAnalysisStarted   EventType = "analysis_started"
	EventAnalysisCompleted EventType = "analysis_completed"
	EventAnalysisFailed    EventType = "analysis_failed"
	EventLanguageSelected  EventType = "language_selected"
)

type Event struct {
	Type   EventType `json:"type"`
	At     time.Time `json:"at"`
	ChatID int64     `json:"chat_id,omitempty"`
	Lang   string    `json:"lang,omitempty"`
	Error  string    `json:"error,omitempty"`
}

type Bus struct {
	subscribers      map[uint64]chan Event
	nextSubscriberID uint64

	done      chan struct{}
	closeOnce sync.Once

	mu sync.RWMutex
}

func New() *Bus {
	return &Bus{
		subscribers: make(map[uint64]chan Event),
		done:        make(chan struct{}),
	}
}

// Publish delivers event to all current subscribers without blocking on
// slow ones. It reports whether the bus accepted the event.
func (b *Bus) Publish(ctx context.Context, event Event) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return false
	default:
	}

	// The read lock is held across the sends: Close closes subscriber
	// channels under the write lock, so sending after releasing it could
	// hit a closed channel. Sends never block, so the hold is brief.
	b.mu.RLock()
	defer b.mu.RUnlock()

	select {
	case <-b.done:
		return false
	default:
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Drop instead of blocking the publisher on slow subscribers.
		}
	}

	return true
}

// Subscribe registers a buffered event channel. The returned function
// unsubscribes and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(ctx context.Context, buffer int) (<-chan Event, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	if buffer <= 0 {
		buffer = defaultBufferSize
	}

	ch := make(chan Event, buffer)

	b.mu.Lock()
	select {
	case <-b.done:
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}

	id := b.nextSubscriberID
	b.nextSubscriberID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			if eventCh, ok := b.subscribers[id]; ok {
				delete(b.subscribers, id)
				close(eventCh)
			}
			b.mu.Unlock()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-b.done:
			unsubscribe()
		}
	}()

	return ch, unsubscribe
}

func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)

		b.mu.Lock()
		for id, ch := range b.subscribers {
			close(ch)
			delete(b.subscribers, id)
		}
		b.mu.Unlock()
	})
}
