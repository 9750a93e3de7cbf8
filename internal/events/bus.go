// Package events provides a small in-process pub/sub channel for task
// state changes. The reminder scheduler subscribes to it so notification
// cancellation is driven by events rather than by polling the store.
package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/focushub/backend/domain"
)

// Kind classifies a task state change.
type Kind string

const (
	TaskCreated   Kind = "task_created"
	TaskUpdated   Kind = "task_updated"
	TaskCompleted Kind = "task_completed"
	TaskDeleted   Kind = "task_deleted"
)

// Event carries the task snapshot after the change was applied.
type Event struct {
	Kind Kind
	Task domain.Task
}

const subscriberBuffer = 64

// Bus fans task events out to subscribers. Publish never blocks: a
// subscriber that falls behind loses events rather than stalling writers,
// and every drop is logged so a stuck consumer is visible.
type Bus struct {
	logger *zap.Logger

	mu     sync.RWMutex
	subs   []chan Event
	closed bool
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// Subscribe registers a new subscriber channel. The channel is closed when
// the bus shuts down.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers the event to every subscriber with room in its buffer.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("event dropped for slow subscriber",
				zap.String("kind", string(event.Kind)),
				zap.String("task_id", event.Task.ID))
		}
	}
}

// Close stops delivery and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
