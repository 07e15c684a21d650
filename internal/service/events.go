package service

import (
	"sync"
	"time"
)

// StoreEventType labels a mutation published on the event bus.
type StoreEventType string

const (
	EventStudentToggled       StoreEventType = "student_toggled"
	EventStudentUpdated       StoreEventType = "student_updated"
	EventDriverUpdated        StoreEventType = "driver_updated"
	EventPaymentMarkedPaid    StoreEventType = "payment_marked_paid"
	EventNotificationAdded    StoreEventType = "notification_added"
	EventNotificationRead     StoreEventType = "notification_read"
	EventNotificationsCleared StoreEventType = "notifications_cleared"
	EventLocationUpdated      StoreEventType = "location_updated"
	EventPaymentOverdueSwept  StoreEventType = "payment_overdue_swept"
)

// StoreEvent tells subscribers that state changed and derived values should
// be re-read. It carries no payload beyond identity on purpose; consumers
// query the services for fresh state.
type StoreEvent struct {
	Type      StoreEventType `json:"type"`
	StudentID string         `json:"student_id,omitempty"`
	At        time.Time      `json:"at"`
}

const eventBuffer = 16

// EventBus fans out store events to subscribers. Sends never block: a slow
// subscriber drops events rather than stalling a mutation.
type EventBus struct {
	mu   sync.Mutex
	subs map[int]chan StoreEvent
	next int
}

// NewEventBus returns an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]chan StoreEvent)}
}

// Publish delivers the event to every subscriber.
func (b *EventBus) Publish(e StoreEvent) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Drop event if the subscriber buffer is full.
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the channel.
func (b *EventBus) Subscribe() (<-chan StoreEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan StoreEvent, eventBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
