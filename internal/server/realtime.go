package server

import (
	"context"
	"sync"
)

const (
	realtimeEventHeartbeat = "heartbeat"
	defaultStreamBuffer    = 16
)

// RealtimeEvent is one broadcast message delivered to stream subscribers.
type RealtimeEvent struct {
	Name    string
	Payload any
}

// RealtimeDispatcher fans variant change events out to every connected
// subscriber. Delivery is best effort: a subscriber whose buffer is full
// misses the event rather than blocking the publisher.
type RealtimeDispatcher struct {
	mu          sync.RWMutex
	subscribers map[int64]*realtimeSubscriber
	nextID      int64
	bufferSize  int
}

type realtimeSubscriber struct {
	id     int64
	stream chan RealtimeEvent
}

// NewRealtimeDispatcher constructs a dispatcher with the default buffer size.
func NewRealtimeDispatcher() *RealtimeDispatcher {
	return NewRealtimeDispatcherWithBuffer(defaultStreamBuffer)
}

// NewRealtimeDispatcherWithBuffer constructs a dispatcher with a per-subscriber
// channel buffer of the given size.
func NewRealtimeDispatcherWithBuffer(bufferSize int) *RealtimeDispatcher {
	if bufferSize <= 0 {
		bufferSize = defaultStreamBuffer
	}
	return &RealtimeDispatcher{
		subscribers: make(map[int64]*realtimeSubscriber),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a stream that receives every subsequent event until the
// context is cancelled or the cleanup function is called.
func (d *RealtimeDispatcher) Subscribe(ctx context.Context) (<-chan RealtimeEvent, func()) {
	subscriber := &realtimeSubscriber{
		id:     d.nextSequence(),
		stream: make(chan RealtimeEvent, d.bufferSize),
	}
	d.registerSubscriber(subscriber)
	cleanup := func() {
		d.unregisterSubscriber(subscriber.id)
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return subscriber.stream, cleanup
}

// Emit publishes an event to all current subscribers without blocking.
// It satisfies the catalog.Broadcaster contract.
func (d *RealtimeDispatcher) Emit(event string, payload any) {
	if event == "" {
		return
	}
	d.mu.RLock()
	if len(d.subscribers) == 0 {
		d.mu.RUnlock()
		return
	}
	copies := make([]*realtimeSubscriber, 0, len(d.subscribers))
	for _, subscriber := range d.subscribers {
		copies = append(copies, subscriber)
	}
	d.mu.RUnlock()

	message := RealtimeEvent{Name: event, Payload: payload}
	for _, subscriber := range copies {
		select {
		case subscriber.stream <- message:
		default:
		}
	}
}

func (d *RealtimeDispatcher) nextSequence() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return d.nextID
}

func (d *RealtimeDispatcher) registerSubscriber(subscriber *realtimeSubscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[subscriber.id] = subscriber
}

func (d *RealtimeDispatcher) unregisterSubscriber(subscriberID int64) {
	d.mu.Lock()
	delete(d.subscribers, subscriberID)
	d.mu.Unlock()
}
