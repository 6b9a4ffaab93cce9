// Package events provides the in-memory event bus the agent publishes
// its observable lifecycle to: one thinking event per user turn, one
// pair of tool events per invocation, and a final assistant message.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Agent lifecycle, one turn = one user message.
	EventThinking         EventType = "agent.thinking"
	EventToolCall         EventType = "tool.call"
	EventToolResult       EventType = "tool.result"
	EventAssistantMessage EventType = "assistant.message"

	// Session lifecycle.
	EventSessionCreated EventType = "session.created"
	EventSessionClosed  EventType = "session.closed"
)

// EventSource identifies the component that emitted an event.
type EventSource string

const (
	SourceAgent   EventSource = "agent"
	SourceGateway EventSource = "gateway"
	SourceStore   EventSource = "store"
)

// Event represents an event in the system.
type Event struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id,omitempty"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    EventSource    `json:"source"`
	Payload   map[string]any `json:"payload"`
}

var eventIDCounter uint64

// New creates an event with the current timestamp and session context.
func New(eventType EventType, source EventSource, sessionID string, payload map[string]any) Event {
	seq := atomic.AddUint64(&eventIDCounter, 1)
	return Event{
		ID:        fmt.Sprintf("%d-%d", time.Now().UnixNano(), seq),
		SessionID: sessionID,
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Payload:   payload,
	}
}

// Subscriber is a function that receives events.
type Subscriber func(Event)

type subscription struct {
	eventTypes []EventType
	handler    Subscriber
}

// Bus fans events out to subscribers and keeps a bounded history.
// Publish never blocks: when the buffer is full the event is dropped.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscription
	nextID      int
	eventChan   chan Event
	history     *ringBuffer
	closed      bool
	done        chan struct{}
}

// NewBus creates a bus with the given buffer and history size.
func NewBus(size int) *Bus {
	b := &Bus{
		subscribers: make(map[int]*subscription),
		eventChan:   make(chan Event, size),
		history:     newRingBuffer(size),
		done:        make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *Bus) dispatch() {
	for {
		select {
		case event := <-b.eventChan:
			b.history.add(event)
			b.notify(event)
		case <-b.done:
			return
		}
	}
}

func (b *Bus) notify(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if sub.matches(event) {
			go sub.handler(event)
		}
	}
}

func (s *subscription) matches(event Event) bool {
	if len(s.eventTypes) == 0 {
		return true
	}
	for _, t := range s.eventTypes {
		if t == event.Type {
			return true
		}
	}
	return false
}

// Publish sends an event to the bus. No-op after Close.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return
	}

	select {
	case b.eventChan <- event:
	default:
	}
}

// Subscribe registers a handler for specific event types (all types
// when none given). Returns an unsubscribe function.
func (b *Bus) Subscribe(handler Subscriber, eventTypes ...EventType) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = &subscription{eventTypes: eventTypes, handler: handler}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// History returns up to limit recent events, oldest first.
func (b *Bus) History(limit int) []Event {
	return b.history.get(limit)
}

// Close shuts down the bus. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

// ringBuffer is a circular buffer of recent events.
type ringBuffer struct {
	mu     sync.RWMutex
	events []Event
	pos    int
	count  int
}

func newRingBuffer(size int) *ringBuffer {
	if size <= 0 {
		size = 1
	}
	return &ringBuffer{events: make([]Event, size)}
}

func (r *ringBuffer) add(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.pos] = event
	r.pos = (r.pos + 1) % len(r.events)
	if r.count < len(r.events) {
		r.count++
	}
}

func (r *ringBuffer) get(n int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > r.count {
		n = r.count
	}

	out := make([]Event, 0, n)
	start := r.pos - n
	if start < 0 {
		start += len(r.events)
	}
	for i := 0; i < n; i++ {
		out = append(out, r.events[(start+i)%len(r.events)])
	}
	return out
}
