package eventbus

import (
	"context"
	"sync"
	"time"

	"bookmark-sync/internal/shared/logger"
)

// Event represents a generic event carried by the bus.
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler defines the event handler function type.
type Handler func(ctx context.Context, event Event) error

// Bus is an in-memory fan-out bus. It is the backbone of the same-process
// broadcast domain: every live subscriber of an event type receives each
// published event. Delivery is best effort; a failing handler never blocks
// the publisher or other handlers.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
	logger   logger.Logger
}

// NewBus creates a new event bus instance.
func NewBus(log logger.Logger) *Bus {
	if log == nil {
		log = &noopLogger{}
	}
	return &Bus{
		handlers: make(map[string]map[int]Handler),
		logger:   log,
	}
}

// Subscribe adds a handler for a specific event type and returns a
// subscription token used to remove exactly that handler later.
func (b *Bus) Subscribe(eventType string, handler Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[int]Handler)
	}
	b.nextID++
	b.handlers[eventType][b.nextID] = handler
	b.logger.Debugf("Subscribed handler %d for event type: %s", b.nextID, eventType)
	return b.nextID
}

// Unsubscribe removes a single handler by its subscription token.
func (b *Bus) Unsubscribe(eventType string, token int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.handlers[eventType]; ok {
		delete(handlers, token)
		if len(handlers) == 0 {
			delete(b.handlers, eventType)
		}
	}
	b.logger.Debugf("Unsubscribed handler %d for event type: %s", token, eventType)
}

// Publish sends an event to all registered handlers synchronously. Handler
// errors are logged and swallowed: the broadcast domain gives no delivery
// guarantee, so a failing subscriber must not affect the others.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	registered := b.handlers[event.Type()]
	handlers := make([]Handler, 0, len(registered))
	for _, h := range registered {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debugf("No handlers found for event type: %s", event.Type())
		return
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Errorf("Handler failed for event %s: %v", event.Type(), err)
		}
	}
}

// PublishAndForget publishes an event asynchronously without waiting for
// handler completion.
func (b *Bus) PublishAndForget(ctx context.Context, event Event) {
	go b.Publish(ctx, event)
}

// SubscriberCount returns the number of handlers for an event type.
func (b *Bus) SubscriberCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// EventTypes returns all registered event types.
func (b *Bus) EventTypes() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	types := make([]string, 0, len(b.handlers))
	for eventType := range b.handlers {
		types = append(types, eventType)
	}
	return types
}

// BasicEvent implements the Event interface.
type BasicEvent struct {
	eventType string
	data      interface{}
	timestamp time.Time
	source    string
}

// NewBasicEvent creates a new basic event.
func NewBasicEvent(eventType string, data interface{}) Event {
	return NewBasicEventWithSource(eventType, data, "unknown")
}

// NewBasicEventWithSource creates a new basic event with an explicit source.
// The source identifies the publishing adapter so subscribers can filter out
// their own publications.
func NewBasicEventWithSource(eventType string, data interface{}, source string) Event {
	return &BasicEvent{
		eventType: eventType,
		data:      data,
		timestamp: time.Now(),
		source:    source,
	}
}

func (e *BasicEvent) Type() string {
	return e.eventType
}

func (e *BasicEvent) Data() interface{} {
	return e.data
}

func (e *BasicEvent) Timestamp() time.Time {
	return e.timestamp
}

func (e *BasicEvent) Source() string {
	return e.source
}

// noopLogger implements logger.Logger but does nothing (for nil logger)
type noopLogger struct{}

func (n *noopLogger) Debug(args ...interface{})                 {}
func (n *noopLogger) Info(args ...interface{})                  {}
func (n *noopLogger) Warn(args ...interface{})                  {}
func (n *noopLogger) Error(args ...interface{})                 {}
func (n *noopLogger) Fatal(args ...interface{})                 {}
func (n *noopLogger) Debugf(format string, args ...interface{}) {}
func (n *noopLogger) Infof(format string, args ...interface{})  {}
func (n *noopLogger) Warnf(format string, args ...interface{})  {}
func (n *noopLogger) Errorf(format string, args ...interface{}) {}
func (n *noopLogger) Fatalf(format string, args ...interface{}) {}
func (n *noopLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return n
}
func (n *noopLogger) WithContext(ctx context.Context) logger.Logger {
	return n
}
func (n *noopLogger) WithComponent(component string) logger.Logger {
	return n
}
