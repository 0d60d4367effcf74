// Package broadcast implements the same-device, cross-context channel over
// the in-memory event bus. Delivery is fire-and-forget: no ordering relative
// to the other channels, no guarantee, effectively instantaneous when it
// happens. Only confirmed events travel here.
package broadcast

import (
	"context"

	"bookmark-sync/internal/shared/eventbus"
	"bookmark-sync/internal/shared/logger"
	"bookmark-sync/internal/sync/domain/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TopicBookmarkChanged is the bus topic all contexts share.
const TopicBookmarkChanged = "bookmark.changed"

// LocalBroadcast is one context's endpoint on the shared bus. Each endpoint
// carries its own identity so a subscriber never observes its own
// publications.
type LocalBroadcast struct {
	bus *eventbus.Bus
	id  string
	log logger.Logger
}

// NewLocalBroadcast creates an endpoint on the given bus.
func NewLocalBroadcast(bus *eventbus.Bus, log logger.Logger) *LocalBroadcast {
	return &LocalBroadcast{
		bus: bus,
		id:  uuid.NewString(),
		log: log,
	}
}

// Publish fans the event out to every other live context on the bus.
func (b *LocalBroadcast) Publish(ctx context.Context, event model.Event) {
	b.bus.Publish(ctx, eventbus.NewBasicEventWithSource(TopicBookmarkChanged, event, b.id))
}

// Subscribe registers a handler for events published by other contexts and
// returns the function that removes it.
func (b *LocalBroadcast) Subscribe(handler func(event model.Event)) func() {
	token := b.bus.Subscribe(TopicBookmarkChanged, func(ctx context.Context, busEvent eventbus.Event) error {
		if busEvent.Source() == b.id {
			// Own publication; the gateway already applied it directly.
			return nil
		}
		event, ok := busEvent.Data().(model.Event)
		if !ok {
			b.log.Warn("Dropping broadcast payload of unexpected type",
				zap.String("topic", TopicBookmarkChanged))
			return nil
		}
		handler(event)
		return nil
	})
	return func() {
		b.bus.Unsubscribe(TopicBookmarkChanged, token)
	}
}
