package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus(nil)

	var first, second int
	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		first++
		return nil
	})
	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		second++
		return nil
	})

	bus.Publish(context.Background(), NewBasicEvent("test.event", "payload"))

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestBus_UnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	bus := NewBus(nil)

	var kept, removed int
	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		kept++
		return nil
	})
	token := bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		removed++
		return nil
	})

	bus.Unsubscribe("test.event", token)
	bus.Publish(context.Background(), NewBasicEvent("test.event", nil))

	assert.Equal(t, 1, kept)
	assert.Zero(t, removed)
	assert.Equal(t, 1, bus.SubscriberCount("test.event"))
}

func TestBus_HandlerErrorDoesNotBlockOthers(t *testing.T) {
	bus := NewBus(nil)

	var delivered int
	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		return errors.New("handler failure")
	})
	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		delivered++
		return nil
	})

	bus.Publish(context.Background(), NewBasicEvent("test.event", nil))

	assert.Equal(t, 1, delivered)
}

func TestBus_EventCarriesSource(t *testing.T) {
	bus := NewBus(nil)

	var source string
	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		source = event.Source()
		return nil
	})

	bus.Publish(context.Background(), NewBasicEventWithSource("test.event", nil, "ctx-42"))
	assert.Equal(t, "ctx-42", source)
}

func TestBus_PublishWithoutSubscribersIsHarmless(t *testing.T) {
	bus := NewBus(nil)
	bus.Publish(context.Background(), NewBasicEvent("nobody.listens", nil))
	assert.Empty(t, bus.EventTypes())
}
