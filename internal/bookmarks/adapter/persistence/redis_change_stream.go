package persistence

import (
	"context"
	"encoding/json"
	"sync"

	"bookmark-sync/internal/bookmarks/domain/model"
	"bookmark-sync/internal/bookmarks/domain/repository"
	"bookmark-sync/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannelPrefix is the Redis channel namespace of the change stream.
const DefaultChannelPrefix = "bookmarks:changes:"

// RedisChangeStream implements both sides of the change stream over Redis
// pub/sub: one channel per owner, JSON-encoded ChangeEvent payloads. Deletes
// are published with the full prior record so owner-scoped subscribers can
// observe them. Delivery is at-most-once; subscribers must tolerate gaps.
type RedisChangeStream struct {
	client        *redis.Client
	channelPrefix string
	logger        logger.Logger
}

// NewRedisChangeStream creates a change stream over the given Redis client.
func NewRedisChangeStream(client *redis.Client, channelPrefix string, log logger.Logger) *RedisChangeStream {
	if channelPrefix == "" {
		channelPrefix = DefaultChannelPrefix
	}
	return &RedisChangeStream{
		client:        client,
		channelPrefix: channelPrefix,
		logger:        log,
	}
}

func (s *RedisChangeStream) channel(ownerID string) string {
	return s.channelPrefix + ownerID
}

// PublishChange publishes a confirmed change on the owner's channel.
func (s *RedisChangeStream) PublishChange(ctx context.Context, event model.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to serialize change event", zap.Error(err))
		return err
	}

	if err := s.client.Publish(ctx, s.channel(event.OwnerID), payload).Err(); err != nil {
		s.logger.Error("Failed to publish change event",
			zap.String("channel", s.channel(event.OwnerID)),
			zap.String("kind", string(event.Kind)),
			zap.Error(err))
		return err
	}

	s.logger.Debug("Change event published",
		zap.String("channel", s.channel(event.OwnerID)),
		zap.String("kind", string(event.Kind)),
		zap.String("bookmarkID", event.Bookmark.ID))
	return nil
}

// Subscribe opens an independent pub/sub subscription scoped to the owner.
// Every call creates its own transport-level subscription, so two
// subscriptions with different names are never conflated even when they
// cover the same owner.
func (s *RedisChangeStream) Subscribe(ctx context.Context, ownerID, subscriptionName string) (repository.ChangeSubscription, error) {
	pubsub := s.client.Subscribe(ctx, s.channel(ownerID))

	// Wait for the subscription handshake so the caller knows delivery has
	// started before it relies on the feed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		s.logger.Error("Change stream subscription handshake failed",
			zap.String("subscription", subscriptionName),
			zap.String("ownerID", ownerID),
			zap.Error(err))
		return nil, err
	}

	sub := &redisChangeSubscription{
		name:   subscriptionName,
		pubsub: pubsub,
		events: make(chan model.ChangeEvent, 64),
		logger: s.logger,
	}
	go sub.run(ctx, ownerID)

	s.logger.Info("Change stream subscription established",
		zap.String("subscription", subscriptionName),
		zap.String("ownerID", ownerID))
	return sub, nil
}

type redisChangeSubscription struct {
	name   string
	pubsub *redis.PubSub
	events chan model.ChangeEvent
	logger logger.Logger

	mu     sync.Mutex
	err    error
	closed bool
}

func (s *redisChangeSubscription) run(ctx context.Context, ownerID string) {
	defer close(s.events)

	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			s.setErr(ctx.Err())
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event model.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.logger.Warn("Failed to decode change event, dropping message",
					zap.String("subscription", s.name),
					zap.Error(err))
				continue
			}
			if event.OwnerID != ownerID {
				// The channel is already owner-scoped; a mismatched payload
				// means a misconfigured publisher.
				s.logger.Warn("Change event owner mismatch, dropping message",
					zap.String("subscription", s.name),
					zap.String("eventOwner", event.OwnerID))
				continue
			}
			select {
			case s.events <- event:
			default:
				// Slow consumer: the event is dropped, the snapshot refetch
				// path corrects the gap.
				s.logger.Warn("Subscription buffer full, dropping change event",
					zap.String("subscription", s.name),
					zap.String("kind", string(event.Kind)))
			}
		}
	}
}

func (s *redisChangeSubscription) Events() <-chan model.ChangeEvent {
	return s.events
}

func (s *redisChangeSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *redisChangeSubscription) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *redisChangeSubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Debug("Closing change stream subscription",
		zap.String("subscription", s.name))
	return s.pubsub.Close()
}
