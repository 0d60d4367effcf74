// Package changefeed adapts the store's change stream into the sync core's
// normalized, epoch-tagged event feed.
package changefeed

import (
	"context"
	"errors"
	"sync/atomic"

	bookmarksmodel "bookmark-sync/internal/bookmarks/domain/model"
	bookmarksrepo "bookmark-sync/internal/bookmarks/domain/repository"
	"bookmark-sync/internal/shared/logger"
	"bookmark-sync/internal/sync/domain/model"
	"bookmark-sync/internal/sync/domain/repository"

	"go.uber.org/zap"
)

// Adapter implements the sync ChangeFeed port over a store change stream.
// It makes no promises the underlying stream doesn't: events may be dropped,
// duplicated or reordered; every event it does deliver is tagged with the
// epoch captured at subscribe time.
type Adapter struct {
	stream bookmarksrepo.ChangeStream
	log    logger.Logger
}

// NewAdapter wraps a change stream.
func NewAdapter(stream bookmarksrepo.ChangeStream, log logger.Logger) *Adapter {
	return &Adapter{stream: stream, log: log}
}

// Subscribe opens an owner-scoped subscription under the given unique name.
func (a *Adapter) Subscribe(ctx context.Context, ownerID string, epoch uint64, subscriptionName string) (repository.FeedSubscription, error) {
	sub := &feedSubscription{
		epoch:  epoch,
		events: make(chan model.Event, 64),
		log:    a.log,
	}
	sub.status.Store(model.ConnectivityConnecting)

	inner, err := a.stream.Subscribe(ctx, ownerID, subscriptionName)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			sub.status.Store(model.ConnectivityTimedOut)
		} else {
			sub.status.Store(model.ConnectivityError)
		}
		return nil, err
	}

	sub.inner = inner
	sub.status.Store(model.ConnectivityConnected)
	go sub.run()
	return sub, nil
}

type feedSubscription struct {
	inner  bookmarksrepo.ChangeSubscription
	epoch  uint64
	events chan model.Event
	status atomic.Value
	closed atomic.Bool
	log    logger.Logger
}

// run translates raw change events into normalized sync events until the
// underlying subscription ends.
func (s *feedSubscription) run() {
	defer close(s.events)

	for change := range s.inner.Events() {
		event, ok := s.normalize(change)
		if !ok {
			continue
		}
		s.events <- event
	}

	// Channel closed: settle the terminal connectivity state.
	switch err := s.inner.Err(); {
	case s.closed.Load():
		s.status.Store(model.ConnectivityClosed)
	case errors.Is(err, context.DeadlineExceeded):
		s.status.Store(model.ConnectivityTimedOut)
	case err != nil:
		s.status.Store(model.ConnectivityError)
	default:
		s.status.Store(model.ConnectivityClosed)
	}
}

func (s *feedSubscription) normalize(change bookmarksmodel.ChangeEvent) (model.Event, bool) {
	switch change.Kind {
	case bookmarksmodel.ChangeKindInserted:
		return model.NewInserted(model.OriginChangeFeed, change.Bookmark).WithEpoch(s.epoch), true
	case bookmarksmodel.ChangeKindDeleted:
		return model.NewDeleted(model.OriginChangeFeed, change.Bookmark.ID).WithEpoch(s.epoch), true
	default:
		s.log.Warn("Dropping change event of unknown kind",
			zap.String("kind", string(change.Kind)))
		return model.Event{}, false
	}
}

func (s *feedSubscription) Events() <-chan model.Event {
	return s.events
}

func (s *feedSubscription) Status() model.Connectivity {
	return s.status.Load().(model.Connectivity)
}

func (s *feedSubscription) Close() error {
	s.closed.Store(true)
	return s.inner.Close()
}
