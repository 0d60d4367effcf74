package usecase

import (
	"context"
	"sync"
	"time"

	bookmarks "bookmark-sync/internal/bookmarks/domain/model"
	"bookmark-sync/internal/shared/logger"
	"bookmark-sync/internal/sync/domain/model"
	"bookmark-sync/internal/sync/domain/repository"

	"go.uber.org/zap"
)

// Session is one host-context activation of the sync core: it ties the
// reconciliation engine, the subscription lifecycle, the command gateway,
// the snapshot refetch and the local broadcast together and exposes the
// command surface used by the presentation layer.
//
// A session starts with an empty collection, fills it from the first
// successful snapshot fetch, and discards it when deactivated; nothing
// persists across activations beyond what the authoritative store holds.
type Session struct {
	ownerID   string
	engine    *Reconciler
	lifecycle *LifecycleManager
	gateway   *CommandGateway
	fetcher   repository.SnapshotFetcher
	broadcast repository.Broadcast
	log       logger.Logger

	mu          sync.Mutex
	activation  *Activation
	unsubscribe func()
}

// NewSession wires a session for one owner. The grace duration controls the
// deferred transport teardown; pass 0 for the default.
func NewSession(
	ownerID string,
	store repository.BookmarkStore,
	feed repository.ChangeFeed,
	broadcast repository.Broadcast,
	fetcher repository.SnapshotFetcher,
	grace time.Duration,
	log logger.Logger,
) *Session {
	lifecycle := NewLifecycleManager(feed, grace, log)
	engine := NewReconciler(lifecycle, log)
	gateway := NewCommandGateway(store, engine, broadcast, ownerID, log)

	return &Session{
		ownerID:   ownerID,
		engine:    engine,
		lifecycle: lifecycle,
		gateway:   gateway,
		fetcher:   fetcher,
		broadcast: broadcast,
		log:       log,
	}
}

// Activate opens a fresh change-feed subscription under a new epoch, hooks
// the broadcast channel up, and seeds the collection with an authoritative
// snapshot. If the session is already active the previous activation is
// deactivated first; its stragglers are suppressed by epoch.
func (s *Session) Activate(ctx context.Context) error {
	s.mu.Lock()
	if s.activation != nil {
		s.deactivateLocked()
	}

	act, err := s.lifecycle.Activate(ctx, s.ownerID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.activation = act
	s.unsubscribe = s.broadcast.Subscribe(s.engine.Apply)
	s.mu.Unlock()

	go s.pump(act)

	// The initial snapshot is a safety net, not a gate: a failed fetch
	// leaves the feed running and a later visibility refetch corrects any
	// gap.
	if err := s.refetch(ctx); err != nil {
		s.log.Warn("Initial snapshot fetch failed",
			zap.String("ownerID", s.ownerID),
			zap.Error(err))
	}
	return nil
}

// Deactivate ends the current activation. The epoch is retired immediately;
// the transport closes after the grace interval. In-flight gateway round
// trips are not cancelled: a confirmation arriving afterwards is still
// applied, because the mutation already happened in the store.
func (s *Session) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivateLocked()
}

func (s *Session) deactivateLocked() {
	if s.activation == nil {
		return
	}
	s.lifecycle.Deactivate(s.activation)
	s.activation = nil
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// pump forwards feed events into the engine until the subscription's
// channel closes. Stale-epoch events are discarded inside the engine.
func (s *Session) pump(act *Activation) {
	for event := range act.Subscription.Events() {
		s.engine.Apply(event)
	}
	s.log.Debug("Change-feed pump stopped",
		zap.Uint64("epoch", act.Epoch))
}

// HandleVisible is called when the host context transitions from hidden to
// visible. It refetches the authoritative collection and applies it as a
// snapshot, correcting whatever the lossy channels missed.
func (s *Session) HandleVisible(ctx context.Context) error {
	return s.refetch(ctx)
}

func (s *Session) refetch(ctx context.Context) error {
	records, err := s.fetcher.FetchSnapshot(ctx, s.ownerID)
	if err != nil {
		return err
	}
	s.engine.Apply(model.NewSnapshot(records))
	return nil
}

// RequestAdd submits an add intent through the command gateway.
func (s *Session) RequestAdd(ctx context.Context, title, url string) (*bookmarks.Bookmark, error) {
	return s.gateway.AddBookmark(ctx, title, url)
}

// RequestDelete submits a delete intent through the command gateway.
func (s *Session) RequestDelete(ctx context.Context, id string) error {
	return s.gateway.DeleteBookmark(ctx, id)
}

// Bookmarks returns a read-only snapshot of the canonical collection.
func (s *Session) Bookmarks() []bookmarks.Bookmark {
	return s.engine.Bookmarks()
}

// Connectivity reflects the change-feed state of the current activation.
func (s *Session) Connectivity() model.Connectivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activation == nil {
		return model.ConnectivityClosed
	}
	return s.activation.Subscription.Status()
}
