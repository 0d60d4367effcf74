package usecase

import (
	"context"
	"sync"

	bookmarks "bookmark-sync/internal/bookmarks/domain/model"
	"bookmark-sync/internal/shared/logger"
	"bookmark-sync/internal/sync/domain/model"
	"bookmark-sync/internal/sync/domain/repository"
)

func testLogger() logger.Logger {
	return logger.NewLoggerWithConfig("error", "text")
}

// fakeFeedSubscription is an in-memory FeedSubscription driven by tests.
type fakeFeedSubscription struct {
	epoch  uint64
	events chan model.Event

	mu     sync.Mutex
	status model.Connectivity
	closed bool
}

func newFakeFeedSubscription(epoch uint64) *fakeFeedSubscription {
	return &fakeFeedSubscription{
		epoch:  epoch,
		events: make(chan model.Event, 16),
		status: model.ConnectivityConnected,
	}
}

func (f *fakeFeedSubscription) Events() <-chan model.Event {
	return f.events
}

func (f *fakeFeedSubscription) Status() model.Connectivity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeFeedSubscription) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		f.status = model.ConnectivityClosed
		close(f.events)
	}
	return nil
}

func (f *fakeFeedSubscription) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// emit pushes a feed event tagged with the subscription's epoch.
func (f *fakeFeedSubscription) emit(event model.Event) {
	f.events <- event.WithEpoch(f.epoch)
}

// fakeChangeFeed records every subscription it hands out.
type fakeChangeFeed struct {
	mu            sync.Mutex
	subscriptions []*fakeFeedSubscription
	names         []string
	err           error
}

func (f *fakeChangeFeed) Subscribe(ctx context.Context, ownerID string, epoch uint64, name string) (repository.FeedSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	sub := newFakeFeedSubscription(epoch)
	f.subscriptions = append(f.subscriptions, sub)
	f.names = append(f.names, name)
	return sub, nil
}

func (f *fakeChangeFeed) latest() *fakeFeedSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subscriptions) == 0 {
		return nil
	}
	return f.subscriptions[len(f.subscriptions)-1]
}

// fakeStore is an in-memory BookmarkStore with scriptable failures.
type fakeStore struct {
	mu        sync.Mutex
	records   map[string]bookmarks.Bookmark
	nextID    int
	createErr error
	removeErr error
	listErr   error
	// affectedOverride forces Remove to report this count when >= 0.
	affectedOverride int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:          make(map[string]bookmarks.Bookmark),
		affectedOverride: -1,
	}
}

func (s *fakeStore) Create(ctx context.Context, ownerID, title, url string) (*bookmarks.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	b := bookmarks.Bookmark{
		ID:      itoa(s.nextID),
		OwnerID: ownerID,
		Title:   title,
		URL:     url,
	}
	s.records[b.ID] = b
	return &b, nil
}

func (s *fakeStore) Remove(ctx context.Context, id, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return 0, s.removeErr
	}
	if s.affectedOverride >= 0 {
		return s.affectedOverride, nil
	}
	if b, ok := s.records[id]; ok && b.OwnerID == ownerID {
		delete(s.records, id)
		return 1, nil
	}
	return 0, nil
}

func (s *fakeStore) List(ctx context.Context, ownerID string) ([]bookmarks.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]bookmarks.Bookmark, 0, len(s.records))
	for _, b := range s.records {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// fakeBroadcast records published events and fans them out to handlers.
type fakeBroadcast struct {
	mu        sync.Mutex
	published []model.Event
	handlers  map[int]func(model.Event)
	nextToken int
}

func newFakeBroadcast() *fakeBroadcast {
	return &fakeBroadcast{handlers: make(map[int]func(model.Event))}
}

func (b *fakeBroadcast) Publish(ctx context.Context, event model.Event) {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := make([]func(model.Event), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()
	for _, h := range handlers {
		h(event)
	}
}

func (b *fakeBroadcast) Subscribe(handler func(event model.Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextToken++
	token := b.nextToken
	b.handlers[token] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, token)
	}
}

func (b *fakeBroadcast) publishedEvents() []model.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Event, len(b.published))
	copy(out, b.published)
	return out
}

// fakeFetcher serves scripted snapshots.
type fakeFetcher struct {
	mu       sync.Mutex
	snapshot []bookmarks.Bookmark
	err      error
	calls    int
}

func (f *fakeFetcher) FetchSnapshot(ctx context.Context, ownerID string) ([]bookmarks.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]bookmarks.Bookmark, len(f.snapshot))
	copy(out, f.snapshot)
	return out, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
