package repository

import (
	"context"

	bookmarks "bookmark-sync/internal/bookmarks/domain/model"
	"bookmark-sync/internal/sync/domain/model"
)

// BookmarkStore is the authoritative store as seen from a host context.
// Every call is a single authoritative round trip; nothing here is
// optimistic or retried.
type BookmarkStore interface {
	// Create persists a new bookmark and returns the confirmed record with
	// its store-assigned ID.
	Create(ctx context.Context, ownerID, title, url string) (*bookmarks.Bookmark, error)

	// Remove deletes a bookmark and reports the affected count. Zero with a
	// nil error means nothing matched.
	Remove(ctx context.Context, id, ownerID string) (int64, error)

	// List returns the owner's full collection ordered by creation time
	// descending.
	List(ctx context.Context, ownerID string) ([]bookmarks.Bookmark, error)
}

// FeedSubscription is one live epoch-tagged change-feed subscription.
type FeedSubscription interface {
	// Events yields normalized events tagged with the subscription's epoch.
	// The channel is closed when the subscription ends.
	Events() <-chan model.Event
	// Status reports the connectivity state of the subscription.
	Status() model.Connectivity
	// Close tears down the underlying transport. Safe to call more than once.
	Close() error
}

// ChangeFeed opens owner-scoped subscriptions. Implementations guarantee
// nothing about ordering, delivery or exactly-once; they do guarantee that
// two subscriptions with distinct names are never conflated.
type ChangeFeed interface {
	Subscribe(ctx context.Context, ownerID string, epoch uint64, subscriptionName string) (FeedSubscription, error)
}

// Broadcast is the same-device, cross-context fire-and-forget channel. Only
// already-confirmed events travel here. A subscriber never receives its own
// publications.
type Broadcast interface {
	Publish(ctx context.Context, event model.Event)
	// Subscribe registers a handler and returns a function that removes it.
	Subscribe(handler func(event model.Event)) (unsubscribe func())
}

// SnapshotFetcher performs the authoritative full-collection fetch used as
// the drift-correction safety net.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, ownerID string) ([]bookmarks.Bookmark, error)
}
