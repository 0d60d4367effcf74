package repository

import (
	"context"

	"bookmark-sync/internal/bookmarks/domain/model"
)

// BookmarkRepository is the persistence port for the authoritative store.
type BookmarkRepository interface {
	// Insert persists a new bookmark, minting its ID and creation time, and
	// returns the stored record.
	Insert(ctx context.Context, ownerID, title, url string) (*model.Bookmark, error)

	// Delete removes the bookmark with the given id if it belongs to ownerID.
	// It returns the removed record and the affected count. A zero count with
	// a nil error means nothing matched: the record is already gone or owned
	// by someone else, and the two cases are deliberately indistinguishable.
	Delete(ctx context.Context, id, ownerID string) (*model.Bookmark, int64, error)

	// List returns all bookmarks for the owner ordered by creation time
	// descending.
	List(ctx context.Context, ownerID string) ([]model.Bookmark, error)
}

// ChangePublisher is the outbound port of the change stream. Implementations
// are fire-and-forget from the caller's perspective; delivery is not
// guaranteed.
type ChangePublisher interface {
	PublishChange(ctx context.Context, event model.ChangeEvent) error
}

// ChangeSubscription is one live owner-scoped subscription to the change
// stream.
type ChangeSubscription interface {
	// Events yields decoded change events. The channel is closed when the
	// subscription ends.
	Events() <-chan model.ChangeEvent
	// Err reports the terminal error of the subscription, if any.
	Err() error
	// Close tears down the underlying transport. Safe to call more than once.
	Close() error
}

// ChangeStream is the inbound port of the change stream. Each call to
// Subscribe opens an independent subscription under the given name; the
// transport must never conflate two subscriptions, even for the same owner.
type ChangeStream interface {
	Subscribe(ctx context.Context, ownerID, subscriptionName string) (ChangeSubscription, error)
}
