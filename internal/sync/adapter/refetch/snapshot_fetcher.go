// Package refetch performs the authoritative full-collection fetch used as
// the drift-correction safety net. Correctness never depends on how often it
// runs, only on it eventually running after any missed event.
package refetch

import (
	"context"

	bookmarks "bookmark-sync/internal/bookmarks/domain/model"
	"bookmark-sync/internal/shared/logger"
	"bookmark-sync/internal/sync/domain/repository"

	"go.uber.org/zap"
)

// StoreFetcher implements SnapshotFetcher against the authoritative store's
// read port. The result is complete and correct at the instant the fetch
// ran.
type StoreFetcher struct {
	store repository.BookmarkStore
	log   logger.Logger
}

// NewStoreFetcher creates a fetcher over the store port.
func NewStoreFetcher(store repository.BookmarkStore, log logger.Logger) *StoreFetcher {
	return &StoreFetcher{store: store, log: log}
}

// FetchSnapshot lists the owner's full collection.
func (f *StoreFetcher) FetchSnapshot(ctx context.Context, ownerID string) ([]bookmarks.Bookmark, error) {
	records, err := f.store.List(ctx, ownerID)
	if err != nil {
		f.log.Warn("Snapshot fetch failed",
			zap.String("ownerID", ownerID),
			zap.Error(err))
		return nil, err
	}
	return records, nil
}
