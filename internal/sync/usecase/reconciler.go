package usecase

import (
	"sync"

	bookmarks "bookmark-sync/internal/bookmarks/domain/model"
	"bookmark-sync/internal/shared/logger"
	"bookmark-sync/internal/sync/domain/model"

	"go.uber.org/zap"
)

// StaleChecker decides whether a change-feed epoch has been superseded.
// The subscription lifecycle manager implements it.
type StaleChecker interface {
	Stale(epoch uint64) bool
}

// Reconciler owns the canonical in-memory collection. It is the sole
// consumer of the three inbound channels and the sole mutator of the
// collection; every other component only sends it events or reads
// snapshots.
//
// All merge rules are idempotent and commutative for distinct IDs, so events
// may be applied in arrival order regardless of the order their causes
// occurred. A snapshot is the one operation that re-establishes ground
// truth and may reorder entries.
type Reconciler struct {
	mu    sync.RWMutex
	items []bookmarks.Bookmark
	ids   map[string]struct{}
	stale StaleChecker
	log   logger.Logger
}

// NewReconciler creates an engine with an empty collection. The stale
// checker may be nil, in which case no epoch suppression happens.
func NewReconciler(stale StaleChecker, log logger.Logger) *Reconciler {
	return &Reconciler{
		items: make([]bookmarks.Bookmark, 0),
		ids:   make(map[string]struct{}),
		stale: stale,
		log:   log,
	}
}

// Apply merges one normalized event into the canonical collection. It never
// fails for well-formed input: duplicates, already-deleted IDs and stale
// epochs are absorbed silently.
func (r *Reconciler) Apply(event model.Event) {
	if event.Origin == model.OriginChangeFeed && r.stale != nil && r.stale.Stale(event.Epoch) {
		r.log.Debug("Discarding stale-epoch event",
			zap.Uint64("epoch", event.Epoch),
			zap.String("kind", string(event.Kind)))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Kind {
	case model.EventInserted:
		if event.Bookmark != nil {
			r.insert(*event.Bookmark)
		}
	case model.EventDeleted:
		r.remove(event.BookmarkID)
	case model.EventSnapshot:
		r.replace(event.Bookmarks)
	default:
		r.log.Warn("Ignoring event of unknown kind",
			zap.String("kind", string(event.Kind)))
	}
}

// insert adds a record preserving creation-time descending order. Same-ID
// inserts are no-ops: the same confirmed insert may arrive via the gateway,
// the change feed and a later snapshot. Ties on creation time keep arrival
// order; existing entries are never shifted relative to each other.
func (r *Reconciler) insert(b bookmarks.Bookmark) {
	if _, exists := r.ids[b.ID]; exists {
		return
	}

	pos := len(r.items)
	for i := range r.items {
		if r.items[i].CreatedAt.Before(b.CreatedAt) {
			pos = i
			break
		}
	}

	r.items = append(r.items, bookmarks.Bookmark{})
	copy(r.items[pos+1:], r.items[pos:])
	r.items[pos] = b
	r.ids[b.ID] = struct{}{}
}

// remove deletes by ID. Absence is not an error; the delete may already have
// been applied through another channel.
func (r *Reconciler) remove(id string) {
	if _, exists := r.ids[id]; !exists {
		return
	}
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			break
		}
	}
	delete(r.ids, id)
}

// replace swaps in the authoritative snapshot wholesale. This is the only
// path that corrects drift accumulated from lossy channels.
func (r *Reconciler) replace(records []bookmarks.Bookmark) {
	r.items = make([]bookmarks.Bookmark, len(records))
	copy(r.items, records)
	r.ids = make(map[string]struct{}, len(records))
	for i := range records {
		r.ids[records[i].ID] = struct{}{}
	}
}

// Bookmarks returns a read-only copy of the canonical collection.
func (r *Reconciler) Bookmarks() []bookmarks.Bookmark {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bookmarks.Bookmark, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the current collection size.
func (r *Reconciler) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
