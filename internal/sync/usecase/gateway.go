package usecase

import (
	"context"

	bookmarks "bookmark-sync/internal/bookmarks/domain/model"
	apperrors "bookmark-sync/internal/shared/errors"
	"bookmark-sync/internal/shared/logger"
	"bookmark-sync/internal/sync/domain/model"
	"bookmark-sync/internal/sync/domain/repository"

	"go.uber.org/zap"
)

// CommandGateway executes mutating intents against the authoritative store.
// It never applies a tentative change: the canonical collection only sees a
// record after the store has confirmed it and assigned its identity. On
// confirmed success the event is applied to the engine first, then
// republished to sibling contexts on the local broadcast.
type CommandGateway struct {
	store     repository.BookmarkStore
	engine    *Reconciler
	broadcast repository.Broadcast
	ownerID   string
	log       logger.Logger
}

// NewCommandGateway creates a gateway bound to one owner.
func NewCommandGateway(
	store repository.BookmarkStore,
	engine *Reconciler,
	broadcast repository.Broadcast,
	ownerID string,
	log logger.Logger,
) *CommandGateway {
	return &CommandGateway{
		store:     store,
		engine:    engine,
		broadcast: broadcast,
		ownerID:   ownerID,
		log:       log,
	}
}

// AddBookmark performs the authoritative create round trip. Store failures,
// including authorization failures, propagate to the caller untouched;
// nothing is applied in that case.
func (g *CommandGateway) AddBookmark(ctx context.Context, title, url string) (*bookmarks.Bookmark, error) {
	confirmed, err := g.store.Create(ctx, g.ownerID, title, url)
	if err != nil {
		return nil, err
	}

	g.engine.Apply(model.NewInserted(model.OriginGateway, *confirmed))
	g.broadcast.Publish(ctx, model.NewInserted(model.OriginBroadcast, *confirmed))

	g.log.Debug("Bookmark add confirmed",
		zap.String("bookmarkID", confirmed.ID))
	return confirmed, nil
}

// DeleteBookmark performs the authoritative delete round trip. A store that
// reports success with zero affected rows looks exactly like a real delete
// unless the count is checked, so zero is surfaced as an explicit not-found
// failure and never as success.
func (g *CommandGateway) DeleteBookmark(ctx context.Context, id string) error {
	affected, err := g.store.Remove(ctx, id, g.ownerID)
	if err != nil {
		return err
	}
	if affected == 0 {
		g.log.Warn("Delete affected zero rows",
			zap.String("bookmarkID", id))
		return apperrors.NewNotFoundError("bookmark").
			WithCause(apperrors.ErrBookmarkNotFound).
			WithDetail("bookmarkId", id)
	}

	g.engine.Apply(model.NewDeleted(model.OriginGateway, id))
	g.broadcast.Publish(ctx, model.NewDeleted(model.OriginBroadcast, id))

	g.log.Debug("Bookmark delete confirmed",
		zap.String("bookmarkID", id))
	return nil
}
