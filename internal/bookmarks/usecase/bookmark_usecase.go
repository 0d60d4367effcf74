package usecase

import (
	"context"

	"bookmark-sync/internal/bookmarks/domain/model"
	"bookmark-sync/internal/bookmarks/domain/repository"
	"bookmark-sync/internal/bookmarks/security"
	"bookmark-sync/internal/shared/contextkeys"
	apperrors "bookmark-sync/internal/shared/errors"
	"bookmark-sync/internal/shared/logger"

	"go.uber.org/zap"
)

// BookmarkUsecase is the authoritative store surface. Every operation
// requires a currently-valid identity in the context and is checked against
// the access policy before it touches persistence; an expired or absent
// identity is rejected here, never treated as an empty-but-successful call.
type BookmarkUsecase interface {
	// Create persists a new bookmark for the owner and publishes the
	// confirmed record on the change stream. The store mints the ID.
	Create(ctx context.Context, ownerID, title, url string) (*model.Bookmark, error)

	// Remove deletes the bookmark if it belongs to the owner and reports the
	// affected count distinctly. Zero affected rows is not an error at this
	// layer; callers decide what it means.
	Remove(ctx context.Context, id, ownerID string) (int64, error)

	// List returns the owner's bookmarks ordered by creation time descending.
	List(ctx context.Context, ownerID string) ([]model.Bookmark, error)
}

type bookmarkUsecase struct {
	repo      repository.BookmarkRepository
	publisher repository.ChangePublisher
	rules     *security.RulesEngine
	log       logger.Logger
}

// NewBookmarkUsecase creates the store-side usecase.
func NewBookmarkUsecase(
	repo repository.BookmarkRepository,
	publisher repository.ChangePublisher,
	rules *security.RulesEngine,
	log logger.Logger,
) BookmarkUsecase {
	return &bookmarkUsecase{
		repo:      repo,
		publisher: publisher,
		rules:     rules,
		log:       log,
	}
}

func (uc *bookmarkUsecase) Create(ctx context.Context, ownerID, title, url string) (*model.Bookmark, error) {
	userID, err := uc.authorize(ctx, security.OperationCreate, ownerID)
	if err != nil {
		return nil, err
	}

	candidate := &model.Bookmark{OwnerID: ownerID, Title: title, URL: url}
	if err := candidate.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error()).WithCause(err)
	}

	stored, err := uc.repo.Insert(ctx, ownerID, title, url)
	if err != nil {
		uc.log.Error("Failed to insert bookmark",
			zap.String("ownerID", ownerID),
			zap.Error(err))
		return nil, apperrors.WrapError(err, "failed to create bookmark")
	}

	uc.publishChange(ctx, model.NewInsertedEvent(*stored))

	uc.log.Info("Bookmark created",
		zap.String("bookmarkID", stored.ID),
		zap.String("ownerID", ownerID),
		zap.String("userID", userID))
	return stored, nil
}

func (uc *bookmarkUsecase) Remove(ctx context.Context, id, ownerID string) (int64, error) {
	if _, err := uc.authorize(ctx, security.OperationDelete, ownerID); err != nil {
		return 0, err
	}

	removed, affected, err := uc.repo.Delete(ctx, id, ownerID)
	if err != nil {
		uc.log.Error("Failed to delete bookmark",
			zap.String("bookmarkID", id),
			zap.String("ownerID", ownerID),
			zap.Error(err))
		return 0, apperrors.WrapError(err, "failed to delete bookmark")
	}

	if affected > 0 && removed != nil {
		// The removed record is published whole so owner-scoped subscribers
		// can observe the delete.
		uc.publishChange(ctx, model.NewDeletedEvent(*removed))
	}

	return affected, nil
}

func (uc *bookmarkUsecase) List(ctx context.Context, ownerID string) ([]model.Bookmark, error) {
	if _, err := uc.authorize(ctx, security.OperationRead, ownerID); err != nil {
		return nil, err
	}

	bookmarks, err := uc.repo.List(ctx, ownerID)
	if err != nil {
		uc.log.Error("Failed to list bookmarks",
			zap.String("ownerID", ownerID),
			zap.Error(err))
		return nil, apperrors.WrapError(err, "failed to list bookmarks")
	}
	return bookmarks, nil
}

// authorize checks the authenticated identity and the access policy for one
// operation. It returns the caller's user ID.
func (uc *bookmarkUsecase) authorize(ctx context.Context, op security.Operation, ownerID string) (string, error) {
	userID, _ := ctx.Value(contextkeys.UserIDKey).(string)
	if userID == "" {
		return "", apperrors.NewAuthenticationError("authentication required")
	}

	allowed := uc.rules.Allowed(ctx, op, security.AccessContext{
		UserID:  userID,
		OwnerID: ownerID,
	})
	if !allowed {
		uc.log.Warn("Access policy denied operation",
			zap.String("operation", string(op)),
			zap.String("userID", userID),
			zap.String("ownerID", ownerID))
		return "", apperrors.NewAuthorizationError("access denied").
			WithDetail("operation", string(op))
	}
	return userID, nil
}

// publishChange pushes a confirmed change onto the stream. Publish failures
// are logged and absorbed: the stream gives no delivery guarantee and the
// snapshot refetch path corrects any gap.
func (uc *bookmarkUsecase) publishChange(ctx context.Context, event model.ChangeEvent) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishChange(ctx, event); err != nil {
		uc.log.Warn("Failed to publish change event",
			zap.String("kind", string(event.Kind)),
			zap.String("ownerID", event.OwnerID),
			zap.Error(err))
	}
}
