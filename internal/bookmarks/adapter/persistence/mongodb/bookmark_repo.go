package mongodb

import (
	"context"
	"errors"
	"time"

	"bookmark-sync/internal/bookmarks/domain/model"
	"bookmark-sync/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const bookmarksCollection = "bookmarks"

// BookmarkRepository implements the persistence port using MongoDB. IDs are
// minted here as ObjectID hex strings; no other component assigns identity.
type BookmarkRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

// bookmarkDoc is the stored shape of a bookmark.
type bookmarkDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	OwnerID   string             `bson:"owner_id"`
	Title     string             `bson:"title"`
	URL       string             `bson:"url"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *bookmarkDoc) toModel() model.Bookmark {
	return model.Bookmark{
		ID:        d.ID.Hex(),
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		URL:       d.URL,
		CreatedAt: d.CreatedAt,
	}
}

// NewBookmarkRepository creates the repository and ensures its indexes.
func NewBookmarkRepository(db *mongo.Database, log logger.Logger) (*BookmarkRepository, error) {
	repo := &BookmarkRepository{
		collection: db.Collection(bookmarksCollection),
		log:        log,
	}

	// Owner + creation time index backs both List ordering and owner-scoped
	// deletes.
	ownerCreatedIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := repo.collection.Indexes().CreateOne(ctx, ownerCreatedIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// Insert persists a new bookmark, minting its ID and creation time.
func (r *BookmarkRepository) Insert(ctx context.Context, ownerID, title, url string) (*model.Bookmark, error) {
	doc := bookmarkDoc{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		Title:     title,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.log.Error("Failed to insert bookmark document",
			zap.String("ownerID", ownerID),
			zap.Error(err))
		return nil, err
	}

	stored := doc.toModel()
	return &stored, nil
}

// Delete removes the bookmark if it belongs to the owner. FindOneAndDelete
// is used instead of DeleteOne so the full prior row is available to the
// change stream; an ownership mismatch and an already-absent record both
// surface as zero affected rows with a nil error.
func (r *BookmarkRepository) Delete(ctx context.Context, id, ownerID string) (*model.Bookmark, int64, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id can never match a stored record.
		return nil, 0, nil
	}

	filter := bson.M{
		"_id":      objectID,
		"owner_id": ownerID,
	}

	var doc bookmarkDoc
	err = r.collection.FindOneAndDelete(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, 0, nil
		}
		r.log.Error("Failed to delete bookmark document",
			zap.String("bookmarkID", id),
			zap.String("ownerID", ownerID),
			zap.Error(err))
		return nil, 0, err
	}

	removed := doc.toModel()
	return &removed, 1, nil
}

// List returns the owner's bookmarks ordered by creation time descending.
func (r *BookmarkRepository) List(ctx context.Context, ownerID string) ([]model.Bookmark, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		r.log.Error("Failed to list bookmark documents",
			zap.String("ownerID", ownerID),
			zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	bookmarks := make([]model.Bookmark, 0)
	for cursor.Next(ctx) {
		var doc bookmarkDoc
		if err := cursor.Decode(&doc); err != nil {
			r.log.Warn("Failed to decode bookmark document", zap.Error(err))
			continue
		}
		bookmarks = append(bookmarks, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return bookmarks, nil
}
