package usecase

import (
	"context"
	"testing"

	apperrors "bookmark-sync/internal/shared/errors"
	"bookmark-sync/internal/sync/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatewayUnderTest(store *fakeStore) (*CommandGateway, *Reconciler, *fakeBroadcast) {
	engine := NewReconciler(nil, testLogger())
	broadcast := newFakeBroadcast()
	gateway := NewCommandGateway(store, engine, broadcast, "owner-1", testLogger())
	return gateway, engine, broadcast
}

func TestCommandGateway_AddAppliesConfirmedRecordAndBroadcasts(t *testing.T) {
	store := newFakeStore()
	gateway, engine, broadcast := newGatewayUnderTest(store)

	confirmed, err := gateway.AddBookmark(context.Background(), "A", "https://a.example")
	require.NoError(t, err)
	require.NotNil(t, confirmed)
	assert.NotEmpty(t, confirmed.ID, "identity must come from the store")

	items := engine.Bookmarks()
	require.Len(t, items, 1)
	assert.Equal(t, confirmed.ID, items[0].ID)

	published := broadcast.publishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, model.EventInserted, published[0].Kind)
	assert.Equal(t, model.OriginBroadcast, published[0].Origin)
}

func TestCommandGateway_AddFailureAppliesNothing(t *testing.T) {
	store := newFakeStore()
	store.createErr = apperrors.NewAuthorizationError("access denied")
	gateway, engine, broadcast := newGatewayUnderTest(store)

	_, err := gateway.AddBookmark(context.Background(), "A", "https://a.example")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err), "auth failures propagate as-is")

	// No optimistic application, no speculative broadcast.
	assert.Empty(t, engine.Bookmarks())
	assert.Empty(t, broadcast.publishedEvents())
}

func TestCommandGateway_DeleteZeroAffectedIsNotFound(t *testing.T) {
	store := newFakeStore()
	store.affectedOverride = 0
	gateway, engine, broadcast := newGatewayUnderTest(store)

	err := gateway.DeleteBookmark(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err),
		"zero affected rows must surface as an explicit not-found failure")

	assert.Empty(t, engine.Bookmarks())
	assert.Empty(t, broadcast.publishedEvents())
}

func TestCommandGateway_DeleteAppliesAndBroadcasts(t *testing.T) {
	store := newFakeStore()
	gateway, engine, broadcast := newGatewayUnderTest(store)

	confirmed, err := gateway.AddBookmark(context.Background(), "A", "https://a.example")
	require.NoError(t, err)

	err = gateway.DeleteBookmark(context.Background(), confirmed.ID)
	require.NoError(t, err)

	assert.Empty(t, engine.Bookmarks())

	published := broadcast.publishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, model.EventDeleted, published[1].Kind)
	assert.Equal(t, confirmed.ID, published[1].BookmarkID)
}

func TestCommandGateway_DeleteRaceWithStaleFeedInsert(t *testing.T) {
	store := newFakeStore()
	checker := &fixedStaleChecker{current: 2}
	engine := NewReconciler(checker, testLogger())
	broadcast := newFakeBroadcast()
	gateway := NewCommandGateway(store, engine, broadcast, "owner-1", testLogger())

	r1, err := gateway.AddBookmark(context.Background(), "A", "https://a.example")
	require.NoError(t, err)
	r2, err := gateway.AddBookmark(context.Background(), "B", "https://b.example")
	require.NoError(t, err)

	require.NoError(t, gateway.DeleteBookmark(context.Background(), r1.ID))

	// A stale-epoch insert of the deleted record arrives concurrently and
	// is discarded; the collection stays converged.
	engine.Apply(model.NewInserted(model.OriginChangeFeed, *r1).WithEpoch(1))

	items := engine.Bookmarks()
	require.Len(t, items, 1)
	assert.Equal(t, r2.ID, items[0].ID)
}
