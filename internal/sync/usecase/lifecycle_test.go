package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleManager_EpochsAreMonotonic(t *testing.T) {
	feed := &fakeChangeFeed{}
	m := NewLifecycleManager(feed, 10*time.Millisecond, testLogger())

	first, err := m.Activate(context.Background(), "owner-1")
	require.NoError(t, err)
	second, err := m.Activate(context.Background(), "owner-1")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Epoch)
	assert.Equal(t, uint64(2), second.Epoch)
	assert.Equal(t, uint64(2), m.CurrentEpoch())
}

func TestLifecycleManager_SubscriptionNamesNeverCollide(t *testing.T) {
	feed := &fakeChangeFeed{}
	m := NewLifecycleManager(feed, 10*time.Millisecond, testLogger())

	// Rapid remount: activations in quick succession must each get a
	// distinct subscription name so the transport never conflates them.
	for i := 0; i < 5; i++ {
		act, err := m.Activate(context.Background(), "owner-1")
		require.NoError(t, err)
		m.Deactivate(act)
	}

	seen := make(map[string]bool)
	for _, name := range feed.names {
		assert.False(t, seen[name], "subscription name reused: %s", name)
		seen[name] = true
	}
}

func TestLifecycleManager_SupersededEpochIsStale(t *testing.T) {
	feed := &fakeChangeFeed{}
	m := NewLifecycleManager(feed, 10*time.Millisecond, testLogger())

	first, err := m.Activate(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.False(t, m.Stale(first.Epoch))

	second, err := m.Activate(context.Background(), "owner-1")
	require.NoError(t, err)

	// Epoch 1 events arriving after epoch 2 is active must be stale even
	// though epoch 1 was never explicitly deactivated.
	assert.True(t, m.Stale(first.Epoch))
	assert.False(t, m.Stale(second.Epoch))
}

func TestLifecycleManager_DeactivateRetiresEpochImmediately(t *testing.T) {
	feed := &fakeChangeFeed{}
	m := NewLifecycleManager(feed, 50*time.Millisecond, testLogger())

	act, err := m.Activate(context.Background(), "owner-1")
	require.NoError(t, err)

	m.Deactivate(act)

	// The epoch is retired before the transport close happens.
	assert.True(t, m.Stale(act.Epoch))
	assert.False(t, feed.latest().isClosed(), "transport must not close before the grace interval")

	assert.Eventually(t, feed.latest().isClosed, time.Second, 5*time.Millisecond,
		"transport must close after the grace interval")
}

func TestLifecycleManager_OverlappingActivationsOnlyNewestPasses(t *testing.T) {
	feed := &fakeChangeFeed{}
	m := NewLifecycleManager(feed, 100*time.Millisecond, testLogger())

	first, err := m.Activate(context.Background(), "owner-1")
	require.NoError(t, err)
	m.Deactivate(first)

	// Re-activate inside the grace window: both transports are briefly
	// alive, but only the newest epoch's events are current.
	second, err := m.Activate(context.Background(), "owner-1")
	require.NoError(t, err)

	assert.False(t, feed.subscriptions[0].isClosed())
	assert.True(t, m.Stale(first.Epoch))
	assert.False(t, m.Stale(second.Epoch))
}

func TestLifecycleManager_ActivateFailurePropagates(t *testing.T) {
	feed := &fakeChangeFeed{err: errors.New("handshake failed")}
	m := NewLifecycleManager(feed, 10*time.Millisecond, testLogger())

	_, err := m.Activate(context.Background(), "owner-1")
	require.Error(t, err)

	// A failed activation never becomes current.
	assert.Equal(t, uint64(0), m.CurrentEpoch())
}
