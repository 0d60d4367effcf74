package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookmark-sync/internal/shared/logger"
	"bookmark-sync/internal/sync/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTeardownGrace is the default delay between deactivating a
// subscription and closing its transport. Closing synchronously with a
// rapidly-following re-activation can corrupt the in-flight handshake of
// either subscription; the grace interval keeps them apart. The contract is
// "no name collision, no premature close", not this particular value.
const DefaultTeardownGrace = 2 * time.Second

// Activation is the handle returned by Activate and consumed by Deactivate.
type Activation struct {
	Epoch        uint64
	Name         string
	OwnerID      string
	Subscription repository.FeedSubscription
}

// LifecycleManager binds change-feed subscriptions to host-context
// activations. Each activation gets a fresh, monotonically increasing epoch
// and a unique subscription name, so the transport never conflates a
// superseded subscription with its replacement. It also implements
// StaleChecker for the reconciler: only the newest active epoch's events
// pass.
type LifecycleManager struct {
	feed  repository.ChangeFeed
	grace time.Duration
	log   logger.Logger

	mu      sync.Mutex
	epoch   uint64
	current uint64
	active  map[uint64]bool
}

// NewLifecycleManager creates a manager over the given feed. A non-positive
// grace falls back to DefaultTeardownGrace.
func NewLifecycleManager(feed repository.ChangeFeed, grace time.Duration, log logger.Logger) *LifecycleManager {
	if grace <= 0 {
		grace = DefaultTeardownGrace
	}
	return &LifecycleManager{
		feed:   feed,
		grace:  grace,
		log:    log,
		active: make(map[uint64]bool),
	}
}

// Activate opens a new subscription scoped to the owner and returns its
// handle. The new epoch becomes current immediately: if a previous
// activation is still inside its teardown grace window, both transports
// coexist briefly but only the new epoch's events reach the engine.
func (m *LifecycleManager) Activate(ctx context.Context, ownerID string) (*Activation, error) {
	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	m.mu.Unlock()

	name := fmt.Sprintf("bookmarks-%d-%s", epoch, uuid.NewString())

	sub, err := m.feed.Subscribe(ctx, ownerID, epoch, name)
	if err != nil {
		m.log.Error("Failed to open change-feed subscription",
			zap.Uint64("epoch", epoch),
			zap.String("ownerID", ownerID),
			zap.Error(err))
		return nil, err
	}

	m.mu.Lock()
	m.current = epoch
	m.active[epoch] = true
	m.mu.Unlock()

	m.log.Info("Change-feed subscription activated",
		zap.Uint64("epoch", epoch),
		zap.String("subscription", name))

	return &Activation{
		Epoch:        epoch,
		Name:         name,
		OwnerID:      ownerID,
		Subscription: sub,
	}, nil
}

// Deactivate marks the activation's epoch inactive immediately, so no
// further events from it are applied, and defers the transport teardown by
// the grace interval.
func (m *LifecycleManager) Deactivate(act *Activation) {
	if act == nil {
		return
	}

	m.mu.Lock()
	m.active[act.Epoch] = false
	m.mu.Unlock()

	m.log.Info("Change-feed subscription deactivated",
		zap.Uint64("epoch", act.Epoch),
		zap.String("subscription", act.Name))

	time.AfterFunc(m.grace, func() {
		if err := act.Subscription.Close(); err != nil {
			m.log.Warn("Error closing change-feed subscription",
				zap.Uint64("epoch", act.Epoch),
				zap.Error(err))
		}
		m.mu.Lock()
		delete(m.active, act.Epoch)
		m.mu.Unlock()
	})
}

// Stale reports whether an epoch has been superseded or deactivated. It
// implements StaleChecker for the reconciler.
func (m *LifecycleManager) Stale(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return epoch != m.current || !m.active[epoch]
}

// CurrentEpoch returns the most recently activated epoch.
func (m *LifecycleManager) CurrentEpoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
