package model

import (
	"errors"
	"time"
)

// Model validation errors.
var (
	ErrMissingOwner = errors.New("bookmark owner is required")
	ErrMissingTitle = errors.New("bookmark title is required")
	ErrMissingURL   = errors.New("bookmark url is required")
	ErrMalformedURL = errors.New("bookmark url is malformed")
)

// ChangeKind defines the kind of change-stream notification.
type ChangeKind string

const (
	// ChangeKindInserted signifies a bookmark now exists.
	ChangeKindInserted ChangeKind = "inserted"
	// ChangeKindDeleted signifies a bookmark no longer exists.
	ChangeKindDeleted ChangeKind = "deleted"
)

// ChangeEvent is the wire format of the change stream. Deletions carry the
// full prior record, not just the ID: without the owner attached to a
// removal, owner-scoped subscribers could never observe it. Publishers must
// honor this; it is a correctness precondition of the feed, not an
// optimization.
type ChangeEvent struct {
	Kind      ChangeKind `json:"kind"`
	OwnerID   string     `json:"ownerId"`
	Bookmark  Bookmark   `json:"bookmark"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewInsertedEvent builds a ChangeEvent for a confirmed insert.
func NewInsertedEvent(b Bookmark) ChangeEvent {
	return ChangeEvent{
		Kind:      ChangeKindInserted,
		OwnerID:   b.OwnerID,
		Bookmark:  b,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeletedEvent builds a ChangeEvent for a confirmed delete. The removed
// record is attached whole so the event stays observable under owner
// scoping.
func NewDeletedEvent(removed Bookmark) ChangeEvent {
	return ChangeEvent{
		Kind:      ChangeKindDeleted,
		OwnerID:   removed.OwnerID,
		Bookmark:  removed,
		Timestamp: time.Now().UTC(),
	}
}
