// Package model defines the normalized event vocabulary of the sync core.
// All three inbound channels (change feed, local broadcast, snapshot refetch)
// and the command gateway reduce their notifications to these events before
// they reach the reconciliation engine.
package model

import (
	bookmarks "bookmark-sync/internal/bookmarks/domain/model"
)

// Kind identifies the normalized event kind.
type Kind string

const (
	// EventInserted signals that a bookmark now exists.
	EventInserted Kind = "inserted"
	// EventDeleted signals that a bookmark no longer exists.
	EventDeleted Kind = "deleted"
	// EventSnapshot carries the complete authoritative collection as of
	// fetch time; applying it replaces the canonical collection wholesale.
	EventSnapshot Kind = "snapshot"
)

// Origin identifies the channel an event arrived through.
type Origin string

const (
	OriginChangeFeed Origin = "change-feed"
	OriginBroadcast  Origin = "broadcast"
	OriginGateway    Origin = "gateway"
	OriginRefetch    Origin = "refetch"
)

// Event is a normalized collection update. Epoch is meaningful only for
// change-feed events; it names the subscription generation that produced the
// event so stragglers from superseded subscriptions can be discarded.
type Event struct {
	Kind   Kind
	Origin Origin
	Epoch  uint64

	// Bookmark is set for inserted events.
	Bookmark *bookmarks.Bookmark
	// BookmarkID is set for deleted events.
	BookmarkID string
	// Bookmarks is set for snapshot events, ordered by creation time
	// descending.
	Bookmarks []bookmarks.Bookmark
}

// NewInserted builds an inserted event.
func NewInserted(origin Origin, b bookmarks.Bookmark) Event {
	return Event{Kind: EventInserted, Origin: origin, Bookmark: &b}
}

// NewDeleted builds a deleted event.
func NewDeleted(origin Origin, id string) Event {
	return Event{Kind: EventDeleted, Origin: origin, BookmarkID: id}
}

// NewSnapshot builds a snapshot event.
func NewSnapshot(records []bookmarks.Bookmark) Event {
	return Event{Kind: EventSnapshot, Origin: OriginRefetch, Bookmarks: records}
}

// WithEpoch tags the event with a change-feed epoch.
func (e Event) WithEpoch(epoch uint64) Event {
	e.Epoch = epoch
	return e
}

// Connectivity reflects the state of the change-feed subscription. It is
// observability only; no correctness decision is gated on it.
type Connectivity string

const (
	ConnectivityConnecting Connectivity = "connecting"
	ConnectivityConnected  Connectivity = "connected"
	ConnectivityError      Connectivity = "error"
	ConnectivityTimedOut   Connectivity = "timed-out"
	ConnectivityClosed     Connectivity = "closed"
)
