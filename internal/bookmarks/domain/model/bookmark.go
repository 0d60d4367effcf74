package model

import (
	"net/url"
	"strings"
	"time"
)

// Bookmark is a single saved record. The ID is minted exclusively by the
// repository when the record is persisted; client-side components never
// assign one. Within a collection, IDs are unique and ordering is by
// CreatedAt descending.
type Bookmark struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the user-supplied fields of a bookmark before it is
// handed to the repository.
func (b *Bookmark) Validate() error {
	if strings.TrimSpace(b.OwnerID) == "" {
		return ErrMissingOwner
	}
	if strings.TrimSpace(b.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(b.URL) == "" {
		return ErrMissingURL
	}
	parsed, err := url.Parse(b.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ErrMalformedURL
	}
	return nil
}
