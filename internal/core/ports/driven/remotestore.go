package driven

import (
	"context"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

// RemoteStore fetches document listings, change feeds and content from the
// remote document store. Each store type (Google Drive, filesystem, in-memory
// stub) implements this interface.
type RemoteStore interface {
	// Type returns the store type identifier.
	Type() string

	// Validate checks that the store is reachable and credentials work.
	// Called once at cycle start; a failure here is fatal for the cycle.
	Validate(ctx context.Context) error

	// ListAll returns a snapshot of every current document. Used for full
	// reconciliation. Trashed or otherwise hidden documents are excluded.
	ListAll(ctx context.Context) ([]domain.RemoteDocument, error)

	// ListChanges returns raw change entries recorded since cursor,
	// together with the cursor for the next call. Returns
	// domain.ErrDeltaExpired when the store rejects the cursor as expired
	// or invalid; the caller must fall back to ListAll.
	ListChanges(ctx context.Context, cursor string) (*ChangeFeed, error)

	// StartCursor returns a cursor positioned at "now", so a subsequent
	// ListChanges reports only changes made after this call.
	StartCursor(ctx context.Context) (string, error)

	// Stat returns the current snapshot for a single document, or
	// domain.ErrNotFound when it no longer exists.
	Stat(ctx context.Context, id string) (*domain.RemoteDocument, error)

	// Fetch downloads the raw content of a document.
	Fetch(ctx context.Context, id string) ([]byte, error)

	// Close releases resources.
	Close() error
}

// ChangeFeed is one page-complete response from a remote change feed.
type ChangeFeed struct {
	// Entries are the raw changes, in the order the store reported them.
	Entries []ChangeEntry

	// NewCursor is the token to use for the next incremental call.
	NewCursor string
}

// ChangeEntry is one raw change from the remote feed, before the detector
// classifies it against local state.
type ChangeEntry struct {
	// DocumentID is the remote document id.
	DocumentID string

	// Removed is true when the document was deleted or trashed.
	Removed bool

	// Document is the current snapshot; nil when Removed.
	Document *domain.RemoteDocument
}
