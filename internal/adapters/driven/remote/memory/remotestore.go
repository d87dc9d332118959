// Package memory provides an in-memory remote store. It keeps a change log
// with integer cursors so delta listing behaves like a real remote feed.
// Used in tests and demos.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure RemoteStore implements the interface.
var _ driven.RemoteStore = (*RemoteStore)(nil)

// RemoteStore is an in-memory implementation of driven.RemoteStore.
type RemoteStore struct {
	mu      sync.RWMutex
	docs    map[string]domain.RemoteDocument
	content map[string][]byte
	log     []driven.ChangeEntry

	// horizon is the oldest cursor ListChanges still accepts. Advance it
	// with ExpireBefore to simulate delta expiry.
	horizon int
}

// NewRemoteStore creates a new in-memory remote store.
func NewRemoteStore() *RemoteStore {
	return &RemoteStore{
		docs:    make(map[string]domain.RemoteDocument),
		content: make(map[string][]byte),
	}
}

// Put adds or updates a document and appends to the change log.
func (r *RemoteStore) Put(doc domain.RemoteDocument, content []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	r.content[doc.ID] = content
	snapshot := doc
	r.log = append(r.log, driven.ChangeEntry{DocumentID: doc.ID, Document: &snapshot})
}

// Remove deletes a document and appends a removal to the change log.
func (r *RemoteStore) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	delete(r.content, id)
	r.log = append(r.log, driven.ChangeEntry{DocumentID: id, Removed: true})
}

// ExpireBefore invalidates all cursors below the current log position.
func (r *RemoteStore) ExpireBefore() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.horizon = len(r.log)
}

// Type returns the store type identifier.
func (r *RemoteStore) Type() string {
	return "memory"
}

// Validate always succeeds.
func (r *RemoteStore) Validate(_ context.Context) error {
	return nil
}

// ListAll returns a snapshot of every current document.
func (r *RemoteStore) ListAll(_ context.Context) ([]domain.RemoteDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RemoteDocument, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	return out, nil
}

// ListChanges returns log entries recorded at or after cursor.
func (r *RemoteStore) ListChanges(_ context.Context, cursor string) (*driven.ChangeFeed, error) {
	pos, err := strconv.Atoi(cursor)
	if err != nil {
		return nil, domain.ErrDeltaExpired
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if pos < r.horizon || pos > len(r.log) {
		return nil, domain.ErrDeltaExpired
	}

	entries := make([]driven.ChangeEntry, len(r.log)-pos)
	copy(entries, r.log[pos:])
	return &driven.ChangeFeed{
		Entries:   entries,
		NewCursor: strconv.Itoa(len(r.log)),
	}, nil
}

// StartCursor returns a cursor positioned at the end of the log.
func (r *RemoteStore) StartCursor(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return strconv.Itoa(len(r.log)), nil
}

// Stat returns the current snapshot for one document.
func (r *RemoteStore) Stat(_ context.Context, id string) (*domain.RemoteDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Fetch returns the raw content of a document.
func (r *RemoteStore) Fetch(_ context.Context, id string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	content, ok := r.content[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

// Close releases resources (no-op for memory).
func (r *RemoteStore) Close() error {
	return nil
}
