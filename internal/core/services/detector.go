package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
	"github.com/custodia-labs/syncdex/internal/logger"
)

// ChangeSet is the detector's output for one cycle.
type ChangeSet struct {
	// Events is the ordered change set. No id appears twice.
	Events []domain.ChangeEvent

	// NewCursor is the cursor to commit once every event is applied.
	NewCursor string

	// Full is true when the set came from a full reconciliation.
	Full bool
}

// ChangeDetector computes the set of remote changes since the last sync by
// consuming the remote delta feed, or by diffing a full listing against the
// revision map when no usable cursor exists.
type ChangeDetector struct {
	remote driven.RemoteStore
}

// NewChangeDetector creates a detector over the given remote store.
func NewChangeDetector(remote driven.RemoteStore) *ChangeDetector {
	return &ChangeDetector{remote: remote}
}

// Detect returns the changes since state's cursor. With an empty cursor, or
// when the remote store rejects the cursor as expired, it falls back to a
// full reconciliation against state.Revisions.
func (d *ChangeDetector) Detect(ctx context.Context, state *domain.SyncState) (*ChangeSet, error) {
	if state.Cursor != "" {
		set, err := d.detectDelta(ctx, state)
		if err == nil {
			return set, nil
		}
		if !errors.Is(err, domain.ErrDeltaExpired) {
			return nil, err
		}
		logger.Warn("Delta cursor expired, falling back to full reconciliation")
	}
	return d.detectFull(ctx, state)
}

// detectDelta converts the remote change feed into classified events.
func (d *ChangeDetector) detectDelta(ctx context.Context, state *domain.SyncState) (*ChangeSet, error) {
	feed, err := d.remote.ListChanges(ctx, state.Cursor)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}

	events := make([]domain.ChangeEvent, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if entry.Removed {
			// Deletes are idempotent downstream, so removals are
			// emitted even for ids we never indexed.
			events = append(events, domain.ChangeEvent{
				Kind:       domain.ChangeDeleted,
				DocumentID: entry.DocumentID,
			})
			continue
		}
		if entry.Document == nil {
			continue
		}
		if ev, ok := classify(entry.Document, state.Revisions); ok {
			events = append(events, ev)
		}
	}

	return &ChangeSet{
		Events:    Coalesce(events),
		NewCursor: feed.NewCursor,
	}, nil
}

// detectFull lists every remote document and diffs the id set against the
// revision map. Ids present remotely but absent or older in the map become
// Added/Modified; ids in the map but absent remotely become Deleted.
func (d *ChangeDetector) detectFull(ctx context.Context, state *domain.SyncState) (*ChangeSet, error) {
	// Take the cursor before listing so changes made during the listing
	// are re-observed by the next incremental cycle.
	cursor, err := d.remote.StartCursor(ctx)
	if err != nil {
		return nil, fmt.Errorf("start cursor: %w", err)
	}

	docs, err := d.remote.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}

	events := make([]domain.ChangeEvent, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for i := range docs {
		doc := docs[i]
		seen[doc.ID] = true
		if ev, ok := classify(&doc, state.Revisions); ok {
			events = append(events, ev)
		}
	}

	for id := range state.Revisions {
		if !seen[id] {
			events = append(events, domain.ChangeEvent{
				Kind:       domain.ChangeDeleted,
				DocumentID: id,
			})
		}
	}

	logger.Info("Full reconciliation: %d remote documents, %d changes", len(docs), len(events))

	return &ChangeSet{
		Events:    Coalesce(events),
		NewCursor: cursor,
		Full:      true,
	}, nil
}

// classify compares a remote snapshot against the revision map. Revision
// ties are excluded from the output: the index already reflects them.
func classify(doc *domain.RemoteDocument, revisions map[string]string) (domain.ChangeEvent, bool) {
	stored, indexed := revisions[doc.ID]
	if indexed && domain.CompareRevisions(doc.Revision, stored) <= 0 {
		return domain.ChangeEvent{}, false
	}

	kind := domain.ChangeAdded
	if indexed {
		kind = domain.ChangeModified
	}
	return domain.ChangeEvent{
		Kind:       kind,
		DocumentID: doc.ID,
		Revision:   doc.Revision,
		Document:   doc,
	}, true
}

// Coalesce collapses duplicate ids within one change set. The most
// destructive change wins: a Deleted entry overrides anything else for the
// same id (rename/trash races resolve to Deleted). Otherwise the highest
// revision is kept. First-seen order is preserved.
func Coalesce(events []domain.ChangeEvent) []domain.ChangeEvent {
	byID := make(map[string]int, len(events))
	out := make([]domain.ChangeEvent, 0, len(events))

	for _, ev := range events {
		pos, dup := byID[ev.DocumentID]
		if !dup {
			byID[ev.DocumentID] = len(out)
			out = append(out, ev)
			continue
		}

		prev := out[pos]
		switch {
		case prev.Kind == domain.ChangeDeleted:
			// Already resolved to the most destructive change.
		case ev.Kind == domain.ChangeDeleted:
			out[pos] = ev
		case domain.CompareRevisions(ev.Revision, prev.Revision) > 0:
			out[pos] = ev
		}
	}

	return out
}
