// Package memory provides an in-memory index writer. It honours the
// optimistic revision check but offers only naive substring search; used in
// tests where a real engine is overkill.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure IndexWriter implements the interface.
var _ driven.IndexWriter = (*IndexWriter)(nil)

// IndexWriter is an in-memory implementation of driven.IndexWriter.
type IndexWriter struct {
	mu   sync.RWMutex
	docs map[string]domain.IndexedDocument
}

// NewIndexWriter creates a new in-memory index writer.
func NewIndexWriter() *IndexWriter {
	return &IndexWriter{
		docs: make(map[string]domain.IndexedDocument),
	}
}

// Upsert writes the document unless the stored revision is newer or equal.
func (w *IndexWriter) Upsert(_ context.Context, id, revision, text string, meta domain.DocumentMetadata) (driven.UpsertOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.docs[id]; ok {
		if domain.CompareRevisions(revision, existing.IndexedRevision) <= 0 {
			return driven.UpsertStale, nil
		}
	}
	w.docs[id] = domain.IndexedDocument{
		ID:              id,
		Text:            text,
		Metadata:        meta,
		IndexedRevision: revision,
	}
	return driven.UpsertApplied, nil
}

// Delete removes id. Deleting an absent id succeeds.
func (w *IndexWriter) Delete(_ context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.docs, id)
	return nil
}

// BulkUpsert applies many upserts with per-id revision semantics.
func (w *IndexWriter) BulkUpsert(ctx context.Context, upserts []driven.Upsert) ([]driven.UpsertOutcome, error) {
	outcomes := make([]driven.UpsertOutcome, len(upserts))
	for i, u := range upserts {
		outcome, err := w.Upsert(ctx, u.ID, u.Revision, u.Text, u.Metadata)
		if err != nil {
			return nil, err
		}
		outcomes[i] = outcome
	}
	return outcomes, nil
}

// BulkDelete removes many ids.
func (w *IndexWriter) BulkDelete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := w.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Commit is a no-op: writes are immediately visible.
func (w *IndexWriter) Commit(_ context.Context) error {
	return nil
}

// Get returns the stored document for id.
func (w *IndexWriter) Get(_ context.Context, id string) (*domain.IndexedDocument, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Count returns the number of indexed documents.
func (w *IndexWriter) Count(_ context.Context) (uint64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return uint64(len(w.docs)), nil
}

// Search does case-insensitive substring matching over name and text. Name
// matches score higher than body matches.
func (w *IndexWriter) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	q := strings.ToLower(query)
	var results []domain.SearchResult
	for _, doc := range w.docs {
		nameHit := strings.Contains(strings.ToLower(doc.Metadata.Title), q)
		textHit := strings.Contains(strings.ToLower(doc.Text), q)
		if !nameHit && !textHit {
			continue
		}
		score := 1.0
		if nameHit {
			score = 2.0
		}
		results = append(results, domain.SearchResult{
			ID:          doc.ID,
			Name:        doc.Metadata.Title,
			Path:        doc.Metadata.Path,
			WebViewLink: doc.Metadata.WebViewLink,
			Score:       score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if opts.Offset >= len(results) {
		return nil, nil
	}
	results = results[opts.Offset:]
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// Close releases resources (no-op for memory).
func (w *IndexWriter) Close() error {
	return nil
}
