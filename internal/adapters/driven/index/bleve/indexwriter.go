// Package bleve implements the index writer on a Bleve v2 full-text index.
//
// Documents are stored with their revision so writes can be rejected when
// they would move a document backwards. The revision check and the write are
// serialised per document id with striped locks; Bleve itself only
// guarantees atomicity per batch.
package bleve

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	index "github.com/blevesearch/bleve_index_api"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure IndexWriter implements the interface.
var _ driven.IndexWriter = (*IndexWriter)(nil)

// lockStripes is the number of per-id lock stripes.
const lockStripes = 64

// indexedFields is the document shape stored in Bleve.
type indexedFields struct {
	Text        string  `json:"text"`
	Name        string  `json:"name"`
	Author      string  `json:"author"`
	Path        string  `json:"path"`
	WebViewLink string  `json:"web_view_link"`
	MIMEType    string  `json:"mime_type"`
	PageCount   float64 `json:"page_count"`
	Revision    string  `json:"revision"`
}

// IndexWriter is a Bleve-backed implementation of driven.IndexWriter.
type IndexWriter struct {
	idx     bleve.Index
	stripes [lockStripes]sync.Mutex

	mu     sync.RWMutex
	closed bool
}

// New opens or creates a Bleve index at path. An empty path creates an
// in-memory index.
func New(path string) (*IndexWriter, error) {
	m, err := buildMapping()
	if err != nil {
		return nil, fmt.Errorf("build index mapping: %w", err)
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			return nil, fmt.Errorf("create index directory: %w", mkErr)
		}
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, m)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &IndexWriter{idx: idx}, nil
}

// buildMapping maps searchable fields through the standard analyzer and
// bookkeeping fields through the keyword analyzer so they match exactly.
func buildMapping() (*mapping.IndexMappingImpl, error) {
	m := bleve.NewIndexMapping()

	textField := bleve.NewTextFieldMapping()

	keywordField := bleve.NewKeywordFieldMapping()
	keywordField.IncludeInAll = false

	numField := bleve.NewNumericFieldMapping()
	numField.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("text", textField)
	doc.AddFieldMappingsAt("name", textField)
	doc.AddFieldMappingsAt("author", textField)
	doc.AddFieldMappingsAt("path", keywordField)
	doc.AddFieldMappingsAt("web_view_link", keywordField)
	doc.AddFieldMappingsAt("mime_type", keywordField)
	doc.AddFieldMappingsAt("page_count", numField)
	doc.AddFieldMappingsAt("revision", keywordField)

	m.DefaultMapping = doc
	return m, nil
}

func (w *IndexWriter) stripeIndex(id string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32() % lockStripes
}

func (w *IndexWriter) stripe(id string) *sync.Mutex {
	return &w.stripes[w.stripeIndex(id)]
}

// lockAll locks every stripe covering ids, in ascending stripe order so
// concurrent bulk writers cannot deadlock, and returns the unlock.
func (w *IndexWriter) lockAll(ids []string) func() {
	var held [lockStripes]bool
	for _, id := range ids {
		held[w.stripeIndex(id)] = true
	}
	for i := range w.stripes {
		if held[i] {
			w.stripes[i].Lock()
		}
	}
	return func() {
		for i := range w.stripes {
			if held[i] {
				w.stripes[i].Unlock()
			}
		}
	}
}

// Upsert writes the document unless the stored revision is newer or equal.
func (w *IndexWriter) Upsert(_ context.Context, id, revision, text string, meta domain.DocumentMetadata) (driven.UpsertOutcome, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return 0, domain.ErrIndexUnavailable
	}

	lock := w.stripe(id)
	lock.Lock()
	defer lock.Unlock()

	stored, err := w.storedRevision(id)
	if err != nil {
		return 0, err
	}
	if stored != "" && domain.CompareRevisions(revision, stored) <= 0 {
		return driven.UpsertStale, nil
	}

	fields := indexedFields{
		Text:        text,
		Name:        meta.Title,
		Author:      meta.Author,
		Path:        meta.Path,
		WebViewLink: meta.WebViewLink,
		MIMEType:    meta.MIMEType,
		PageCount:   float64(meta.PageCount),
		Revision:    revision,
	}
	if err := w.idx.Index(id, fields); err != nil {
		return 0, fmt.Errorf("index document %s: %w", id, err)
	}
	return driven.UpsertApplied, nil
}

// Delete removes id. Deleting an absent id succeeds.
func (w *IndexWriter) Delete(_ context.Context, id string) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return domain.ErrIndexUnavailable
	}

	lock := w.stripe(id)
	lock.Lock()
	defer lock.Unlock()

	if err := w.idx.Delete(id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// BulkUpsert applies many upserts in one Bleve batch, keeping the per-id
// revision semantics of Upsert.
func (w *IndexWriter) BulkUpsert(_ context.Context, upserts []driven.Upsert) ([]driven.UpsertOutcome, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil, domain.ErrIndexUnavailable
	}

	ids := make([]string, len(upserts))
	for i, u := range upserts {
		ids[i] = u.ID
	}
	// The touched stripes stay locked across the revision checks and the
	// batch write; a concurrent Upsert landing in between would otherwise
	// be overwritten by an older revision from this batch.
	unlock := w.lockAll(ids)
	defer unlock()

	outcomes := make([]driven.UpsertOutcome, len(upserts))
	batch := w.idx.NewBatch()
	// Within one batch the last write per id wins, so track the highest
	// revision seen per id to keep the outcome slice consistent.
	pending := make(map[string]string, len(upserts))

	for i, u := range upserts {
		stored, err := w.storedRevision(u.ID)
		if err != nil {
			return nil, err
		}
		if rev, ok := pending[u.ID]; ok && domain.CompareRevisions(stored, rev) < 0 {
			stored = rev
		}
		if stored != "" && domain.CompareRevisions(u.Revision, stored) <= 0 {
			outcomes[i] = driven.UpsertStale
			continue
		}

		fields := indexedFields{
			Text:        u.Text,
			Name:        u.Metadata.Title,
			Author:      u.Metadata.Author,
			Path:        u.Metadata.Path,
			WebViewLink: u.Metadata.WebViewLink,
			MIMEType:    u.Metadata.MIMEType,
			PageCount:   float64(u.Metadata.PageCount),
			Revision:    u.Revision,
		}
		if err := batch.Index(u.ID, fields); err != nil {
			return nil, fmt.Errorf("batch document %s: %w", u.ID, err)
		}
		pending[u.ID] = u.Revision
		outcomes[i] = driven.UpsertApplied
	}

	if err := w.idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("execute batch: %w", err)
	}
	return outcomes, nil
}

// BulkDelete removes many ids in one batch.
func (w *IndexWriter) BulkDelete(_ context.Context, ids []string) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return domain.ErrIndexUnavailable
	}

	unlock := w.lockAll(ids)
	defer unlock()

	batch := w.idx.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := w.idx.Batch(batch); err != nil {
		return fmt.Errorf("execute delete batch: %w", err)
	}
	return nil
}

// Commit is a no-op: Bleve persists each batch synchronously.
func (w *IndexWriter) Commit(_ context.Context) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return domain.ErrIndexUnavailable
	}
	return nil
}

// Get returns the stored document for id.
func (w *IndexWriter) Get(_ context.Context, id string) (*domain.IndexedDocument, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil, domain.ErrIndexUnavailable
	}

	fields, err := w.storedFields(id)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, domain.ErrNotFound
	}

	return &domain.IndexedDocument{
		ID:   id,
		Text: fields.Text,
		Metadata: domain.DocumentMetadata{
			Title:       fields.Name,
			Author:      fields.Author,
			PageCount:   int(fields.PageCount),
			MIMEType:    fields.MIMEType,
			Path:        fields.Path,
			WebViewLink: fields.WebViewLink,
		},
		IndexedRevision: fields.Revision,
	}, nil
}

// Count returns the number of indexed documents.
func (w *IndexWriter) Count(_ context.Context) (uint64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return 0, domain.ErrIndexUnavailable
	}
	return w.idx.DocCount()
}

// Search runs a fuzzy multi-field query. Name matches weigh double, matching
// the intuition that a hit in the file name is a stronger signal than a hit
// somewhere in the body.
func (w *IndexWriter) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil, domain.ErrIndexUnavailable
	}

	nameQuery := bleve.NewMatchQuery(query)
	nameQuery.SetField("name")
	nameQuery.SetBoost(2.0)
	nameQuery.SetFuzziness(1)

	textQuery := bleve.NewMatchQuery(query)
	textQuery.SetField("text")
	textQuery.SetFuzziness(1)

	authorQuery := bleve.NewMatchQuery(query)
	authorQuery.SetField("author")

	q := bleve.NewDisjunctionQuery(nameQuery, textQuery, authorQuery)

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	req := bleve.NewSearchRequestOptions(q, limit, opts.Offset, false)
	req.Fields = []string{"name", "path", "web_view_link"}
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Highlight.AddField("text")
	req.Highlight.AddField("name")

	res, err := w.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := domain.SearchResult{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if v, ok := hit.Fields["name"].(string); ok {
			r.Name = v
		}
		if v, ok := hit.Fields["path"].(string); ok {
			r.Path = v
		}
		if v, ok := hit.Fields["web_view_link"].(string); ok {
			r.WebViewLink = v
		}
		if len(hit.Fragments) > 0 {
			r.Highlights = make(map[string][]string, len(hit.Fragments))
			for field, frags := range hit.Fragments {
				r.Highlights[field] = frags
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// Close releases the underlying index.
func (w *IndexWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.idx.Close()
}

// storedRevision reads the revision field for id, or "" when absent.
func (w *IndexWriter) storedRevision(id string) (string, error) {
	fields, err := w.storedFields(id)
	if err != nil || fields == nil {
		return "", err
	}
	return fields.Revision, nil
}

// storedFields reconstructs the stored document via the low-level document
// API. Returns nil without error when the id is not indexed.
func (w *IndexWriter) storedFields(id string) (*indexedFields, error) {
	doc, err := w.idx.Document(id)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	if doc == nil {
		return nil, nil
	}

	var fields indexedFields
	doc.VisitFields(func(f index.Field) {
		switch f.Name() {
		case "text":
			fields.Text = string(f.Value())
		case "name":
			fields.Name = string(f.Value())
		case "author":
			fields.Author = string(f.Value())
		case "path":
			fields.Path = string(f.Value())
		case "web_view_link":
			fields.WebViewLink = string(f.Value())
		case "mime_type":
			fields.MIMEType = string(f.Value())
		case "page_count":
			if nf, ok := f.(index.NumericField); ok {
				if n, err := nf.Number(); err == nil {
					fields.PageCount = n
				}
			}
		case "revision":
			fields.Revision = string(f.Value())
		}
	})
	return &fields, nil
}
