package driven

import (
	"context"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

// UpsertOutcome reports what an upsert did.
type UpsertOutcome int

const (
	// UpsertApplied means the document was written.
	UpsertApplied UpsertOutcome = iota

	// UpsertStale means the write carried a revision at or below the
	// stored one and was rejected. Expected under races; not an error.
	UpsertStale
)

// Upsert is one batched write for BulkUpsert.
type Upsert struct {
	ID       string
	Revision string
	Text     string
	Metadata domain.DocumentMetadata
}

// IndexWriter applies upserts and deletes to the search index.
//
// Implementations enforce the optimistic revision check internally: a write
// applies only if its revision is newer than the stored one, and concurrent
// writes to the same id are serialised. Callers need no external locking.
type IndexWriter interface {
	// Upsert writes text and metadata for id at revision. Returns
	// UpsertStale without writing when revision is not newer than the
	// stored revision.
	Upsert(ctx context.Context, id, revision, text string, meta domain.DocumentMetadata) (UpsertOutcome, error)

	// Delete removes id from the index. Idempotent: deleting an absent id
	// succeeds silently.
	Delete(ctx context.Context, id string) error

	// BulkUpsert applies many upserts in one batch, preserving the per-id
	// revision semantics of Upsert. Outcomes are returned in input order.
	BulkUpsert(ctx context.Context, upserts []Upsert) ([]UpsertOutcome, error)

	// BulkDelete removes many ids in one batch. Idempotent per id.
	BulkDelete(ctx context.Context, ids []string) error

	// Commit makes prior writes by this writer visible to subsequent
	// Search and Get calls through the same writer. No global
	// read-after-write promise for independent clients.
	Commit(ctx context.Context) error

	// Get returns the stored document for id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.IndexedDocument, error)

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (uint64, error)

	// Search runs a full-text query and returns matches with metadata and
	// highlighted snippets.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Close releases resources.
	Close() error
}
