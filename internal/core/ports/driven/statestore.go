package driven

import (
	"context"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

// StateStore persists synchronisation progress durably across restarts.
//
// Job status is written InProgress before a worker starts and Done/Failed
// after it finishes; on restart any job still InProgress has an unknown
// outcome and is re-dispatched. That is safe because index upserts are
// idempotent under the revision check.
type StateStore interface {
	// Load returns the persisted state, or a fresh empty state when none
	// has been committed yet. Returns domain.ErrStateCorrupt (wrapped)
	// when the record exists but cannot be read.
	Load(ctx context.Context) (*domain.SyncState, error)

	// SaveJobStatus records a job's current status.
	SaveJobStatus(ctx context.Context, job domain.SyncJob) error

	// PendingJobs returns jobs whose outcome is unknown: Pending or
	// InProgress. Used for crash recovery at cycle start.
	PendingJobs(ctx context.Context) ([]domain.SyncJob, error)

	// CommitCycle atomically persists the new cursor, advances the
	// revision map for confirmed documents, removes confirmed deletions
	// from the map and clears finished jobs. It is the single point where
	// the revision map moves; a crash before this call leaves the prior
	// cursor intact.
	CommitCycle(ctx context.Context, newCursor string, fullSync bool, updated map[string]string, deleted []string) error

	// RecordDeadLetter stores a dead-letter entry for diagnostics.
	RecordDeadLetter(ctx context.Context, dl domain.DeadLetter) error

	// DeadLetters returns up to limit recent dead-letter entries.
	DeadLetters(ctx context.Context, limit int) ([]domain.DeadLetter, error)

	// Close releases resources.
	Close() error
}
