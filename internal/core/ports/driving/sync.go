package driving

import (
	"context"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

// SyncService is the programmatic surface exposed to CLI/API adapters for
// driving synchronisation. The core does not schedule itself; callers
// trigger cycles from a timer or an external event.
type SyncService interface {
	// TriggerSync starts one sync cycle in the background and returns its
	// cycle id. Returns domain.ErrSyncInProgress when a cycle is already
	// running, and a fatal error when preflight checks fail (state
	// unreadable, index unreachable) before any dispatch.
	TriggerSync(ctx context.Context) (string, error)

	// GetSyncStatus returns the observable status of a cycle.
	// Returns domain.ErrNotFound for an unknown cycle id.
	GetSyncStatus(cycleID string) (*domain.CycleStatus, error)

	// Wait blocks until the cycle reaches a terminal state and returns its
	// final status.
	Wait(cycleID string) (*domain.CycleStatus, error)

	// Cancel requests cooperative cancellation of a running cycle. New
	// dispatch stops immediately; in-flight jobs run to completion.
	Cancel(cycleID string) error
}
