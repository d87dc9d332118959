package domain

// CycleState is the orchestrator's position in one sync cycle.
type CycleState string

const (
	// CycleIdle means no cycle is running.
	CycleIdle CycleState = "idle"

	// CycleListing means the remote change feed or full listing is being
	// fetched.
	CycleListing CycleState = "listing"

	// CycleDiffing means the change set is being computed.
	CycleDiffing CycleState = "diffing"

	// CycleDispatching means jobs are being handed to the worker pool.
	CycleDispatching CycleState = "dispatching"

	// CycleDraining means dispatch has stopped and in-flight jobs are
	// running to completion.
	CycleDraining CycleState = "draining"

	// CycleCommitting means the new cursor and revision map are being
	// persisted.
	CycleCommitting CycleState = "committing"

	// CycleAborted means a fatal error stopped the cycle before dispatch.
	CycleAborted CycleState = "aborted"
)

// CycleCounts aggregates per-document outcomes for one cycle.
type CycleCounts struct {
	// Succeeded is the number of changes confirmed by the index.
	Succeeded int

	// Failed is the number of documents dead-lettered this cycle.
	Failed int

	// Skipped is the number of changes dropped as stale or no-op.
	Skipped int
}

// CycleStatus is the observable state of one sync cycle.
type CycleStatus struct {
	// CycleID identifies the cycle.
	CycleID string

	// State is the cycle's current state machine position.
	State CycleState

	// Counts aggregates document outcomes so far.
	Counts CycleCounts

	// DeadLetters is a bounded list of this cycle's dead-letter entries.
	DeadLetters []DeadLetter

	// Err is the fatal error when State is CycleAborted, nil otherwise.
	Err error
}
