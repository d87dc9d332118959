package domain

import "time"

// ChangeKind classifies a remote document change.
type ChangeKind int

const (
	// ChangeAdded indicates a document not previously indexed.
	ChangeAdded ChangeKind = iota

	// ChangeModified indicates a document with a newer revision than the
	// one last indexed.
	ChangeModified

	// ChangeDeleted indicates a document removed from the remote store.
	ChangeDeleted
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ChangeEvent is one entry in the change set computed by the detector.
// Document is nil for deletions.
type ChangeEvent struct {
	// Kind is the change classification.
	Kind ChangeKind

	// DocumentID is the remote document id.
	DocumentID string

	// Revision is the remote revision the change was observed at.
	// Empty for deletions.
	Revision string

	// Document is the remote snapshot, nil for deletions.
	Document *RemoteDocument
}

// JobStatus is the lifecycle state of a SyncJob.
type JobStatus string

const (
	// JobPending means the job has been created but not started.
	JobPending JobStatus = "pending"

	// JobInProgress means a worker has picked up the job. A job found in
	// this state after a restart has an unknown outcome and is re-run.
	JobInProgress JobStatus = "in_progress"

	// JobDone means the index reflects the job's change.
	JobDone JobStatus = "done"

	// JobFailed means the job exhausted its retry budget.
	JobFailed JobStatus = "failed"
)

// SyncJob is the unit of work dispatched to the worker pool. Jobs are
// persisted transiently so an interrupted cycle can be recovered.
type SyncJob struct {
	// DocumentID is the remote document id.
	DocumentID string

	// Kind is the change being applied.
	Kind ChangeKind

	// Revision is the remote revision being applied. Empty for deletions.
	Revision string

	// Status is the current lifecycle state.
	Status JobStatus

	// Attempts counts processing attempts, including the current one.
	Attempts int

	// UpdatedAt is when the status last changed.
	UpdatedAt time.Time
}

// DeadLetter records a document that failed processing after exhausting its
// retries. Kept for diagnostics; excluded from further automatic retry
// within the cycle.
type DeadLetter struct {
	// DocumentID is the remote document id.
	DocumentID string

	// Reason describes the terminal failure.
	Reason string

	// Attempts is how many times processing was tried.
	Attempts int

	// RecordedAt is when the document was given up on.
	RecordedAt time.Time
}
