package domain

import "time"

// SyncState is the durable record of synchronisation progress. Owned
// exclusively by the orchestrator and persisted by the StateStore.
type SyncState struct {
	// Cursor is the remote store's delta token. Empty means the next cycle
	// must perform a full reconciliation.
	Cursor string

	// LastFullSync is when the last full reconciliation completed.
	LastFullSync time.Time

	// Revisions maps document id to the last revision confirmed written to
	// the index. Entries advance only after the IndexWriter reports
	// success, so the map reflects indexed state, not attempted state.
	Revisions map[string]string
}

// NewSyncState returns an empty state forcing a full reconciliation.
func NewSyncState() *SyncState {
	return &SyncState{
		Revisions: make(map[string]string),
	}
}

// Clone returns a deep copy. The orchestrator hands copies to workers so the
// canonical state stays single-writer.
func (s *SyncState) Clone() *SyncState {
	c := &SyncState{
		Cursor:       s.Cursor,
		LastFullSync: s.LastFullSync,
		Revisions:    make(map[string]string, len(s.Revisions)),
	}
	for id, rev := range s.Revisions {
		c.Revisions[id] = rev
	}
	return c
}
