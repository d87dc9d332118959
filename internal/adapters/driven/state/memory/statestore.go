// Package memory provides an in-memory state store, used in tests and as a
// throwaway backend for one-off syncs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore.
type StateStore struct {
	mu          sync.RWMutex
	state       domain.SyncState
	jobs        map[string]domain.SyncJob
	deadLetters []domain.DeadLetter
}

// NewStateStore creates a new in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{
		state: *domain.NewSyncState(),
		jobs:  make(map[string]domain.SyncJob),
	}
}

// Load returns a copy of the current state.
func (s *StateStore) Load(_ context.Context) (*domain.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state.Clone()
	return st, nil
}

// SaveJobStatus records a job's current status.
func (s *StateStore) SaveJobStatus(_ context.Context, job domain.SyncJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.DocumentID] = job
	return nil
}

// PendingJobs returns jobs still Pending or InProgress.
func (s *StateStore) PendingJobs(_ context.Context) ([]domain.SyncJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SyncJob
	for _, job := range s.jobs {
		if job.Status == domain.JobPending || job.Status == domain.JobInProgress {
			out = append(out, job)
		}
	}
	return out, nil
}

// CommitCycle applies the cycle's results in one step under the lock.
func (s *StateStore) CommitCycle(_ context.Context, newCursor string, fullSync bool, updated map[string]string, deleted []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Cursor = newCursor
	if fullSync {
		s.state.LastFullSync = time.Now().UTC()
	}
	for id, rev := range updated {
		s.state.Revisions[id] = rev
	}
	for _, id := range deleted {
		delete(s.state.Revisions, id)
	}
	s.jobs = make(map[string]domain.SyncJob)
	return nil
}

// RecordDeadLetter stores a dead-letter entry.
func (s *StateStore) RecordDeadLetter(_ context.Context, dl domain.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadLetters = append(s.deadLetters, dl)
	return nil
}

// DeadLetters returns up to limit recent entries, newest first.
func (s *StateStore) DeadLetters(_ context.Context, limit int) ([]domain.DeadLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DeadLetter, 0, limit)
	for i := len(s.deadLetters) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.deadLetters[i])
	}
	return out, nil
}

// Close releases resources (no-op for memory).
func (s *StateStore) Close() error {
	return nil
}
