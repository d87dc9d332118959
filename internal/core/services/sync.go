package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
	"github.com/custodia-labs/syncdex/internal/core/ports/driving"
	"github.com/custodia-labs/syncdex/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncService = (*SyncOrchestrator)(nil)

// SyncConfig bounds the orchestrator's concurrency and retry behaviour.
type SyncConfig struct {
	// Workers is the worker pool size. It also caps simultaneous remote
	// store requests, acting as admission control against external rate
	// limits.
	Workers int

	// MaxAttempts is the retry budget per document, including the first
	// attempt.
	MaxAttempts int

	// RetryBase is the first backoff delay; it doubles per attempt.
	RetryBase time.Duration

	// RetryMax caps the backoff delay.
	RetryMax time.Duration

	// FetchTimeout bounds one remote content download.
	FetchTimeout time.Duration

	// IndexTimeout bounds one index write.
	IndexTimeout time.Duration

	// DeadLetterCap bounds the dead-letter list carried in cycle status.
	DeadLetterCap int
}

// DefaultSyncConfig returns conservative defaults.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		Workers:       4,
		MaxAttempts:   3,
		RetryBase:     500 * time.Millisecond,
		RetryMax:      30 * time.Second,
		FetchTimeout:  2 * time.Minute,
		IndexTimeout:  30 * time.Second,
		DeadLetterCap: 20,
	}
}

// normalise fills zero fields with defaults.
func (c SyncConfig) normalise() SyncConfig {
	def := DefaultSyncConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.RetryBase <= 0 {
		c.RetryBase = def.RetryBase
	}
	if c.RetryMax <= 0 {
		c.RetryMax = def.RetryMax
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	if c.IndexTimeout <= 0 {
		c.IndexTimeout = def.IndexTimeout
	}
	if c.DeadLetterCap <= 0 {
		c.DeadLetterCap = def.DeadLetterCap
	}
	return c
}

// cycleRun tracks one in-flight or finished cycle.
type cycleRun struct {
	mu     sync.Mutex
	status domain.CycleStatus
	cancel context.CancelFunc
	done   chan struct{}

	// successes maps document id to the revision confirmed by the index.
	successes map[string]string
	// deletions lists ids whose removal the index confirmed.
	deletions []string
	// dispatchedAll is true when every event reached the pool before any
	// cancellation, making it safe to commit the new cursor.
	dispatchedAll bool
}

func (r *cycleRun) setState(s domain.CycleState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.State = s
}

func (r *cycleRun) snapshot() domain.CycleStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.status
	st.DeadLetters = append([]domain.DeadLetter(nil), r.status.DeadLetters...)
	return st
}

// SyncOrchestrator drives the end-to-end synchronisation cycle: change
// detection, worker dispatch, retries, and the final state commit.
type SyncOrchestrator struct {
	remote    driven.RemoteStore
	state     driven.StateStore
	extractor driven.ExtractorRegistry
	index     driven.IndexWriter
	detector  *ChangeDetector
	cfg       SyncConfig

	mu     sync.Mutex
	cycles map[string]*cycleRun
	active string
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	remote driven.RemoteStore,
	state driven.StateStore,
	extractor driven.ExtractorRegistry,
	index driven.IndexWriter,
	cfg SyncConfig,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		remote:    remote,
		state:     state,
		extractor: extractor,
		index:     index,
		detector:  NewChangeDetector(remote),
		cfg:       cfg.normalise(),
		cycles:    make(map[string]*cycleRun),
	}
}

// TriggerSync starts one cycle in the background and returns its id.
// Preflight failures (unreadable state, unreachable index or remote store)
// abort before any dispatch and are returned to the caller; re-trigger
// policy is the caller's decision.
func (o *SyncOrchestrator) TriggerSync(ctx context.Context) (string, error) {
	o.mu.Lock()
	if o.active != "" {
		o.mu.Unlock()
		return "", domain.ErrSyncInProgress
	}
	// Reserve the slot before the preflight so a concurrent trigger
	// cannot slip in.
	cycleID := uuid.New().String()
	o.active = cycleID
	o.mu.Unlock()

	state, err := o.preflight(ctx)
	if err != nil {
		o.mu.Lock()
		o.active = ""
		o.mu.Unlock()
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	run := &cycleRun{
		status:    domain.CycleStatus{CycleID: cycleID, State: domain.CycleListing},
		cancel:    cancel,
		done:      make(chan struct{}),
		successes: make(map[string]string),
	}

	o.mu.Lock()
	o.cycles[cycleID] = run
	o.mu.Unlock()

	go func() {
		defer close(run.done)
		defer cancel()
		o.runCycle(runCtx, run, state)
		o.mu.Lock()
		o.active = ""
		o.mu.Unlock()
	}()

	return cycleID, nil
}

// preflight loads state and pings the index and the remote store. Any
// failure here is fatal for the cycle.
func (o *SyncOrchestrator) preflight(ctx context.Context) (*domain.SyncState, error) {
	state, err := o.state.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStateCorrupt, err)
	}
	if _, err := o.index.Count(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	if err := o.remote.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate remote store: %w", err)
	}
	return state, nil
}

// GetSyncStatus returns the observable status of a cycle.
func (o *SyncOrchestrator) GetSyncStatus(cycleID string) (*domain.CycleStatus, error) {
	o.mu.Lock()
	run, ok := o.cycles[cycleID]
	o.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	st := run.snapshot()
	return &st, nil
}

// Wait blocks until the cycle terminates and returns its final status.
func (o *SyncOrchestrator) Wait(cycleID string) (*domain.CycleStatus, error) {
	o.mu.Lock()
	run, ok := o.cycles[cycleID]
	o.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	<-run.done
	st := run.snapshot()
	return &st, nil
}

// Cancel stops new dispatch for a running cycle. In-flight jobs finish;
// forcing an interruption mid-write risks partial index state.
func (o *SyncOrchestrator) Cancel(cycleID string) error {
	o.mu.Lock()
	run, ok := o.cycles[cycleID]
	o.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	run.cancel()
	return nil
}

// runCycle walks the state machine: Listing, Diffing, Dispatching,
// Draining, Committing. Per-document failures stay inside the dispatch
// phase; only fatal errors abort the machine.
func (o *SyncOrchestrator) runCycle(ctx context.Context, run *cycleRun, state *domain.SyncState) {
	logger.Info("Cycle %s: starting (cursor=%q)", run.status.CycleID, state.Cursor)

	run.setState(domain.CycleListing)
	set, err := o.detector.Detect(ctx, state)
	if err != nil {
		o.abort(run, cycleErr(ctx, "detect changes", err))
		return
	}

	run.setState(domain.CycleDiffing)
	events, err := o.mergeRecovered(ctx, set.Events, state)
	if err != nil {
		o.abort(run, cycleErr(ctx, "recover jobs", err))
		return
	}

	logger.Info("Cycle %s: %d changes to apply", run.status.CycleID, len(events))

	run.setState(domain.CycleDispatching)
	// Jobs run on a context detached from the cycle's cancellation:
	// cancelling stops new dispatch, in-flight jobs run to completion.
	jobCtx := context.WithoutCancel(ctx)

	g, _ := errgroup.WithContext(jobCtx)
	g.SetLimit(o.cfg.Workers)

	dispatchedAll := true
	for _, ev := range events {
		if ctx.Err() != nil {
			dispatchedAll = false
			logger.Warn("Cycle %s: cancelled, stopping dispatch", run.status.CycleID)
			break
		}

		job := domain.SyncJob{
			DocumentID: ev.DocumentID,
			Kind:       ev.Kind,
			Revision:   ev.Revision,
			Status:     domain.JobPending,
			UpdatedAt:  time.Now().UTC(),
		}
		if err := o.state.SaveJobStatus(jobCtx, job); err != nil {
			o.abort(run, fmt.Errorf("persist job %s: %w", job.DocumentID, err))
			return
		}

		ev := ev
		g.Go(func() error {
			o.processJob(jobCtx, run, ev)
			return nil
		})
	}

	run.setState(domain.CycleDraining)
	_ = g.Wait()

	run.mu.Lock()
	run.dispatchedAll = dispatchedAll
	run.mu.Unlock()

	run.setState(domain.CycleCommitting)
	if err := o.commit(jobCtx, run, state, set, dispatchedAll); err != nil {
		o.abort(run, fmt.Errorf("commit cycle: %w", err))
		return
	}

	st := run.snapshot()
	logger.Info("Cycle %s: done (succeeded=%d failed=%d skipped=%d)",
		st.CycleID, st.Counts.Succeeded, st.Counts.Failed, st.Counts.Skipped)
	run.setState(domain.CycleIdle)
}

// mergeRecovered folds jobs left Pending or InProgress by an interrupted
// cycle into the change set. Their outcome is unknown, so they are re-run;
// the revision check makes re-application a no-op when the write landed.
func (o *SyncOrchestrator) mergeRecovered(
	ctx context.Context, events []domain.ChangeEvent, state *domain.SyncState,
) ([]domain.ChangeEvent, error) {
	pending, err := o.state.PendingJobs(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return events, nil
	}

	logger.Info("Recovering %d interrupted jobs", len(pending))

	recovered := make([]domain.ChangeEvent, 0, len(pending))
	for _, job := range pending {
		if job.Kind == domain.ChangeDeleted {
			recovered = append(recovered, domain.ChangeEvent{
				Kind:       domain.ChangeDeleted,
				DocumentID: job.DocumentID,
			})
			continue
		}

		doc, err := o.remote.Stat(ctx, job.DocumentID)
		if errors.Is(err, domain.ErrNotFound) {
			// Gone remotely since the crash: resolve to a delete.
			recovered = append(recovered, domain.ChangeEvent{
				Kind:       domain.ChangeDeleted,
				DocumentID: job.DocumentID,
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", job.DocumentID, err)
		}

		if ev, ok := classify(doc, state.Revisions); ok {
			recovered = append(recovered, ev)
		}
	}

	// Recovered events first so a fresher detected revision wins the
	// coalesce.
	return Coalesce(append(recovered, events...)), nil
}

// processJob runs one job with retries. Failures never propagate past the
// job: exhaustion or a permanent error dead-letters the document and the
// cycle proceeds.
func (o *SyncOrchestrator) processJob(ctx context.Context, run *cycleRun, ev domain.ChangeEvent) {
	job := domain.SyncJob{
		DocumentID: ev.DocumentID,
		Kind:       ev.Kind,
		Revision:   ev.Revision,
		Status:     domain.JobInProgress,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := o.state.SaveJobStatus(ctx, job); err != nil {
		logger.Warn("Persist job %s: %v", job.DocumentID, err)
	}

	var lastErr error
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		job.Attempts = attempt

		outcome, err := o.applyChange(ctx, ev)
		if err == nil {
			o.finishJob(ctx, run, job, ev, outcome)
			return
		}

		lastErr = err
		if !domain.IsTransient(err) {
			logger.Debug("Job %s: permanent failure: %v", ev.DocumentID, err)
			break
		}

		logger.Debug("Job %s: attempt %d/%d failed: %v", ev.DocumentID, attempt, o.cfg.MaxAttempts, err)
		if attempt < o.cfg.MaxAttempts {
			o.sleep(ctx, backoff(o.cfg.RetryBase, o.cfg.RetryMax, attempt))
		}
	}

	job.Status = domain.JobFailed
	job.UpdatedAt = time.Now().UTC()
	if err := o.state.SaveJobStatus(ctx, job); err != nil {
		logger.Warn("Persist job %s: %v", job.DocumentID, err)
	}

	dl := domain.DeadLetter{
		DocumentID: ev.DocumentID,
		Reason:     lastErr.Error(),
		Attempts:   job.Attempts,
		RecordedAt: time.Now().UTC(),
	}
	if err := o.state.RecordDeadLetter(ctx, dl); err != nil {
		logger.Warn("Record dead letter %s: %v", ev.DocumentID, err)
	}

	run.mu.Lock()
	run.status.Counts.Failed++
	if len(run.status.DeadLetters) < o.cfg.DeadLetterCap {
		run.status.DeadLetters = append(run.status.DeadLetters, dl)
	}
	run.mu.Unlock()

	logger.Warn("Dead letter: %s (%s, %d attempts)", ev.DocumentID, dl.Reason, dl.Attempts)
}

// jobOutcome classifies a successful applyChange.
type jobOutcome int

const (
	outcomeApplied jobOutcome = iota
	outcomeStale
	outcomeDeleted
)

// applyChange performs the document pipeline: fetch, extract, write.
func (o *SyncOrchestrator) applyChange(ctx context.Context, ev domain.ChangeEvent) (jobOutcome, error) {
	if ev.Kind == domain.ChangeDeleted {
		ictx, cancel := context.WithTimeout(ctx, o.cfg.IndexTimeout)
		defer cancel()
		if err := o.index.Delete(ictx, ev.DocumentID); err != nil {
			return 0, fmt.Errorf("delete from index: %w", err)
		}
		return outcomeDeleted, nil
	}

	fctx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	content, err := o.remote.Fetch(fctx, ev.DocumentID)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("fetch content: %w", err)
	}

	extraction, err := o.extractor.Extract(ctx, ev.Document, content)
	if err != nil {
		// Extraction failures are permanent for the document; the
		// bytes will not parse differently on a retry.
		return 0, err
	}

	ictx, cancel := context.WithTimeout(ctx, o.cfg.IndexTimeout)
	defer cancel()
	outcome, err := o.index.Upsert(ictx, ev.DocumentID, ev.Revision, extraction.Text, extraction.Metadata)
	if err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	if outcome == driven.UpsertStale {
		return outcomeStale, nil
	}
	return outcomeApplied, nil
}

// finishJob marks a job Done and records its confirmed result for the
// commit phase. A Stale outcome still advances the revision map: the index
// holds that revision or newer.
func (o *SyncOrchestrator) finishJob(
	ctx context.Context, run *cycleRun, job domain.SyncJob, ev domain.ChangeEvent, outcome jobOutcome,
) {
	job.Status = domain.JobDone
	job.UpdatedAt = time.Now().UTC()
	if err := o.state.SaveJobStatus(ctx, job); err != nil {
		logger.Warn("Persist job %s: %v", job.DocumentID, err)
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	switch outcome {
	case outcomeDeleted:
		run.deletions = append(run.deletions, ev.DocumentID)
		run.status.Counts.Succeeded++
	case outcomeApplied:
		run.successes[ev.DocumentID] = ev.Revision
		run.status.Counts.Succeeded++
	case outcomeStale:
		run.successes[ev.DocumentID] = ev.Revision
		run.status.Counts.Skipped++
	}
}

// commit makes index writes visible and persists the cycle's results. The
// new cursor is committed only when every event was dispatched and drained;
// after a cancellation the old cursor stays so the next cycle recomputes
// the remainder.
func (o *SyncOrchestrator) commit(
	ctx context.Context, run *cycleRun, state *domain.SyncState, set *ChangeSet, dispatchedAll bool,
) error {
	if err := o.index.Commit(ctx); err != nil {
		return fmt.Errorf("index commit: %w", err)
	}

	run.mu.Lock()
	successes := make(map[string]string, len(run.successes))
	for id, rev := range run.successes {
		successes[id] = rev
	}
	deletions := append([]string(nil), run.deletions...)
	run.mu.Unlock()

	cursor := state.Cursor
	fullSync := false
	if dispatchedAll {
		cursor = set.NewCursor
		fullSync = set.Full
	}

	return o.state.CommitCycle(ctx, cursor, fullSync, successes, deletions)
}

// abort moves the cycle to Aborted with a fatal error.
func (o *SyncOrchestrator) abort(run *cycleRun, err error) {
	logger.Warn("Cycle %s aborted: %v", run.status.CycleID, err)
	run.mu.Lock()
	run.status.State = domain.CycleAborted
	run.status.Err = err
	run.mu.Unlock()
}

// sleep waits for d or until ctx is cancelled.
func (o *SyncOrchestrator) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// cycleErr wraps a fatal cycle error. Failures caused by the cycle's own
// cancellation carry ErrCycleCancelled so callers can tell a cancelled
// Listing/Diffing phase from a genuine fault.
func cycleErr(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrCycleCancelled, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// backoff returns the exponential delay for the given attempt (1-based).
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}
