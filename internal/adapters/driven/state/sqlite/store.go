// Package sqlite provides a SQLite-backed implementation of the state store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. The database schema is
// managed through versioned migrations stored in the migrations/ directory.
//
// All operations are thread-safe through database-level locking in WAL mode.
// CommitCycle runs inside a single transaction so the cursor, the revision
// map and the job table always move together.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/syncdex/internal/adapters/driven/state/sqlite/migrations"
	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StateStore = (*Store)(nil)

// Store is a SQLite-backed state store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite state store at the specified data directory.
// If dataDir is empty, defaults to ~/.syncdex/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".syncdex", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "state.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies all pending .up.sql migrations in version order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Load returns the persisted state, or a fresh empty state when none has
// been committed yet.
func (s *Store) Load(ctx context.Context) (*domain.SyncState, error) {
	state := domain.NewSyncState()

	var lastFullSync sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT cursor, last_full_sync FROM sync_state WHERE id = 1",
	).Scan(&state.Cursor, &lastFullSync)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return state, nil
	case err != nil:
		return nil, fmt.Errorf("%w: reading sync state: %w", domain.ErrStateCorrupt, err)
	}

	if lastFullSync.Valid {
		t, err := time.Parse(time.RFC3339Nano, lastFullSync.String)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing last_full_sync: %w", domain.ErrStateCorrupt, err)
		}
		state.LastFullSync = t
	}

	rows, err := s.db.QueryContext(ctx, "SELECT document_id, revision FROM revisions")
	if err != nil {
		return nil, fmt.Errorf("%w: reading revisions: %w", domain.ErrStateCorrupt, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, rev string
		if err := rows.Scan(&id, &rev); err != nil {
			return nil, fmt.Errorf("%w: scanning revision: %w", domain.ErrStateCorrupt, err)
		}
		state.Revisions[id] = rev
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating revisions: %w", domain.ErrStateCorrupt, err)
	}

	return state, nil
}

// SaveJobStatus records a job's current status.
func (s *Store) SaveJobStatus(ctx context.Context, job domain.SyncJob) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_jobs (document_id, kind, revision, status, attempts, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			kind = excluded.kind,
			revision = excluded.revision,
			status = excluded.status,
			attempts = excluded.attempts,
			updated_at = excluded.updated_at
	`, job.DocumentID, int(job.Kind), job.Revision, string(job.Status),
		job.Attempts, job.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving job %s: %w", job.DocumentID, err)
	}
	return nil
}

// PendingJobs returns jobs whose outcome is unknown.
func (s *Store) PendingJobs(ctx context.Context) ([]domain.SyncJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, kind, revision, status, attempts, updated_at
		FROM sync_jobs
		WHERE status IN (?, ?)
	`, string(domain.JobPending), string(domain.JobInProgress))
	if err != nil {
		return nil, fmt.Errorf("querying pending jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.SyncJob
	for rows.Next() {
		var (
			job       domain.SyncJob
			kind      int
			status    string
			updatedAt string
		)
		if err := rows.Scan(&job.DocumentID, &kind, &job.Revision, &status, &job.Attempts, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		job.Kind = domain.ChangeKind(kind)
		job.Status = domain.JobStatus(status)
		if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			job.UpdatedAt = t
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// CommitCycle atomically persists the cursor, the revision map changes and
// clears finished jobs.
func (s *Store) CommitCycle(ctx context.Context, newCursor string, fullSync bool, updated map[string]string, deleted []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if fullSync {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sync_state (id, cursor, last_full_sync) VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET cursor = excluded.cursor, last_full_sync = excluded.last_full_sync
		`, newCursor, time.Now().UTC().Format(time.RFC3339Nano))
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sync_state (id, cursor) VALUES (1, ?)
			ON CONFLICT(id) DO UPDATE SET cursor = excluded.cursor
		`, newCursor)
	}
	if err != nil {
		return fmt.Errorf("updating sync state: %w", err)
	}

	for id, rev := range updated {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO revisions (document_id, revision) VALUES (?, ?)
			ON CONFLICT(document_id) DO UPDATE SET revision = excluded.revision
		`, id, rev); err != nil {
			return fmt.Errorf("updating revision %s: %w", id, err)
		}
	}

	for _, id := range deleted {
		if _, err := tx.ExecContext(ctx, "DELETE FROM revisions WHERE document_id = ?", id); err != nil {
			return fmt.Errorf("deleting revision %s: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM sync_jobs WHERE status IN (?, ?)",
		string(domain.JobDone), string(domain.JobFailed)); err != nil {
		return fmt.Errorf("clearing finished jobs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RecordDeadLetter stores a dead-letter entry.
func (s *Store) RecordDeadLetter(ctx context.Context, dl domain.DeadLetter) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dead_letters (document_id, reason, attempts, recorded_at)
		VALUES (?, ?, ?, ?)
	`, dl.DocumentID, dl.Reason, dl.Attempts, dl.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording dead letter %s: %w", dl.DocumentID, err)
	}
	return nil
}

// DeadLetters returns up to limit recent entries, newest first.
func (s *Store) DeadLetters(ctx context.Context, limit int) ([]domain.DeadLetter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, reason, attempts, recorded_at
		FROM dead_letters
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying dead letters: %w", err)
	}
	defer rows.Close()

	var out []domain.DeadLetter
	for rows.Next() {
		var (
			dl         domain.DeadLetter
			recordedAt string
		)
		if err := rows.Scan(&dl.DocumentID, &dl.Reason, &dl.Attempts, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning dead letter: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			dl.RecordedAt = t
		}
		out = append(out, dl)
	}
	return out, rows.Err()
}
