package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	store, err := New(root)
	require.NoError(t, err)
	return store, root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStore_Validate(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.Validate(context.Background()))

	missing, err := New(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Error(t, missing.Validate(context.Background()))
}

func TestStore_ListAll(t *testing.T) {
	store, root := newTestStore(t)
	writeFile(t, root, "notes.txt", "hello")
	writeFile(t, root, "docs/report.pdf", "%PDF-1.4")
	writeFile(t, root, ".hidden", "secret")
	writeFile(t, root, ".git/config", "secret")

	docs, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byID := make(map[string]domain.RemoteDocument, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	require.Contains(t, byID, "notes.txt")
	require.Contains(t, byID, "docs/report.pdf")

	notes := byID["notes.txt"]
	assert.Equal(t, "text/plain", notes.MIMEType)
	assert.Equal(t, int64(5), notes.SizeBytes)
	assert.NotEmpty(t, notes.Revision)
	assert.Equal(t, "application/pdf", byID["docs/report.pdf"].MIMEType)
}

func TestStore_ListChanges_AlwaysExpired(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ListChanges(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrDeltaExpired)

	cursor, err := store.StartCursor(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cursor, "an empty cursor forces full reconciliation next cycle")
}

func TestStore_StatAndFetch(t *testing.T) {
	store, root := newTestStore(t)
	writeFile(t, root, "notes.txt", "file body")

	doc, err := store.Stat(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", doc.ID)
	assert.Equal(t, "notes.txt", doc.Name)

	content, err := store.Fetch(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "file body", string(content))
}

func TestStore_Stat_MissingIsNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Stat(context.Background(), "ghost.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Fetch(context.Background(), "ghost.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Resolve_RejectsEscapes(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Fetch(context.Background(), "../outside.txt")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Revision_TracksModTime(t *testing.T) {
	store, root := newTestStore(t)
	writeFile(t, root, "a.txt", "v1")

	first, err := store.Stat(context.Background(), "a.txt")
	require.NoError(t, err)

	// Force a different mtime rather than racing the clock.
	later := first.ModifiedTime.Add(2 * time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(root, "a.txt"), later, later))

	second, err := store.Stat(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.NotEqual(t, first.Revision, second.Revision)
	assert.Equal(t, 1, domain.CompareRevisions(second.Revision, first.Revision))
}
