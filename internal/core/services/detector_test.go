package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	remotemem "github.com/custodia-labs/syncdex/internal/adapters/driven/remote/memory"
	"github.com/custodia-labs/syncdex/internal/core/domain"
)

func remoteDoc(id, name, revision string) domain.RemoteDocument {
	return domain.RemoteDocument{
		ID:       id,
		Name:     name,
		Revision: revision,
		MIMEType: "text/plain",
	}
}

func TestChangeDetector_Detect_FullWhenNoCursor(t *testing.T) {
	remote := remotemem.NewRemoteStore()
	remote.Put(remoteDoc("doc-1", "alpha.txt", "3"), []byte("alpha"))
	remote.Put(remoteDoc("doc-2", "beta.txt", "7"), []byte("beta"))

	detector := NewChangeDetector(remote)
	set, err := detector.Detect(context.Background(), domain.NewSyncState())
	require.NoError(t, err)

	assert.True(t, set.Full)
	assert.NotEmpty(t, set.NewCursor)
	require.Len(t, set.Events, 2)
	for _, ev := range set.Events {
		assert.Equal(t, domain.ChangeAdded, ev.Kind)
		require.NotNil(t, ev.Document)
	}
}

func TestChangeDetector_Detect_FullEmitsDeletesForMissingIDs(t *testing.T) {
	remote := remotemem.NewRemoteStore()
	remote.Put(remoteDoc("doc-1", "alpha.txt", "3"), []byte("alpha"))

	state := domain.NewSyncState()
	state.Revisions["doc-1"] = "3"
	state.Revisions["doc-gone"] = "5"

	detector := NewChangeDetector(remote)
	set, err := detector.Detect(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, set.Events, 1)
	assert.Equal(t, domain.ChangeDeleted, set.Events[0].Kind)
	assert.Equal(t, "doc-gone", set.Events[0].DocumentID)
}

func TestChangeDetector_Detect_DeltaClassification(t *testing.T) {
	remote := remotemem.NewRemoteStore()
	ctx := context.Background()

	cursor, err := remote.StartCursor(ctx)
	require.NoError(t, err)

	remote.Put(remoteDoc("doc-new", "new.txt", "1"), []byte("new"))
	remote.Put(remoteDoc("doc-known", "known.txt", "4"), []byte("known"))
	remote.Put(remoteDoc("doc-same", "same.txt", "2"), []byte("same"))
	remote.Remove("doc-old")

	state := domain.NewSyncState()
	state.Cursor = cursor
	state.Revisions["doc-known"] = "3"
	state.Revisions["doc-same"] = "2"
	state.Revisions["doc-old"] = "1"

	detector := NewChangeDetector(remote)
	set, err := detector.Detect(ctx, state)
	require.NoError(t, err)
	assert.False(t, set.Full)

	kinds := make(map[string]domain.ChangeKind, len(set.Events))
	for _, ev := range set.Events {
		kinds[ev.DocumentID] = ev.Kind
	}
	assert.Equal(t, domain.ChangeAdded, kinds["doc-new"])
	assert.Equal(t, domain.ChangeModified, kinds["doc-known"])
	assert.Equal(t, domain.ChangeDeleted, kinds["doc-old"])
	// Revision tie: already indexed, nothing to do.
	assert.NotContains(t, kinds, "doc-same")
}

func TestChangeDetector_Detect_ExpiredCursorFallsBackToFull(t *testing.T) {
	remote := remotemem.NewRemoteStore()
	ctx := context.Background()

	cursor, err := remote.StartCursor(ctx)
	require.NoError(t, err)

	remote.Put(remoteDoc("doc-1", "alpha.txt", "3"), []byte("alpha"))
	remote.ExpireBefore()

	state := domain.NewSyncState()
	state.Cursor = cursor

	detector := NewChangeDetector(remote)
	set, err := detector.Detect(ctx, state)
	require.NoError(t, err)

	assert.True(t, set.Full)
	require.Len(t, set.Events, 1)
	assert.Equal(t, "doc-1", set.Events[0].DocumentID)
}

func TestCoalesce_DeletedWins(t *testing.T) {
	doc := remoteDoc("doc-1", "alpha.txt", "5")
	events := []domain.ChangeEvent{
		{Kind: domain.ChangeModified, DocumentID: "doc-1", Revision: "5", Document: &doc},
		{Kind: domain.ChangeDeleted, DocumentID: "doc-1"},
	}

	out := Coalesce(events)
	require.Len(t, out, 1)
	assert.Equal(t, domain.ChangeDeleted, out[0].Kind)
}

func TestCoalesce_DeletedNotOverridden(t *testing.T) {
	doc := remoteDoc("doc-1", "alpha.txt", "9")
	events := []domain.ChangeEvent{
		{Kind: domain.ChangeDeleted, DocumentID: "doc-1"},
		{Kind: domain.ChangeModified, DocumentID: "doc-1", Revision: "9", Document: &doc},
	}

	out := Coalesce(events)
	require.Len(t, out, 1)
	assert.Equal(t, domain.ChangeDeleted, out[0].Kind)
}

func TestCoalesce_HighestRevisionWins(t *testing.T) {
	old := remoteDoc("doc-1", "alpha.txt", "2")
	newer := remoteDoc("doc-1", "alpha.txt", "10")
	events := []domain.ChangeEvent{
		{Kind: domain.ChangeModified, DocumentID: "doc-1", Revision: "10", Document: &newer},
		{Kind: domain.ChangeModified, DocumentID: "doc-1", Revision: "2", Document: &old},
	}

	out := Coalesce(events)
	require.Len(t, out, 1)
	assert.Equal(t, "10", out[0].Revision)
}

func TestCoalesce_PreservesFirstSeenOrder(t *testing.T) {
	a := remoteDoc("doc-a", "a.txt", "1")
	b := remoteDoc("doc-b", "b.txt", "1")
	b2 := remoteDoc("doc-b", "b.txt", "2")
	events := []domain.ChangeEvent{
		{Kind: domain.ChangeAdded, DocumentID: "doc-a", Revision: "1", Document: &a},
		{Kind: domain.ChangeAdded, DocumentID: "doc-b", Revision: "1", Document: &b},
		{Kind: domain.ChangeModified, DocumentID: "doc-b", Revision: "2", Document: &b2},
	}

	out := Coalesce(events)
	require.Len(t, out, 2)
	assert.Equal(t, "doc-a", out[0].DocumentID)
	assert.Equal(t, "doc-b", out[1].DocumentID)
	assert.Equal(t, "2", out[1].Revision)
}
