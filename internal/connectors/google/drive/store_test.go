package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	driveapi "google.golang.org/api/drive/v3"
)

func newTestStore(cfg *Config) *Store {
	return New(nil, cfg)
}

func TestFileToDocument_Basic(t *testing.T) {
	s := newTestStore(nil)

	doc := s.fileToDocument(&driveapi.File{
		Id:           "file-1",
		Name:         "report.pdf",
		MimeType:     "application/pdf",
		Size:         2048,
		Version:      17,
		ModifiedTime: "2026-03-01T10:00:00Z",
		Parents:      []string{"folder-1"},
		WebViewLink:  "https://drive.google.com/file/d/file-1/view",
	})

	require.NotNil(t, doc)
	assert.Equal(t, "file-1", doc.ID)
	assert.Equal(t, "report.pdf", doc.Name)
	assert.Equal(t, "17", doc.Revision)
	assert.Equal(t, "folder-1", doc.ParentFolderID)
	assert.Equal(t, int64(2048), doc.SizeBytes)
	assert.Equal(t, "https://drive.google.com/file/d/file-1/view", doc.WebViewLink)
	assert.Equal(t, 2026, doc.ModifiedTime.Year())
}

func TestFileToDocument_SkipsFoldersAndTrashed(t *testing.T) {
	s := newTestStore(nil)

	assert.Nil(t, s.fileToDocument(&driveapi.File{Id: "f", MimeType: MimeTypeFolder}))
	assert.Nil(t, s.fileToDocument(&driveapi.File{Id: "f", MimeType: "application/pdf", Trashed: true}))
	assert.Nil(t, s.fileToDocument(nil))
}

func TestFileToDocument_FolderScope(t *testing.T) {
	s := newTestStore(&Config{FolderID: "wanted", MaxResults: 100})

	inScope := s.fileToDocument(&driveapi.File{
		Id: "a", MimeType: "application/pdf", Parents: []string{"wanted"},
	})
	outOfScope := s.fileToDocument(&driveapi.File{
		Id: "b", MimeType: "application/pdf", Parents: []string{"other"},
	})

	assert.NotNil(t, inScope)
	assert.Nil(t, outOfScope)
}

func TestFileToDocument_MIMEFilter(t *testing.T) {
	s := newTestStore(&Config{MIMETypeFilter: []string{"application/pdf"}, MaxResults: 100})

	assert.NotNil(t, s.fileToDocument(&driveapi.File{Id: "a", MimeType: "application/pdf"}))
	assert.Nil(t, s.fileToDocument(&driveapi.File{Id: "b", MimeType: "image/png"}))
}

func TestFileRevision_PrefersVersionCounter(t *testing.T) {
	assert.Equal(t, "17", fileRevision(&driveapi.File{Version: 17, ModifiedTime: "2026-03-01T10:00:00Z"}))
}

func TestFileRevision_FallsBackToModifiedTime(t *testing.T) {
	rev := fileRevision(&driveapi.File{ModifiedTime: "2026-03-01T10:00:00Z"})
	assert.NotEmpty(t, rev)

	newer := fileRevision(&driveapi.File{ModifiedTime: "2026-03-01T10:00:01Z"})
	assert.Greater(t, len(newer), 0)
	assert.NotEqual(t, rev, newer)
}

func TestChangeToEntry_TrashedBecomesRemoval(t *testing.T) {
	s := newTestStore(nil)

	entry := s.changeToEntry(&driveapi.Change{
		FileId: "file-1",
		File:   &driveapi.File{Id: "file-1", MimeType: "application/pdf", Trashed: true},
	})
	require.NotNil(t, entry)
	assert.True(t, entry.Removed)
	assert.Equal(t, "file-1", entry.DocumentID)
}

func TestChangeToEntry_OutOfScopeBecomesRemoval(t *testing.T) {
	s := newTestStore(&Config{FolderID: "wanted", MaxResults: 100})

	entry := s.changeToEntry(&driveapi.Change{
		FileId: "file-1",
		File:   &driveapi.File{Id: "file-1", MimeType: "application/pdf", Parents: []string{"elsewhere"}},
	})
	require.NotNil(t, entry)
	assert.True(t, entry.Removed, "a file moved out of the synced folder must be removed from the index")
}
