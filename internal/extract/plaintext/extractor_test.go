package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	extractor := New()
	mimeTypes := extractor.SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/markdown")
}

func TestExtract_Success(t *testing.T) {
	extractor := New()
	doc := &domain.RemoteDocument{
		ID:       "doc-1",
		Name:     "notes.txt",
		MIMEType: "text/plain",
		Path:     "/work/notes.txt",
	}

	ex, err := extractor.Extract(context.Background(), doc, []byte("  hello world\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", ex.Text)
	assert.Equal(t, "notes.txt", ex.Metadata.Title)
	assert.Equal(t, "text/plain", ex.Metadata.MIMEType)
	assert.Equal(t, "/work/notes.txt", ex.Metadata.Path)
}

func TestExtract_NilDocument(t *testing.T) {
	extractor := New()
	_, err := extractor.Extract(context.Background(), nil, []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	extractor := New()
	doc := &domain.RemoteDocument{ID: "doc-1", Name: "junk.txt", MIMEType: "text/plain"}

	_, err := extractor.Extract(context.Background(), doc, []byte{0xff, 0xfe})
	var ee *domain.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, domain.FailureCorrupt, ee.Reason)
	assert.Equal(t, "junk.txt", ee.Metadata.Title)
}

func TestExtract_Deterministic(t *testing.T) {
	extractor := New()
	doc := &domain.RemoteDocument{ID: "doc-1", Name: "a.txt", MIMEType: "text/plain"}
	content := []byte("same bytes")

	first, err := extractor.Extract(context.Background(), doc, content)
	require.NoError(t, err)
	second, err := extractor.Extract(context.Background(), doc, content)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
