package pdf

import (
	"bytes"
	"compress/zlib"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

func pdfDoc(name string) *domain.RemoteDocument {
	return &domain.RemoteDocument{ID: "doc-1", Name: name, MIMEType: "application/pdf"}
}

// buildPDF assembles a minimal single-page PDF around the given content
// stream body.
func buildPDF(streamBody []byte) []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	b.WriteString("1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj\n")
	b.WriteString("2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj\n")
	b.WriteString("3 0 obj << /Type /Page /Parent 2 0 R /Contents 4 0 R >> endobj\n")
	b.WriteString("4 0 obj << >>\nstream\n")
	b.Write(streamBody)
	b.WriteString("\nendstream endobj\n")
	b.WriteString("5 0 obj << /Title (Quarterly Report) /Author (Jane Doe) >> endobj\n")
	b.WriteString("%%EOF\n")
	return b.Bytes()
}

func TestExtract_TextAndMetadata(t *testing.T) {
	extractor := New()
	content := buildPDF([]byte("BT /F1 12 Tf (Hello) Tj [(Wor) -20 (ld)] TJ ET"))

	ex, err := extractor.Extract(context.Background(), pdfDoc("report.pdf"), content)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", ex.Text)
	assert.Equal(t, "Quarterly Report", ex.Metadata.Title)
	assert.Equal(t, "Jane Doe", ex.Metadata.Author)
	assert.Equal(t, 1, ex.Metadata.PageCount)
	assert.Equal(t, "application/pdf", ex.Metadata.MIMEType)
}

func TestExtract_FlateDecodeStream(t *testing.T) {
	extractor := New()

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	_, err := w.Write([]byte("BT (Compressed text) Tj ET"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ex, err := extractor.Extract(context.Background(), pdfDoc("packed.pdf"), buildPDF(compressed.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "Compressed text", ex.Text)
}

func TestExtract_EscapedParentheses(t *testing.T) {
	extractor := New()
	content := buildPDF([]byte(`BT (a \(nested\) value) Tj ET`))

	ex, err := extractor.Extract(context.Background(), pdfDoc("escape.pdf"), content)
	require.NoError(t, err)
	assert.Equal(t, "a (nested) value", ex.Text)
}

func TestExtract_NotAPDF(t *testing.T) {
	extractor := New()
	_, err := extractor.Extract(context.Background(), pdfDoc("fake.pdf"), []byte("plain text pretending"))

	var ee *domain.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, domain.FailureCorrupt, ee.Reason)
	assert.Equal(t, "fake.pdf", ee.Metadata.Title)
}

func TestExtract_TitleFallsBackToFileName(t *testing.T) {
	extractor := New()
	content := []byte("%PDF-1.4\n1 0 obj << /Type /Page >> endobj\n%%EOF\n")

	ex, err := extractor.Extract(context.Background(), pdfDoc("scan.pdf"), content)
	require.NoError(t, err)
	assert.Equal(t, "scan.pdf", ex.Metadata.Title)
	assert.Empty(t, ex.Text)
}

func TestExtract_Deterministic(t *testing.T) {
	extractor := New()
	content := buildPDF([]byte("BT (same) Tj ET"))

	first, err := extractor.Extract(context.Background(), pdfDoc("a.pdf"), content)
	require.NoError(t, err)
	second, err := extractor.Extract(context.Background(), pdfDoc("a.pdf"), content)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
