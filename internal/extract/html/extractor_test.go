package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

func htmlDoc(name string) *domain.RemoteDocument {
	return &domain.RemoteDocument{ID: "doc-1", Name: name, MIMEType: "text/html"}
}

func TestExtract_StripsMarkup(t *testing.T) {
	extractor := New()
	content := []byte(`<html><head><title>Report</title></head>
<body><h1>Heading</h1><p>First paragraph.</p><p>Second &amp; last.</p></body></html>`)

	ex, err := extractor.Extract(context.Background(), htmlDoc("report.html"), content)
	require.NoError(t, err)
	assert.Equal(t, "Report", ex.Metadata.Title)
	assert.Contains(t, ex.Text, "Heading")
	assert.Contains(t, ex.Text, "First paragraph.")
	assert.Contains(t, ex.Text, "Second & last.")
	assert.NotContains(t, ex.Text, "<p>")
	assert.NotContains(t, ex.Text, "Report", "head content must not leak into the text")
}

func TestExtract_DropsScriptAndStyle(t *testing.T) {
	extractor := New()
	content := []byte(`<body><script>var secret = 1;</script><style>.x{color:red}</style>visible</body>`)

	ex, err := extractor.Extract(context.Background(), htmlDoc("page.html"), content)
	require.NoError(t, err)
	assert.Equal(t, "visible", ex.Text)
}

func TestExtract_TitleFallsBackToName(t *testing.T) {
	extractor := New()
	ex, err := extractor.Extract(context.Background(), htmlDoc("untitled.html"), []byte(`<p>body</p>`))
	require.NoError(t, err)
	assert.Equal(t, "untitled.html", ex.Metadata.Title)
}

func TestExtract_BlockElementsBecomeLines(t *testing.T) {
	extractor := New()
	content := []byte(`<div>one</div><div>two</div><br>three`)

	ex, err := extractor.Extract(context.Background(), htmlDoc("x.html"), content)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree", ex.Text)
}

func TestExtract_NilDocument(t *testing.T) {
	extractor := New()
	_, err := extractor.Extract(context.Background(), nil, []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
