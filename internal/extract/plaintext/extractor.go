// Package plaintext extracts text and source-code documents. The bytes are
// indexed as-is; only invalid UTF-8 is rejected.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
		"text/x-go",
		"text/x-python",
		"text/x-shellscript",
		"text/yaml",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract returns the content verbatim as indexable text.
func (e *Extractor) Extract(_ context.Context, doc *domain.RemoteDocument, content []byte) (*domain.Extraction, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	meta := domain.DocumentMetadata{
		Title:       doc.Name,
		MIMEType:    doc.MIMEType,
		Path:        doc.Path,
		WebViewLink: doc.WebViewLink,
	}

	if !utf8.Valid(content) {
		return nil, &domain.ExtractionError{Reason: domain.FailureCorrupt, Metadata: meta}
	}

	return &domain.Extraction{
		Text:     strings.TrimSpace(string(content)),
		Metadata: meta,
	}, nil
}
