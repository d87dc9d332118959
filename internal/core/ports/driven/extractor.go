package driven

import (
	"context"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

// Extractor converts raw document bytes into indexable text and metadata.
// Each extractor handles specific MIME types (e.g. PDF, HTML).
//
// Extractors are deterministic: identical bytes and MIME type always yield
// identical output, with no dependence on clocks or environment.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred) when
	// several extractors claim the same MIME type.
	Priority() int

	// Extract parses content into text and metadata. Failures are
	// *domain.ExtractionError values; nothing else escapes the boundary.
	Extract(ctx context.Context, doc *domain.RemoteDocument, content []byte) (*domain.Extraction, error)
}

// ExtractorRegistry selects an extractor by MIME type and enforces the
// per-document resource bounds (byte cap, wall-clock timeout).
type ExtractorRegistry interface {
	// Extract runs the best extractor for the document's MIME type.
	// Returns *domain.ExtractionError with reason UnsupportedType when no
	// extractor matches, SizeLimit when the content exceeds the byte cap,
	// and Timeout when extraction exceeds its wall-clock budget.
	Extract(ctx context.Context, doc *domain.RemoteDocument, content []byte) (*domain.Extraction, error)

	// Register adds an extractor to the registry.
	Register(e Extractor)
}
