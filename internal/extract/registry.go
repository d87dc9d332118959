// Package extract selects and runs content extractors. The registry owns the
// per-document resource bounds: documents over the byte cap and extractions
// over the wall-clock budget fail with a classified ExtractionError rather
// than stalling the sync cycle.
package extract

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Config bounds one extraction.
type Config struct {
	// MaxDocBytes is the content size cap. Zero disables the cap.
	MaxDocBytes int64

	// Timeout is the wall-clock budget per extraction. Zero disables it.
	Timeout time.Duration
}

// Registry dispatches documents to extractors by MIME type. When several
// extractors claim a type the highest priority wins.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Extractor
	cfg    Config
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		byMIME: make(map[string][]driven.Extractor),
		cfg:    cfg,
	}
}

// Register adds an extractor for all its supported MIME types.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mime := range e.SupportedMIMETypes() {
		list := append(r.byMIME[mime], e)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mime] = list
	}
}

// Extract runs the best extractor for the document's MIME type, enforcing the
// byte cap and the wall-clock budget.
func (r *Registry) Extract(ctx context.Context, doc *domain.RemoteDocument, content []byte) (*domain.Extraction, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	meta := partialMetadata(doc)

	if r.cfg.MaxDocBytes > 0 && int64(len(content)) > r.cfg.MaxDocBytes {
		return nil, &domain.ExtractionError{Reason: domain.FailureSizeLimit, Metadata: meta}
	}

	r.mu.RLock()
	candidates := r.byMIME[doc.MIMEType]
	r.mu.RUnlock()
	if len(candidates) == 0 {
		return nil, &domain.ExtractionError{Reason: domain.FailureUnsupportedType, Metadata: meta}
	}
	extractor := candidates[0]

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	type result struct {
		extraction *domain.Extraction
		err        error
	}
	// Extraction is CPU-bound and cannot be interrupted mid-parse, so it
	// runs in its own goroutine and is abandoned on timeout.
	ch := make(chan result, 1)
	go func() {
		ex, err := extractor.Extract(ctx, doc, content)
		ch <- result{ex, err}
	}()

	select {
	case <-ctx.Done():
		return nil, &domain.ExtractionError{Reason: domain.FailureTimeout, Metadata: meta, Cause: ctx.Err()}
	case res := <-ch:
		if res.err != nil {
			return nil, classifyError(res.err, meta)
		}
		return res.extraction, nil
	}
}

// classifyError guarantees the boundary's contract: every failure leaving the
// registry is a *domain.ExtractionError.
func classifyError(err error, meta domain.DocumentMetadata) error {
	if ee, ok := err.(*domain.ExtractionError); ok {
		return ee
	}
	return &domain.ExtractionError{Reason: domain.FailureCorrupt, Metadata: meta, Cause: err}
}

// partialMetadata derives what metadata can be known without parsing content.
func partialMetadata(doc *domain.RemoteDocument) domain.DocumentMetadata {
	return domain.DocumentMetadata{
		Title:       doc.Name,
		MIMEType:    doc.MIMEType,
		Path:        doc.Path,
		WebViewLink: doc.WebViewLink,
	}
}
