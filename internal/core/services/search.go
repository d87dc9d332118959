package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/syncdex/internal/core/domain"
	"github.com/custodia-labs/syncdex/internal/core/ports/driven"
	"github.com/custodia-labs/syncdex/internal/core/ports/driving"
)

// Ensure SearchOrchestrator implements the interface.
var _ driving.SearchService = (*SearchOrchestrator)(nil)

// SearchOrchestrator answers full-text queries over the synchronised index.
type SearchOrchestrator struct {
	index driven.IndexWriter
}

// NewSearchOrchestrator creates a new search orchestrator.
func NewSearchOrchestrator(index driven.IndexWriter) *SearchOrchestrator {
	return &SearchOrchestrator{index: index}
}

// Search validates the query and delegates to the index.
func (s *SearchOrchestrator) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidInput
	}
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultSearchLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.index.Search(ctx, query, opts)
}
