package driving

import (
	"context"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

// SearchService answers full-text queries over the synchronised index.
type SearchService interface {
	// Search returns matches with metadata and highlighted snippets.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
