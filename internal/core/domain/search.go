package domain

// DefaultSearchLimit is the result count used when a query does not set one.
const DefaultSearchLimit = 10

// SearchOptions controls a search query.
type SearchOptions struct {
	// Limit is the maximum number of results (default 10).
	Limit int

	// Offset skips results for pagination.
	Offset int
}

// SearchResult is one match with metadata and highlighted text.
type SearchResult struct {
	// ID is the matched document id.
	ID string

	// Name is the document's display name.
	Name string

	// Path is the document's location within the remote store.
	Path string

	// WebViewLink is a browser URL for the document, if available.
	WebViewLink string

	// Score is the engine's relevance score.
	Score float64

	// Highlights are snippets with matched terms, keyed by field.
	Highlights map[string][]string
}
