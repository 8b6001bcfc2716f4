package autofinder

import "context"

// SearchRequest describes a single query against the search capability.
type SearchRequest struct {
	// Query is the free-text search query.
	Query string

	// SiteRestrict, if set, limits results to the given domain.
	SiteRestrict string

	// MaxResults caps the number of returned results. Zero means the
	// implementation's default.
	MaxResults int
}

// SearchResult is one entry returned by the search capability.
type SearchResult struct {
	URL     string
	Title   string
	Snippet string
}

// Searcher is the external web-search capability consumed by dealer and
// inventory-page discovery. Implementations are treated as unreliable:
// timeouts and quota errors surface as EUNAVAILABLE errors.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)
}
