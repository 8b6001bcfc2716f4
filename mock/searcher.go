package mock

import (
	"context"

	"github.com/fwojciec/autofinder"
)

var _ autofinder.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of autofinder.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, req autofinder.SearchRequest) ([]autofinder.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, req autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
	return s.SearchFn(ctx, req)
}
