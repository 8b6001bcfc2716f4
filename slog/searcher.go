// Package slog provides logging decorators for autofinder services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/autofinder"
)

// Ensure LoggingSearcher implements autofinder.Searcher.
var _ autofinder.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with per-query logging.
type LoggingSearcher struct {
	next   autofinder.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next autofinder.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the operation.
func (s *LoggingSearcher) Search(ctx context.Context, req autofinder.SearchRequest) (results []autofinder.SearchResult, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"query", req.Query,
			"site", req.SiteRestrict,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, req)
}
