package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/autofinder"
	"golang.org/x/sync/errgroup"
)

// Extraction stage failure thresholds. Repeated capability-level errors
// above the rate convert the stage to fatal; below it they are skipped
// pages. The minimum count keeps tiny runs from tripping on one bad page.
const (
	DefaultFailureRateThreshold = 0.5
	DefaultMinFailures          = 3
)

// Ensure Extraction implements autofinder.ListingExtractor.
var _ autofinder.ListingExtractor = (*Extraction)(nil)

// Extraction runs the fetch → clean → convert → extract chain over
// inventory pages with bounded parallelism.
type Extraction struct {
	Fetcher   autofinder.Fetcher
	Content   autofinder.ContentExtractor
	Converter autofinder.Converter
	Vehicles  autofinder.VehicleExtractor

	Hosts       *HostLimiter
	Concurrency int
	RetryDelays []time.Duration

	// FailureRateThreshold and MinFailures control fatal escalation.
	// Zero values select the package defaults.
	FailureRateThreshold float64
	MinFailures          int

	Logger *slog.Logger
}

// ExtractAll processes every page and returns the accumulated records in
// page order. Pages yielding zero records are not failures; pages failing
// with capability-level errors are skipped and counted, escalating to a
// fatal error only past the failure-rate threshold.
func (e *Extraction) ExtractAll(ctx context.Context, pages []autofinder.InventoryPageCandidate, cfg autofinder.Config) ([]autofinder.RawVehicleRecord, autofinder.StageStats, error) {
	stats := autofinder.StageStats{Units: len(pages)}
	logger := e.logger()

	type pageResult struct {
		records []autofinder.RawVehicleRecord
		err     error
	}
	results := make([]pageResult, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency())

	for i, page := range pages {
		g.Go(func() error {
			records, err := e.processPage(gctx, page)
			results[i] = pageResult{records: records, err: err}
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	var records []autofinder.RawVehicleRecord
	for i, r := range results {
		if r.err != nil {
			stats.Skipped++
			logger.Warn("page extraction skipped", "url", pages[i].URL, "error", r.err)
			continue
		}
		records = append(records, r.records...)
	}

	if e.fatal(stats) {
		return nil, stats, autofinder.Errorf(autofinder.EUNAVAILABLE,
			"extraction failed on %d of %d pages", stats.Skipped, stats.Units)
	}

	logger.Info("extraction finished", "records", len(records), "pages", stats.Units, "skipped", stats.Skipped)

	return records, stats, nil
}

// processPage runs the extraction chain for one page.
func (e *Extraction) processPage(ctx context.Context, page autofinder.InventoryPageCandidate) ([]autofinder.RawVehicleRecord, error) {
	if e.Hosts != nil {
		if err := e.Hosts.Wait(ctx, pageHost(page)); err != nil {
			return nil, err
		}
	}

	delays := e.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, page.URL, e.Fetcher.Fetch, e.Logger, delays)
	if err != nil {
		return nil, err
	}

	content, err := e.Content.Extract(html)
	if err != nil {
		return nil, err
	}
	if content.ContentHTML == "" {
		return nil, nil
	}

	markdown, err := e.Converter.Convert(content.ContentHTML)
	if err != nil {
		return nil, err
	}

	return e.Vehicles.Extract(ctx, page, markdown)
}

// fatal reports whether the stage's failure count crosses the threshold.
func (e *Extraction) fatal(stats autofinder.StageStats) bool {
	if stats.Units == 0 || stats.Skipped == 0 {
		return false
	}

	minFailures := e.MinFailures
	if minFailures <= 0 {
		minFailures = DefaultMinFailures
	}
	threshold := e.FailureRateThreshold
	if threshold <= 0 {
		threshold = DefaultFailureRateThreshold
	}

	if stats.AllFailed() {
		return true
	}
	return stats.Skipped >= minFailures && float64(stats.Skipped) > threshold*float64(stats.Units)
}

func (e *Extraction) concurrency() int {
	if e.Concurrency > 0 {
		return e.Concurrency
	}
	return DefaultConcurrency
}

func (e *Extraction) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// pageHost extracts the host used for rate limiting.
func pageHost(page autofinder.InventoryPageCandidate) string {
	if u, err := url.Parse(page.URL); err == nil && u.Host != "" {
		return u.Host
	}
	return page.DealerDomain
}
