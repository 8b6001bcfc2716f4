package mock

import (
	"context"

	"github.com/fwojciec/autofinder"
)

var _ autofinder.DealerDiscoverer = (*DealerDiscoverer)(nil)

// DealerDiscoverer is a mock implementation of autofinder.DealerDiscoverer.
type DealerDiscoverer struct {
	DiscoverFn func(ctx context.Context, cfg autofinder.Config) ([]autofinder.DealerCandidate, autofinder.StageStats, error)
}

func (d *DealerDiscoverer) Discover(ctx context.Context, cfg autofinder.Config) ([]autofinder.DealerCandidate, autofinder.StageStats, error) {
	return d.DiscoverFn(ctx, cfg)
}

var _ autofinder.PageFinder = (*PageFinder)(nil)

// PageFinder is a mock implementation of autofinder.PageFinder.
type PageFinder struct {
	FindPagesFn func(ctx context.Context, dealers []autofinder.DealerCandidate, cfg autofinder.Config) ([]autofinder.InventoryPageCandidate, autofinder.StageStats, error)
}

func (f *PageFinder) FindPages(ctx context.Context, dealers []autofinder.DealerCandidate, cfg autofinder.Config) ([]autofinder.InventoryPageCandidate, autofinder.StageStats, error) {
	return f.FindPagesFn(ctx, dealers, cfg)
}

var _ autofinder.ListingExtractor = (*ListingExtractor)(nil)

// ListingExtractor is a mock implementation of autofinder.ListingExtractor.
type ListingExtractor struct {
	ExtractAllFn func(ctx context.Context, pages []autofinder.InventoryPageCandidate, cfg autofinder.Config) ([]autofinder.RawVehicleRecord, autofinder.StageStats, error)
}

func (e *ListingExtractor) ExtractAll(ctx context.Context, pages []autofinder.InventoryPageCandidate, cfg autofinder.Config) ([]autofinder.RawVehicleRecord, autofinder.StageStats, error) {
	return e.ExtractAllFn(ctx, pages, cfg)
}

var _ autofinder.Aggregator = (*Aggregator)(nil)

// Aggregator is a mock implementation of autofinder.Aggregator.
type Aggregator struct {
	AggregateFn func(records []autofinder.RawVehicleRecord, cfg autofinder.Config) *autofinder.InventorySnapshot
}

func (a *Aggregator) Aggregate(records []autofinder.RawVehicleRecord, cfg autofinder.Config) *autofinder.InventorySnapshot {
	return a.AggregateFn(records, cfg)
}

var _ autofinder.SourceAdapter = (*SourceAdapter)(nil)

// SourceAdapter is a mock implementation of autofinder.SourceAdapter.
type SourceAdapter struct {
	NameFn    func() string
	RecordsFn func(ctx context.Context, cfg autofinder.Config) ([]autofinder.RawVehicleRecord, error)
}

func (s *SourceAdapter) Name() string {
	return s.NameFn()
}

func (s *SourceAdapter) Records(ctx context.Context, cfg autofinder.Config) ([]autofinder.RawVehicleRecord, error) {
	return s.RecordsFn(ctx, cfg)
}
