package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/autofinder"
	"github.com/google/uuid"
)

// Stage names used in errors, logs and run records.
const (
	StageDealers   = "dealers"
	StagePages     = "pages"
	StageExtract   = "extract"
	StageAggregate = "aggregate"
)

// StageError marks a fatal stage failure. It aborts the run; artifacts
// persisted by earlier stages are left in place, never rolled back.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline orchestrates the four stages. Each stage's output is persisted
// to the artifact store before the next stage starts; stage-local skips
// are recorded on the run, and only StageErrors abort.
type Pipeline struct {
	Dealers    autofinder.DealerDiscoverer
	Pages      autofinder.PageFinder
	Listings   autofinder.ListingExtractor
	Aggregator autofinder.Aggregator

	// Sources are auxiliary record providers; each runs only when enabled
	// in Config.Sources. Adapter failures are warnings, not fatal.
	Sources []autofinder.SourceAdapter

	Artifacts autofinder.ArtifactStore

	// Runs and Vehicles persist run history when set. History failures
	// are logged, never fatal: the snapshot is already on disk.
	Runs     autofinder.RunService
	Vehicles autofinder.VehicleService

	Logger *slog.Logger

	// Now supplies timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Run executes the pipeline for a config and returns the final snapshot
// together with the run record.
func (p *Pipeline) Run(ctx context.Context, cfg autofinder.Config) (*autofinder.InventorySnapshot, *autofinder.Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := p.logger()
	run := &autofinder.Run{
		ID:        uuid.New().String(),
		StartedAt: p.now().UTC(),
	}

	// Stage 1: dealer discovery. An empty dealer set is a warning, not a
	// fatal condition; the run continues and produces an empty snapshot.
	begin := p.now()
	dealers, stats, err := p.Dealers.Discover(ctx, cfg)
	run.DiscoverMillis = p.since(begin)
	if err != nil {
		return nil, nil, &StageError{Stage: StageDealers, Err: err}
	}
	run.DealerCount = len(dealers)
	run.SkippedUnits += stats.Skipped
	if len(dealers) == 0 {
		logger.Warn("no dealers discovered; snapshot will be empty")
	}
	if err := p.Artifacts.SaveDealers(ctx, dealers); err != nil {
		return nil, nil, &StageError{Stage: StageDealers, Err: err}
	}

	// Stage 2: inventory page discovery.
	var pages []autofinder.InventoryPageCandidate
	begin = p.now()
	if len(dealers) > 0 {
		pages, stats, err = p.Pages.FindPages(ctx, dealers, cfg)
		if err != nil {
			return nil, nil, &StageError{Stage: StagePages, Err: err}
		}
		run.SkippedUnits += stats.Skipped
	}
	run.PagesMillis = p.since(begin)
	run.PageCount = len(pages)
	if err := p.Artifacts.SavePages(ctx, pages); err != nil {
		return nil, nil, &StageError{Stage: StagePages, Err: err}
	}

	// Stage 3: structured extraction plus auxiliary sources.
	var records []autofinder.RawVehicleRecord
	begin = p.now()
	if len(pages) > 0 {
		records, stats, err = p.Listings.ExtractAll(ctx, pages, cfg)
		if err != nil {
			return nil, nil, &StageError{Stage: StageExtract, Err: err}
		}
		run.SkippedUnits += stats.Skipped
	}
	for _, source := range p.Sources {
		if !cfg.SourceEnabled(source.Name()) {
			continue
		}
		extra, err := source.Records(ctx, cfg)
		if err != nil {
			logger.Warn("source adapter skipped", "source", source.Name(), "error", err)
			run.SkippedUnits++
			continue
		}
		records = append(records, extra...)
	}
	run.ExtractMillis = p.since(begin)
	run.RecordCount = len(records)
	if err := p.Artifacts.SaveRecords(ctx, records); err != nil {
		return nil, nil, &StageError{Stage: StageExtract, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, &StageError{Stage: StageAggregate, Err: err}
	}

	// Stage 4: aggregate into the canonical snapshot.
	begin = p.now()
	snapshot := p.Aggregator.Aggregate(records, cfg)
	run.AggregateMillis = p.since(begin)
	run.VehicleCount = len(snapshot.Items)
	if err := p.Artifacts.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, nil, &StageError{Stage: StageAggregate, Err: err}
	}

	run.FinishedAt = p.now().UTC()
	run.SnapshotHash = SnapshotHash(snapshot)

	if p.Runs != nil {
		if err := p.Runs.CreateRun(ctx, run); err != nil {
			logger.Warn("run history not recorded", "error", err)
		} else if p.Vehicles != nil {
			if err := p.Vehicles.SaveVehicles(ctx, run.ID, snapshot.Items); err != nil {
				logger.Warn("run vehicles not recorded", "error", err)
			}
		}
	}

	logger.Info("pipeline finished",
		"run", run.ID,
		"dealers", run.DealerCount,
		"pages", run.PageCount,
		"records", run.RecordCount,
		"vehicles", run.VehicleCount,
		"skipped", run.SkippedUnits,
		"elapsed_ms", run.TotalMillis(),
	)

	return snapshot, run, nil
}

func (p *Pipeline) since(begin time.Time) int64 {
	return p.now().Sub(begin).Milliseconds()
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}
