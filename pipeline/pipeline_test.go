package pipeline_test

import (
	"context"
	"testing"

	"github.com/fwojciec/autofinder"
	"github.com/fwojciec/autofinder/mock"
	"github.com/fwojciec/autofinder/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// happyPipeline wires mocks for a run that flows one dealer, one page and
// one record through to the snapshot.
func happyPipeline() *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Dealers: &mock.DealerDiscoverer{
			DiscoverFn: func(context.Context, autofinder.Config) ([]autofinder.DealerCandidate, autofinder.StageStats, error) {
				return []autofinder.DealerCandidate{dealer("hondaofoakland.com")}, autofinder.StageStats{Units: 1}, nil
			},
		},
		Pages: &mock.PageFinder{
			FindPagesFn: func(context.Context, []autofinder.DealerCandidate, autofinder.Config) ([]autofinder.InventoryPageCandidate, autofinder.StageStats, error) {
				return []autofinder.InventoryPageCandidate{page("https://hondaofoakland.com/used")}, autofinder.StageStats{Units: 1}, nil
			},
		},
		Listings: &mock.ListingExtractor{
			ExtractAllFn: func(context.Context, []autofinder.InventoryPageCandidate, autofinder.Config) ([]autofinder.RawVehicleRecord, autofinder.StageStats, error) {
				return []autofinder.RawVehicleRecord{record()}, autofinder.StageStats{Units: 1}, nil
			},
		},
		Aggregator: &pipeline.Aggregate{Now: fixedClock()},
		Artifacts:  &mock.ArtifactStore{},
		Now:        fixedClock(),
	}
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	t.Run("full run produces snapshot and run record", func(t *testing.T) {
		t.Parallel()

		p := happyPipeline()
		snapshot, run, err := p.Run(context.Background(), testConfig())
		require.NoError(t, err)

		require.Len(t, snapshot.Items, 1)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, 1, run.DealerCount)
		assert.Equal(t, 1, run.PageCount)
		assert.Equal(t, 1, run.RecordCount)
		assert.Equal(t, 1, run.VehicleCount)
		assert.Equal(t, pipeline.SnapshotHash(snapshot), run.SnapshotHash)
	})

	t.Run("invalid config rejected before any stage", func(t *testing.T) {
		t.Parallel()

		p := happyPipeline()
		p.Dealers = &mock.DealerDiscoverer{
			DiscoverFn: func(context.Context, autofinder.Config) ([]autofinder.DealerCandidate, autofinder.StageStats, error) {
				t.Error("discovery should not run")
				return nil, autofinder.StageStats{}, nil
			},
		}

		cfg := testConfig()
		cfg.Location.PostalCode = ""
		_, _, err := p.Run(context.Background(), cfg)
		require.Error(t, err)
		assert.Equal(t, autofinder.EINVALID, autofinder.ErrorCode(err))
	})

	t.Run("no dealers still produces an empty snapshot", func(t *testing.T) {
		t.Parallel()

		p := happyPipeline()
		p.Dealers = &mock.DealerDiscoverer{
			DiscoverFn: func(context.Context, autofinder.Config) ([]autofinder.DealerCandidate, autofinder.StageStats, error) {
				return nil, autofinder.StageStats{Units: 2, Skipped: 2}, nil
			},
		}
		p.Pages = &mock.PageFinder{
			FindPagesFn: func(context.Context, []autofinder.DealerCandidate, autofinder.Config) ([]autofinder.InventoryPageCandidate, autofinder.StageStats, error) {
				t.Error("page discovery should not run without dealers")
				return nil, autofinder.StageStats{}, nil
			},
		}

		var savedSnapshot *autofinder.InventorySnapshot
		p.Artifacts = &mock.ArtifactStore{
			SaveSnapshotFn: func(_ context.Context, s *autofinder.InventorySnapshot) error {
				savedSnapshot = s
				return nil
			},
		}

		snapshot, run, err := p.Run(context.Background(), testConfig())
		require.NoError(t, err)

		assert.Empty(t, snapshot.Items)
		assert.Same(t, snapshot, savedSnapshot)
		assert.Equal(t, 0, run.DealerCount)
		assert.Equal(t, 2, run.SkippedUnits)
	})

	t.Run("fatal stage errors abort with the stage name", func(t *testing.T) {
		t.Parallel()

		p := happyPipeline()
		p.Pages = &mock.PageFinder{
			FindPagesFn: func(context.Context, []autofinder.DealerCandidate, autofinder.Config) ([]autofinder.InventoryPageCandidate, autofinder.StageStats, error) {
				return nil, autofinder.StageStats{Units: 2, Skipped: 2}, autofinder.Errorf(autofinder.EUNAVAILABLE, "all searches failed")
			},
		}

		_, _, err := p.Run(context.Background(), testConfig())
		require.Error(t, err)

		var stageErr *pipeline.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, pipeline.StagePages, stageErr.Stage)
		assert.Equal(t, autofinder.EUNAVAILABLE, autofinder.ErrorCode(stageErr.Err))
	})

	t.Run("earlier artifacts survive a later stage failure", func(t *testing.T) {
		t.Parallel()

		var savedDealers []autofinder.DealerCandidate
		p := happyPipeline()
		p.Artifacts = &mock.ArtifactStore{
			SaveDealersFn: func(_ context.Context, dealers []autofinder.DealerCandidate) error {
				savedDealers = dealers
				return nil
			},
		}
		p.Listings = &mock.ListingExtractor{
			ExtractAllFn: func(context.Context, []autofinder.InventoryPageCandidate, autofinder.Config) ([]autofinder.RawVehicleRecord, autofinder.StageStats, error) {
				return nil, autofinder.StageStats{Units: 1, Skipped: 1}, autofinder.Errorf(autofinder.EUNAVAILABLE, "extraction collapsed")
			},
		}

		_, _, err := p.Run(context.Background(), testConfig())
		require.Error(t, err)
		assert.Len(t, savedDealers, 1)
	})

	t.Run("enabled source adapters contribute records", func(t *testing.T) {
		t.Parallel()

		p := happyPipeline()
		p.Sources = []autofinder.SourceAdapter{
			&mock.SourceAdapter{
				NameFn: func() string { return "demo" },
				RecordsFn: func(context.Context, autofinder.Config) ([]autofinder.RawVehicleRecord, error) {
					return []autofinder.RawVehicleRecord{record(func(r *autofinder.RawVehicleRecord) {
						r.SourceKind = autofinder.SourceDemo
						r.Make = "Toyota"
						r.Model = "Corolla"
						r.SourceURL = "https://demo.invalid/corolla"
					})}, nil
				},
			},
		}

		cfg := testConfig()
		cfg.Sources["demo"] = true
		snapshot, run, err := p.Run(context.Background(), cfg)
		require.NoError(t, err)

		assert.Equal(t, 2, run.RecordCount)
		assert.Equal(t, 1, snapshot.SourceCounts[autofinder.SourceDemo])
	})

	t.Run("disabled source adapters never run", func(t *testing.T) {
		t.Parallel()

		p := happyPipeline()
		p.Sources = []autofinder.SourceAdapter{
			&mock.SourceAdapter{
				NameFn: func() string { return "demo" },
				RecordsFn: func(context.Context, autofinder.Config) ([]autofinder.RawVehicleRecord, error) {
					t.Error("disabled source should not run")
					return nil, nil
				},
			},
		}

		_, _, err := p.Run(context.Background(), testConfig())
		require.NoError(t, err)
	})

	t.Run("source adapter failure is a warning, not fatal", func(t *testing.T) {
		t.Parallel()

		p := happyPipeline()
		p.Sources = []autofinder.SourceAdapter{
			&mock.SourceAdapter{
				NameFn: func() string { return "demo" },
				RecordsFn: func(context.Context, autofinder.Config) ([]autofinder.RawVehicleRecord, error) {
					return nil, autofinder.Errorf(autofinder.EINTERNAL, "demo fixture corrupt")
				},
			},
		}

		cfg := testConfig()
		cfg.Sources["demo"] = true
		snapshot, run, err := p.Run(context.Background(), cfg)
		require.NoError(t, err)
		assert.Len(t, snapshot.Items, 1)
		assert.Equal(t, 1, run.SkippedUnits)
	})

	t.Run("run history failure does not fail the run", func(t *testing.T) {
		t.Parallel()

		p := happyPipeline()
		p.Runs = &mock.RunService{
			CreateRunFn: func(context.Context, *autofinder.Run) error {
				return autofinder.Errorf(autofinder.EINTERNAL, "disk full")
			},
		}

		snapshot, _, err := p.Run(context.Background(), testConfig())
		require.NoError(t, err)
		assert.Len(t, snapshot.Items, 1)
	})

	t.Run("run history records the snapshot vehicles", func(t *testing.T) {
		t.Parallel()

		var createdRun *autofinder.Run
		var savedRunID string
		var savedItems []autofinder.CanonicalVehicle

		p := happyPipeline()
		p.Runs = &mock.RunService{
			CreateRunFn: func(_ context.Context, run *autofinder.Run) error {
				createdRun = run
				return nil
			},
		}
		p.Vehicles = &mock.VehicleService{
			SaveVehiclesFn: func(_ context.Context, runID string, items []autofinder.CanonicalVehicle) error {
				savedRunID = runID
				savedItems = items
				return nil
			},
		}

		snapshot, run, err := p.Run(context.Background(), testConfig())
		require.NoError(t, err)
		require.NotNil(t, createdRun)
		assert.Equal(t, run.ID, savedRunID)
		assert.Equal(t, snapshot.Items, savedItems)
	})

	t.Run("cancellation before aggregation aborts", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		p := happyPipeline()
		p.Listings = &mock.ListingExtractor{
			ExtractAllFn: func(context.Context, []autofinder.InventoryPageCandidate, autofinder.Config) ([]autofinder.RawVehicleRecord, autofinder.StageStats, error) {
				cancel()
				return nil, autofinder.StageStats{}, nil
			},
		}

		_, _, err := p.Run(ctx, testConfig())
		require.Error(t, err)

		var stageErr *pipeline.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, pipeline.StageAggregate, stageErr.Stage)
	})
}
