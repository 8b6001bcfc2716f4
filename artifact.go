package autofinder

import (
	"context"
	"time"
)

// StageStats summarizes unit-of-work outcomes within a pipeline stage.
// Per-unit failures never escalate by themselves; crossing an explicit
// threshold is what converts a stage to fatal, and that decision is made
// by the stage or the orchestrator, not the failing unit.
type StageStats struct {
	// Units is the number of independent units the stage attempted.
	Units int `json:"units"`

	// Skipped is the number of units dropped after a recoverable failure.
	Skipped int `json:"skipped"`
}

// AllFailed reports whether every attempted unit was skipped.
func (s StageStats) AllFailed() bool {
	return s.Units > 0 && s.Skipped == s.Units
}

// ArtifactStore persists each stage's output before the next stage starts.
// The stage boundary makes partially completed runs inspectable: a fatal
// error leaves completed artifacts in place, never rolled back.
type ArtifactStore interface {
	SaveDealers(ctx context.Context, dealers []DealerCandidate) error
	SavePages(ctx context.Context, pages []InventoryPageCandidate) error
	SaveRecords(ctx context.Context, records []RawVehicleRecord) error
	SaveSnapshot(ctx context.Context, snapshot *InventorySnapshot) error

	// LoadSnapshot reads the most recently saved snapshot.
	// Returns ENOTFOUND if no snapshot has been saved.
	LoadSnapshot(ctx context.Context) (*InventorySnapshot, error)
}

// Run records one pipeline execution for reporting and history.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	DealerCount  int `json:"dealer_count"`
	PageCount    int `json:"page_count"`
	RecordCount  int `json:"record_count"`
	VehicleCount int `json:"vehicle_count"`
	SkippedUnits int `json:"skipped_units"`

	DiscoverMillis  int64 `json:"discover_ms"`
	PagesMillis     int64 `json:"pages_ms"`
	ExtractMillis   int64 `json:"extract_ms"`
	AggregateMillis int64 `json:"aggregate_ms"`

	SnapshotHash string `json:"snapshot_hash"`
}

// TotalMillis returns the elapsed wall-clock time of the run.
func (r *Run) TotalMillis() int64 {
	return r.FinishedAt.Sub(r.StartedAt).Milliseconds()
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Offset int
	Limit  int
}

// RunService persists run history.
type RunService interface {
	// CreateRun records a completed run.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}

// VehicleService persists the canonical vehicles of a run.
type VehicleService interface {
	// SaveVehicles stores the snapshot items for a run.
	SaveVehicles(ctx context.Context, runID string, items []CanonicalVehicle) error

	// FindVehiclesByRun retrieves the canonical vehicles stored for a run,
	// in snapshot order.
	FindVehiclesByRun(ctx context.Context, runID string) ([]CanonicalVehicle, error)
}
