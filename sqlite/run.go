package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fwojciec/autofinder"
)

// Compile-time interface verification.
var _ autofinder.RunService = (*RunService)(nil)

// RunService implements autofinder.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records a completed run.
func (s *RunService) CreateRun(ctx context.Context, run *autofinder.Run) error {
	if run.ID == "" {
		return autofinder.Errorf(autofinder.EINVALID, "Run ID required.")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, started_at, finished_at,
			dealer_count, page_count, record_count, vehicle_count, skipped_units,
			discover_ms, pages_ms, extract_ms, aggregate_ms, snapshot_hash
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.DealerCount, run.PageCount, run.RecordCount, run.VehicleCount, run.SkippedUnits,
		run.DiscoverMillis, run.PagesMillis, run.ExtractMillis, run.AggregateMillis, run.SnapshotHash)

	return err
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*autofinder.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at,
			dealer_count, page_count, record_count, vehicle_count, skipped_units,
			discover_ms, pages_ms, extract_ms, aggregate_ms, snapshot_hash
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, autofinder.Errorf(autofinder.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FindRuns retrieves runs, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter autofinder.RunFilter) ([]*autofinder.Run, error) {
	query := `
		SELECT id, started_at, finished_at,
			dealer_count, page_count, record_count, vehicle_count, skipped_units,
			discover_ms, pages_ms, extract_ms, aggregate_ms, snapshot_hash
		FROM runs
		ORDER BY started_at DESC
	`
	args := []any{}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*autofinder.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*autofinder.Run, error) {
	var run autofinder.Run
	var startedAt, finishedAt string

	err := row.Scan(&run.ID, &startedAt, &finishedAt,
		&run.DealerCount, &run.PageCount, &run.RecordCount, &run.VehicleCount, &run.SkippedUnits,
		&run.DiscoverMillis, &run.PagesMillis, &run.ExtractMillis, &run.AggregateMillis, &run.SnapshotHash)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse finished_at: %w", err)
	}

	return &run, nil
}
