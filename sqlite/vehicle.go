package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/autofinder"
)

// Compile-time interface verification.
var _ autofinder.VehicleService = (*VehicleService)(nil)

// VehicleService implements autofinder.VehicleService using SQLite.
type VehicleService struct {
	db *DB
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(db *DB) *VehicleService {
	return &VehicleService{db: db}
}

// SaveVehicles stores the snapshot items for a run in one transaction.
// The position column preserves snapshot order on read.
func (s *VehicleService) SaveVehicles(ctx context.Context, runID string, items []autofinder.CanonicalVehicle) error {
	if runID == "" {
		return autofinder.Errorf(autofinder.EINVALID, "Run ID required.")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, item := range items {
		sourceURLs, err := json.Marshal(item.SourceURLs)
		if err != nil {
			return fmt.Errorf("failed to encode source URLs: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO vehicles (
				run_id, canonical_id, make, model, year, trim,
				price, mileage, vin, source_urls, cluster_size, position
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, item.ID, item.Make, item.Model, item.Year, item.Trim,
			item.Price, item.Mileage, item.VIN, string(sourceURLs), item.ClusterSize, i)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindVehiclesByRun retrieves the canonical vehicles stored for a run, in
// snapshot order.
func (s *VehicleService) FindVehiclesByRun(ctx context.Context, runID string) ([]autofinder.CanonicalVehicle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT canonical_id, make, model, year, trim,
			price, mileage, vin, source_urls, cluster_size
		FROM vehicles
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []autofinder.CanonicalVehicle
	for rows.Next() {
		var item autofinder.CanonicalVehicle
		var sourceURLs string

		err := rows.Scan(&item.ID, &item.Make, &item.Model, &item.Year, &item.Trim,
			&item.Price, &item.Mileage, &item.VIN, &sourceURLs, &item.ClusterSize)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sourceURLs), &item.SourceURLs); err != nil {
			return nil, fmt.Errorf("failed to decode source URLs: %w", err)
		}

		items = append(items, item)
	}
	return items, rows.Err()
}
