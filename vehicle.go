package autofinder

import (
	"context"
	"strings"
	"time"
)

// Source kinds attached to raw vehicle records.
const (
	SourceAIExtraction = "ai_extraction"
	SourceDemo         = "demo"
)

// RawVehicleRecord is an unverified, possibly incomplete structured
// extraction from a single source page. Records are immutable once
// produced; pointer fields distinguish absent values from zero.
type RawVehicleRecord struct {
	SourceURL              string   `json:"source_url"`
	SourceKind             string   `json:"source_kind"`
	Make                   string   `json:"make"`
	Model                  string   `json:"model"`
	Year                   int      `json:"year"`
	Trim                   string   `json:"trim,omitempty"`
	Price                  *float64 `json:"price,omitempty"`
	MonthlyPaymentEstimate *float64 `json:"monthly_payment_estimate,omitempty"`
	Mileage                *int     `json:"mileage,omitempty"`
	VIN                    string   `json:"vin,omitempty"`
	ExtractionConfidence   float64  `json:"extraction_confidence"`
	RawSnapshot            string   `json:"raw_snapshot,omitempty"`
}

// Validate returns an error if the record contains invalid fields.
func (r *RawVehicleRecord) Validate() error {
	if r.SourceURL == "" {
		return Errorf(EINVALID, "record source URL required")
	}
	if r.Make == "" && r.Model == "" {
		return Errorf(EINVALID, "record requires a make or a model")
	}
	if r.Price != nil && *r.Price < 0 {
		return Errorf(EINVALID, "record price must be non-negative")
	}
	if r.Mileage != nil && *r.Mileage < 0 {
		return Errorf(EINVALID, "record mileage must be non-negative")
	}
	if r.MonthlyPaymentEstimate != nil && *r.MonthlyPaymentEstimate < 0 {
		return Errorf(EINVALID, "record monthly payment must be non-negative")
	}
	return nil
}

// NormalizedVIN returns the record's VIN in canonical form, or "" if absent.
func (r *RawVehicleRecord) NormalizedVIN() string {
	return strings.ToUpper(strings.TrimSpace(r.VIN))
}

// CanonicalVehicle is the deduplicated, representative record for one
// real-world vehicle listing, possibly backed by multiple raw records.
type CanonicalVehicle struct {
	ID          string   `json:"canonical_id"`
	Make        string   `json:"make"`
	Model       string   `json:"model"`
	Year        int      `json:"year"`
	Trim        string   `json:"trim,omitempty"`
	Price       float64  `json:"price"`
	Mileage     *int     `json:"mileage,omitempty"`
	VIN         string   `json:"vin,omitempty"`
	SourceURLs  []string `json:"source_urls"`
	ClusterSize int      `json:"cluster_size"`
}

// InventorySnapshot is the terminal artifact of one pipeline run. It is
// replaced in full each run; there are no incremental update semantics.
type InventorySnapshot struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	Items        []CanonicalVehicle `json:"items"`
	SourceCounts map[string]int     `json:"source_counts"`
}

// VehicleExtractor produces structured vehicle records from the text of a
// single inventory page. Malformed or empty model output yields zero
// records and a nil error; only capability-level failures (quota, network)
// return an error.
type VehicleExtractor interface {
	Extract(ctx context.Context, page InventoryPageCandidate, content string) ([]RawVehicleRecord, error)
}

// ListingExtractor runs extraction across a set of inventory pages.
type ListingExtractor interface {
	ExtractAll(ctx context.Context, pages []InventoryPageCandidate, cfg Config) ([]RawVehicleRecord, StageStats, error)
}

// Aggregator merges raw records from all sources into a canonical snapshot.
type Aggregator interface {
	Aggregate(records []RawVehicleRecord, cfg Config) *InventorySnapshot
}
