package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/autofinder"
)

// Ensure LoggingVehicleExtractor implements autofinder.VehicleExtractor.
var _ autofinder.VehicleExtractor = (*LoggingVehicleExtractor)(nil)

// LoggingVehicleExtractor wraps a VehicleExtractor with per-page logging.
// Model calls dominate run time; the log line carries the duration and
// record count needed to spot slow or empty pages.
type LoggingVehicleExtractor struct {
	next   autofinder.VehicleExtractor
	logger *slog.Logger
}

// NewLoggingVehicleExtractor creates a new LoggingVehicleExtractor.
func NewLoggingVehicleExtractor(next autofinder.VehicleExtractor, logger *slog.Logger) *LoggingVehicleExtractor {
	return &LoggingVehicleExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the operation.
func (e *LoggingVehicleExtractor) Extract(ctx context.Context, page autofinder.InventoryPageCandidate, content string) (records []autofinder.RawVehicleRecord, err error) {
	defer func(begin time.Time) {
		e.logger.Info("vehicle extraction",
			"url", page.URL,
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, page, content)
}
