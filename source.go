package autofinder

import "context"

// SourceAdapter is an auxiliary provider of raw vehicle records that runs
// alongside the search-and-extract pipeline. Adapters are registered at
// wiring time and enabled per run via Config.Sources, so switching between
// the real pipeline and offline demo data is a configuration change.
type SourceAdapter interface {
	// Name identifies the adapter; it doubles as the Config.Sources key
	// and the source_kind attached to produced records.
	Name() string

	// Records produces raw vehicle records for the given config.
	Records(ctx context.Context, cfg Config) ([]RawVehicleRecord, error)
}
