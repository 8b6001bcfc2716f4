// Package demo provides a deterministic vehicle source for offline runs.
// It lets the aggregation and reporting paths run end to end without
// search or model credentials.
package demo

import (
	"context"

	"github.com/fwojciec/autofinder"
)

// Name is the source key that enables the adapter in configuration.
const Name = "demo"

// Ensure Source implements autofinder.SourceAdapter.
var _ autofinder.SourceAdapter = (*Source)(nil)

// Source emits a fixed set of listings shaped like real extraction
// output, including a VIN duplicate pair that exercises merging.
type Source struct{}

// NewSource creates a new Source.
func NewSource() *Source {
	return &Source{}
}

// Name returns the source key.
func (s *Source) Name() string {
	return Name
}

// Records returns the fixture listings, filtered to the configured makes.
func (s *Source) Records(ctx context.Context, cfg autofinder.Config) ([]autofinder.RawVehicleRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []autofinder.RawVehicleRecord
	for _, r := range fixtures() {
		if !cfg.MakeAllowed(r.Make) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func fixtures() []autofinder.RawVehicleRecord {
	price := func(v float64) *float64 { return &v }
	miles := func(v int) *int { return &v }

	return []autofinder.RawVehicleRecord{
		{
			SourceURL:            "https://demo.invalid/listings/civic-lx",
			SourceKind:           autofinder.SourceDemo,
			Make:                 "Honda",
			Model:                "Civic",
			Year:                 2019,
			Trim:                 "LX",
			Price:                price(17800),
			Mileage:              miles(43250),
			VIN:                  "2HGFC2F59KH512345",
			ExtractionConfidence: 1.0,
		},
		{
			SourceURL:            "https://demo.invalid/listings/civic-lx-alt",
			SourceKind:           autofinder.SourceDemo,
			Make:                 "Honda",
			Model:                "Civic",
			Year:                 2019,
			Trim:                 "LX",
			Price:                price(17995),
			Mileage:              miles(43250),
			VIN:                  "2HGFC2F59KH512345",
			ExtractionConfidence: 1.0,
		},
		{
			SourceURL:            "https://demo.invalid/listings/corolla-le",
			SourceKind:           autofinder.SourceDemo,
			Make:                 "Toyota",
			Model:                "Corolla",
			Year:                 2020,
			Trim:                 "LE",
			Price:                price(19200),
			Mileage:              miles(31800),
			VIN:                  "5YFEPRAE2LP067890",
			ExtractionConfidence: 1.0,
		},
		{
			SourceURL:            "https://demo.invalid/listings/elantra-sel",
			SourceKind:           autofinder.SourceDemo,
			Make:                 "Hyundai",
			Model:                "Elantra",
			Year:                 2021,
			Trim:                 "SEL",
			Price:                price(16900),
			Mileage:              miles(28400),
			VIN:                  "KMHLM4AG5MU234567",
			ExtractionConfidence: 1.0,
		},
		{
			SourceURL:              "https://demo.invalid/listings/mazda3-lease",
			SourceKind:             autofinder.SourceDemo,
			Make:                   "Mazda",
			Model:                  "Mazda3",
			Year:                   2022,
			MonthlyPaymentEstimate: price(315),
			Mileage:                miles(19500),
			VIN:                    "3MZBPACL8NM345678",
			ExtractionConfidence:   1.0,
		},
	}
}
