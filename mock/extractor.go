package mock

import (
	"context"

	"github.com/fwojciec/autofinder"
)

var _ autofinder.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of autofinder.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*autofinder.ExtractResult, error)
}

func (e *ContentExtractor) Extract(html string) (*autofinder.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ autofinder.Converter = (*Converter)(nil)

// Converter is a mock implementation of autofinder.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ autofinder.VehicleExtractor = (*VehicleExtractor)(nil)

// VehicleExtractor is a mock implementation of autofinder.VehicleExtractor.
type VehicleExtractor struct {
	ExtractFn func(ctx context.Context, page autofinder.InventoryPageCandidate, content string) ([]autofinder.RawVehicleRecord, error)
}

func (e *VehicleExtractor) Extract(ctx context.Context, page autofinder.InventoryPageCandidate, content string) ([]autofinder.RawVehicleRecord, error) {
	return e.ExtractFn(ctx, page, content)
}

var _ autofinder.LinkHarvester = (*LinkHarvester)(nil)

// LinkHarvester is a mock implementation of autofinder.LinkHarvester.
type LinkHarvester struct {
	HarvestLinksFn func(html string, baseURL string) ([]string, error)
}

func (h *LinkHarvester) HarvestLinks(html string, baseURL string) ([]string, error) {
	return h.HarvestLinksFn(html, baseURL)
}
