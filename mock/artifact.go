package mock

import (
	"context"

	"github.com/fwojciec/autofinder"
)

var _ autofinder.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is a mock implementation of autofinder.ArtifactStore.
// Unset functions are no-ops so tests only wire what they assert on.
type ArtifactStore struct {
	SaveDealersFn  func(ctx context.Context, dealers []autofinder.DealerCandidate) error
	SavePagesFn    func(ctx context.Context, pages []autofinder.InventoryPageCandidate) error
	SaveRecordsFn  func(ctx context.Context, records []autofinder.RawVehicleRecord) error
	SaveSnapshotFn func(ctx context.Context, snapshot *autofinder.InventorySnapshot) error
	LoadSnapshotFn func(ctx context.Context) (*autofinder.InventorySnapshot, error)
}

func (s *ArtifactStore) SaveDealers(ctx context.Context, dealers []autofinder.DealerCandidate) error {
	if s.SaveDealersFn == nil {
		return nil
	}
	return s.SaveDealersFn(ctx, dealers)
}

func (s *ArtifactStore) SavePages(ctx context.Context, pages []autofinder.InventoryPageCandidate) error {
	if s.SavePagesFn == nil {
		return nil
	}
	return s.SavePagesFn(ctx, pages)
}

func (s *ArtifactStore) SaveRecords(ctx context.Context, records []autofinder.RawVehicleRecord) error {
	if s.SaveRecordsFn == nil {
		return nil
	}
	return s.SaveRecordsFn(ctx, records)
}

func (s *ArtifactStore) SaveSnapshot(ctx context.Context, snapshot *autofinder.InventorySnapshot) error {
	if s.SaveSnapshotFn == nil {
		return nil
	}
	return s.SaveSnapshotFn(ctx, snapshot)
}

func (s *ArtifactStore) LoadSnapshot(ctx context.Context) (*autofinder.InventorySnapshot, error) {
	return s.LoadSnapshotFn(ctx)
}
