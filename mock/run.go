package mock

import (
	"context"

	"github.com/fwojciec/autofinder"
)

var _ autofinder.RunService = (*RunService)(nil)

// RunService is a mock implementation of autofinder.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *autofinder.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*autofinder.Run, error)
	FindRunsFn    func(ctx context.Context, filter autofinder.RunFilter) ([]*autofinder.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *autofinder.Run) error {
	if s.CreateRunFn == nil {
		return nil
	}
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*autofinder.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter autofinder.RunFilter) ([]*autofinder.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

var _ autofinder.VehicleService = (*VehicleService)(nil)

// VehicleService is a mock implementation of autofinder.VehicleService.
type VehicleService struct {
	SaveVehiclesFn      func(ctx context.Context, runID string, items []autofinder.CanonicalVehicle) error
	FindVehiclesByRunFn func(ctx context.Context, runID string) ([]autofinder.CanonicalVehicle, error)
}

func (s *VehicleService) SaveVehicles(ctx context.Context, runID string, items []autofinder.CanonicalVehicle) error {
	if s.SaveVehiclesFn == nil {
		return nil
	}
	return s.SaveVehiclesFn(ctx, runID, items)
}

func (s *VehicleService) FindVehiclesByRun(ctx context.Context, runID string) ([]autofinder.CanonicalVehicle, error) {
	return s.FindVehiclesByRunFn(ctx, runID)
}
