package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/autofinder"
	main "github.com/fwojciec/autofinder/cmd/autofinder"
	"github.com/fwojciec/autofinder/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists runs with counts", func(t *testing.T) {
		t.Parallel()

		started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		runs := &mock.RunService{
			FindRunsFn: func(_ context.Context, filter autofinder.RunFilter) ([]*autofinder.Run, error) {
				assert.Equal(t, 10, filter.Limit)
				return []*autofinder.Run{
					{
						ID:           "run-1",
						StartedAt:    started,
						FinishedAt:   started.Add(time.Minute),
						DealerCount:  8,
						PageCount:    21,
						RecordCount:  64,
						VehicleCount: 40,
					},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Runs:   runs,
		}

		cmd := &main.RunsCmd{Limit: 10}
		require.NoError(t, cmd.Run(deps))

		output := stdout.String()
		assert.Contains(t, output, "run-1")
		assert.Contains(t, output, "2025-06-01 12:00")
		assert.Contains(t, output, "dealers=8")
		assert.Contains(t, output, "vehicles=40")
	})

	t.Run("shows helpful message when no runs exist", func(t *testing.T) {
		t.Parallel()

		runs := &mock.RunService{
			FindRunsFn: func(context.Context, autofinder.RunFilter) ([]*autofinder.Run, error) {
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Runs:   runs,
		}

		cmd := &main.RunsCmd{Limit: 10}
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "No runs recorded")
	})

	t.Run("propagates service errors", func(t *testing.T) {
		t.Parallel()

		runs := &mock.RunService{
			FindRunsFn: func(context.Context, autofinder.RunFilter) ([]*autofinder.Run, error) {
				return nil, autofinder.Errorf(autofinder.EINTERNAL, "disk full")
			},
		}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Runs:   runs,
		}

		cmd := &main.RunsCmd{Limit: 10}
		require.Error(t, cmd.Run(deps))
	})
}
