package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/autofinder"
	"github.com/fwojciec/autofinder/mock"
	autoslog "github.com/fwojciec/autofinder/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSearcher_Search(t *testing.T) {
	t.Parallel()

	t.Run("logs query with count and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Searcher{
			SearchFn: func(context.Context, autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
				return []autofinder.SearchResult{
					{URL: "https://hondaofoakland.com"},
					{URL: "https://hondasf.com"},
				}, nil
			},
		}

		s := autoslog.NewLoggingSearcher(inner, logger)
		results, err := s.Search(context.Background(), autofinder.SearchRequest{Query: "Honda dealership near 94103"})

		require.NoError(t, err)
		assert.Len(t, results, 2)
		output := buf.String()
		assert.Contains(t, output, "search")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Searcher{
			SearchFn: func(context.Context, autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
				return nil, autofinder.Errorf(autofinder.EUNAVAILABLE, "quota exhausted")
			},
		}

		s := autoslog.NewLoggingSearcher(inner, logger)
		_, err := s.Search(context.Background(), autofinder.SearchRequest{Query: "Honda dealership near 94103"})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "quota exhausted")
	})
}

func TestLoggingVehicleExtractor_Extract(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	price := 18000.0
	inner := &mock.VehicleExtractor{
		ExtractFn: func(context.Context, autofinder.InventoryPageCandidate, string) ([]autofinder.RawVehicleRecord, error) {
			return []autofinder.RawVehicleRecord{
				{SourceURL: "https://hondaofoakland.com/used", Make: "Honda", Model: "Civic", Price: &price},
			}, nil
		},
	}

	e := autoslog.NewLoggingVehicleExtractor(inner, logger)
	page := autofinder.InventoryPageCandidate{URL: "https://hondaofoakland.com/used"}
	records, err := e.Extract(context.Background(), page, "| Make | Model |")

	require.NoError(t, err)
	assert.Len(t, records, 1)
	output := buf.String()
	assert.Contains(t, output, "vehicle extraction")
	assert.Contains(t, output, "records=1")
}
