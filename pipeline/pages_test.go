package pipeline_test

import (
	"context"
	"testing"

	"github.com/fwojciec/autofinder"
	"github.com/fwojciec/autofinder/mock"
	"github.com/fwojciec/autofinder/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dealer(domain string) autofinder.DealerCandidate {
	return autofinder.DealerCandidate{Domain: domain, Confidence: 1.0}
}

func TestInventoryPageFinder_FindPages(t *testing.T) {
	t.Parallel()

	t.Run("domain-restricted search per dealer and make", func(t *testing.T) {
		t.Parallel()

		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, req autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
				return []autofinder.SearchResult{
					{URL: "https://" + req.SiteRestrict + "/used-inventory"},
					{URL: "https://" + req.SiteRestrict + "/about-us"},
				}, nil
			},
		}

		f := &pipeline.InventoryPageFinder{Searcher: searcher}
		pages, stats, err := f.FindPages(context.Background(), []autofinder.DealerCandidate{dealer("hondaofoakland.com")}, testConfig())
		require.NoError(t, err)

		// Two (dealer, make) pairs, both returning the same inventory URL.
		assert.Equal(t, autofinder.StageStats{Units: 2}, stats)
		require.Len(t, pages, 1)
		assert.Equal(t, "https://hondaofoakland.com/used-inventory", pages[0].URL)
		assert.Equal(t, "hondaofoakland.com", pages[0].DealerDomain)
	})

	t.Run("caps pages per dealer", func(t *testing.T) {
		t.Parallel()

		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, req autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
				var out []autofinder.SearchResult
				for _, p := range []string{"a", "b", "c", "d"} {
					out = append(out, autofinder.SearchResult{
						URL: "https://" + req.SiteRestrict + "/inventory/" + req.Query[:4] + p,
					})
				}
				return out, nil
			},
		}

		f := &pipeline.InventoryPageFinder{Searcher: searcher, MaxPerDealer: 3}
		pages, _, err := f.FindPages(context.Background(), []autofinder.DealerCandidate{dealer("hondaofoakland.com")}, testConfig())
		require.NoError(t, err)
		assert.Len(t, pages, 3)
	})

	t.Run("all searches failing is fatal", func(t *testing.T) {
		t.Parallel()

		searcher := &mock.Searcher{
			SearchFn: func(context.Context, autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
				return nil, autofinder.Errorf(autofinder.EUNAVAILABLE, "quota exhausted")
			},
		}

		f := &pipeline.InventoryPageFinder{Searcher: searcher}
		_, stats, err := f.FindPages(context.Background(), []autofinder.DealerCandidate{dealer("hondaofoakland.com")}, testConfig())
		require.Error(t, err)
		assert.Equal(t, autofinder.EUNAVAILABLE, autofinder.ErrorCode(err))
		assert.True(t, stats.AllFailed())
	})

	t.Run("partial failure is skipped, not fatal", func(t *testing.T) {
		t.Parallel()

		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, req autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
				if req.SiteRestrict == "broken.com" {
					return nil, autofinder.Errorf(autofinder.EUNAVAILABLE, "quota exhausted")
				}
				return []autofinder.SearchResult{{URL: "https://" + req.SiteRestrict + "/used"}}, nil
			},
		}

		f := &pipeline.InventoryPageFinder{Searcher: searcher}
		dealers := []autofinder.DealerCandidate{dealer("broken.com"), dealer("hondaofoakland.com")}
		pages, stats, err := f.FindPages(context.Background(), dealers, testConfig())
		require.NoError(t, err)

		assert.Equal(t, 2, stats.Skipped) // both makes for the broken dealer
		require.Len(t, pages, 1)
		assert.Equal(t, "hondaofoakland.com", pages[0].DealerDomain)
	})

	t.Run("falls back to landing-page harvest for empty dealers", func(t *testing.T) {
		t.Parallel()

		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, req autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
				if req.SiteRestrict == "quietdealer.com" {
					return nil, nil
				}
				return []autofinder.SearchResult{{URL: "https://" + req.SiteRestrict + "/used"}}, nil
			},
		}
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				assert.Equal(t, "https://quietdealer.com/", url)
				return "<html></html>", nil
			},
		}
		harvester := &mock.LinkHarvester{
			HarvestLinksFn: func(string, string) ([]string, error) {
				return []string{
					"https://quietdealer.com/inventory",
					"https://quietdealer.com/service",
				}, nil
			},
		}

		f := &pipeline.InventoryPageFinder{Searcher: searcher, Fetcher: fetcher, Harvester: harvester}
		dealers := []autofinder.DealerCandidate{dealer("hondaofoakland.com"), dealer("quietdealer.com")}
		pages, _, err := f.FindPages(context.Background(), dealers, testConfig())
		require.NoError(t, err)

		require.Len(t, pages, 2)
		assert.Equal(t, "https://hondaofoakland.com/used", pages[0].URL)
		assert.Equal(t, "https://quietdealer.com/inventory", pages[1].URL)
	})

	t.Run("harvest failures are best-effort", func(t *testing.T) {
		t.Parallel()

		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, req autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
				if req.SiteRestrict == "quietdealer.com" {
					return nil, nil
				}
				return []autofinder.SearchResult{{URL: "https://" + req.SiteRestrict + "/used"}}, nil
			},
		}
		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", autofinder.Errorf(autofinder.EUNAVAILABLE, "connection refused")
			},
		}
		harvester := &mock.LinkHarvester{
			HarvestLinksFn: func(string, string) ([]string, error) { return nil, nil },
		}

		f := &pipeline.InventoryPageFinder{Searcher: searcher, Fetcher: fetcher, Harvester: harvester}
		dealers := []autofinder.DealerCandidate{dealer("hondaofoakland.com"), dealer("quietdealer.com")}
		pages, _, err := f.FindPages(context.Background(), dealers, testConfig())
		require.NoError(t, err)
		assert.Len(t, pages, 1)
	})

	t.Run("output sorted by dealer then URL", func(t *testing.T) {
		t.Parallel()

		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, req autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
				return []autofinder.SearchResult{
					{URL: "https://" + req.SiteRestrict + "/used/zebra"},
					{URL: "https://" + req.SiteRestrict + "/used/alpha"},
				}, nil
			},
		}

		f := &pipeline.InventoryPageFinder{Searcher: searcher}
		dealers := []autofinder.DealerCandidate{dealer("zdealer.com"), dealer("adealer.com")}
		pages, _, err := f.FindPages(context.Background(), dealers, testConfig())
		require.NoError(t, err)

		require.Len(t, pages, 4)
		assert.Equal(t, "https://adealer.com/used/alpha", pages[0].URL)
		assert.Equal(t, "https://adealer.com/used/zebra", pages[1].URL)
		assert.Equal(t, "https://zdealer.com/used/alpha", pages[2].URL)
		assert.Equal(t, "https://zdealer.com/used/zebra", pages[3].URL)
	})
}
