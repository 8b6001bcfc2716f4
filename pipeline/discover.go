// Package pipeline implements the four-stage discovery pipeline: dealer
// discovery, inventory-page discovery, structured extraction, and
// aggregation into a canonical snapshot, plus the orchestrator that
// sequences them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/fwojciec/autofinder"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultConcurrency bounds parallel fan-out within a stage when the
// caller does not configure a limit.
const DefaultConcurrency = 5

// DefaultBlocklist lists national aggregator and marketplace hosts that
// dominate location-scoped dealership searches but are not dealerships.
var DefaultBlocklist = []string{
	"cars.com",
	"autotrader.com",
	"cargurus.com",
	"carfax.com",
	"carvana.com",
	"craigslist.org",
	"edmunds.com",
	"facebook.com",
	"kbb.com",
	"truecar.com",
	"yelp.com",
}

// Ensure DealerDiscovery implements autofinder.DealerDiscoverer.
var _ autofinder.DealerDiscoverer = (*DealerDiscovery)(nil)

// DealerDiscovery finds candidate dealership domains via per-make
// location-scoped search queries.
type DealerDiscovery struct {
	Searcher    autofinder.Searcher
	Limiter     *rate.Limiter
	Concurrency int
	Blocklist   []string
	Logger      *slog.Logger
}

// Discover issues one query per allowed make and unions the resulting
// domains. A failed query is logged and skipped; total failure yields an
// empty set, never an error.
func (d *DealerDiscovery) Discover(ctx context.Context, cfg autofinder.Config) ([]autofinder.DealerCandidate, autofinder.StageStats, error) {
	stats := autofinder.StageStats{Units: len(cfg.AllowedMakes)}
	logger := d.logger()

	type queryResult struct {
		query   string
		results []autofinder.SearchResult
		err     error
	}
	results := make([]queryResult, len(cfg.AllowedMakes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency())

	for i, mk := range cfg.AllowedMakes {
		g.Go(func() error {
			query := fmt.Sprintf("%s dealership near %s", mk, cfg.Location.PostalCode)
			results[i].query = query

			if d.Limiter != nil {
				if err := d.Limiter.Wait(gctx); err != nil {
					return err
				}
			}

			found, err := d.Searcher.Search(gctx, autofinder.SearchRequest{Query: query})
			results[i].results = found
			results[i].err = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	byDomain := make(map[string]autofinder.DealerCandidate)
	for _, qr := range results {
		if qr.err != nil {
			stats.Skipped++
			logger.Warn("dealer query skipped", "query", qr.query, "error", qr.err)
			continue
		}

		for rank, result := range qr.results {
			domain, err := autofinder.NormalizeDomain(result.URL)
			if err != nil {
				continue
			}
			if d.blocked(domain) {
				continue
			}

			candidate := autofinder.DealerCandidate{
				Domain:         domain,
				DisplayName:    strings.TrimSpace(result.Title),
				DiscoveryQuery: qr.query,
				Confidence:     rankConfidence(rank),
			}
			if existing, ok := byDomain[domain]; !ok || candidate.Confidence > existing.Confidence {
				byDomain[domain] = candidate
			}
		}
	}

	dealers := make([]autofinder.DealerCandidate, 0, len(byDomain))
	for _, c := range byDomain {
		dealers = append(dealers, c)
	}
	sort.Slice(dealers, func(i, j int) bool { return dealers[i].Domain < dealers[j].Domain })

	if stats.AllFailed() {
		logger.Warn("all dealer discovery queries failed", "queries", stats.Units)
	}
	logger.Info("dealer discovery finished", "dealers", len(dealers), "queries", stats.Units, "skipped", stats.Skipped)

	return dealers, stats, nil
}

func (d *DealerDiscovery) concurrency() int {
	if d.Concurrency > 0 {
		return d.Concurrency
	}
	return DefaultConcurrency
}

func (d *DealerDiscovery) blocked(domain string) bool {
	blocklist := d.Blocklist
	if blocklist == nil {
		blocklist = DefaultBlocklist
	}
	for _, b := range blocklist {
		if domain == b || strings.HasSuffix(domain, "."+b) {
			return true
		}
	}
	return false
}

func (d *DealerDiscovery) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// rankConfidence maps a result's position to a confidence score: the top
// result scores 1.0, decaying by 0.1 per rank with a 0.1 floor.
func rankConfidence(rank int) float64 {
	c := 1.0 - 0.1*float64(rank)
	if c < 0.1 {
		c = 0.1
	}
	return c
}
