package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/fwojciec/autofinder"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultMaxPagesPerDealer caps how many listing pages one dealer can
// contribute. Dealer platforms paginate aggressively; the first few pages
// carry the inventory index.
const DefaultMaxPagesPerDealer = 5

// Ensure InventoryPageFinder implements autofinder.PageFinder.
var _ autofinder.PageFinder = (*InventoryPageFinder)(nil)

// InventoryPageFinder finds listing-page URLs with one domain-restricted
// search per (dealer, make) pair. Dealers that search turns up empty for
// are optionally retried by harvesting links from their landing page.
type InventoryPageFinder struct {
	Searcher     autofinder.Searcher
	Fetcher      autofinder.Fetcher
	Harvester    autofinder.LinkHarvester
	Limiter      *rate.Limiter
	Concurrency  int
	MaxPerDealer int
	Logger       *slog.Logger
}

// FindPages searches each (dealer, make) pair and returns deduplicated
// inventory-page candidates. Per-pair failures are skipped; the stage
// fails only when every search call failed.
func (f *InventoryPageFinder) FindPages(ctx context.Context, dealers []autofinder.DealerCandidate, cfg autofinder.Config) ([]autofinder.InventoryPageCandidate, autofinder.StageStats, error) {
	logger := f.logger()

	type pair struct {
		dealer autofinder.DealerCandidate
		mk     string
	}
	var pairs []pair
	for _, dealer := range dealers {
		for _, mk := range cfg.AllowedMakes {
			pairs = append(pairs, pair{dealer: dealer, mk: mk})
		}
	}

	stats := autofinder.StageStats{Units: len(pairs)}

	type pairResult struct {
		candidates []autofinder.InventoryPageCandidate
		err        error
		query      string
	}
	results := make([]pairResult, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency())

	for i, p := range pairs {
		g.Go(func() error {
			query := fmt.Sprintf("used %s inventory", p.mk)
			results[i].query = query

			if f.Limiter != nil {
				if err := f.Limiter.Wait(gctx); err != nil {
					return err
				}
			}

			found, err := f.Searcher.Search(gctx, autofinder.SearchRequest{
				Query:        query,
				SiteRestrict: p.dealer.Domain,
			})
			if err != nil {
				results[i].err = err
				return nil
			}

			for _, r := range found {
				if !autofinder.LooksLikeInventoryURL(r.URL, cfg.AllowedMakes) {
					continue
				}
				results[i].candidates = append(results[i].candidates, autofinder.InventoryPageCandidate{
					URL:            r.URL,
					DealerDomain:   p.dealer.Domain,
					MakeHint:       p.mk,
					DiscoveryQuery: query + " site:" + p.dealer.Domain,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	seen := make(map[string]bool)
	perDealer := make(map[string]int)
	var pages []autofinder.InventoryPageCandidate

	add := func(c autofinder.InventoryPageCandidate) {
		normalized, err := autofinder.NormalizeURL(c.URL)
		if err != nil || seen[normalized] {
			return
		}
		if perDealer[c.DealerDomain] >= f.maxPerDealer() {
			return
		}
		seen[normalized] = true
		perDealer[c.DealerDomain]++
		c.URL = normalized
		pages = append(pages, c)
	}

	for _, r := range results {
		if r.err != nil {
			stats.Skipped++
			logger.Warn("inventory search skipped", "query", r.query, "error", r.err)
			continue
		}
		for _, c := range r.candidates {
			add(c)
		}
	}

	if stats.AllFailed() {
		return nil, stats, autofinder.Errorf(autofinder.EUNAVAILABLE, "all %d inventory searches failed", stats.Units)
	}

	// Landing-page fallback for dealers search found nothing for.
	if f.Fetcher != nil && f.Harvester != nil {
		for _, dealer := range dealers {
			if perDealer[dealer.Domain] > 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
			for _, c := range f.harvestDealer(ctx, dealer, cfg) {
				add(c)
			}
		}
	}

	sort.Slice(pages, func(i, j int) bool {
		if pages[i].DealerDomain != pages[j].DealerDomain {
			return pages[i].DealerDomain < pages[j].DealerDomain
		}
		return pages[i].URL < pages[j].URL
	})

	logger.Info("inventory page discovery finished", "pages", len(pages), "pairs", stats.Units, "skipped", stats.Skipped)

	return pages, stats, nil
}

// harvestDealer mines a dealer's landing page for inventory-looking links.
// Failures here are best-effort recall, never counted against the stage.
func (f *InventoryPageFinder) harvestDealer(ctx context.Context, dealer autofinder.DealerCandidate, cfg autofinder.Config) []autofinder.InventoryPageCandidate {
	logger := f.logger()
	landing := "https://" + dealer.Domain + "/"

	html, err := f.Fetcher.Fetch(ctx, landing)
	if err != nil {
		logger.Debug("landing page fetch failed", "dealer", dealer.Domain, "error", err)
		return nil
	}

	links, err := f.Harvester.HarvestLinks(html, landing)
	if err != nil {
		logger.Debug("landing page harvest failed", "dealer", dealer.Domain, "error", err)
		return nil
	}

	var candidates []autofinder.InventoryPageCandidate
	for _, link := range links {
		if !autofinder.LooksLikeInventoryURL(link, cfg.AllowedMakes) {
			continue
		}
		candidates = append(candidates, autofinder.InventoryPageCandidate{
			URL:            link,
			DealerDomain:   dealer.Domain,
			DiscoveryQuery: "landing-page:" + dealer.Domain,
		})
	}
	return candidates
}

func (f *InventoryPageFinder) concurrency() int {
	if f.Concurrency > 0 {
		return f.Concurrency
	}
	return DefaultConcurrency
}

func (f *InventoryPageFinder) maxPerDealer() int {
	if f.MaxPerDealer > 0 {
		return f.MaxPerDealer
	}
	return DefaultMaxPagesPerDealer
}

func (f *InventoryPageFinder) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.New(slog.DiscardHandler)
}
