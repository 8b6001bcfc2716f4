package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/autofinder"
)

// Ensure Aggregate implements autofinder.Aggregator.
var _ autofinder.Aggregator = (*Aggregate)(nil)

// Aggregate merges raw vehicle records from all sources into a canonical
// snapshot: budget/make filtering, union-find clustering, representative
// selection, and a deterministic price-sorted emit. The whole step is a
// pure in-memory computation; running it twice on the same input produces
// identical snapshot content.
type Aggregate struct {
	Logger *slog.Logger

	// Now supplies the snapshot timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Aggregate builds the inventory snapshot. An empty input produces a
// valid, empty snapshot.
func (a *Aggregate) Aggregate(records []autofinder.RawVehicleRecord, cfg autofinder.Config) *autofinder.InventorySnapshot {
	logger := a.logger()

	survivors := filterRecords(records, cfg)

	sourceCounts := make(map[string]int)
	for _, r := range survivors {
		sourceCounts[r.SourceKind]++
	}

	clusters := clusterRecords(survivors, cfg.Tolerances)

	items := make([]autofinder.CanonicalVehicle, 0, len(clusters))
	for _, cluster := range clusters {
		items = append(items, canonicalize(cluster, cfg))
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		if a.Make != b.Make {
			return a.Make < b.Make
		}
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.ID < b.ID
	})

	logger.Info("aggregation finished",
		"records", len(records),
		"qualified", len(survivors),
		"vehicles", len(items),
	)

	return &autofinder.InventorySnapshot{
		GeneratedAt:  a.now().UTC(),
		Items:        items,
		SourceCounts: sourceCounts,
	}
}

func (a *Aggregate) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Aggregate) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// filterRecords drops records outside the make allow-list or the budget.
// Records with neither a price nor a monthly estimate are unqualified and
// discarded rather than merged.
func filterRecords(records []autofinder.RawVehicleRecord, cfg autofinder.Config) []autofinder.RawVehicleRecord {
	maxPrice := cfg.Budget.MaxPrice()

	var out []autofinder.RawVehicleRecord
	for _, r := range records {
		if r.Validate() != nil {
			continue
		}
		if !cfg.MakeAllowed(r.Make) {
			continue
		}
		if r.Price == nil && r.MonthlyPaymentEstimate == nil {
			continue
		}
		if r.Price != nil && *r.Price > maxPrice {
			continue
		}
		if r.MonthlyPaymentEstimate != nil && *r.MonthlyPaymentEstimate > cfg.Budget.MaxMonthlyPayment {
			continue
		}
		out = append(out, r)
	}
	return out
}

// clusterRecords connects records referring to the same real-world vehicle
// and returns the connected components in first-seen order.
func clusterRecords(records []autofinder.RawVehicleRecord, tol autofinder.Tolerances) [][]autofinder.RawVehicleRecord {
	uf := newUnionFind(len(records))
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if sameVehicle(&records[i], &records[j], tol) {
				uf.union(i, j)
			}
		}
	}

	byRoot := make(map[int][]autofinder.RawVehicleRecord)
	var roots []int
	for i, r := range records {
		root := uf.find(i)
		if _, ok := byRoot[root]; !ok {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], r)
	}

	clusters := make([][]autofinder.RawVehicleRecord, 0, len(roots))
	for _, root := range roots {
		clusters = append(clusters, byRoot[root])
	}
	return clusters
}

// sameVehicle reports whether two records refer to the same vehicle:
// equal non-empty VINs, or an exact normalized make/model/year match with
// prices (and mileages, when both present) within tolerance. Records
// missing a price only ever cluster through their VIN.
func sameVehicle(a, b *autofinder.RawVehicleRecord, tol autofinder.Tolerances) bool {
	if va, vb := a.NormalizedVIN(), b.NormalizedVIN(); va != "" && vb != "" {
		return va == vb
	}

	if normalizeToken(a.Make) != normalizeToken(b.Make) ||
		normalizeToken(a.Model) != normalizeToken(b.Model) ||
		a.Year != b.Year {
		return false
	}

	if a.Price == nil || b.Price == nil {
		return false
	}
	lower := math.Min(*a.Price, *b.Price)
	priceTol := math.Max(tol.PriceAbs, tol.PricePct*lower)
	if math.Abs(*a.Price-*b.Price) > priceTol {
		return false
	}

	if a.Mileage != nil && b.Mileage != nil {
		la, lb := float64(*a.Mileage), float64(*b.Mileage)
		lowerM := math.Min(la, lb)
		if math.Abs(la-lb) > tol.MileagePct*lowerM {
			return false
		}
	}

	return true
}

// priceOrInf returns a record's price, or +Inf when it has none, so that
// records without a price rank last when sorting by lowest price.
func priceOrInf(r *autofinder.RawVehicleRecord) float64 {
	if r.Price != nil {
		return *r.Price
	}
	return math.Inf(1)
}

// canonicalize selects a cluster's representative and merges source URLs.
// Preference order: a record with a VIN, then highest extraction
// confidence, then lowest price, then source URL for determinism.
func canonicalize(cluster []autofinder.RawVehicleRecord, cfg autofinder.Config) autofinder.CanonicalVehicle {
	ranked := make([]autofinder.RawVehicleRecord, len(cluster))
	copy(ranked, cluster)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if (a.NormalizedVIN() != "") != (b.NormalizedVIN() != "") {
			return a.NormalizedVIN() != ""
		}
		if a.ExtractionConfidence != b.ExtractionConfidence {
			return a.ExtractionConfidence > b.ExtractionConfidence
		}
		if pa, pb := priceOrInf(a), priceOrInf(b); pa != pb {
			return pa < pb
		}
		return a.SourceURL < b.SourceURL
	})

	rep := ranked[0]

	vehicle := autofinder.CanonicalVehicle{
		Make:        rep.Make,
		Model:       rep.Model,
		Year:        rep.Year,
		Trim:        rep.Trim,
		VIN:         rep.NormalizedVIN(),
		ClusterSize: len(cluster),
	}

	for _, r := range ranked {
		if vehicle.Trim == "" {
			vehicle.Trim = r.Trim
		}
		if vehicle.VIN == "" {
			vehicle.VIN = r.NormalizedVIN()
		}
		if vehicle.Mileage == nil && r.Mileage != nil {
			m := *r.Mileage
			vehicle.Mileage = &m
		}
	}

	vehicle.Price = clusterPrice(ranked, cfg)
	vehicle.SourceURLs = mergeSourceURLs(rep, ranked)
	vehicle.ID = canonicalID(&vehicle)

	return vehicle
}

// clusterPrice resolves the canonical price: the representative's price,
// else the first ranked member's, else a price implied by the monthly
// payment estimate over the configured loan term.
func clusterPrice(ranked []autofinder.RawVehicleRecord, cfg autofinder.Config) float64 {
	for _, r := range ranked {
		if r.Price != nil {
			return *r.Price
		}
	}
	for _, r := range ranked {
		if r.MonthlyPaymentEstimate != nil {
			return *r.MonthlyPaymentEstimate * float64(cfg.Budget.TermMonths)
		}
	}
	return 0
}

// mergeSourceURLs returns the representative's URL first, then the
// remaining member URLs sorted, deduplicated.
func mergeSourceURLs(rep autofinder.RawVehicleRecord, cluster []autofinder.RawVehicleRecord) []string {
	seen := map[string]bool{rep.SourceURL: true}
	urls := []string{rep.SourceURL}

	var rest []string
	for _, r := range cluster {
		if !seen[r.SourceURL] {
			seen[r.SourceURL] = true
			rest = append(rest, r.SourceURL)
		}
	}
	sort.Strings(rest)
	return append(urls, rest...)
}

// canonicalID derives a stable identifier so that re-aggregating the same
// input yields the same snapshot content.
func canonicalID(v *autofinder.CanonicalVehicle) string {
	key := v.VIN
	if key == "" {
		key = fmt.Sprintf("%s|%s|%d|%.0f", normalizeToken(v.Make), normalizeToken(v.Model), v.Year, v.Price)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

// SnapshotHash returns a content hash of the snapshot's items, used for
// cross-run change detection. The timestamp is deliberately excluded.
func SnapshotHash(s *autofinder.InventorySnapshot) string {
	data, err := json.Marshal(s.Items)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// normalizeToken canonicalizes a make/model token for comparison.
func normalizeToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// unionFind is a minimal disjoint-set over record indices.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(i, j int) {
	ri, rj := u.find(i), u.find(j)
	if ri != rj {
		u.parent[rj] = ri
	}
}
