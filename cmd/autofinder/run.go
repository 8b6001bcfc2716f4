package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/autofinder"
	"github.com/fwojciec/autofinder/demo"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.Config)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: cannot read config %q: %v\n", c.Config, err)
		return err
	}

	cfg, err := autofinder.ParseConfig(data)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", autofinder.ErrorMessage(err))
		return err
	}

	// Offline runs have no online stages; the demo source is the only
	// thing that can produce records.
	if c.Offline {
		if cfg.Sources == nil {
			cfg.Sources = map[string]bool{}
		}
		cfg.Sources[demo.Name] = true
	}

	snapshot, run, err := deps.Runner.Run(deps.Ctx, cfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", autofinder.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s finished in %s\n", run.ID, formatMillis(run.TotalMillis()))
	fmt.Fprintf(deps.Stdout, "  dealers:   %4d  (%s)\n", run.DealerCount, formatMillis(run.DiscoverMillis))
	fmt.Fprintf(deps.Stdout, "  pages:     %4d  (%s)\n", run.PageCount, formatMillis(run.PagesMillis))
	fmt.Fprintf(deps.Stdout, "  records:   %4d  (%s)\n", run.RecordCount, formatMillis(run.ExtractMillis))
	fmt.Fprintf(deps.Stdout, "  vehicles:  %4d  (%s)\n", run.VehicleCount, formatMillis(run.AggregateMillis))
	if run.SkippedUnits > 0 {
		fmt.Fprintf(deps.Stdout, "  skipped:   %4d\n", run.SkippedUnits)
	}

	if len(snapshot.Items) > 0 {
		low, high, sum := priceStats(snapshot.Items)
		fmt.Fprintf(deps.Stdout, "\nPrices: $%.0f to $%.0f, average $%.0f\n",
			low, high, sum/float64(len(snapshot.Items)))
	}
	fmt.Fprintf(deps.Stdout, "Snapshot written to %s\n", c.Out)

	return nil
}

func priceStats(items []autofinder.CanonicalVehicle) (low, high, sum float64) {
	low = items[0].Price
	high = items[0].Price
	for _, item := range items {
		if item.Price < low {
			low = item.Price
		}
		if item.Price > high {
			high = item.Price
		}
		sum += item.Price
	}
	return low, high, sum
}

func formatMillis(ms int64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	return fmt.Sprintf("%dms", ms)
}
