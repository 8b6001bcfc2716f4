package main

import (
	"fmt"

	"github.com/fwojciec/autofinder"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.Runs.FindRuns(deps.Ctx, autofinder.RunFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", autofinder.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'autofinder run' to start one.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  dealers=%d pages=%d records=%d vehicles=%d  %s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04"),
			run.DealerCount, run.PageCount, run.RecordCount, run.VehicleCount,
			formatMillis(run.TotalMillis()))
	}

	return nil
}
