package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/autofinder"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	snapshot, err := deps.Artifacts.LoadSnapshot(deps.Ctx)
	if err != nil {
		if autofinder.ErrorCode(err) == autofinder.ENOTFOUND {
			fmt.Fprintln(deps.Stdout, "No snapshot found. Use 'autofinder run' to produce one.")
			return nil
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", autofinder.ErrorMessage(err))
		return err
	}

	if c.JSON {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, string(data))
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Generated %s, %d vehicles\n\n",
		snapshot.GeneratedAt.Format("2006-01-02 15:04"), len(snapshot.Items))

	for _, item := range snapshot.Items {
		line := fmt.Sprintf("$%-8.0f %d %s %s", item.Price, item.Year, item.Make, item.Model)
		if item.Trim != "" {
			line += " " + item.Trim
		}
		if item.Mileage != nil {
			line += fmt.Sprintf(", %d mi", *item.Mileage)
		}
		if item.ClusterSize > 1 {
			line += fmt.Sprintf(" (seen %d times)", item.ClusterSize)
		}
		fmt.Fprintln(deps.Stdout, line)
		fmt.Fprintf(deps.Stdout, "          %s\n", item.SourceURLs[0])
	}

	return nil
}
