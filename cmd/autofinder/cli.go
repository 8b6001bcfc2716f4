package main

import (
	"context"
	"io"

	"github.com/fwojciec/autofinder"
	"github.com/fwojciec/autofinder/sqlite"
)

// PipelineRunner executes the discovery pipeline for a config.
type PipelineRunner interface {
	Run(ctx context.Context, cfg autofinder.Config) (*autofinder.InventorySnapshot, *autofinder.Run, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	DB        *sqlite.DB
	Runs      autofinder.RunService
	Vehicles  autofinder.VehicleService
	Artifacts autofinder.ArtifactStore
	Runner    PipelineRunner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Run  RunCmd  `cmd:"" help:"Run the discovery pipeline for a config file"`
	Show ShowCmd `cmd:"" help:"Show the latest inventory snapshot"`
	Runs RunsCmd `cmd:"" help:"List past pipeline runs"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Config      string `arg:"" help:"Path to the JSON config file"`
	Out         string `short:"o" default:"out" help:"Artifact output directory"`
	Offline     bool   `help:"Skip search and extraction, use enabled offline sources only"`
	Concurrency int    `short:"c" default:"5" help:"Concurrent search and fetch limit"`
	Verbose     bool   `short:"v" help:"Enable debug logging"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Out  string `short:"o" default:"out" help:"Artifact output directory"`
	JSON bool   `help:"Print the raw snapshot JSON"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Limit int `short:"n" default:"10" help:"Number of runs to show"`
}
