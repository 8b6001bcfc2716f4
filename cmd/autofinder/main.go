package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/autofinder"
	"github.com/fwojciec/autofinder/demo"
	"github.com/fwojciec/autofinder/fs"
	"github.com/fwojciec/autofinder/gemini"
	"github.com/fwojciec/autofinder/google"
	"github.com/fwojciec/autofinder/goquery"
	"github.com/fwojciec/autofinder/htmltomarkdown"
	autohttp "github.com/fwojciec/autofinder/http"
	"github.com/fwojciec/autofinder/pipeline"
	autoslog "github.com/fwojciec/autofinder/slog"
	"github.com/fwojciec/autofinder/sqlite"
	"github.com/fwojciec/autofinder/trafilatura"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// searchQPS bounds queries per second against the search API.
const searchQPS = 5

// hostRPS bounds fetches per second against any single dealer site.
const hostRPS = 1.0

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Runner overrides the pipeline for end-to-end testing.
	Runner PipelineRunner
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("autofinder"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'autofinder --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set AUTOFINDER_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.DB = m.DB
	deps.Runs = sqlite.NewRunService(m.DB)
	deps.Vehicles = sqlite.NewVehicleService(m.DB)

	switch cmd {
	case "run":
		deps.Artifacts = fs.NewArtifactStore(cli.Run.Out)
		deps.Runner = m.Runner
		if deps.Runner == nil {
			runner, err := m.buildPipeline(ctx, cli, deps, stderr)
			if err != nil {
				return err
			}
			deps.Runner = runner
		}
	case "show":
		deps.Artifacts = fs.NewArtifactStore(cli.Show.Out)
	}

	return kongCtx.Run(deps)
}

// buildPipeline wires the full stage chain for a live run.
func (m *Main) buildPipeline(ctx context.Context, cli *CLI, deps *Dependencies, stderr io.Writer) (*pipeline.Pipeline, error) {
	logger := newLogger(stderr, cli.Run.Verbose)

	p := &pipeline.Pipeline{
		Aggregator: &pipeline.Aggregate{Logger: logger},
		Sources:    []autofinder.SourceAdapter{demo.NewSource()},
		Artifacts:  deps.Artifacts,
		Runs:       deps.Runs,
		Vehicles:   deps.Vehicles,
		Logger:     logger,
	}

	if cli.Run.Offline {
		stages := &offlineStages{}
		p.Dealers = stages
		p.Pages = stages
		p.Listings = stages
		return p, nil
	}

	creds, err := autofinder.CredentialsFromEnv(os.Getenv)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Run with --offline to use offline sources only")
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  creds.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	searcher := autoslog.NewLoggingSearcher(
		google.NewSearcher(creds.SearchAPIKey, creds.SearchEngineID), logger)
	fetcher := autohttp.NewFetcher()
	searchLimiter := rate.NewLimiter(rate.Limit(searchQPS), 1)

	p.Dealers = &pipeline.DealerDiscovery{
		Searcher:    searcher,
		Limiter:     searchLimiter,
		Concurrency: cli.Run.Concurrency,
		Logger:      logger,
	}
	p.Pages = &pipeline.InventoryPageFinder{
		Searcher:    searcher,
		Fetcher:     fetcher,
		Harvester:   goquery.NewHarvester(),
		Limiter:     searchLimiter,
		Concurrency: cli.Run.Concurrency,
		Logger:      logger,
	}
	p.Listings = &pipeline.Extraction{
		Fetcher:     fetcher,
		Content:     trafilatura.NewExtractor(),
		Converter:   htmltomarkdown.NewConverter(),
		Vehicles:    autoslog.NewLoggingVehicleExtractor(gemini.NewExtractor(client), logger),
		Hosts:       pipeline.NewHostLimiter(hostRPS),
		Concurrency: cli.Run.Concurrency,
		Logger:      logger,
	}

	return p, nil
}

// offlineStages satisfies the online stage interfaces with empty results,
// leaving enabled source adapters as the only record providers.
type offlineStages struct{}

var _ autofinder.DealerDiscoverer = (*offlineStages)(nil)
var _ autofinder.PageFinder = (*offlineStages)(nil)
var _ autofinder.ListingExtractor = (*offlineStages)(nil)

func (s *offlineStages) Discover(context.Context, autofinder.Config) ([]autofinder.DealerCandidate, autofinder.StageStats, error) {
	return nil, autofinder.StageStats{}, nil
}

func (s *offlineStages) FindPages(context.Context, []autofinder.DealerCandidate, autofinder.Config) ([]autofinder.InventoryPageCandidate, autofinder.StageStats, error) {
	return nil, autofinder.StageStats{}, nil
}

func (s *offlineStages) ExtractAll(context.Context, []autofinder.InventoryPageCandidate, autofinder.Config) ([]autofinder.RawVehicleRecord, autofinder.StageStats, error) {
	return nil, autofinder.StageStats{}, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("AUTOFINDER_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "autofinder.db"
	}
	dir := filepath.Join(home, ".autofinder")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "autofinder.db")
}
