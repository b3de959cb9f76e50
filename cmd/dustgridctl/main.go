package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"dustgrid/internal/model"
	"dustgrid/internal/sim"
	"dustgrid/internal/storage"
	"dustgrid/internal/view"
	"dustgrid/pkg/dustgrid"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "sweep":
		return runSweep(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "series":
		return runSeries(ctx, args[1:])
	case "report":
		return runReport(ctx, args[1:])
	case "chart":
		return runChart(ctx, args[1:])
	case "watch":
		return runWatch(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: dustgridctl <init|reset|run|sweep|runs|series|report|chart|watch> [flags]", msg)
}

func addStoreFlags(fs *flag.FlagSet) (storeKind, dbPath, artifactsDir *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "dustgrid.db", "sqlite database path")
	artifactsDir = fs.String("artifacts-dir", "artifacts", "experiment artifacts directory")
	return
}

func addRunFlags(fs *flag.FlagSet) (agents, width, height, maxSteps *int, dirty *float64, seed *uint64) {
	agents = fs.Int("agents", 0, "agent count (0 uses config/default)")
	width, height, maxSteps, dirty, seed = addGridFlags(fs)
	return
}

func addGridFlags(fs *flag.FlagSet) (width, height, maxSteps *int, dirty *float64, seed *uint64) {
	width = fs.Int("width", 0, "grid width (0 uses config/default)")
	height = fs.Int("height", 0, "grid height (0 uses config/default)")
	maxSteps = fs.Int("max-steps", 0, "step ceiling (0 uses config/default)")
	dirty = fs.Float64("dirty", 0, "initial dirty fraction in [0,1] (0 uses config/default)")
	seed = fs.Uint64("seed", 0, "rng seed (0 uses config/default)")
	return
}

func mergeRequest(req dustgrid.RunRequest, agents, width, height, maxSteps int, dirty float64, seed uint64) dustgrid.RunRequest {
	if agents > 0 {
		req.NumAgents = agents
	}
	if width > 0 {
		req.Width = width
	}
	if height > 0 {
		req.Height = height
	}
	if maxSteps > 0 {
		req.MaxSteps = maxSteps
	}
	if dirty > 0 {
		req.DirtyFraction = dirty
	}
	if seed > 0 {
		req.Seed = seed
	}
	return req
}

func newClient(ctx context.Context, storeKind, dbPath, artifactsDir string, verbose bool) (*dustgrid.Client, error) {
	logger := log.New(io.Discard)
	if verbose {
		logger = log.New(os.Stderr)
	}
	client, err := dustgrid.New(dustgrid.Options{
		StoreKind:    storeKind,
		DBPath:       dbPath,
		ArtifactsDir: artifactsDir,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir, false)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir, false)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Reset(ctx); err != nil {
		return err
	}
	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	verbose := fs.Bool("verbose", false, "log simulation progress to stderr")
	storeKind, dbPath, artifactsDir := addStoreFlags(fs)
	agents, width, height, maxSteps, dirty, seed := addRunFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadOrDefaultRunConfig(*configPath)
	if err != nil {
		return err
	}
	req := mergeRequest(cfg.Request, *agents, *width, *height, *maxSteps, *dirty, *seed)

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir, *verbose)
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	if summary.AllCleanedStep >= 0 {
		fmt.Printf("run %s: fully clean after %d steps\n", summary.RunID, summary.AllCleanedStep)
	} else {
		fmt.Printf("run %s: stopped at step %d with %.2f%% clean\n",
			summary.RunID, summary.FinalStep, summary.FinalCleanPercent)
	}
	return nil
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional sweep config JSON path")
	countsFlag := fs.String("agents", "", "comma-separated agent counts, e.g. 1,2,4,8")
	notes := fs.String("notes", "", "notes stored with the experiment artifact")
	verbose := fs.Bool("verbose", false, "log simulation progress to stderr")
	storeKind, dbPath, artifactsDir := addStoreFlags(fs)
	width, height, maxSteps, dirty, seed := addGridFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadOrDefaultRunConfig(*configPath)
	if err != nil {
		return err
	}
	counts := cfg.AgentCounts
	if *countsFlag != "" {
		counts, err = parseAgentCounts(*countsFlag)
		if err != nil {
			return err
		}
	}
	if len(counts) == 0 {
		return usageError("sweep requires -agents or agent_counts in the config")
	}
	if *notes == "" {
		*notes = cfg.Notes
	}
	base := mergeRequest(cfg.Request, 0, *width, *height, *maxSteps, *dirty, *seed)

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir, *verbose)
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Sweep(ctx, dustgrid.SweepRequest{
		Base:        base,
		AgentCounts: counts,
		Notes:       *notes,
	})
	if err != nil {
		return err
	}
	fmt.Printf("sweep %s: %d runs, artifact %s\n", summary.SweepID, len(summary.Points), summary.ArtifactPath)
	report, err := client.SweepReport(ctx, summary.SweepID)
	if err != nil {
		return err
	}
	fmt.Print(report)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 0, "maximum rows to print (0 prints all)")
	storeKind, dbPath, artifactsDir := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir, false)
	if err != nil {
		return err
	}
	defer client.Close()

	items, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	if *limit > 0 && len(items) > *limit {
		items = items[:*limit]
	}
	for _, item := range items {
		cleaned := "never"
		if item.AllCleanedStep >= 0 {
			cleaned = strconv.Itoa(item.AllCleanedStep)
		}
		fmt.Printf("%s  %s  agents=%d grid=%dx%d dirty=%.2f max=%d seed=%d  clean=%s final=%.2f%%\n",
			item.RunID, item.CreatedAtUTC, item.NumAgents, item.Width, item.Height,
			item.DirtyFraction, item.MaxSteps, item.Seed, cleaned, item.FinalCleanPercent)
	}
	return nil
}

func runSeries(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("series", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	every := fs.Int("every", 1, "print every Nth sample")
	storeKind, dbPath, artifactsDir := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("series requires -run-id")
	}
	if *every < 1 {
		*every = 1
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir, false)
	if err != nil {
		return err
	}
	defer client.Close()

	series, err := client.Series(ctx, *runID)
	if err != nil {
		return err
	}
	for i, sample := range series {
		if i%*every != 0 && i != len(series)-1 {
			continue
		}
		fmt.Printf("%d\t%.2f\n", sample.Step, sample.CleanPercent)
	}
	return nil
}

func runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id (mutually exclusive with -sweep-id)")
	sweepID := fs.String("sweep-id", "", "sweep id (blank with no -run-id reports the latest sweep)")
	storeKind, dbPath, artifactsDir := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *sweepID != "" {
		return usageError("report takes -run-id or -sweep-id, not both")
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir, false)
	if err != nil {
		return err
	}
	defer client.Close()

	var report string
	if *runID != "" {
		report, err = client.RunReport(ctx, *runID)
	} else {
		report, err = client.SweepReport(ctx, *sweepID)
	}
	if err != nil {
		return err
	}
	fmt.Print(report)
	return nil
}

func runChart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chart", flag.ContinueOnError)
	runIDs := fs.String("run-ids", "", "comma-separated run ids for a time-series chart")
	sweepID := fs.String("sweep-id", "", "sweep id for a steps-to-clean chart (blank uses latest)")
	out := fs.String("out", "chart.png", "output PNG path")
	storeKind, dbPath, artifactsDir := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *artifactsDir, false)
	if err != nil {
		return err
	}
	defer client.Close()

	req := dustgrid.ChartRequest{SweepID: *sweepID, OutPath: *out}
	if *runIDs != "" {
		req.RunIDs = strings.Split(*runIDs, ",")
	}
	if err := client.Chart(ctx, req); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", *out)
	return nil
}

func runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	interval := fs.Duration("interval", 50*time.Millisecond, "tick interval")
	agents, width, height, maxSteps, dirty, seed := addRunFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := mergeRequest(dustgrid.RunRequest{}, *agents, *width, *height, *maxSteps, *dirty, *seed)
	params := watchParams(req)
	m, err := sim.New(params, log.New(io.Discard))
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	return view.New(screen, m, *interval).Run(ctx)
}

// watchParams applies the same defaults the client applies, for the one
// command that bypasses the store.
func watchParams(req dustgrid.RunRequest) model.RunParams {
	if req.NumAgents <= 0 {
		req.NumAgents = 1
	}
	if req.Width <= 0 {
		req.Width = 20
	}
	if req.Height <= 0 {
		req.Height = 20
	}
	if req.DirtyFraction == 0 {
		req.DirtyFraction = 0.8
	}
	if req.MaxSteps <= 0 {
		req.MaxSteps = 1500
	}
	if req.Seed == 0 {
		req.Seed = 1
	}
	return model.RunParams{
		NumAgents:     req.NumAgents,
		Width:         req.Width,
		Height:        req.Height,
		DirtyFraction: req.DirtyFraction,
		MaxSteps:      req.MaxSteps,
		Seed:          req.Seed,
	}
}

func parseAgentCounts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	counts := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		count, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid agent count %q", part)
		}
		if count <= 0 {
			return nil, fmt.Errorf("agent counts must be positive, got %d", count)
		}
		counts = append(counts, count)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no agent counts in %q", s)
	}
	return counts, nil
}
