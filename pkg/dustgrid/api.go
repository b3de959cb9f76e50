// Package dustgrid is the public client API over the simulation
// platform: configure a store, run simulations and agent-count sweeps,
// and query persisted results.
package dustgrid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"dustgrid/internal/model"
	"dustgrid/internal/platform"
	"dustgrid/internal/stats"
	"dustgrid/internal/storage"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "dustgrid.db"

	defaultWidth         = 20
	defaultHeight        = 20
	defaultDirtyFraction = 0.8
	defaultMaxSteps      = 1500
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	Logger       *log.Logger
}

type Client struct {
	store        storage.Store
	lab          *platform.Lab
	artifactsDir string
	logger       *log.Logger
}

type RunRequest struct {
	NumAgents     int
	Width         int
	Height        int
	DirtyFraction float64
	MaxSteps      int
	Seed          uint64
}

type RunSummary struct {
	RunID             string
	FinalStep         int
	FinalCleanPercent float64
	AllCleanedStep    int // -1 if 100% clean was never reached
	CleanedByAgent    []int
}

type SweepRequest struct {
	Base        RunRequest
	AgentCounts []int
	Notes       string
}

type SweepSummary struct {
	SweepID      string
	ArtifactPath string
	Points       []model.SweepPoint
}

type RunItem struct {
	RunID             string
	CreatedAtUTC      string
	NumAgents         int
	Width             int
	Height            int
	DirtyFraction     float64
	MaxSteps          int
	Seed              uint64
	FinalStep         int
	FinalCleanPercent float64
	AllCleanedStep    int
}

type ChartRequest struct {
	RunIDs  []string
	SweepID string
	OutPath string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		lab:          platform.NewLab(platform.Config{Store: store, Logger: logger}),
		artifactsDir: artifactsDir,
		logger:       logger,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.lab.Init(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	return c.lab.Reset(ctx)
}

func applyRunDefaults(req RunRequest) RunRequest {
	if req.NumAgents <= 0 {
		req.NumAgents = 1
	}
	if req.Width <= 0 {
		req.Width = defaultWidth
	}
	if req.Height <= 0 {
		req.Height = defaultHeight
	}
	if req.DirtyFraction == 0 {
		req.DirtyFraction = defaultDirtyFraction
	}
	if req.MaxSteps <= 0 {
		req.MaxSteps = defaultMaxSteps
	}
	if req.Seed == 0 {
		req.Seed = 1
	}
	return req
}

func runParams(req RunRequest) model.RunParams {
	return model.RunParams{
		NumAgents:     req.NumAgents,
		Width:         req.Width,
		Height:        req.Height,
		DirtyFraction: req.DirtyFraction,
		MaxSteps:      req.MaxSteps,
		Seed:          req.Seed,
	}
}

// Run executes a single simulation and persists its results.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	req = applyRunDefaults(req)
	record, err := c.lab.RunSimulation(ctx, runParams(req))
	if err != nil {
		return RunSummary{}, err
	}
	return RunSummary{
		RunID:             record.ID,
		FinalStep:         record.FinalStep,
		FinalCleanPercent: record.FinalCleanPercent,
		AllCleanedStep:    record.AllCleanedStep,
		CleanedByAgent:    record.CleanedByAgent,
	}, nil
}

// Sweep executes one run per agent count, persists the sweep and writes
// an experiment artifact under the artifacts directory.
func (c *Client) Sweep(ctx context.Context, req SweepRequest) (SweepSummary, error) {
	if len(req.AgentCounts) == 0 {
		return SweepSummary{}, errors.New("at least one agent count is required")
	}
	base := applyRunDefaults(req.Base)

	started := time.Now().UTC().Format(time.RFC3339)
	sweep, err := c.lab.RunSweep(ctx, runParams(base), req.AgentCounts)
	if err != nil {
		return SweepSummary{}, err
	}

	exp := stats.Experiment{
		ID:             sweep.ID,
		Notes:          req.Notes,
		StartedAtUTC:   started,
		CompletedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Sweep:          sweep,
	}
	if err := stats.WriteExperiment(c.artifactsDir, exp); err != nil {
		return SweepSummary{}, fmt.Errorf("write experiment artifact: %w", err)
	}

	return SweepSummary{
		SweepID:      sweep.ID,
		ArtifactPath: filepath.Join(c.artifactsDir, "experiments", sweep.ID, "experiment.json"),
		Points:       sweep.Points,
	}, nil
}

// Runs lists persisted runs, newest first.
func (c *Client) Runs(ctx context.Context) ([]RunItem, error) {
	records, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]RunItem, 0, len(records))
	for _, r := range records {
		items = append(items, RunItem{
			RunID:             r.ID,
			CreatedAtUTC:      r.CreatedAtUTC,
			NumAgents:         r.Params.NumAgents,
			Width:             r.Params.Width,
			Height:            r.Params.Height,
			DirtyFraction:     r.Params.DirtyFraction,
			MaxSteps:          r.Params.MaxSteps,
			Seed:              r.Params.Seed,
			FinalStep:         r.FinalStep,
			FinalCleanPercent: r.FinalCleanPercent,
			AllCleanedStep:    r.AllCleanedStep,
		})
	}
	return items, nil
}

// Series returns the metric history of a run, indexed by step.
func (c *Client) Series(ctx context.Context, runID string) ([]model.StepSample, error) {
	series, ok, err := c.store.GetSeries(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no series for run %s", runID)
	}
	return series, nil
}

// RunReport formats a persisted run as text.
func (c *Client) RunReport(ctx context.Context, runID string) (string, error) {
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no run %s", runID)
	}
	return stats.FormatRunReport(run), nil
}

// SweepReport formats a persisted sweep as text. An empty sweepID
// selects the most recent sweep.
func (c *Client) SweepReport(ctx context.Context, sweepID string) (string, error) {
	sweep, err := c.resolveSweep(ctx, sweepID)
	if err != nil {
		return "", err
	}
	return stats.FormatSweepReport(sweep), nil
}

// Chart writes a PNG to req.OutPath: a clean-percentage time series
// chart when run IDs are given, or a steps-to-clean sweep chart when a
// sweep ID (or blank for the latest sweep) is given.
func (c *Client) Chart(ctx context.Context, req ChartRequest) error {
	if req.OutPath == "" {
		return errors.New("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(req.OutPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(req.OutPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if len(req.RunIDs) > 0 {
		inputs := make([]stats.SeriesChartInput, 0, len(req.RunIDs))
		for _, id := range req.RunIDs {
			series, err := c.Series(ctx, id)
			if err != nil {
				return err
			}
			inputs = append(inputs, stats.SeriesChartInput{Name: id, Series: series})
		}
		return stats.RenderSeriesChart(f, inputs...)
	}

	sweep, err := c.resolveSweep(ctx, req.SweepID)
	if err != nil {
		return err
	}
	return stats.RenderSweepChart(f, sweep)
}

func (c *Client) resolveSweep(ctx context.Context, sweepID string) (model.SweepRecord, error) {
	if sweepID != "" {
		sweep, ok, err := c.store.GetSweep(ctx, sweepID)
		if err != nil {
			return model.SweepRecord{}, err
		}
		if !ok {
			return model.SweepRecord{}, fmt.Errorf("no sweep %s", sweepID)
		}
		return sweep, nil
	}
	sweeps, err := c.store.ListSweeps(ctx)
	if err != nil {
		return model.SweepRecord{}, err
	}
	if len(sweeps) == 0 {
		return model.SweepRecord{}, errors.New("no sweeps recorded")
	}
	return sweeps[0], nil
}
