// Package platform orchestrates simulation runs against a results
// store. A Lab owns the store; simulations own nothing beyond their own
// tick state.
package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"dustgrid/internal/model"
	"dustgrid/internal/sim"
	"dustgrid/internal/stats"
	"dustgrid/internal/storage"
)

type Config struct {
	Store  storage.Store
	Logger *log.Logger
}

type Lab struct {
	store  storage.Store
	logger *log.Logger
}

func NewLab(cfg Config) *Lab {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Lab{store: cfg.Store, logger: logger}
}

func (l *Lab) Init(ctx context.Context) error {
	if l.store == nil {
		return errors.New("store is required")
	}
	return l.store.Init(ctx)
}

// Reset re-initializes the store. The memory backend drops everything;
// sqlite keeps existing rows since tables are created if absent.
func (l *Lab) Reset(ctx context.Context) error {
	return l.Init(ctx)
}

func (l *Lab) Store() storage.Store { return l.store }

// RunSimulation validates params, drives a fresh model to termination
// and persists the run record together with its metric series.
func (l *Lab) RunSimulation(ctx context.Context, params model.RunParams) (model.RunRecord, error) {
	m, err := sim.New(params, l.logger)
	if err != nil {
		return model.RunRecord{}, err
	}
	if err := m.Run(ctx); err != nil {
		return model.RunRecord{}, err
	}

	now := time.Now().UTC()
	record := model.RunRecord{
		VersionedRecord: storage.Stamp(),
		ID: fmt.Sprintf("run-%dx%d-a%d-s%d-%d",
			params.Width, params.Height, params.NumAgents, params.Seed, now.Unix()),
		CreatedAtUTC:      now.Format(time.RFC3339),
		Params:            params,
		FinalStep:         m.CurrentStep(),
		FinalCleanPercent: m.CleanPercent(),
		AllCleanedStep:    -1,
		CleanedByAgent:    m.CleanedByAgent(),
	}
	if step, ok := m.AllCleanedStep(); ok {
		record.AllCleanedStep = step
	}

	if err := l.store.SaveRun(ctx, record); err != nil {
		return model.RunRecord{}, err
	}
	if err := l.store.SaveSeries(ctx, record.ID, m.Series()); err != nil {
		return model.RunRecord{}, err
	}
	l.logger.Info("run persisted", "run_id", record.ID,
		"final_step", record.FinalStep, "clean_percent", record.FinalCleanPercent)
	return record, nil
}

// RunSweep executes one simulation per agent count over the same base
// configuration and persists the aggregated sweep record. Each run gets
// a seed offset by its index so layouts differ while the sweep as a
// whole stays reproducible.
func (l *Lab) RunSweep(ctx context.Context, base model.RunParams, agentCounts []int) (model.SweepRecord, error) {
	if len(agentCounts) == 0 {
		return model.SweepRecord{}, errors.New("at least one agent count is required")
	}

	now := time.Now().UTC()
	sweep := model.SweepRecord{
		VersionedRecord: storage.Stamp(),
		ID:              "sweep-" + uuid.NewString(),
		CreatedAtUTC:    now.Format(time.RFC3339),
		Base:            base,
		AgentCounts:     append([]int(nil), agentCounts...),
	}

	for i, count := range agentCounts {
		params := base
		params.NumAgents = count
		params.Seed = base.Seed + uint64(i)

		record, err := l.RunSimulation(ctx, params)
		if err != nil {
			return model.SweepRecord{}, fmt.Errorf("sweep point agents=%d: %w", count, err)
		}
		series, _, err := l.store.GetSeries(ctx, record.ID)
		if err != nil {
			return model.SweepRecord{}, err
		}
		sweep.Points = append(sweep.Points, model.SweepPoint{
			AgentCount:        count,
			RunID:             record.ID,
			StepsToAllClean:   record.AllCleanedStep,
			FinalCleanPercent: record.FinalCleanPercent,
			Milestones:        stats.Milestones(series),
		})
	}

	if err := l.store.SaveSweep(ctx, sweep); err != nil {
		return model.SweepRecord{}, err
	}
	l.logger.Info("sweep persisted", "sweep_id", sweep.ID, "points", len(sweep.Points))
	return sweep, nil
}
