package storage

import (
	"context"

	"dustgrid/internal/model"
)

// Store defines persistence operations for completed runs and sweeps.
// Live simulation state is never persisted; only results and their
// metric series.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveSeries(ctx context.Context, runID string, series []model.StepSample) error
	GetSeries(ctx context.Context, runID string) ([]model.StepSample, bool, error)
	SaveSweep(ctx context.Context, sweep model.SweepRecord) error
	GetSweep(ctx context.Context, id string) (model.SweepRecord, bool, error)
	ListSweeps(ctx context.Context) ([]model.SweepRecord, error)
}
