package storage

import (
	"context"
	"testing"

	"dustgrid/internal/model"
)

func sampleRun(id string) model.RunRecord {
	return model.RunRecord{
		VersionedRecord:   Stamp(),
		ID:                id,
		CreatedAtUTC:      "2026-01-02T03:04:05Z",
		Params:            model.RunParams{NumAgents: 2, Width: 5, Height: 5, DirtyFraction: 0.5, MaxSteps: 100, Seed: 1},
		FinalStep:         42,
		FinalCleanPercent: 100,
		AllCleanedStep:    42,
		CleanedByAgent:    []int{7, 6},
	}
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss for unknown run, ok=%v err=%v", ok, err)
	}

	run := sampleRun("run-a")
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}
	got, ok, err := store.GetRun(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if got.FinalStep != 42 || got.AllCleanedStep != 42 || len(got.CleanedByAgent) != 2 {
		t.Fatalf("unexpected run: %+v", got)
	}

	// Mutating the returned slice must not touch the stored record.
	got.CleanedByAgent[0] = 999
	again, _, _ := store.GetRun(ctx, "run-a")
	if again.CleanedByAgent[0] != 7 {
		t.Fatalf("stored record aliased by returned copy")
	}
}

func TestMemoryStoreListRunsOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	old := sampleRun("run-old")
	old.CreatedAtUTC = "2026-01-01T00:00:00Z"
	recent := sampleRun("run-new")
	recent.CreatedAtUTC = "2026-02-01T00:00:00Z"
	for _, r := range []model.RunRecord{old, recent} {
		if err := store.SaveRun(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-new" || runs[1].ID != "run-old" {
		t.Fatalf("expected newest-first ordering, got %+v", runs)
	}
}

func TestMemoryStoreSeriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	series := []model.StepSample{{Step: 0, CleanPercent: 20}, {Step: 1, CleanPercent: 40}}
	if err := store.SaveSeries(ctx, "run-a", series); err != nil {
		t.Fatalf("save series: %v", err)
	}
	got, ok, err := store.GetSeries(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get series: ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[1].CleanPercent != 40 {
		t.Fatalf("unexpected series: %+v", got)
	}
	if _, ok, _ := store.GetSeries(ctx, "other"); ok {
		t.Fatalf("expected miss for unknown series")
	}
}

func TestMemoryStoreSweepRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	sweep := model.SweepRecord{
		VersionedRecord: Stamp(),
		ID:              "sweep-a",
		CreatedAtUTC:    "2026-01-02T03:04:05Z",
		Base:            model.RunParams{Width: 20, Height: 20, DirtyFraction: 0.8, MaxSteps: 1500, Seed: 1},
		AgentCounts:     []int{1, 2, 4},
		Points: []model.SweepPoint{
			{AgentCount: 1, RunID: "r1", StepsToAllClean: -1, FinalCleanPercent: 81.5, Milestones: []float64{40, 60, 81.5}},
		},
	}
	if err := store.SaveSweep(ctx, sweep); err != nil {
		t.Fatalf("save sweep: %v", err)
	}
	got, ok, err := store.GetSweep(ctx, "sweep-a")
	if err != nil || !ok {
		t.Fatalf("get sweep: ok=%v err=%v", ok, err)
	}
	if len(got.Points) != 1 || got.Points[0].StepsToAllClean != -1 {
		t.Fatalf("unexpected sweep: %+v", got)
	}

	got.Points[0].Milestones[0] = 999
	again, _, _ := store.GetSweep(ctx, "sweep-a")
	if again.Points[0].Milestones[0] != 40 {
		t.Fatalf("stored sweep aliased by returned copy")
	}
}
