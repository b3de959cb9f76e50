package platform

import (
	"context"
	"testing"

	"dustgrid/internal/model"
	"dustgrid/internal/storage"
)

func newTestLab(t *testing.T) *Lab {
	t.Helper()
	lab := NewLab(Config{Store: storage.NewMemoryStore()})
	if err := lab.Init(context.Background()); err != nil {
		t.Fatalf("init lab: %v", err)
	}
	return lab
}

func TestLabRequiresStore(t *testing.T) {
	lab := NewLab(Config{})
	if err := lab.Init(context.Background()); err == nil {
		t.Fatalf("expected error without store")
	}
}

func TestRunSimulationPersistsRunAndSeries(t *testing.T) {
	ctx := context.Background()
	lab := newTestLab(t)

	params := model.RunParams{NumAgents: 4, Width: 6, Height: 6, DirtyFraction: 0.5, MaxSteps: 10000, Seed: 17}
	record, err := lab.RunSimulation(ctx, params)
	if err != nil {
		t.Fatalf("run simulation: %v", err)
	}
	if record.AllCleanedStep < 0 {
		t.Fatalf("expected run to finish cleaning: %+v", record)
	}
	if record.FinalCleanPercent != 100 {
		t.Fatalf("expected 100%% final clean, got %f", record.FinalCleanPercent)
	}
	if record.AllCleanedStep != record.FinalStep {
		t.Fatalf("all-cleaned step %d should equal final step %d on a finished run",
			record.AllCleanedStep, record.FinalStep)
	}

	stored, ok, err := lab.Store().GetRun(ctx, record.ID)
	if err != nil || !ok {
		t.Fatalf("stored run lookup: ok=%v err=%v", ok, err)
	}
	if stored.Params != params {
		t.Fatalf("stored params mismatch: %+v", stored.Params)
	}

	series, ok, err := lab.Store().GetSeries(ctx, record.ID)
	if err != nil || !ok {
		t.Fatalf("stored series lookup: ok=%v err=%v", ok, err)
	}
	if len(series) != record.FinalStep {
		t.Fatalf("expected %d samples, got %d", record.FinalStep, len(series))
	}
	if last := series[len(series)-1]; last.CleanPercent != 100 {
		t.Fatalf("last sample should be 100%%, got %+v", last)
	}
}

func TestRunSimulationRejectsInvalidParams(t *testing.T) {
	lab := newTestLab(t)
	_, err := lab.RunSimulation(context.Background(), model.RunParams{
		NumAgents: 100, Width: 3, Height: 3, DirtyFraction: 0.5, MaxSteps: 10, Seed: 1,
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestRunSweepProducesOnePointPerAgentCount(t *testing.T) {
	ctx := context.Background()
	lab := newTestLab(t)

	base := model.RunParams{Width: 8, Height: 8, DirtyFraction: 0.4, MaxSteps: 50, Seed: 5}
	counts := []int{1, 2, 4}
	sweep, err := lab.RunSweep(ctx, base, counts)
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	if len(sweep.Points) != len(counts) {
		t.Fatalf("expected %d points, got %d", len(counts), len(sweep.Points))
	}
	for i, p := range sweep.Points {
		if p.AgentCount != counts[i] {
			t.Fatalf("point %d has agent count %d", i, p.AgentCount)
		}
		if len(p.Milestones) != len(model.MilestoneSteps) {
			t.Fatalf("point %d has %d milestones", i, len(p.Milestones))
		}
		if _, ok, err := lab.Store().GetRun(ctx, p.RunID); err != nil || !ok {
			t.Fatalf("sweep point run %s not persisted: ok=%v err=%v", p.RunID, ok, err)
		}
	}

	stored, ok, err := lab.Store().GetSweep(ctx, sweep.ID)
	if err != nil || !ok {
		t.Fatalf("stored sweep lookup: ok=%v err=%v", ok, err)
	}
	if len(stored.AgentCounts) != len(counts) {
		t.Fatalf("stored sweep agent counts: %+v", stored.AgentCounts)
	}
}

func TestRunSweepRequiresAgentCounts(t *testing.T) {
	lab := newTestLab(t)
	if _, err := lab.RunSweep(context.Background(), model.RunParams{Width: 4, Height: 4, DirtyFraction: 0.5, MaxSteps: 10, Seed: 1}, nil); err == nil {
		t.Fatalf("expected error for empty agent counts")
	}
}
