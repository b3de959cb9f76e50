package storage

import (
	"context"
	"sort"
	"sync"

	"dustgrid/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	series      map[string][]model.StepSample
	sweeps      map[string]model.SweepRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.series = make(map[string][]model.StepSample)
	s.sweeps = make(map[string]model.SweepRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.CleanedByAgent = append([]int(nil), run.CleanedByAgent...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if ok {
		run.CleanedByAgent = append([]int(nil), run.CleanedByAgent...)
	}
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		run.CleanedByAgent = append([]int(nil), run.CleanedByAgent...)
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC == runs[j].CreatedAtUTC {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
	})
	return runs, nil
}

func (s *MemoryStore) SaveSeries(_ context.Context, runID string, series []model.StepSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[runID] = append([]model.StepSample(nil), series...)
	return nil
}

func (s *MemoryStore) GetSeries(_ context.Context, runID string) ([]model.StepSample, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.StepSample(nil), series...), true, nil
}

func (s *MemoryStore) SaveSweep(_ context.Context, sweep model.SweepRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweeps[sweep.ID] = copySweep(sweep)
	return nil
}

func (s *MemoryStore) GetSweep(_ context.Context, id string) (model.SweepRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sweep, ok := s.sweeps[id]
	if !ok {
		return model.SweepRecord{}, false, nil
	}
	return copySweep(sweep), true, nil
}

func (s *MemoryStore) ListSweeps(_ context.Context) ([]model.SweepRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sweeps := make([]model.SweepRecord, 0, len(s.sweeps))
	for _, sweep := range s.sweeps {
		sweeps = append(sweeps, copySweep(sweep))
	}
	sort.Slice(sweeps, func(i, j int) bool {
		if sweeps[i].CreatedAtUTC == sweeps[j].CreatedAtUTC {
			return sweeps[i].ID < sweeps[j].ID
		}
		return sweeps[i].CreatedAtUTC > sweeps[j].CreatedAtUTC
	})
	return sweeps, nil
}

func copySweep(sweep model.SweepRecord) model.SweepRecord {
	sweep.AgentCounts = append([]int(nil), sweep.AgentCounts...)
	points := make([]model.SweepPoint, len(sweep.Points))
	for i, p := range sweep.Points {
		p.Milestones = append([]float64(nil), p.Milestones...)
		points[i] = p
	}
	sweep.Points = points
	return sweep
}
