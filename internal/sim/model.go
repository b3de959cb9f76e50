// Package sim implements the cleaning simulation: a fixed population of
// agents roams a rectangular grid, cleaning dirty cells, until the grid
// is fully clean or a step ceiling is reached.
package sim

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"dustgrid/internal/grid"
	"dustgrid/internal/model"
)

const progressLogEvery = 100

// Validate rejects configurations the simulation cannot honor. Agent
// count must not exceed the cell count so that distinct starting cells
// exist for every agent.
func Validate(p model.RunParams) error {
	if p.NumAgents <= 0 {
		return fmt.Errorf("num_agents must be > 0, got %d", p.NumAgents)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("grid dimensions must be > 0, got %dx%d", p.Width, p.Height)
	}
	if p.DirtyFraction < 0 || p.DirtyFraction > 1 {
		return fmt.Errorf("dirty_fraction must be in [0,1], got %f", p.DirtyFraction)
	}
	if p.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be > 0, got %d", p.MaxSteps)
	}
	if p.NumAgents > p.Width*p.Height {
		return fmt.Errorf("num_agents (%d) must not exceed cell count (%d)",
			p.NumAgents, p.Width*p.Height)
	}
	return nil
}

// Model owns the grid, the agent population, the step counter and the
// termination policy for one run. A model is single-threaded; each run
// gets its own instance.
type Model struct {
	params model.RunParams
	grid   *grid.Grid
	sched  *Scheduler
	rng    *rand.Rand
	logger *log.Logger

	currentStep    int
	allCleanedStep int // -1 until 100% clean is first observed
	running        bool
	series         []model.StepSample
}

// New validates params, builds the grid and places the agents on
// distinct starting cells. All randomness comes from a single PCG
// source seeded from params.Seed.
func New(params model.RunParams, logger *log.Logger) (*Model, error) {
	if err := Validate(params); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	rng := rand.New(rand.NewPCG(params.Seed, params.Seed))
	m := &Model{
		params:         params,
		grid:           grid.New(params.Width, params.Height, params.DirtyFraction, rng),
		rng:            rng,
		logger:         logger,
		allCleanedStep: -1,
		running:        true,
	}
	m.sched = NewScheduler(rng)

	// Uniform placement without replacement: shuffle the full cell
	// enumeration and take a prefix. Always terminates, unlike the
	// naive resample-until-unoccupied loop.
	cells := m.grid.Cells()
	rng.Shuffle(len(cells), func(i, j int) {
		cells[i], cells[j] = cells[j], cells[i]
	})
	for i := 0; i < params.NumAgents; i++ {
		m.sched.Add(&Cleaner{id: i, pos: cells[i], model: m})
	}
	return m, nil
}

// Step executes one tick: every agent acts once in a fresh random
// order, the clean percentage is sampled, and the termination policy is
// evaluated. Once the model has terminated, Step is a no-op.
func (m *Model) Step() {
	if !m.running {
		return
	}

	m.sched.Step()

	pct := m.grid.CleanPercent()
	m.series = append(m.series, model.StepSample{Step: m.currentStep, CleanPercent: pct})
	m.currentStep++

	if pct == 100 && m.allCleanedStep < 0 {
		m.allCleanedStep = m.currentStep
	}
	if m.currentStep >= m.params.MaxSteps || pct == 100 {
		m.running = false
	}
}

// Run drives the model to termination, or stops early if ctx is
// cancelled.
func (m *Model) Run(ctx context.Context) error {
	m.logger.Info("simulation started",
		"agents", m.params.NumAgents,
		"grid", fmt.Sprintf("%dx%d", m.params.Width, m.params.Height),
		"dirty_fraction", m.params.DirtyFraction,
		"max_steps", m.params.MaxSteps,
		"seed", m.params.Seed,
	)
	for m.running {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.Step()
		if m.currentStep%progressLogEvery == 0 {
			m.logger.Debug("progress", "step", m.currentStep, "clean_percent", m.CleanPercent())
		}
	}
	m.logger.Info("simulation finished",
		"steps", m.currentStep,
		"clean_percent", m.CleanPercent(),
		"all_cleaned", m.allCleanedStep >= 0,
	)
	return nil
}

// CleanPercent reports the current share of clean cells in [0,100].
func (m *Model) CleanPercent() float64 { return m.grid.CleanPercent() }

func (m *Model) CurrentStep() int { return m.currentStep }

func (m *Model) Running() bool { return m.running }

// AllCleanedStep returns the step count at which 100% clean was first
// observed. ok is false while (or if) that never happens.
func (m *Model) AllCleanedStep() (int, bool) {
	return m.allCleanedStep, m.allCleanedStep >= 0
}

// Series returns the append-only metric history, one sample per tick,
// indexed by step.
func (m *Model) Series() []model.StepSample { return m.series }

func (m *Model) Params() model.RunParams { return m.params }

func (m *Model) Grid() *grid.Grid { return m.grid }

// Agents returns the agent population in creation order. Consumers
// read positions and counters; they must not mutate simulation state.
func (m *Model) Agents() []*Cleaner { return m.sched.Agents() }

// CleanedByAgent returns each agent's cleaned-cell counter, indexed by
// agent ID.
func (m *Model) CleanedByAgent() []int {
	out := make([]int, m.sched.Len())
	for _, a := range m.sched.Agents() {
		out[a.ID()] = a.Cleaned()
	}
	return out
}
