package sim

import "math/rand/v2"

// Scheduler activates every registered agent exactly once per tick, in
// an order permuted independently each tick. Activation is strictly
// sequential; the permutation only decides who sees a contended cell
// first.
type Scheduler struct {
	rng    *rand.Rand
	agents []*Cleaner
}

func NewScheduler(rng *rand.Rand) *Scheduler {
	return &Scheduler{rng: rng}
}

func (s *Scheduler) Add(agent *Cleaner) {
	s.agents = append(s.agents, agent)
}

func (s *Scheduler) Len() int { return len(s.agents) }

// Agents returns the agents in creation order.
func (s *Scheduler) Agents() []*Cleaner {
	return s.agents
}

// Step activates all agents in a fresh random order.
func (s *Scheduler) Step() {
	for _, i := range s.rng.Perm(len(s.agents)) {
		s.agents[i].Step()
	}
}
