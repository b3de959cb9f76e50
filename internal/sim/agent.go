package sim

import "dustgrid/internal/grid"

// Cleaner is one cleaning unit. It holds a non-owning back-reference to
// its model, used only to reach the shared grid and the random source.
type Cleaner struct {
	id      int
	pos     grid.Coord
	cleaned int
	model   *Model
}

func (a *Cleaner) ID() int         { return a.id }
func (a *Cleaner) Pos() grid.Coord { return a.pos }
func (a *Cleaner) Cleaned() int    { return a.cleaned }

// Step runs the per-tick decision rule: clean the current cell if it is
// dirty, otherwise move to a random Moore neighbor. A tick mutates the
// grid or the position, never both.
func (a *Cleaner) Step() {
	g := a.model.grid
	if g.State(a.pos) == grid.Dirty {
		g.SetClean(a.pos)
		a.cleaned++
		return
	}
	neighbors := g.MooreNeighbors(a.pos)
	if len(neighbors) == 0 {
		// Single-cell grid: nowhere to go.
		return
	}
	a.pos = neighbors[a.model.rng.IntN(len(neighbors))]
}
