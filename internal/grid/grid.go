// Package grid owns the ground truth of which cells of the world are
// dirty. Cells only ever transition Dirty -> Clean; the cell set is
// fixed at construction.
package grid

import (
	"math"
	"math/rand/v2"
)

type CellState uint8

const (
	Clean CellState = iota
	Dirty
)

func (s CellState) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// Coord identifies one cell. 0 <= X < width, 0 <= Y < height.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Grid struct {
	width  int
	height int
	cells  []CellState
	dirty  int
}

// New builds a width x height grid with round(width*height*dirtyFraction)
// cells marked Dirty, chosen uniformly without replacement from rng.
func New(width, height int, dirtyFraction float64, rng *rand.Rand) *Grid {
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]CellState, width*height),
	}
	wantDirty := int(math.Round(float64(width*height) * dirtyFraction))
	for i, idx := range rng.Perm(width * height) {
		if i >= wantDirty {
			break
		}
		g.cells[idx] = Dirty
	}
	g.dirty = wantDirty
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) Contains(c Coord) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

func (g *Grid) State(c Coord) CellState {
	return g.cells[g.index(c)]
}

// SetClean marks a cell clean and reports whether it was dirty before.
func (g *Grid) SetClean(c Coord) bool {
	i := g.index(c)
	if g.cells[i] != Dirty {
		return false
	}
	g.cells[i] = Clean
	g.dirty--
	return true
}

func (g *Grid) DirtyCount() int { return g.dirty }

func (g *Grid) CleanCount() int { return g.width*g.height - g.dirty }

// CleanPercent returns the share of clean cells in [0, 100].
func (g *Grid) CleanPercent() float64 {
	return 100 * float64(g.CleanCount()) / float64(g.width*g.height)
}

// Cells enumerates every coordinate in row-major order.
func (g *Grid) Cells() []Coord {
	out := make([]Coord, 0, g.width*g.height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

// MooreNeighbors returns the up-to-8 in-bounds cells adjacent to c,
// excluding c itself. Every legal coordinate of a grid with more than
// one cell has at least one neighbor.
func (g *Grid) MooreNeighbors(c Coord) []Coord {
	out := make([]Coord, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := Coord{X: c.X + dx, Y: c.Y + dy}
			if g.Contains(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

func (g *Grid) index(c Coord) int {
	if !g.Contains(c) {
		panic("grid: coordinate out of bounds")
	}
	return c.Y*g.width + c.X
}
