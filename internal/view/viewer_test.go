package view

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"dustgrid/internal/model"
	"dustgrid/internal/sim"
)

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	screen.SetSize(40, 10)
	t.Cleanup(screen.Fini)
	return screen
}

func cellRune(t *testing.T, screen tcell.SimulationScreen, x, y int) rune {
	t.Helper()
	cells, w, _ := screen.GetContents()
	cell := cells[y*w+x]
	if len(cell.Runes) == 0 {
		return ' '
	}
	return cell.Runes[0]
}

func TestDrawRendersGridAgentsAndStatus(t *testing.T) {
	m, err := sim.New(model.RunParams{
		NumAgents: 1, Width: 3, Height: 3, DirtyFraction: 1.0, MaxSteps: 10, Seed: 4,
	}, nil)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	screen := newTestScreen(t)
	v := New(screen, m, time.Millisecond)
	v.Draw()

	// Status line starts at the origin.
	if got := cellRune(t, screen, 0, 0); got != 's' {
		t.Fatalf("expected status line to start with 's', got %q", got)
	}

	// The agent is drawn over its cell; every other cell is dirty.
	agentPos := m.Agents()[0].Pos()
	if got := cellRune(t, screen, agentPos.X, agentPos.Y+1); got != agentRune {
		t.Fatalf("expected agent rune at %v, got %q", agentPos, got)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if x == agentPos.X && y == agentPos.Y {
				continue
			}
			if got := cellRune(t, screen, x, y+1); got != dirtyRune {
				t.Fatalf("expected dirty rune at (%d,%d), got %q", x, y, got)
			}
		}
	}
}

func TestDrawShowsCleanedCells(t *testing.T) {
	m, err := sim.New(model.RunParams{
		NumAgents: 1, Width: 1, Height: 1, DirtyFraction: 1.0, MaxSteps: 10, Seed: 1,
	}, nil)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	m.Step()

	screen := newTestScreen(t)
	v := New(screen, m, time.Millisecond)
	v.Draw()

	// Terminated model: the agent still sits on the (now clean) cell.
	if got := cellRune(t, screen, 0, 1); got != agentRune {
		t.Fatalf("expected agent rune, got %q", got)
	}
	cells, w, _ := screen.GetContents()
	line := make([]rune, 0, w)
	for x := 0; x < w; x++ {
		cell := cells[x]
		if len(cell.Runes) > 0 {
			line = append(line, cell.Runes[0])
		}
	}
	if got := string(line[:6]); got != "step 1" {
		t.Fatalf("expected status to read %q, got %q", "step 1", got)
	}
}
