// Package view renders a running simulation in the terminal. The viewer
// is a consumer: it drives ticks on a timer but never touches grid or
// agent state directly.
package view

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"dustgrid/internal/grid"
	"dustgrid/internal/sim"
)

const (
	dirtyRune = '#'
	cleanRune = '.'
	agentRune = '@'
)

type Viewer struct {
	screen   tcell.Screen
	model    *sim.Model
	interval time.Duration
	paused   bool
}

// New wraps a screen and a model. The screen must not be initialized
// yet; Run owns its lifecycle.
func New(screen tcell.Screen, m *sim.Model, interval time.Duration) *Viewer {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Viewer{screen: screen, model: m, interval: interval}
}

// Run displays the simulation until the user quits (q, Esc, Ctrl-C) or
// ctx is cancelled. Space toggles pause, n single-steps while paused.
// The final frame stays on screen after termination until the user
// quits.
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer v.screen.Fini()

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !v.paused && v.model.Running() {
				v.model.Step()
				v.Draw()
			}
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				v.screen.Sync()
				v.Draw()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
					return nil
				case ev.Rune() == ' ':
					v.paused = !v.paused
					v.Draw()
				case ev.Rune() == 'n':
					v.model.Step()
					v.Draw()
				}
			}
		}
	}
}

// Draw renders one frame: a status line on the top row, then the grid
// with one terminal cell per grid cell, agents drawn over cell states.
func (v *Viewer) Draw() {
	s := v.screen
	s.Clear()

	base := tcell.StyleDefault
	dirtyStyle := base.Foreground(tcell.ColorYellow)
	agentStyle := base.Foreground(tcell.ColorGreen).Bold(true)

	status := fmt.Sprintf("step %d  clean %.1f%%  agents %d",
		v.model.CurrentStep(), v.model.CleanPercent(), len(v.model.Agents()))
	if v.paused {
		status += "  [paused]"
	}
	if !v.model.Running() {
		status += "  [done]"
	}
	for i, r := range status {
		s.SetContent(i, 0, r, nil, base)
	}

	g := v.model.Grid()
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			r, style := cleanRune, base
			if g.State(grid.Coord{X: x, Y: y}) == grid.Dirty {
				r, style = dirtyRune, dirtyStyle
			}
			s.SetContent(x, y+1, r, nil, style)
		}
	}
	for _, a := range v.model.Agents() {
		p := a.Pos()
		s.SetContent(p.X, p.Y+1, agentRune, nil, agentStyle)
	}

	s.Show()
}
