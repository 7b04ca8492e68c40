// Command hexview animates a hex world in the terminal. The agent follows
// the trajectory sampler, or is steered by hand while paused.
//
// Keys: p pause/resume autopilot, ←/→ rotate, ↑ forward, space wait,
// q or Esc quit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/talgya/hexaworld/internal/config"
	"github.com/talgya/hexaworld/internal/engine"
	"github.com/talgya/hexaworld/internal/entropy"
	"github.com/talgya/hexaworld/internal/sampler"
	"github.com/talgya/hexaworld/internal/world"
)

const defaultInterval = 250 * time.Millisecond

type viewer struct {
	screen tcell.Screen
	sim    *engine.Simulation
	eng    *engine.Engine
	last   engine.TickResult
}

func main() {
	// The terminal belongs to tcell, so logs go to stderr and only errors.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))

	cfg := config.Default()
	if path := os.Getenv("HEXWORLD_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fatal("failed to load config", err)
		}
		cfg = loaded
	}
	cfg.World.Seed = entropy.Resolve(cfg.World.Seed)

	w, err := world.Generate(cfg.GenConfig())
	if err != nil {
		fatal("failed to generate world", err)
	}
	policy, err := sampler.New(cfg.Sampler.Horizon, rand.New(rand.NewSource(cfg.World.Seed+1)))
	if err != nil {
		fatal("failed to build sampler", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fatal("failed to create screen", err)
	}
	if err := screen.Init(); err != nil {
		fatal("failed to init screen", err)
	}
	defer screen.Fini()

	v := &viewer{screen: screen, sim: engine.NewSimulation(w)}

	v.eng = engine.NewEngine(v.sim, policy)
	v.eng.Interval = cfg.Run.Interval()
	if v.eng.Interval == 0 {
		v.eng.Interval = defaultInterval
	}
	v.eng.OnTick = func(res engine.TickResult) {
		// Redraw happens on the event loop goroutine.
		screen.PostEvent(tcell.NewEventInterrupt(res))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.eng.Run(ctx) }()

	v.draw()
	v.loop()

	cancel()
	if err := <-done; err != nil {
		screen.Fini()
		fatal("engine stopped", err)
	}
}

func (v *viewer) loop() {
	for {
		switch ev := v.screen.PollEvent().(type) {
		case *tcell.EventInterrupt:
			if res, ok := ev.Data().(engine.TickResult); ok {
				v.last = res
			}
			v.draw()

		case *tcell.EventResize:
			v.screen.Sync()
			v.draw()

		case *tcell.EventKey:
			if !v.handleKey(ev) {
				return
			}
			v.draw()

		case nil:
			return
		}
	}
}

// handleKey reacts to one key press and reports whether to keep running.
func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.manual(world.Action{Rotation: 1})
	case tcell.KeyRight:
		v.manual(world.Action{Rotation: -1})
	case tcell.KeyUp:
		v.manual(world.Action{Forward: 1})
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'p':
			if v.eng.Paused() {
				v.eng.Resume()
			} else {
				v.eng.Pause()
			}
		case ' ':
			v.manual(world.Action{})
		}
	}
	return true
}

// manual steps the world with a hand-chosen action. Ignored while the
// autopilot runs.
func (v *viewer) manual(a world.Action) {
	if !v.eng.Paused() {
		return
	}
	v.last = v.sim.Step(a)
}

func (v *viewer) draw() {
	s := v.screen
	s.Clear()

	var rows int
	v.sim.View(func(w *world.World) {
		side := w.Grid.Side()
		rows = side
		seen := make(map[world.Cell]bool)
		for _, c := range world.ObservedCells(w.Agent.Position, w.Agent.Direction, w.Range) {
			seen[c] = true
		}
		for r := 0; r < side; r++ {
			for col := 0; col < side; col++ {
				c := world.Cell{Row: r, Col: col}
				style := kindStyle(w.Grid.Kind(c))
				if seen[c] {
					style = style.Background(tcell.ColorDarkSlateGray)
				}
				s.SetContent(col*2+r%2, r, w.Glyph(c), nil, style)
			}
		}
	})

	status := "autopilot"
	if v.eng.Paused() {
		status = "paused: ←/→ rotate, ↑ forward, space wait"
	}
	stats := v.sim.Stats()
	drawText(s, 0, rows+1, tcell.StyleDefault.Bold(true),
		fmt.Sprintf("tick %d  [%s]  p pause  q quit", v.sim.CurrentTick(), status))
	drawText(s, 0, rows+2, tcell.StyleDefault,
		fmt.Sprintf("agent: %s  moved %d  pushed %d  blocked %d",
			world.OutcomeName(v.last.AgentOutcome),
			stats.AgentOutcomes[world.OutcomeName(world.OutcomeMoved)],
			stats.AgentOutcomes[world.OutcomeName(world.OutcomePushed)],
			stats.AgentOutcomes[world.OutcomeName(world.OutcomeBlocked)],
		))
	drawText(s, 0, rows+3, tcell.StyleDefault.Foreground(tcell.ColorGray),
		"obs: "+formatObservation(v.sim.Observe()))

	s.Show()
}

func kindStyle(k world.Kind) tcell.Style {
	switch k {
	case world.KindObstacle:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	case world.KindMovable:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case world.KindMoving:
		return tcell.StyleDefault.Foreground(tcell.ColorPurple)
	case world.KindAgent:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	}
}

func formatObservation(obs []float64) string {
	parts := make([]string, len(obs))
	for i, v := range obs {
		parts[i] = fmt.Sprintf("%.1f", v)
	}
	return strings.Join(parts, " ")
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
