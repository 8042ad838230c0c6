package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sheikhrachel/gol-playback/model"
	"github.com/sheikhrachel/gol-playback/playback"
	"github.com/sheikhrachel/gol-playback/utils"
)

// initializeGame builds the controller and seeds its grid
func initializeGame(config utils.Config) *playback.Controller {
	ctrl := playback.NewController(config.PlaybackOptions())
	seedGrid(ctrl, config)
	return ctrl
}

// seedGrid places the configured pattern, centred on the grid
func seedGrid(ctrl *playback.Controller, config utils.Config) {
	switch config.Pattern {
	case utils.PatternNone:
	case utils.PatternRandom:
		ctrl.RandomiseCells(config.RandomDensity)
	default:
		if p, ok := model.LookupPattern(config.Pattern); ok {
			ctrl.PlacePattern(p, config.Rows/2-1, config.Columns/2-1)
		}
	}
}

// displayGameInfo shows the initial game information
func displayGameInfo(config utils.Config, grid model.Grid) {
	fmt.Printf("Grid: %dx%d | Pattern: %s | Initial living cells: %d\n",
		grid.Rows(), grid.Columns(), config.Pattern, grid.LiveCount())
	fmt.Printf("Steps: %d | Interval: %v\n", config.StepsRemaining, config.StepDuration)
	fmt.Println("Press Ctrl+C to exit gracefully")
	fmt.Println()
}

// session tracks what the headless loop has seen so far
type session struct {
	out       io.Writer
	renderer  *model.TerminalRenderer
	history   *model.History
	stats     *utils.Stats
	lastSteps playback.Optional[int]
	lastFrame time.Time
}

func newSession(out io.Writer, config utils.Config, now time.Time) *session {
	return &session{
		out:       out,
		renderer:  model.NewTerminalRenderer(config.Colors),
		history:   model.NewHistory(0),
		stats:     utils.NewStats(now),
		lastFrame: now,
	}
}

// observe accounts for a published state, reporting whether it holds a new
// generation
func (s *session) observe(st playback.State, now time.Time) bool {
	steps, prev := st.StepsRemaining, s.lastSteps
	s.lastSteps = steps
	if !st.Playing || !steps.Valid || !prev.Valid || steps.Value >= prev.Value {
		return false
	}

	stagnant := s.history.Observe(st.Grid)
	s.stats.Update(st.Grid.LiveCount(), stagnant, now.Sub(s.lastFrame))
	s.lastFrame = now
	return true
}

// displayGameStatus shows the current game status
func (s *session) displayGameStatus(st playback.State) {
	status := "Active"
	if s.stats.StagnantGenerations > 0 {
		status = fmt.Sprintf("Stagnant (%d)", s.stats.StagnantGenerations)
	}
	if st.Grid.LiveCount() == 0 {
		status = "Extinct"
	}

	fmt.Fprintln(s.out, s.renderer.Status(st.Grid, st.StepsRemaining.String(), st.Playing))
	fmt.Fprintf(s.out, "Gen: %d | Status: %s | Performance: %.1f gen/sec | Avg Pop: %.1f\n",
		s.stats.TotalGenerations, status, s.stats.GenerationsPerSecond, s.stats.AveragePopulation)
	fmt.Fprintln(s.out)
}

func (s *session) draw(st playback.State) {
	if err := s.renderer.Clear(s.out); err != nil {
		fmt.Fprintln(s.out, "Error clearing terminal:", err)
	}
	s.displayGameStatus(st)
	if err := s.renderer.Display(s.out, st.Grid); err != nil {
		fmt.Fprintln(s.out, "Error rendering grid:", err)
	}
}

// runHeadless plays the configured number of steps, redrawing the terminal
// on every change, until playback ends or ctx is cancelled
func runHeadless(ctx context.Context, ctrl *playback.Controller, config utils.Config) {
	sess := newSession(os.Stdout, config, time.Now())

	ctrl.StartGameOfLife()
	for {
		st, _, changed := ctrl.States().Watch()
		sess.observe(st, time.Now())
		sess.draw(st)

		if !st.Playing {
			fmt.Printf("\n🏁 Playback finished after %d generations in %.1f seconds\n",
				sess.stats.TotalGenerations, sess.stats.Runtime(time.Now()).Seconds())
			return
		}

		select {
		case <-changed:
		case <-ctx.Done():
			ctrl.StopGameOfLife()
			fmt.Println("\n🛑 Shutting down gracefully...")
			fmt.Printf("Final stats: %d generations in %.1f seconds\n",
				sess.stats.TotalGenerations, sess.stats.Runtime(time.Now()).Seconds())
			fmt.Printf("Average: %.1f gen/sec, %.1f avg population\n",
				sess.stats.GenerationsPerSecond, sess.stats.AveragePopulation)
			return
		}
	}
}
