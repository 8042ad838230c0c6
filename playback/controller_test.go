package playback

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sheikhrachel/gol-playback/model"
	"github.com/sheikhrachel/gol-playback/observable"
)

const stepDuration = 100 * time.Millisecond

func newTestController(t *testing.T, steps int) (*Controller, clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	c := NewController(Options{
		StepsRemaining: steps,
		StepDuration:   stepDuration,
		Workers:        2,
		Seed:           1,
		Clock:          clock,
	})
	t.Cleanup(c.Close)
	return c, clock
}

// seedPeriodicCells sets up
//
//	. # .
//	# . #
//	. . .
//
// which becomes a vertical pair after one generation and dies after two
func seedPeriodicCells(c *Controller) {
	c.InitialiseCells(Some(3), Some(3))
	c.UpdateCell(0, 1)
	c.UpdateCell(1, 0)
	c.UpdateCell(1, 2)
}

var (
	seededCells = [][]bool{
		{false, true, false},
		{true, false, true},
		{false, false, false},
	}
	secondGeneration = [][]bool{
		{false, true, false},
		{false, true, false},
		{false, false, false},
	}
	deadCells = [][]bool{
		{false, false, false},
		{false, false, false},
		{false, false, false},
	}
)

func waitFor[T any](t *testing.T, v *observable.Value[T], pred func(T) bool) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := observable.WaitFor(ctx, v, pred)
	if err != nil {
		t.Fatalf("value never matched, last seen %+v", got)
	}
	return got
}

func stepsEqual(n int) func(Optional[int]) bool {
	return func(o Optional[int]) bool { return o == Some(n) }
}

func assertGrid(t *testing.T, c *Controller, want [][]bool) {
	t.Helper()
	if got := c.Cells().Load().Get(); !reflect.DeepEqual(got, want) {
		t.Fatalf("cells = %v, want %v", got, want)
	}
}

func assertSteps(t *testing.T, c *Controller, want Optional[int]) {
	t.Helper()
	if got := c.StepsRemaining().Load(); got != want {
		t.Fatalf("steps remaining = %+v, want %+v", got, want)
	}
}

func TestNewController(t *testing.T) {
	c := NewController(DefaultOptions)
	defer c.Close()

	s := c.State()
	if s.Grid.TotalCells() != 0 {
		t.Fatalf("default grid has %d cells", s.Grid.TotalCells())
	}
	if s.StepsRemaining != Some(DefStepsRemaining) || s.InitialStepsRemaining != DefStepsRemaining {
		t.Fatalf("steps = %+v, initial %d", s.StepsRemaining, s.InitialStepsRemaining)
	}
	if s.StepDuration != Some(DefStepDuration) {
		t.Fatalf("step duration = %+v", s.StepDuration)
	}
	if s.Playing || c.IsPlaying().Load() {
		t.Fatal("new controller must not be playing")
	}
}

func TestInitialiseCells(t *testing.T) {
	c, _ := newTestController(t, 1)

	c.InitialiseCells(Some(1), Some(2))

	assertGrid(t, c, [][]bool{{false, false}})
	if c.Rows().Load() != Some(1) || c.Columns().Load() != Some(2) {
		t.Fatalf("rows = %+v, columns = %+v", c.Rows().Load(), c.Columns().Load())
	}
}

func TestInitialiseCellsIgnoresInvalidDimensions(t *testing.T) {
	c, _ := newTestController(t, 1)
	c.InitialiseCells(Some(1), Some(2))

	c.InitialiseCells(None[int](), Some(4))
	c.InitialiseCells(Some(4), None[int]())
	c.InitialiseCells(Some(-1), Some(4))

	assertGrid(t, c, [][]bool{{false, false}})
	if c.Rows().Load() != Some(1) || c.Columns().Load() != Some(2) {
		t.Fatalf("rows = %+v, columns = %+v", c.Rows().Load(), c.Columns().Load())
	}
}

func TestApplyDimensions(t *testing.T) {
	c, _ := newTestController(t, 1)
	c.UpdateRows("2")
	c.UpdateColumns("3")

	c.ApplyDimensions()

	if g := c.Cells().Load(); g.Rows() != 2 || g.Columns() != 3 {
		t.Fatalf("grid is %dx%d, want 2x3", g.Rows(), g.Columns())
	}

	c.UpdateRows("fake")
	c.ApplyDimensions()
	if g := c.Cells().Load(); g.Rows() != 2 || g.Columns() != 3 {
		t.Fatalf("unset rows changed the grid to %dx%d", g.Rows(), g.Columns())
	}
}

func TestUpdateCell(t *testing.T) {
	c, _ := newTestController(t, 1)
	c.InitialiseCells(Some(1), Some(2))

	c.UpdateCell(0, 0)
	assertGrid(t, c, [][]bool{{true, false}})

	c.UpdateCell(0, 0)
	assertGrid(t, c, [][]bool{{false, false}})

	c.UpdateCell(5, 5)
	assertGrid(t, c, [][]bool{{false, false}})
}

func TestClearCells(t *testing.T) {
	c, _ := newTestController(t, 1)
	c.InitialiseCells(Some(1), Some(2))
	c.UpdateCell(0, 0)

	c.ClearCells()

	assertGrid(t, c, [][]bool{{false, false}})
}

func TestClearCellsWithoutDimensionsDoesNothing(t *testing.T) {
	c, _ := newTestController(t, 1)
	c.InitialiseCells(Some(1), Some(2))
	c.UpdateCell(0, 1)
	c.UpdateColumns("fake")

	c.ClearCells()

	assertGrid(t, c, [][]bool{{false, true}})
}

func TestClearCellsResetsStepsRemaining(t *testing.T) {
	c, clock := newTestController(t, 2)
	c.InitialiseCells(Some(2), Some(2))
	c.UpdateCell(0, 0)
	c.UpdateCell(0, 1)
	c.UpdateCell(1, 0)

	c.StartGameOfLife()
	clock.BlockUntil(1)
	clock.Advance(101 * time.Millisecond)
	waitFor(t, c.StepsRemaining(), stepsEqual(1))
	c.PauseGameOfLife()

	c.ClearCells()

	assertSteps(t, c, Some(2))
	assertGrid(t, c, [][]bool{{false, false}, {false, false}})
}

func TestUpdateDimensions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Optional[int]
	}{
		{"unparsable unsets", "fake", None[int]()},
		{"empty unsets", "", None[int]()},
		{"negative keeps previous", "-3", Some(1)},
		{"above maximum keeps previous", "100", Some(1)},
		{"maximum accepted", "99", Some(99)},
		{"zero accepted", "0", Some(0)},
		{"value accepted", "3", Some(3)},
		{"surrounding spaces accepted", " 7 ", Some(7)},
	}

	for _, tt := range tests {
		t.Run("rows "+tt.name, func(t *testing.T) {
			c, _ := newTestController(t, 1)
			c.InitialiseCells(Some(1), Some(1))
			c.UpdateRows(tt.input)
			if got := c.Rows().Load(); got != tt.want {
				t.Fatalf("UpdateRows(%q) -> %+v, want %+v", tt.input, got, tt.want)
			}
		})
		t.Run("columns "+tt.name, func(t *testing.T) {
			c, _ := newTestController(t, 1)
			c.InitialiseCells(Some(1), Some(1))
			c.UpdateColumns(tt.input)
			if got := c.Columns().Load(); got != tt.want {
				t.Fatalf("UpdateColumns(%q) -> %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestUpdateStepDuration(t *testing.T) {
	tests := []struct {
		input string
		want  Optional[time.Duration]
	}{
		{"fake", None[time.Duration]()},
		{"-123", Some(stepDuration)},
		{"2", Some(2 * time.Millisecond)},
		{"0", Some(time.Duration(0))},
		{"100000", Some(100 * time.Second)},
	}

	for _, tt := range tests {
		c, _ := newTestController(t, 1)
		c.UpdateStepDuration(tt.input)
		if got := c.StepDuration().Load(); got != tt.want {
			t.Fatalf("UpdateStepDuration(%q) -> %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestUpdateStepsRemaining(t *testing.T) {
	tests := []struct {
		input   string
		want    Optional[int]
		initial int
	}{
		{"fake", None[int](), 1},
		{"-2", Some(1), 1},
		{"2", Some(2), 2},
		{"123456", Some(123456), 123456},
	}

	for _, tt := range tests {
		c, _ := newTestController(t, 1)
		c.UpdateStepsRemaining(tt.input)
		s := c.State()
		if s.StepsRemaining != tt.want || s.InitialStepsRemaining != tt.initial {
			t.Fatalf("UpdateStepsRemaining(%q) -> %+v initial %d, want %+v initial %d",
				tt.input, s.StepsRemaining, s.InitialStepsRemaining, tt.want, tt.initial)
		}
	}
}

func TestUpdatedStepsAreRestoredWhenPlaybackEnds(t *testing.T) {
	c, _ := newTestController(t, 1)
	c.UpdateStepsRemaining("2")

	// no live cells, so playback ends at once
	c.StartGameOfLife()

	waitFor(t, c.IsPlaying(), func(p bool) bool { return !p })
	assertSteps(t, c, Some(2))
}

func TestStartGameOfLife(t *testing.T) {
	c, clock := newTestController(t, 2)
	seedPeriodicCells(c)

	c.StartGameOfLife()

	if !c.IsPlaying().Load() {
		t.Fatal("StartGameOfLife must set is-playing")
	}

	clock.BlockUntil(1)
	clock.Advance(101 * time.Millisecond)
	waitFor(t, c.StepsRemaining(), stepsEqual(1))
	assertGrid(t, c, secondGeneration)

	clock.BlockUntil(1)
	clock.Advance(100 * time.Millisecond)
	waitFor(t, c.IsPlaying(), func(p bool) bool { return !p })
	assertGrid(t, c, deadCells)
	assertSteps(t, c, Some(2))

	clock.Advance(100 * time.Millisecond)
	assertSteps(t, c, Some(2))
}

func TestPlaybackEndsWhenStepsRunOut(t *testing.T) {
	c, clock := newTestController(t, 3)
	c.InitialiseCells(Some(4), Some(4))
	c.PlacePattern(model.Block, 1, 1)
	block := c.Cells().Load()

	c.StartGameOfLife()
	for remaining := 2; remaining >= 1; remaining-- {
		clock.BlockUntil(1)
		clock.Advance(stepDuration)
		waitFor(t, c.StepsRemaining(), stepsEqual(remaining))
	}
	clock.BlockUntil(1)
	clock.Advance(stepDuration)

	waitFor(t, c.IsPlaying(), func(p bool) bool { return !p })
	assertSteps(t, c, Some(3))
	if !c.Cells().Load().Equal(block) {
		t.Fatalf("block changed:\n%s", c.Cells().Load())
	}
}

func TestPauseGameOfLife(t *testing.T) {
	c, clock := newTestController(t, 2)
	seedPeriodicCells(c)
	c.StartGameOfLife()
	clock.BlockUntil(1)
	clock.Advance(101 * time.Millisecond)
	waitFor(t, c.StepsRemaining(), stepsEqual(1))

	c.PauseGameOfLife()

	if c.IsPlaying().Load() {
		t.Fatal("PauseGameOfLife must clear is-playing")
	}

	clock.Advance(100 * time.Millisecond)

	assertSteps(t, c, Some(1))
	assertGrid(t, c, secondGeneration)
}

func TestContinueGameOfLife(t *testing.T) {
	c, clock := newTestController(t, 2)
	seedPeriodicCells(c)
	c.StartGameOfLife()
	clock.BlockUntil(1)
	c.PauseGameOfLife()

	c.ContinueGameOfLife()

	if !c.IsPlaying().Load() {
		t.Fatal("ContinueGameOfLife must set is-playing")
	}

	clock.BlockUntil(1)
	clock.Advance(101 * time.Millisecond)
	waitFor(t, c.StepsRemaining(), stepsEqual(1))
	assertGrid(t, c, secondGeneration)
}

func TestStopGameOfLife(t *testing.T) {
	c, clock := newTestController(t, 2)
	seedPeriodicCells(c)
	c.StartGameOfLife()
	clock.BlockUntil(1)

	c.StopGameOfLife()

	assertSteps(t, c, Some(0))
	assertGrid(t, c, seededCells)
	if c.IsPlaying().Load() {
		t.Fatal("StopGameOfLife must clear is-playing")
	}

	clock.Advance(101 * time.Millisecond)

	assertGrid(t, c, seededCells)
	assertSteps(t, c, Some(0))
}

func TestContinueAfterStopRestoresSteps(t *testing.T) {
	c, _ := newTestController(t, 2)
	seedPeriodicCells(c)
	c.StopGameOfLife()

	c.ContinueGameOfLife()

	waitFor(t, c.IsPlaying(), func(p bool) bool { return !p })
	assertSteps(t, c, Some(2))
	assertGrid(t, c, seededCells)
}

func TestRestartKeepsSingleTask(t *testing.T) {
	c, clock := newTestController(t, 5)
	seedPeriodicCells(c)
	c.StartGameOfLife()
	clock.BlockUntil(1)

	c.StartGameOfLife()
	clock.BlockUntil(1)
	clock.Advance(101 * time.Millisecond)

	waitFor(t, c.StepsRemaining(), stepsEqual(4))
	assertGrid(t, c, secondGeneration)
	if !c.IsPlaying().Load() {
		t.Fatal("restarted playback must still be playing")
	}
}

func TestStartWithUnsetInputsDoesNothing(t *testing.T) {
	c, _ := newTestController(t, 2)
	seedPeriodicCells(c)

	c.UpdateStepsRemaining("fake")
	c.StartGameOfLife()
	if c.IsPlaying().Load() {
		t.Fatal("playback started without a step counter")
	}

	c.UpdateStepsRemaining("2")
	c.UpdateStepDuration("fake")
	c.StartGameOfLife()
	if c.IsPlaying().Load() {
		t.Fatal("playback started without a step duration")
	}
	assertGrid(t, c, seededCells)
}

func TestStatesPublishWholeGenerations(t *testing.T) {
	c, clock := newTestController(t, 2)
	seedPeriodicCells(c)
	c.StartGameOfLife()

	clock.BlockUntil(1)
	clock.Advance(stepDuration)
	s := waitFor(t, c.States(), func(s State) bool { return s.StepsRemaining == Some(1) })
	if !reflect.DeepEqual(s.Grid.Get(), secondGeneration) {
		t.Fatalf("state with one step left holds\n%s", s.Grid)
	}
	if !s.Playing {
		t.Fatal("state mid-playback must be playing")
	}

	clock.BlockUntil(1)
	clock.Advance(stepDuration)
	s = waitFor(t, c.States(), func(s State) bool { return !s.Playing })
	if s.StepsRemaining != Some(2) || s.Grid.LiveCount() != 0 {
		t.Fatalf("final state steps=%+v live=%d", s.StepsRemaining, s.Grid.LiveCount())
	}
}

func TestStepOnce(t *testing.T) {
	c, clock := newTestController(t, 2)
	seedPeriodicCells(c)

	c.StepOnce()
	assertGrid(t, c, secondGeneration)
	assertSteps(t, c, Some(2))

	c.InitialiseCells(Some(3), Some(3))
	c.PlacePattern(model.Blinker, 1, 0)
	c.StartGameOfLife()
	clock.BlockUntil(1)
	before := c.Cells().Load()
	c.StepOnce()
	if !c.Cells().Load().Equal(before) {
		t.Fatal("StepOnce must not advance while playing")
	}
}

func TestRandomiseCells(t *testing.T) {
	a, _ := newTestController(t, 1)
	b, _ := newTestController(t, 1)
	for _, c := range []*Controller{a, b} {
		c.InitialiseCells(Some(10), Some(12))
		c.RandomiseCells(0.4)
	}

	ga, gb := a.Cells().Load(), b.Cells().Load()
	if !ga.Equal(gb) {
		t.Fatal("controllers with the same seed must randomise alike")
	}
	if ga.Rows() != 10 || ga.Columns() != 12 || ga.LiveCount() == 0 {
		t.Fatalf("randomised grid %dx%d with %d live cells", ga.Rows(), ga.Columns(), ga.LiveCount())
	}
}
