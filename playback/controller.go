// Package playback drives a Game of Life grid through timed generations.
//
// A Controller owns the grid and the step counters. Callers change them only
// through its commands and read them through the published observable values.
// At most one playback task runs at a time, and it is the only writer of the
// grid and step counter while it runs.
package playback

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sheikhrachel/gol-playback/model"
	"github.com/sheikhrachel/gol-playback/observable"
)

const (
	DefStepsRemaining = 10_000
	DefStepDuration   = time.Second
)

// Options configures a Controller
type Options struct {
	Rows           int
	Columns        int
	StepsRemaining int
	StepDuration   time.Duration

	// Workers is the number of row bands per generation, 0 means one per CPU
	Workers int
	// Seed drives RandomiseCells, 0 picks a time based seed
	Seed int64
	// Clock defaults to the real clock
	Clock clockwork.Clock
}

// DefaultOptions starts with an empty grid
var DefaultOptions = Options{
	StepsRemaining: DefStepsRemaining,
	StepDuration:   DefStepDuration,
}

// State is a consistent snapshot of everything a Controller publishes
type State struct {
	Grid                  model.Grid
	Rows                  Optional[int]
	Columns               Optional[int]
	StepsRemaining        Optional[int]
	InitialStepsRemaining int
	StepDuration          Optional[time.Duration]
	Playing               bool
}

// task is the handle of a running playback loop
type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Controller mediates timed progression through generations
type Controller struct {
	clock   clockwork.Clock
	workers int

	// cmdMu serializes the commands that start or end a task
	cmdMu sync.Mutex

	// mu guards everything below
	mu        sync.Mutex
	state     State
	published State
	task      *task
	rng       *rand.Rand

	wg sync.WaitGroup

	cells          *observable.Value[model.Grid]
	rows           *observable.Value[Optional[int]]
	columns        *observable.Value[Optional[int]]
	stepsRemaining *observable.Value[Optional[int]]
	stepDuration   *observable.Value[Optional[time.Duration]]
	playing        *observable.Value[bool]
	states         *observable.Value[State]
}

// NewController creates an idle Controller
func NewController(o Options) *Controller {
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	o.Rows, o.Columns = max(o.Rows, 0), max(o.Columns, 0)
	o.StepsRemaining = max(o.StepsRemaining, 0)
	o.StepDuration = max(o.StepDuration, 0)

	s := State{
		Grid:                  model.MakeGrid(o.Rows, o.Columns),
		Rows:                  Some(o.Rows),
		Columns:               Some(o.Columns),
		StepsRemaining:        Some(o.StepsRemaining),
		InitialStepsRemaining: o.StepsRemaining,
		StepDuration:          Some(o.StepDuration),
	}

	return &Controller{
		clock:          o.Clock,
		workers:        o.Workers,
		state:          s,
		published:      s,
		rng:            rand.New(rand.NewSource(o.Seed)),
		cells:          observable.NewValue(s.Grid),
		rows:           observable.NewValue(s.Rows),
		columns:        observable.NewValue(s.Columns),
		stepsRemaining: observable.NewValue(s.StepsRemaining),
		stepDuration:   observable.NewValue(s.StepDuration),
		playing:        observable.NewValue(s.Playing),
		states:         observable.NewValue(s),
	}
}

// Cells publishes the current grid
func (c *Controller) Cells() *observable.Value[model.Grid] { return c.cells }

// Rows publishes the tracked number of rows
func (c *Controller) Rows() *observable.Value[Optional[int]] { return c.rows }

// Columns publishes the tracked number of columns
func (c *Controller) Columns() *observable.Value[Optional[int]] { return c.columns }

// StepsRemaining publishes the generations left before playback ends
func (c *Controller) StepsRemaining() *observable.Value[Optional[int]] { return c.stepsRemaining }

// StepDuration publishes the wait between generations
func (c *Controller) StepDuration() *observable.Value[Optional[time.Duration]] { return c.stepDuration }

// IsPlaying publishes whether a playback task is running
func (c *Controller) IsPlaying() *observable.Value[bool] { return c.playing }

// States publishes one State per change, never a partial one
func (c *Controller) States() *observable.Value[State] { return c.states }

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// publish stores every field that changed since the last publish, then the
// whole snapshot. Requires mu.
func (c *Controller) publish() {
	s, p := c.state, c.published
	changed := false
	if !s.Grid.Equal(p.Grid) {
		c.cells.Store(s.Grid)
		changed = true
	}
	if s.Rows != p.Rows {
		c.rows.Store(s.Rows)
		changed = true
	}
	if s.Columns != p.Columns {
		c.columns.Store(s.Columns)
		changed = true
	}
	if s.StepsRemaining != p.StepsRemaining {
		c.stepsRemaining.Store(s.StepsRemaining)
		changed = true
	}
	if s.StepDuration != p.StepDuration {
		c.stepDuration.Store(s.StepDuration)
		changed = true
	}
	if s.Playing != p.Playing {
		c.playing.Store(s.Playing)
		changed = true
	}
	if changed || s.InitialStepsRemaining != p.InitialStepsRemaining {
		c.states.Store(s)
	}
	c.published = s
}

// InitialiseCells replaces the grid with an all-dead rows x columns grid.
// Nothing happens when either dimension is unset or negative.
func (c *Controller) InitialiseCells(rows, columns Optional[int]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialiseCells(rows, columns)
}

// ApplyDimensions initialises the grid from the tracked rows and columns
func (c *Controller) ApplyDimensions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialiseCells(c.state.Rows, c.state.Columns)
}

func (c *Controller) initialiseCells(rows, columns Optional[int]) {
	r, okRows := rows.Get()
	col, okColumns := columns.Get()
	if !okRows || !okColumns || r < 0 || col < 0 {
		return
	}
	c.state.Grid = model.MakeGrid(r, col)
	c.state.Rows = Some(r)
	c.state.Columns = Some(col)
	c.publish()
}

// ClearCells kills every cell of a grid sized by the tracked dimensions and
// resets the step counter. Nothing happens when a dimension is unset.
func (c *Controller) ClearCells() {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, okRows := c.state.Rows.Get()
	col, okColumns := c.state.Columns.Get()
	if !okRows || !okColumns {
		return
	}
	c.state.Grid = model.MakeGrid(r, col)
	c.state.StepsRemaining = Some(c.state.InitialStepsRemaining)
	c.publish()
}

// UpdateCell toggles one cell. Coordinates outside the grid are ignored.
func (c *Controller) UpdateCell(row, column int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Grid = c.state.Grid.ToggleLiveness(row, column)
	c.publish()
}

// RandomiseCells replaces the grid with one of the same size where each cell
// is alive with the given probability
func (c *Controller) RandomiseCells(density float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Grid = c.state.Grid.Randomized(c.rng, density)
	c.publish()
}

// PlacePattern makes the pattern's cells live with its corner at (row, column)
func (c *Controller) PlacePattern(p model.Pattern, row, column int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Grid = c.state.Grid.Place(p, row, column)
	c.publish()
}

// UpdateRows sets the tracked rows from text. Unparsable text unsets the
// value, negative values and values above MaxDimension are ignored.
func (c *Controller) UpdateRows(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Rows = applyInput(c.state.Rows, input, parseDimension)
	c.publish()
}

// UpdateColumns sets the tracked columns, see UpdateRows
func (c *Controller) UpdateColumns(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Columns = applyInput(c.state.Columns, input, parseDimension)
	c.publish()
}

// UpdateStepDuration sets the wait between generations from a number of
// milliseconds. Unparsable text unsets the value, negative values are ignored.
func (c *Controller) UpdateStepDuration(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.StepDuration = applyInput(c.state.StepDuration, input, parseStepDuration)
	c.publish()
}

// UpdateStepsRemaining sets the step counter and the value it is reset to.
// Unparsable text unsets the counter, negative values are ignored.
func (c *Controller) UpdateStepsRemaining(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.StepsRemaining = applyInput(c.state.StepsRemaining, input, parseSteps)
	if n, ok := c.state.StepsRemaining.Get(); ok {
		c.state.InitialStepsRemaining = n
	}
	c.publish()
}

func applyInput[T any](current Optional[T], input string, parse func(string) (T, inputOutcome)) Optional[T] {
	v, outcome := parse(input)
	switch outcome {
	case inputAccepted:
		return Some(v)
	case inputUnparsable:
		return None[T]()
	default:
		return current
	}
}

// StartGameOfLife starts a playback task advancing one generation per step
// duration until the step counter reaches zero or no cell is alive. Any
// running task is cancelled and awaited first. Nothing starts while the step
// counter or the step duration is unset.
func (c *Controller) StartGameOfLife() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()
	c.halt()

	c.mu.Lock()
	defer c.mu.Unlock()
	delay, ok := c.state.StepDuration.Get()
	if !ok || !c.state.StepsRemaining.Valid {
		c.state.Playing = false
		c.publish()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}
	c.task = t
	c.state.Playing = true
	c.publish()

	c.wg.Add(1)
	go c.run(ctx, t, delay)
}

// ContinueGameOfLife resumes playback from the current step counter
func (c *Controller) ContinueGameOfLife() {
	c.StartGameOfLife()
}

// PauseGameOfLife cancels playback, keeping the grid and step counter
func (c *Controller) PauseGameOfLife() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()
	c.halt()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Playing = false
	c.publish()
}

// StopGameOfLife cancels playback and zeroes the step counter
func (c *Controller) StopGameOfLife() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()
	c.halt()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.StepsRemaining = Some(0)
	c.state.Playing = false
	c.publish()
}

// StepOnce advances a single generation while not playing. The step counter
// is left alone.
func (c *Controller) StepOnce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.task != nil {
		return
	}
	c.state.Grid = c.state.Grid.NextGenerationParallel(c.workers)
	c.publish()
}

// Close cancels playback and waits for every task to exit
func (c *Controller) Close() {
	c.PauseGameOfLife()
	c.wg.Wait()
}

// halt cancels the running task and waits until it has exited. Requires
// cmdMu, must not hold mu.
func (c *Controller) halt() {
	c.mu.Lock()
	t := c.task
	c.task = nil
	if t != nil {
		t.cancel()
	}
	c.mu.Unlock()

	if t != nil {
		<-t.done
	}
}

// run is the playback loop. A step happens only while ctx is live, checked
// under mu, so a cancelled task never publishes.
func (c *Controller) run(ctx context.Context, t *task, delay time.Duration) {
	defer c.wg.Done()
	defer close(t.done)

	for {
		c.mu.Lock()
		if ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		steps, ok := c.state.StepsRemaining.Get()
		if !ok || steps <= 0 || c.state.Grid.LiveCount() == 0 {
			c.finish(t)
			c.mu.Unlock()
			return
		}
		// an unset duration keeps the last valid one
		delay = c.state.StepDuration.OrElse(delay)
		c.mu.Unlock()

		if !c.sleep(ctx, delay) {
			return
		}

		c.mu.Lock()
		if ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		c.state.Grid = c.state.Grid.NextGenerationParallel(c.workers)
		if n, ok := c.state.StepsRemaining.Get(); ok {
			c.state.StepsRemaining = Some(max(n-1, 0))
		}
		c.publish()
		c.mu.Unlock()
	}
}

// finish ends a task that ran out of steps or live cells. Requires mu.
func (c *Controller) finish(t *task) {
	if c.task != t {
		return
	}
	c.task = nil
	t.cancel()
	c.state.Playing = false
	c.state.StepsRemaining = Some(c.state.InitialStepsRemaining)
	c.publish()
}

// sleep waits for d on the controller clock, false when ctx ends first
func (c *Controller) sleep(ctx context.Context, d time.Duration) bool {
	timer := c.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
