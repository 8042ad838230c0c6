package model

import (
	"crypto/md5"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/gol-playback/rules"
)

// Grid is a rows x columns snapshot of cell liveness.
//
// A Grid is never modified after it is built: every transformation returns a
// new Grid and leaves the receiver valid for anyone still holding it. The zero
// value is the empty 0x0 grid.
type Grid struct {
	rows    int
	columns int
	cells   [][]bool
	numLive int // always equal to the number of true cells
}

// MakeGrid returns an all-dead grid with the given dimensions.
// If either dimension is zero the empty grid is returned.
func MakeGrid(rows, columns int) Grid {
	if rows <= 0 || columns <= 0 {
		return Grid{}
	}
	return Grid{
		rows:    rows,
		columns: columns,
		cells:   newCells(rows, columns),
	}
}

// newCells allocates the rows over a single backing array
func newCells(rows, columns int) [][]bool {
	backing := make([]bool, rows*columns)
	cells := make([][]bool, rows)
	for i := range cells {
		start := i * columns
		cells[i] = backing[start : start+columns : start+columns]
	}
	return cells
}

// Rows returns the number of rows
func (g Grid) Rows() int {
	return g.rows
}

// Columns returns the number of columns
func (g Grid) Columns() int {
	return g.columns
}

// TotalCells returns rows * columns
func (g Grid) TotalCells() int {
	return g.rows * g.columns
}

// LiveCount returns the cached number of live cells
func (g Grid) LiveCount() int {
	return g.numLive
}

// Get returns a row-major copy of the cells. Changing the copy does not
// affect the grid.
func (g Grid) Get() [][]bool {
	out := newCells(g.rows, g.columns)
	for row := range g.cells {
		copy(out[row], g.cells[row])
	}
	return out
}

// InBounds reports whether (row, col) addresses a cell of the grid
func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.columns
}

// IsAlive returns the state of a cell, false outside the grid
func (g Grid) IsAlive(row, col int) bool {
	if !g.InBounds(row, col) {
		return false
	}
	return g.cells[row][col]
}

// MakeCellLive returns a grid where (row, col) is alive.
// Coordinates outside the grid return the grid unchanged.
func (g Grid) MakeCellLive(row, col int) Grid {
	return g.setLiveness(row, col, true)
}

// MakeCellDead returns a grid where (row, col) is dead.
// Coordinates outside the grid return the grid unchanged.
func (g Grid) MakeCellDead(row, col int) Grid {
	return g.setLiveness(row, col, false)
}

// ToggleLiveness returns a grid where (row, col) has the opposite state.
// Coordinates outside the grid return the grid unchanged.
func (g Grid) ToggleLiveness(row, col int) Grid {
	if !g.InBounds(row, col) {
		return g
	}
	return g.setLiveness(row, col, !g.cells[row][col])
}

func (g Grid) setLiveness(row, col int, alive bool) Grid {
	if !g.InBounds(row, col) || g.cells[row][col] == alive {
		return g
	}
	next := g.clone()
	next.cells[row][col] = alive
	if alive {
		next.numLive++
	} else {
		next.numLive--
	}
	return next
}

func (g Grid) clone() Grid {
	next := Grid{rows: g.rows, columns: g.columns, numLive: g.numLive}
	next.cells = g.Get()
	return next
}

// LiveNeighbours counts live cells in the Moore neighbourhood of (row, col).
// Neighbours outside the grid are ignored; there is no wrap-around.
func (g Grid) LiveNeighbours(row, col int) int {
	count := 0

	// Clamp the neighbourhood to the grid once instead of checking every cell
	minRow := max(0, row-1)
	maxRow := min(g.rows-1, row+1)
	minCol := max(0, col-1)
	maxCol := min(g.columns-1, col+1)

	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			if r == row && c == col {
				continue
			}
			if g.cells[r][c] {
				count++
			}
		}
	}

	return count
}

// NextGeneration computes the next generation using one row band per CPU
func (g Grid) NextGeneration() Grid {
	return g.NextGenerationParallel(runtime.NumCPU())
}

// NextGenerationParallel computes the next generation by splitting the rows
// into bands evaluated concurrently. The receiver is only read.
// A non-positive worker count means runtime.NumCPU().
func (g Grid) NextGenerationParallel(workers int) Grid {
	next := MakeGrid(g.rows, g.columns)
	if next.TotalCells() == 0 {
		return next
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		eg            errgroup.Group
		rowsPerWorker = (g.rows + workers - 1) / workers // Ceiling division
		liveInBand    = make([]int, workers)
	)

	for i := 0; i < workers; i++ {
		i := i // per-iteration copy (Go <1.22 loop semantics)
		var (
			startRow = i * rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, g.rows)
		)
		if startRow >= g.rows {
			break
		}

		eg.Go(func() error {
			for row := startRow; row < endRow; row++ {
				for col := 0; col < g.columns; col++ {
					if rules.ApplyConwayRules(g.LiveNeighbours(row, col), g.cells[row][col]) {
						next.cells[row][col] = true
						liveInBand[i]++
					}
				}
			}
			return nil
		})
	}

	// bands never return an error
	_ = eg.Wait()

	for _, n := range liveInBand {
		next.numLive += n
	}
	return next
}

// Equal reports whether both grids have the same dimensions and cells
func (g Grid) Equal(other Grid) bool {
	if g.rows != other.rows || g.columns != other.columns || g.numLive != other.numLive {
		return false
	}
	for row := range g.cells {
		for col := range g.cells[row] {
			if g.cells[row][col] != other.cells[row][col] {
				return false
			}
		}
	}
	return true
}

// Hash returns an MD5 digest of the dimensions and cell states
func (g Grid) Hash() string {
	h := md5.New()
	fmt.Fprintf(h, "%dx%d:", g.rows, g.columns)
	for row := range g.cells {
		for col := range g.cells[row] {
			if g.cells[row][col] {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// String renders live cells as '#' and dead cells as '.', one line per row
func (g Grid) String() string {
	var b strings.Builder
	for row := range g.cells {
		if row > 0 {
			b.WriteByte('\n')
		}
		for _, alive := range g.cells[row] {
			if alive {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}
