package model

import (
	"math/rand"
	"sort"
)

// Pattern is a named set of live cells given as (row, col) offsets from the
// pattern's top-left corner
type Pattern struct {
	Name  string
	Cells [][2]int
}

var (
	// Glider travels one cell down and right every four generations
	Glider = Pattern{
		Name:  "glider",
		Cells: [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}},
	}
	// Blinker is a period-2 oscillator, horizontal phase
	Blinker = Pattern{
		Name:  "blinker",
		Cells: [][2]int{{0, 0}, {0, 1}, {0, 2}},
	}
	// Block is a still life
	Block = Pattern{
		Name:  "block",
		Cells: [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	}

	patterns = map[string]Pattern{
		Glider.Name:  Glider,
		Blinker.Name: Blinker,
		Block.Name:   Block,
	}
)

// LookupPattern returns the built-in pattern with the given name
func LookupPattern(name string) (Pattern, bool) {
	p, ok := patterns[name]
	return p, ok
}

// PatternNames returns the built-in pattern names in sorted order
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Place returns a grid with the pattern's cells made live, anchored at
// (row, col). Cells falling outside the grid are dropped.
func (g Grid) Place(p Pattern, row, col int) Grid {
	next := g.clone()
	for _, offset := range p.Cells {
		r, c := row+offset[0], col+offset[1]
		if !next.InBounds(r, c) || next.cells[r][c] {
			continue
		}
		next.cells[r][c] = true
		next.numLive++
	}
	return next
}

// Randomized returns a grid of the same size where each cell is alive with
// the given probability
func (g Grid) Randomized(rng *rand.Rand, density float64) Grid {
	next := MakeGrid(g.rows, g.columns)
	for row := range next.cells {
		for col := range next.cells[row] {
			if rng.Float64() < density {
				next.cells[row][col] = true
				next.numLive++
			}
		}
	}
	return next
}
