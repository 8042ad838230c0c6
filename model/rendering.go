package model

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"

	"github.com/logrusorgru/aurora"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "

	macosClearCmd = "clear"
)

// TerminalRenderer draws grids as text, two characters per cell
type TerminalRenderer struct {
	au aurora.Aurora
}

// NewTerminalRenderer returns a renderer, coloring live cells when colors is set
func NewTerminalRenderer(colors bool) *TerminalRenderer {
	return &TerminalRenderer{au: aurora.NewAurora(colors)}
}

// Display renders the grid to w
func (r *TerminalRenderer) Display(w io.Writer, g Grid) error {
	bw := bufio.NewWriter(w)
	live := r.au.Green(gridPosBlock).String()
	for row := range g.cells {
		for _, alive := range g.cells[row] {
			if alive {
				bw.WriteString(live)
			} else {
				bw.WriteString(gridPosEmpty)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Status renders a one-line summary of a grid
func (r *TerminalRenderer) Status(g Grid, stepsRemaining string, playing bool) string {
	mode := r.au.Red("stopped").String()
	if playing {
		mode = r.au.Cyan("running").String()
	}
	return fmt.Sprintf("%s %dx%d | %s %d | %s %s | %s",
		r.au.Green("Grid:"), g.Rows(), g.Columns(),
		r.au.Green("Living:"), g.LiveCount(),
		r.au.Green("Steps left:"), stepsRemaining,
		mode,
	)
}

// Clear clears the terminal screen
func (r *TerminalRenderer) Clear(w io.Writer) error {
	cmd := exec.Command(macosClearCmd)
	cmd.Stdout = w
	return cmd.Run()
}
