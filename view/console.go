package view

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"github.com/sheikhrachel/gol-playback/model"
	"github.com/sheikhrachel/gol-playback/playback"
)

const (
	viewHeader        = "header"
	viewConfiguration = "configuration"
	viewStatus        = "status"
	viewField         = "field"
	viewHelp          = "help"

	leftColumnWidth = 28
	minWindowHeight = 20

	// each cell is drawn two characters wide
	cellWidth = 2
)

type keyBinding struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

// Console is an interactive terminal front end for a playback Controller
type Console struct {
	ctrl     *playback.Controller
	g        *gocui.Gui
	k        []keyBinding
	renderer *model.TerminalRenderer
	density  float64
}

// NewConsole builds the terminal UI. Run must be called to show it.
func NewConsole(ctrl *playback.Controller, density float64) (*Console, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}
	g.Mouse = true

	c := &Console{
		ctrl:     ctrl,
		g:        g,
		renderer: model.NewTerminalRenderer(true),
		density:  density,
	}
	c.k = []keyBinding{
		{gocui.KeyCtrlC, "^C", "Exit", c.cmdQuit, ""},
		{'p', "P", "Play", c.cmdPlay, ""},
		{gocui.KeySpace, "SPACE", "Pause", c.cmdPause, ""},
		{'s', "S", "Stop", c.cmdStop, ""},
		{'n', "N", "Next step", c.cmdStep, ""},
		{'c', "C", "Clear", c.cmdClear, ""},
		{'w', "W", "Randomise", c.cmdRandomise, ""},
		{gocui.MouseLeft, "MOUSE", "Toggle cell", c.cmdToggle, viewField},
	}
	g.SetManagerFunc(c.layout)

	for _, kb := range c.k {
		h := kb.handler
		if err = g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(_ *gocui.Gui, v *gocui.View) error { return h(v) }); err != nil {
			g.Close()
			return nil, err
		}
	}
	return c, nil
}

// Run shows the UI until the user quits
func (c *Console) Run() error {
	defer c.g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.refreshLoop(ctx)

	if err := c.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

// refreshLoop redraws on every published state
func (c *Console) refreshLoop(ctx context.Context) {
	for s := range c.ctrl.States().Subscribe(ctx) {
		c.g.Update(func(g *gocui.Gui) error {
			c.render(g, s)
			return nil
		})
	}
}

func (c *Console) render(g *gocui.Gui, s playback.State) {
	if v, err := g.View(viewField); err == nil {
		v.Clear()
		_ = c.renderer.Display(v, s.Grid)
	}
	if v, err := g.View(viewConfiguration); err == nil {
		v.Clear()
		for _, line := range configurationLines(s) {
			_, _ = fmt.Fprintln(v, line)
		}
	}
	if v, err := g.View(viewStatus); err == nil {
		v.Clear()
		for _, line := range statusLines(s) {
			_, _ = fmt.Fprintln(v, line)
		}
	}
}

func renderProp(name string, valueFormat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueFormat, values...)
}

func orUnset(s string) string {
	if s == "" {
		return "unset"
	}
	return s
}

func configurationLines(s playback.State) []string {
	return []string{
		renderProp("Dimension", "%v x %v", orUnset(s.Rows.String()), orUnset(s.Columns.String())),
		renderProp("Interval", "%v", orUnset(s.StepDuration.String())),
		renderProp("Steps", "%v", s.InitialStepsRemaining),
	}
}

func statusLines(s playback.State) []string {
	mode := aurora.Colorize("waiting", aurora.BlueFg).String()
	if s.Playing {
		mode = aurora.Colorize("running", aurora.CyanFg).String()
	}
	return []string{
		renderProp("Steps left", "%v", orUnset(s.StepsRemaining.String())),
		renderProp("Live cells", "%v", s.Grid.LiveCount()),
		renderProp("Mode", "%v", mode),
	}
}

// cellAt maps a cursor position inside the field view to grid coordinates
func cellAt(cx, cy int) (row, col int) {
	return cy, cx / cellWidth
}

func (c *Console) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if maxY < minWindowHeight {
		if err := c.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			return err
		}
		_ = g.DeleteView(viewConfiguration)
		_ = g.DeleteView(viewStatus)
		_ = g.DeleteView(viewField)
		return nil
	}
	if err := c.headerLayout(g, 3, "Game of Life playback"); err != nil {
		return err
	}

	created := false
	if v, err := g.SetView(viewConfiguration, 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Configuration"
		created = true
	}
	if v, err := g.SetView(viewStatus, 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
		created = true
	}
	if v, err := g.SetView(viewField, leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Cells"
		created = true
	}
	if created {
		c.render(g, c.ctrl.State())
	}

	if v, err := g.SetView(viewHelp, -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
		var b bytes.Buffer
		b.WriteString("KEYBINDINGS: ")
		for i, k := range c.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}
	return nil
}

func (c *Console) headerLayout(g *gocui.Gui, height int, text string) error {
	maxX, _ := g.Size()
	v, err := g.SetView(viewHeader, -1, -1, maxX+1, height)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Frame = false
	v.BgColor = gocui.ColorCyan
	v.FgColor = gocui.ColorBlack
	v.Clear()
	pad := max(maxX-len(text), 0) / 2
	_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2)+strings.Repeat(" ", pad)+text)
	return nil
}

func (c *Console) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (c *Console) cmdPlay(_ *gocui.View) error {
	c.ctrl.ContinueGameOfLife()
	return nil
}

func (c *Console) cmdPause(_ *gocui.View) error {
	c.ctrl.PauseGameOfLife()
	return nil
}

func (c *Console) cmdStop(_ *gocui.View) error {
	c.ctrl.StopGameOfLife()
	return nil
}

func (c *Console) cmdStep(_ *gocui.View) error {
	c.ctrl.StepOnce()
	return nil
}

func (c *Console) cmdClear(_ *gocui.View) error {
	c.ctrl.ClearCells()
	return nil
}

func (c *Console) cmdRandomise(_ *gocui.View) error {
	c.ctrl.RandomiseCells(c.density)
	return nil
}

func (c *Console) cmdToggle(v *gocui.View) error {
	row, col := cellAt(v.Cursor())
	c.ctrl.UpdateCell(row, col)
	return nil
}
