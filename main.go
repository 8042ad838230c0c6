package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/integrii/flaggy"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/gol-playback/model"
	"github.com/sheikhrachel/gol-playback/utils"
	"github.com/sheikhrachel/gol-playback/view"
)

const defaultConfigPath = "config.json"

// flagOverrides holds command line values; the sentinels mean "not given"
type flagOverrides struct {
	configPath  string
	rows        int
	columns     int
	interval    time.Duration
	steps       int
	pattern     string
	density     float64
	seed        int64
	interactive bool
	noColor     bool
}

func parseFlags() *flagOverrides {
	o := &flagOverrides{
		configPath: defaultConfigPath,
		rows:       -1,
		columns:    -1,
		interval:   -1,
		steps:      -1,
		density:    -1,
	}
	patterns := append([]string{utils.PatternNone, utils.PatternRandom}, model.PatternNames()...)

	flaggy.SetName("gol-playback")
	flaggy.SetDescription("Conway's Game of Life with play, pause, continue and stop")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&o.configPath, "c", "config", "Path to a JSON configuration file")
	flaggy.Int(&o.rows, "r", "rows", "Number of rows (0-99)")
	flaggy.Int(&o.columns, "k", "columns", "Number of columns (0-99)")
	flaggy.Duration(&o.interval, "i", "interval", "Wait between generations, for example 150ms")
	flaggy.Int(&o.steps, "s", "steps", "Number of generations to play")
	flaggy.String(&o.pattern, "p", "pattern", "Seed pattern ["+strings.Join(patterns, "|")+"]")
	flaggy.Float64(&o.density, "d", "density", "Live cell probability for the random pattern")
	flaggy.Int64(&o.seed, "e", "seed", "Random seed, 0 picks one from the clock")
	flaggy.Bool(&o.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&o.noColor, "m", "monochrome", "Disable colors")
	flaggy.Parse()

	return o
}

// apply overrides the values given on the command line
func (o *flagOverrides) apply(config *utils.Config) {
	if o.rows >= 0 {
		config.Rows = o.rows
	}
	if o.columns >= 0 {
		config.Columns = o.columns
	}
	if o.interval >= 0 {
		config.StepDuration = o.interval
	}
	if o.steps >= 0 {
		config.StepsRemaining = o.steps
	}
	if o.pattern != "" {
		config.Pattern = o.pattern
	}
	if o.density >= 0 {
		config.RandomDensity = o.density
	}
	if o.seed != 0 {
		config.Seed = o.seed
	}
	if o.interactive {
		config.Interactive = true
	}
	if o.noColor {
		config.Colors = false
	}
}

func main() {
	overrides := parseFlags()

	// Load configuration - fallback to defaults if file doesn't exist
	config, err := utils.LoadConfig(overrides.configPath)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			log.Fatalf("%+v", err)
		}
		fmt.Printf("Using default configuration (%s not found)\n", overrides.configPath)
		config = utils.DefaultConfig()
	}
	overrides.apply(&config)
	if err = config.Validate(); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}

	ctrl := initializeGame(config)
	defer ctrl.Close()

	if config.Interactive {
		console, err := view.NewConsole(ctrl, config.RandomDensity)
		if err != nil {
			log.Fatalf("failed to start the terminal UI: %v", err)
		}
		if err = console.Run(); err != nil {
			log.Fatalf("terminal UI stopped: %v", err)
		}
		return
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	displayGameInfo(config, ctrl.State().Grid)
	runHeadless(ctx, ctrl, config)
}
