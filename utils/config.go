package utils

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/gol-playback/model"
	"github.com/sheikhrachel/gol-playback/playback"
)

const (
	PatternNone   = "none"
	PatternRandom = "random"
)

// Config holds the configuration for a playback session
type Config struct {
	Rows           int           `json:"rows"`
	Columns        int           `json:"columns"`
	StepDuration   time.Duration `json:"step_duration"`
	StepsRemaining int           `json:"steps_remaining"`
	Pattern        string        `json:"pattern"`
	RandomDensity  float64       `json:"random_density"`
	Seed           int64         `json:"seed"`
	Workers        int           `json:"workers"`
	Interactive    bool          `json:"interactive"`
	Colors         bool          `json:"colors"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Rows:           30,
		Columns:        60,
		StepDuration:   150 * time.Millisecond,
		StepsRemaining: 1000,
		Pattern:        PatternRandom,
		RandomDensity:  0.15,
		Interactive:    false,
		Colors:         true,
	}
}

// LoadConfig loads configuration from JSON file, on top of the defaults
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	if err = config.Validate(); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] invalid configuration in file: %+v", filename)
	}

	return config, nil
}

// Validate checks the values a controller cannot accept
func (c Config) Validate() error {
	if c.Rows < 0 || c.Rows > playback.MaxDimension {
		return errors.Errorf("rows must be within [0, %d], got %d", playback.MaxDimension, c.Rows)
	}
	if c.Columns < 0 || c.Columns > playback.MaxDimension {
		return errors.Errorf("columns must be within [0, %d], got %d", playback.MaxDimension, c.Columns)
	}
	if c.StepDuration < 0 {
		return errors.Errorf("step_duration must not be negative, got %v", c.StepDuration)
	}
	if c.StepsRemaining < 0 {
		return errors.Errorf("steps_remaining must not be negative, got %d", c.StepsRemaining)
	}
	if c.RandomDensity < 0 || c.RandomDensity > 1 {
		return errors.Errorf("random_density must be within [0, 1], got %v", c.RandomDensity)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	switch c.Pattern {
	case PatternNone, PatternRandom:
	default:
		if _, ok := model.LookupPattern(c.Pattern); !ok {
			return errors.Errorf("unknown pattern %q", c.Pattern)
		}
	}
	return nil
}

// PlaybackOptions converts the configuration into controller options
func (c Config) PlaybackOptions() playback.Options {
	return playback.Options{
		Rows:           c.Rows,
		Columns:        c.Columns,
		StepsRemaining: c.StepsRemaining,
		StepDuration:   c.StepDuration,
		Workers:        c.Workers,
		Seed:           c.Seed,
	}
}
