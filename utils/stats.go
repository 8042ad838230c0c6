package utils

import "time"

// Stats for performance monitoring
type Stats struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	TotalGenerations     int
	StartTime            time.Time
	StagnantGenerations  int
}

func NewStats(now time.Time) *Stats {
	return &Stats{StartTime: now}
}

// Update records one generation that took duration to arrive
func (s *Stats) Update(population int, stagnant bool, duration time.Duration) {
	s.TotalGenerations++
	if duration > 0 {
		s.GenerationsPerSecond = 1.0 / duration.Seconds()
	}
	if stagnant {
		s.StagnantGenerations++
	} else {
		s.StagnantGenerations = 0
	}

	// Simple moving average for population
	if s.TotalGenerations == 1 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}
}

// Runtime returns how long the session has been running at now
func (s *Stats) Runtime(now time.Time) time.Duration {
	return now.Sub(s.StartTime)
}
