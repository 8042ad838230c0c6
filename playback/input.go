package playback

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxDimension is the largest accepted number of rows or columns
const MaxDimension = 99

// maxStepDurationMs keeps the duration in milliseconds representable as a
// time.Duration
const maxStepDurationMs = math.MaxInt64 / int64(time.Millisecond)

const noUpperBound = -1

// inputOutcome says how a text field update resolves
type inputOutcome int

const (
	// inputAccepted replaces the published value
	inputAccepted inputOutcome = iota
	// inputUnparsable unsets the published value
	inputUnparsable
	// inputRejected keeps the published value
	inputRejected
)

// parseNonNegative parses a base 10 integer in [0, upper]. A negative upper
// means no bound.
func parseNonNegative(input string, upper int64) (int64, inputOutcome) {
	n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0, inputUnparsable
	}
	if n < 0 || (upper >= 0 && n > upper) {
		return 0, inputRejected
	}
	return n, inputAccepted
}

// parseDimension parses a rows or columns field
func parseDimension(input string) (int, inputOutcome) {
	n, outcome := parseNonNegative(input, MaxDimension)
	return int(n), outcome
}

// parseSteps parses a steps-remaining field
func parseSteps(input string) (int, inputOutcome) {
	n, outcome := parseNonNegative(input, noUpperBound)
	if outcome == inputAccepted && n > math.MaxInt {
		return 0, inputRejected
	}
	return int(n), outcome
}

// parseStepDuration parses a step duration given in whole milliseconds
func parseStepDuration(input string) (time.Duration, inputOutcome) {
	n, outcome := parseNonNegative(input, noUpperBound)
	if outcome == inputAccepted && n > maxStepDurationMs {
		return 0, inputRejected
	}
	return time.Duration(n) * time.Millisecond, outcome
}
