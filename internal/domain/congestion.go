package domain

import (
	"fmt"
	"strings"
)

// CongestionLevel is one of five ordered traffic states, FREE being the fastest
type CongestionLevel string

const (
	CongestionFree     CongestionLevel = "FREE"
	CongestionLight    CongestionLevel = "LIGHT"
	CongestionModerate CongestionLevel = "MODERATE"
	CongestionHeavy    CongestionLevel = "HEAVY"
	CongestionSevere   CongestionLevel = "SEVERE"
)

// CongestionLevels lists every level in order of increasing severity
var CongestionLevels = []CongestionLevel{
	CongestionFree,
	CongestionLight,
	CongestionModerate,
	CongestionHeavy,
	CongestionSevere,
}

// Speed thresholds in km/h. A speed must be strictly greater than the threshold.
const (
	freeThreshold     = 60
	lightThreshold    = 45
	moderateThreshold = 30
	heavyThreshold    = 15
)

// Classify maps a speed in km/h to its congestion level
func Classify(speedKmh float64) CongestionLevel {
	switch {
	case speedKmh > freeThreshold:
		return CongestionFree
	case speedKmh > lightThreshold:
		return CongestionLight
	case speedKmh > moderateThreshold:
		return CongestionModerate
	case speedKmh > heavyThreshold:
		return CongestionHeavy
	default:
		return CongestionSevere
	}
}

// Severity returns the ordinal of the level, 0 for FREE through 4 for SEVERE.
// Unknown levels return -1.
func (l CongestionLevel) Severity() int {
	for i, level := range CongestionLevels {
		if level == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is one of the five known levels
func (l CongestionLevel) Valid() bool {
	return l.Severity() >= 0
}

// ParseCongestionLevel parses a level name, case-insensitively
func ParseCongestionLevel(s string) (CongestionLevel, error) {
	level := CongestionLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !level.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
	return level, nil
}

// Describe returns a one-sentence outlook for a dominant congestion level
func (l CongestionLevel) Describe() string {
	switch l {
	case CongestionFree:
		return "Traffic is flowing freely with minimal congestion expected."
	case CongestionLight:
		return "Light traffic conditions predicted with good overall flow."
	case CongestionModerate:
		return "Moderate traffic expected with some congestion in key areas."
	case CongestionHeavy:
		return "Heavy traffic predicted with significant delays likely."
	case CongestionSevere:
		return "Severe congestion expected with major delays and potential gridlock."
	default:
		return "Unable to determine traffic conditions."
	}
}
