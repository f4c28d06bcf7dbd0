package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		given    float64
		expected CongestionLevel
	}{
		{given: 65, expected: CongestionFree},
		{given: 61, expected: CongestionFree},
		{given: 60, expected: CongestionLight},
		{given: 50, expected: CongestionLight},
		{given: 45, expected: CongestionModerate},
		{given: 35, expected: CongestionModerate},
		{given: 30, expected: CongestionHeavy},
		{given: 20, expected: CongestionHeavy},
		{given: 15, expected: CongestionSevere},
		{given: 10, expected: CongestionSevere},
		{given: 0, expected: CongestionSevere},
		{given: -5, expected: CongestionSevere},
		{given: 60.5, expected: CongestionFree},
		{given: math.Inf(1), expected: CongestionFree},
		{given: math.Inf(-1), expected: CongestionSevere},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, Classify(test.given), "speed %v", test.given)
	}
}

func TestClassify_MonotonicNonIncreasingSeverity(t *testing.T) {
	prev := Classify(-10)
	for speed := -10.0; speed <= 120; speed += 0.25 {
		level := Classify(speed)
		require.True(t, level.Valid())
		assert.LessOrEqual(t, level.Severity(), prev.Severity(), "speed %v", speed)
		prev = level
	}
}

func TestClassify_EveryLevelReachable(t *testing.T) {
	seen := map[CongestionLevel]bool{}
	for speed := 5; speed <= 80; speed++ {
		seen[Classify(float64(speed))] = true
	}
	assert.Len(t, seen, len(CongestionLevels))
}

func TestCongestionLevel_Severity(t *testing.T) {
	for i, level := range CongestionLevels {
		assert.Equal(t, i, level.Severity())
	}
	assert.Equal(t, -1, CongestionLevel("JAMMED").Severity())
	assert.False(t, CongestionLevel("").Valid())
}

func TestParseCongestionLevel(t *testing.T) {
	level, err := ParseCongestionLevel(" heavy ")
	require.NoError(t, err)
	assert.Equal(t, CongestionHeavy, level)

	_, err = ParseCongestionLevel("gridlock")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestCongestionLevel_Describe(t *testing.T) {
	descriptions := map[string]bool{}
	for _, level := range CongestionLevels {
		d := level.Describe()
		assert.NotEmpty(t, d)
		descriptions[d] = true
	}
	assert.Len(t, descriptions, len(CongestionLevels))
	assert.Equal(t, "Unable to determine traffic conditions.", CongestionLevel("?").Describe())
}

func TestNewRoadReading_DerivesLevel(t *testing.T) {
	road := DefaultRoadCatalog[0]
	for speed := MinSpeedKmh; speed <= MaxSpeedKmh; speed++ {
		r := NewRoadReading("traffic-0", road, speed, time.Time{})
		assert.True(t, r.Consistent())
		assert.Equal(t, road.RoadName, r.RoadName)
	}
}
