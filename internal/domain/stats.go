package domain

// CongestionCounts maps each level to the number of readings at that level
type CongestionCounts map[CongestionLevel]int

// NewCongestionCounts returns counts with every level present at zero
func NewCongestionCounts() CongestionCounts {
	counts := make(CongestionCounts, len(CongestionLevels))
	for _, level := range CongestionLevels {
		counts[level] = 0
	}
	return counts
}

// Total sums the counts over all levels
func (c CongestionCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Shares returns the percentage of readings per level.
// Every share is 0 when there are no readings.
func (c CongestionCounts) Shares() map[CongestionLevel]float64 {
	shares := make(map[CongestionLevel]float64, len(CongestionLevels))
	total := c.Total()
	for _, level := range CongestionLevels {
		if total == 0 {
			shares[level] = 0
			continue
		}
		shares[level] = 100 * float64(c[level]) / float64(total)
	}
	return shares
}

// TrafficStats summarises a set of readings
type TrafficStats struct {
	Counts       CongestionCounts            `json:"congestion_counts"`
	Shares       map[CongestionLevel]float64 `json:"shares"`
	AverageSpeed float64                     `json:"average_speed_kmh"`
	TotalRoads   int                         `json:"total_roads"`
}

// ComputeStats aggregates readings without modifying them.
// AverageSpeed is 0 for an empty input.
func ComputeStats(readings []RoadReading) TrafficStats {
	counts := NewCongestionCounts()
	sum := 0
	for _, r := range readings {
		counts[r.CongestionLevel]++
		sum += r.SpeedKmh
	}

	var avg float64
	if len(readings) > 0 {
		avg = float64(sum) / float64(len(readings))
	}

	return TrafficStats{
		Counts:       counts,
		Shares:       counts.Shares(),
		AverageSpeed: avg,
		TotalRoads:   len(readings),
	}
}

// DominantLevel returns the most frequent level. Ties go to the less severe level.
// ok is false when every count is zero.
func DominantLevel(counts CongestionCounts) (level CongestionLevel, ok bool) {
	best := 0
	for _, l := range CongestionLevels {
		if counts[l] > best {
			best = counts[l]
			level = l
		}
	}
	return level, best > 0
}
