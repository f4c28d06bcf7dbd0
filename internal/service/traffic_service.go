package service

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/smartcity/trafficsim/internal/domain"
	"github.com/smartcity/trafficsim/pkg/utils"
)

// MaxHistoryHours caps the synthetic history window (30 days)
const MaxHistoryHours = 720

// MaxHoursAhead is the largest horizon whose offset still fits in a time.Duration
const MaxHoursAhead = int(math.MaxInt64 / int64(time.Hour))

// speedBand is a half-open [min, max) speed range in km/h
type speedBand struct {
	min, max float64
}

// routeSpeedBands gives the speed range drawn for a route point once its level is chosen
var routeSpeedBands = map[domain.CongestionLevel]speedBand{
	domain.CongestionFree:     {50, 70},
	domain.CongestionLight:    {35, 50},
	domain.CongestionModerate: {20, 35},
	domain.CongestionHeavy:    {10, 20},
	domain.CongestionSevere:   {5, 10},
}

// TrafficService generates simulated traffic readings
type TrafficService struct {
	rng        Random
	now        Clock
	catalog    []domain.RoadLocation
	routeRoads []string
}

// TrafficOption customises a TrafficService
type TrafficOption func(*TrafficService)

// WithCatalog replaces the monitored road catalog
func WithCatalog(catalog []domain.RoadLocation) TrafficOption {
	return func(s *TrafficService) {
		s.catalog = catalog
	}
}

// WithRouteRoads replaces the road names used for route points. An empty list keeps the defaults.
func WithRouteRoads(roads []string) TrafficOption {
	return func(s *TrafficService) {
		s.routeRoads = roads
	}
}

// WithClock replaces the wall clock
func WithClock(now Clock) TrafficOption {
	return func(s *TrafficService) {
		s.now = now
	}
}

// NewTrafficService creates a new traffic service
func NewTrafficService(rng Random, opts ...TrafficOption) *TrafficService {
	s := &TrafficService{
		rng:        rng,
		now:        time.Now,
		catalog:    domain.DefaultRoadCatalog,
		routeRoads: domain.DefaultRouteRoads,
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.routeRoads) == 0 {
		s.routeRoads = domain.DefaultRouteRoads
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CurrentSnapshot draws one independent reading per catalog road
func (s *TrafficService) CurrentSnapshot() domain.Snapshot {
	return s.snapshotAt(s.now())
}

func (s *TrafficService) snapshotAt(ts time.Time) domain.Snapshot {
	readings := make([]domain.RoadReading, 0, len(s.catalog))
	for i, road := range s.catalog {
		readings = append(readings, domain.NewRoadReading(
			fmt.Sprintf("traffic-%d", i),
			road,
			s.randomSpeed(),
			ts,
		))
	}
	return domain.Snapshot{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Readings:  readings,
	}
}

// randomSpeed draws a uniform integer speed in [5, 80)
func (s *TrafficService) randomSpeed() int {
	return s.rng.Intn(domain.MaxSpeedKmh-domain.MinSpeedKmh) + domain.MinSpeedKmh
}

// HistoricalSnapshots returns evenly spaced snapshots covering the past windowHours through now,
// oldest first. Each snapshot is drawn independently of its neighbours.
func (s *TrafficService) HistoricalSnapshots(windowHours, stepHours int) ([]domain.Snapshot, error) {
	if stepHours < 1 {
		return nil, fmt.Errorf("%w: step must be at least 1 hour, got %d", domain.ErrInvalidWindow, stepHours)
	}
	if windowHours < 0 || windowHours > MaxHistoryHours {
		return nil, fmt.Errorf("%w: window must be within [0, %d] hours, got %d", domain.ErrInvalidWindow, MaxHistoryHours, windowHours)
	}

	now := s.now()
	n := windowHours/stepHours + 1
	snapshots := make([]domain.Snapshot, 0, n)
	for k := 0; k < n; k++ {
		offset := time.Duration((n-1-k)*stepHours) * time.Hour
		snapshots = append(snapshots, s.snapshotAt(now.Add(-offset)))
	}

	return snapshots, nil
}

// TimeOfDayMultiplier returns the speed multiplier for an hour of day (0-23)
func TimeOfDayMultiplier(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 9: // Morning rush
		return 0.6
	case hour >= 16 && hour <= 19: // Evening rush
		return 0.5
	case hour >= 23 || hour <= 5: // Night
		return 1.5
	default:
		return 1.0
	}
}

// ForecastHour returns the hour of day hoursAhead hours after now
func ForecastHour(now time.Time, hoursAhead int) int {
	return (now.Hour() + hoursAhead%24) % 24
}

// Forecast shifts a fresh baseline snapshot hoursAhead hours into the future
func (s *TrafficService) Forecast(hoursAhead int) (domain.Snapshot, error) {
	if err := ValidateHoursAhead(hoursAhead); err != nil {
		return domain.Snapshot{}, err
	}

	now := s.now()
	baseline := s.snapshotAt(now)
	multiplier := TimeOfDayMultiplier(ForecastHour(now, hoursAhead))
	future := now.Add(time.Duration(hoursAhead) * time.Hour)

	readings := make([]domain.RoadReading, 0, len(baseline.Readings))
	for _, r := range baseline.Readings {
		jitter := 0.7 + s.rng.Float64()*0.6
		speed := forecastSpeed(r.SpeedKmh, multiplier*jitter)
		readings = append(readings, domain.RoadReading{
			ID:              r.ID,
			RoadName:        r.RoadName,
			Location:        r.Location,
			SpeedKmh:        speed,
			CongestionLevel: domain.Classify(float64(speed)),
			Timestamp:       future,
		})
	}

	return domain.Snapshot{
		ID:        uuid.NewString(),
		Timestamp: future,
		Readings:  readings,
	}, nil
}

// forecastSpeed applies a modifier to a speed and clamps it to [5, 80]
func forecastSpeed(speed int, modifier float64) int {
	shifted := math.Floor(float64(speed) * modifier)
	return int(utils.Clamp(shifted, domain.MinSpeedKmh, domain.MaxSpeedKmh))
}

// RouteCandidateLevels returns the congestion levels a route point may take for a horizon
func RouteCandidateLevels(hoursAhead int) []domain.CongestionLevel {
	switch {
	case hoursAhead > 8:
		return []domain.CongestionLevel{domain.CongestionModerate, domain.CongestionHeavy, domain.CongestionSevere}
	case hoursAhead > 4:
		return []domain.CongestionLevel{domain.CongestionLight, domain.CongestionModerate, domain.CongestionHeavy}
	case hoursAhead > 0:
		return []domain.CongestionLevel{domain.CongestionFree, domain.CongestionLight, domain.CongestionModerate}
	default:
		return domain.CongestionLevels
	}
}

// RouteData generates 5-10 points along a random walk near the base point.
// The endpoints are only used to build identifiers; they are never geocoded.
// Unlike the other generators the level is drawn first and the speed is fitted to it,
// so a route reading's speed need not classify to its level.
func (s *TrafficService) RouteData(source, destination string, hoursAhead int) ([]domain.RoadReading, error) {
	if err := ValidateHoursAhead(hoursAhead); err != nil {
		return nil, err
	}

	base := domain.Location{Lat: domain.DefaultCenterLat, Lng: domain.DefaultCenterLng}
	if len(s.catalog) > 0 {
		base = s.catalog[0].Location
	}

	n := 5 + s.rng.Intn(6)
	candidates := RouteCandidateLevels(hoursAhead)
	ts := s.now().Add(time.Duration(hoursAhead) * time.Hour)

	lat := base.Lat + (s.rng.Float64()-0.5)*0.04
	lng := base.Lng + (s.rng.Float64()-0.5)*0.04

	readings := make([]domain.RoadReading, 0, n)
	for i := 0; i < n; i++ {
		lat += (s.rng.Float64() - 0.5) * 0.01
		lng += (s.rng.Float64() - 0.5) * 0.01

		level := candidates[s.rng.Intn(len(candidates))]
		band := routeSpeedBands[level]
		speed := int(band.min + s.rng.Float64()*(band.max-band.min))

		readings = append(readings, domain.RoadReading{
			ID:              fmt.Sprintf("route-%s-%s-%d", source, destination, i),
			RoadName:        s.routeRoads[s.rng.Intn(len(s.routeRoads))],
			Location:        domain.Location{Lat: lat, Lng: lng},
			SpeedKmh:        speed,
			CongestionLevel: level,
			Timestamp:       ts,
		})
	}

	return readings, nil
}

// ValidateHoursAhead rejects negative horizons and horizons past MaxHoursAhead
func ValidateHoursAhead(hoursAhead int) error {
	if hoursAhead < 0 || hoursAhead > MaxHoursAhead {
		return fmt.Errorf("%w: must be within [0, %d], got %d", domain.ErrInvalidHoursAhead, MaxHoursAhead, hoursAhead)
	}
	return nil
}

// TrendSeries reduces history snapshots to average speed and level shares per snapshot
func TrendSeries(snapshots []domain.Snapshot) []domain.TrendPoint {
	points := make([]domain.TrendPoint, 0, len(snapshots))
	for _, snap := range snapshots {
		stats := snap.Stats()
		points = append(points, domain.TrendPoint{
			Timestamp:    snap.Timestamp,
			AverageSpeed: int(math.Round(stats.AverageSpeed)),
			Shares:       stats.Shares,
		})
	}
	return points
}
