package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/smartcity/trafficsim/internal/domain"
	"github.com/smartcity/trafficsim/pkg/utils"
)

// Confidence bounds for simulated predictions
const (
	baseConfidence     = 0.95
	confidenceDecay    = 0.05
	minConfidence      = 0.5
	minHistoricalScore = 0.78
	historicalSpread   = 0.12
)

// PredictionService turns generated readings into prediction summaries
type PredictionService struct {
	traffic *TrafficService
	rng     Random
	now     Clock
}

// NewPredictionService creates a new prediction service
func NewPredictionService(traffic *TrafficService, rng Random) *PredictionService {
	return &PredictionService{
		traffic: traffic,
		rng:     rng,
		now:     traffic.now,
	}
}

// Confidence decays 5% per hour ahead from 95%, never below 50%
func Confidence(hoursAhead int) float64 {
	return math.Max(minConfidence, baseConfidence-confidenceDecay*float64(hoursAhead))
}

// HistoricalAccuracy returns a simulated accuracy in [0.78, 0.90)
func (p *PredictionService) HistoricalAccuracy() float64 {
	return minHistoricalScore + p.rng.Float64()*historicalSpread
}

// PredictTraffic forecasts the monitored roads hoursAhead hours from now
func (p *PredictionService) PredictTraffic(ctx context.Context, hoursAhead int) (domain.PredictionSummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.PredictionSummary{}, err
	}

	snap, err := p.traffic.Forecast(hoursAhead)
	if err != nil {
		return domain.PredictionSummary{}, fmt.Errorf("prediction: failed to forecast traffic: %w", err)
	}

	return p.summarize(snap.Readings, hoursAhead), nil
}

// PredictRoute builds a route prediction between two free-form place names
func (p *PredictionService) PredictRoute(ctx context.Context, source, destination string, hoursAhead int) (domain.RoutePrediction, error) {
	if err := ctx.Err(); err != nil {
		return domain.RoutePrediction{}, err
	}

	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)
	if source == "" || destination == "" {
		return domain.RoutePrediction{}, domain.ErrMissingRouteEndpoint
	}

	readings, err := p.traffic.RouteData(source, destination, hoursAhead)
	if err != nil {
		return domain.RoutePrediction{}, fmt.Errorf("prediction: failed to generate route: %w", err)
	}

	return domain.RoutePrediction{
		Source:      source,
		Destination: destination,
		Prediction:  p.summarize(readings, hoursAhead),
		Bounds:      RouteBounds(readings),
		DistanceKm:  utils.RoundTo(RouteDistanceKm(readings), 2),
	}, nil
}

// summarize computes stats, the dominant level and the confidence for a set of readings
func (p *PredictionService) summarize(readings []domain.RoadReading, hoursAhead int) domain.PredictionSummary {
	stats := domain.ComputeStats(readings)

	dominant, ok := domain.DominantLevel(stats.Counts)
	if !ok {
		dominant = domain.CongestionModerate
	}

	return domain.PredictionSummary{
		Readings:       readings,
		Stats:          stats,
		DominantLevel:  dominant,
		Description:    dominant.Describe(),
		Confidence:     Confidence(hoursAhead),
		AverageSpeed:   int(math.Round(stats.AverageSpeed)),
		HoursAhead:     hoursAhead,
		PredictionTime: p.now().Add(time.Duration(hoursAhead) * time.Hour),
	}
}
