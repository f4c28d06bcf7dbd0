package domain

import "time"

// Speed bounds for simulated readings in km/h
const (
	MinSpeedKmh = 5
	MaxSpeedKmh = 80
)

// Location is a geographic coordinate
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RoadLocation is a catalog entry: a named road at a fixed coordinate
type RoadLocation struct {
	RoadName string   `json:"road_name"`
	Location Location `json:"location"`
}

// RoadReading is one road segment's speed and congestion at a point in time
type RoadReading struct {
	ID              string          `json:"id"`
	RoadName        string          `json:"road_name"`
	Location        Location        `json:"location"`
	SpeedKmh        int             `json:"speed_kmh"`
	CongestionLevel CongestionLevel `json:"congestion_level"`
	Timestamp       time.Time       `json:"timestamp"`
}

// NewRoadReading builds a reading whose level is derived from its speed
func NewRoadReading(id string, road RoadLocation, speedKmh int, ts time.Time) RoadReading {
	return RoadReading{
		ID:              id,
		RoadName:        road.RoadName,
		Location:        road.Location,
		SpeedKmh:        speedKmh,
		CongestionLevel: Classify(float64(speedKmh)),
		Timestamp:       ts,
	}
}

// Consistent reports whether the reading's level matches its speed
func (r RoadReading) Consistent() bool {
	return r.CongestionLevel == Classify(float64(r.SpeedKmh))
}

// Snapshot is a timestamped batch of road readings
type Snapshot struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Readings  []RoadReading `json:"readings"`
}

// Stats aggregates the snapshot's readings
func (s Snapshot) Stats() TrafficStats {
	return ComputeStats(s.Readings)
}

// WithLevel returns a copy of the snapshot keeping only readings at level
func (s Snapshot) WithLevel(level CongestionLevel) Snapshot {
	filtered := make([]RoadReading, 0, len(s.Readings))
	for _, r := range s.Readings {
		if r.CongestionLevel == level {
			filtered = append(filtered, r)
		}
	}
	s.Readings = filtered
	return s
}

// TrendPoint is one entry of the speed and congestion trend series
type TrendPoint struct {
	Timestamp    time.Time                   `json:"timestamp"`
	AverageSpeed int                         `json:"average_speed_kmh"`
	Shares       map[CongestionLevel]float64 `json:"shares"`
}

// TrafficResponse wraps a snapshot with its statistics
type TrafficResponse struct {
	Snapshot Snapshot     `json:"snapshot"`
	Stats    TrafficStats `json:"stats"`
}

// PredictionSummary describes a forecast or route prediction
type PredictionSummary struct {
	Readings       []RoadReading   `json:"readings"`
	Stats          TrafficStats    `json:"stats"`
	DominantLevel  CongestionLevel `json:"dominant_level"`
	Description    string          `json:"description"`
	Confidence     float64         `json:"confidence"`
	AverageSpeed   int             `json:"average_speed_kmh"`
	HoursAhead     int             `json:"hours_ahead"`
	PredictionTime time.Time       `json:"prediction_time"`
}

// RouteBounds is the lat/lng rectangle enclosing a route
type RouteBounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// RoutePrediction is a route summary plus map viewport data
type RoutePrediction struct {
	Source      string            `json:"source"`
	Destination string            `json:"destination"`
	Prediction  PredictionSummary `json:"prediction"`
	Bounds      RouteBounds       `json:"bounds"`
	DistanceKm  float64           `json:"distance_km"`
}

// NYC reference catalog coordinates
const (
	DefaultCenterLat = 40.7128
	DefaultCenterLng = -74.0060
)

// DefaultRoadCatalog is the fixed set of monitored roads
var DefaultRoadCatalog = []RoadLocation{
	{RoadName: "Main Street", Location: Location{Lat: 40.7128, Lng: -74.0060}},
	{RoadName: "Broadway", Location: Location{Lat: 40.7589, Lng: -73.9851}},
	{RoadName: "Fifth Avenue", Location: Location{Lat: 40.7536, Lng: -73.9831}},
	{RoadName: "Park Avenue", Location: Location{Lat: 40.7539, Lng: -73.9742}},
	{RoadName: "Lexington Avenue", Location: Location{Lat: 40.7528, Lng: -73.9725}},
	{RoadName: "Madison Avenue", Location: Location{Lat: 40.7517, Lng: -73.9785}},
	{RoadName: "Seventh Avenue", Location: Location{Lat: 40.7631, Lng: -73.9803}},
	{RoadName: "Eighth Avenue", Location: Location{Lat: 40.7590, Lng: -73.9845}},
}

// DefaultRouteRoads are the road names assigned to synthetic route points
var DefaultRouteRoads = []string{
	"Main Street",
	"Broadway",
	"Houston Street",
	"Canal Street",
	"FDR Drive",
	"West Side Highway",
	"Delancey Street",
	"14th Street",
}
