package service

import (
	"github.com/golang/geo/s2"
	"github.com/smartcity/trafficsim/internal/domain"
	"github.com/smartcity/trafficsim/pkg/utils"
)

// RouteBounds returns the rectangle enclosing every route point, for fitting the map viewport
func RouteBounds(readings []domain.RoadReading) domain.RouteBounds {
	if len(readings) == 0 {
		return domain.RouteBounds{}
	}

	rect := s2.EmptyRect()
	for _, r := range readings {
		rect = rect.AddPoint(s2.LatLngFromDegrees(r.Location.Lat, r.Location.Lng))
	}

	return domain.RouteBounds{
		South: rect.Lo().Lat.Degrees(),
		West:  rect.Lo().Lng.Degrees(),
		North: rect.Hi().Lat.Degrees(),
		East:  rect.Hi().Lng.Degrees(),
	}
}

// RouteDistanceKm sums the great-circle length of the walk between consecutive points
func RouteDistanceKm(readings []domain.RoadReading) float64 {
	var total float64
	for i := 1; i < len(readings); i++ {
		a, b := readings[i-1].Location, readings[i].Location
		total += utils.Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
	}
	return total
}
