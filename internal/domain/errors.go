package domain

import "errors"

// Validation errors returned at the generator boundary
var (
	ErrInvalidHoursAhead    = errors.New("hours ahead must be a non-negative integer")
	ErrInvalidWindow        = errors.New("invalid history window")
	ErrMissingRouteEndpoint = errors.New("route source and destination are required")
	ErrUnknownLevel         = errors.New("unknown congestion level")
)
