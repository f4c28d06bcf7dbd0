package service

import (
	"github.com/smartcity/trafficsim/internal/domain"
)

// SnapshotRepository is re-exported from domain for convenience
type SnapshotRepository = domain.SnapshotRepository

// SnapshotPublisher is re-exported from domain for convenience
type SnapshotPublisher = domain.SnapshotPublisher
