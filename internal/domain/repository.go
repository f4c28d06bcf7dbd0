package domain

import (
	"context"
	"time"
)

// DashboardData is the latest state produced by the refresh poller
type DashboardData struct {
	Snapshot    Snapshot     `json:"snapshot"`
	Stats       TrafficStats `json:"stats"`
	RefreshedAt time.Time    `json:"refreshed_at"`
}

// SnapshotRepository defines the interface for snapshot persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type SnapshotRepository interface {
	// SaveSnapshot persists a snapshot and its readings
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error

	// GetSnapshots retrieves snapshots taken within [from, to], oldest first
	GetSnapshots(ctx context.Context, from, to time.Time) ([]Snapshot, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}

// SnapshotPublisher pushes refreshed snapshots to an output sink
type SnapshotPublisher interface {
	Publish(ctx context.Context, snapshot Snapshot) error
	Close() error
}
