package postgres

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/smartcity/trafficsim/internal/domain"
)

// MockRepository implements domain.SnapshotRepository in memory for testing/demo mode
type MockRepository struct {
	mu        sync.RWMutex
	snapshots []domain.Snapshot
	limit     int
}

// NewMockRepository creates a new mock repository keeping at most limit snapshots.
// A non-positive limit keeps everything.
func NewMockRepository(limit int) *MockRepository {
	return &MockRepository{limit: limit}
}

// SaveSnapshot stores a copy of the snapshot, evicting the oldest past the limit
func (r *MockRepository) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	snapshot.Readings = append([]domain.RoadReading(nil), snapshot.Readings...)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots = append(r.snapshots, snapshot)
	sort.SliceStable(r.snapshots, func(i, j int) bool {
		return r.snapshots[i].Timestamp.Before(r.snapshots[j].Timestamp)
	})
	if r.limit > 0 && len(r.snapshots) > r.limit {
		r.snapshots = r.snapshots[len(r.snapshots)-r.limit:]
	}
	return nil
}

// GetSnapshots returns stored snapshots taken within [from, to], oldest first
func (r *MockRepository) GetSnapshots(ctx context.Context, from, to time.Time) ([]domain.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []domain.Snapshot
	for _, s := range r.snapshots {
		if s.Timestamp.Before(from) || s.Timestamp.After(to) {
			continue
		}
		s.Readings = append([]domain.RoadReading(nil), s.Readings...)
		results = append(results, s)
	}
	return results, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
