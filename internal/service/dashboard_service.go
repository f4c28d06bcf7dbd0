package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smartcity/trafficsim/internal/domain"
)

// DashboardService holds the latest refreshed traffic state
type DashboardService struct {
	trafficSvc *TrafficService
	repo       SnapshotRepository
	publisher  SnapshotPublisher
	log        logrus.FieldLogger

	mu     sync.RWMutex
	latest domain.DashboardData
	loaded bool
	closed bool // set by WaitBackground; no new background work starts after it

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewDashboardService creates a new dashboard service. publisher may be nil.
func NewDashboardService(
	trafficSvc *TrafficService,
	repo SnapshotRepository,
	publisher SnapshotPublisher,
	log logrus.FieldLogger,
) *DashboardService {
	return &DashboardService{
		trafficSvc: trafficSvc,
		repo:       repo,
		publisher:  publisher,
		log:        log,
	}
}

// WaitBackground stops new background saves and blocks until the running ones complete.
// Call during graceful shutdown to avoid dropped writes. Later refreshes still update
// the in-memory state but are neither persisted nor published.
func (s *DashboardService) WaitBackground() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wgBg.Wait()
}

// Refresh generates a new snapshot, stores it as the latest state and
// persists and publishes it in the background
func (s *DashboardService) Refresh(ctx context.Context) (domain.DashboardData, error) {
	if err := ctx.Err(); err != nil {
		return domain.DashboardData{}, err
	}

	snap := s.trafficSvc.CurrentSnapshot()
	data := domain.DashboardData{
		Snapshot:    snap,
		Stats:       snap.Stats(),
		RefreshedAt: s.trafficSvc.now(),
	}

	s.mu.Lock()
	// a refresh that finished after a newer one is dropped
	if s.loaded && data.Snapshot.Timestamp.Before(s.latest.Snapshot.Timestamp) {
		s.mu.Unlock()
		return s.Latest(), nil
	}
	s.latest = data
	s.loaded = true
	closed := s.closed
	if !closed {
		s.wgBg.Add(1)
	}
	s.mu.Unlock()

	if closed {
		s.log.WithField("snapshot_id", snap.ID).Debug("Shutting down, snapshot not persisted")
		return data, nil
	}

	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.persist(bgCtx, snap)
	}()

	return data, nil
}

func (s *DashboardService) persist(ctx context.Context, snap domain.Snapshot) {
	fields := logrus.Fields{"snapshot_id": snap.ID, "readings": len(snap.Readings)}

	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		s.log.WithFields(fields).WithError(err).Error("Failed to save snapshot")
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, snap); err != nil {
			s.log.WithFields(fields).WithError(err).Error("Failed to publish snapshot")
		}
	}
}

// Latest returns a copy of the most recent state
func (s *DashboardService) Latest() domain.DashboardData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := s.latest
	data.Snapshot.Readings = append([]domain.RoadReading(nil), s.latest.Snapshot.Readings...)
	return data
}

// GetDashboardData returns the latest state, refreshing first if nothing has been loaded yet
func (s *DashboardService) GetDashboardData(ctx context.Context) (domain.DashboardData, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()

	if !loaded {
		return s.Refresh(ctx)
	}
	return s.Latest(), nil
}

// GetRecordedSnapshots returns snapshots persisted within the last hours hours
func (s *DashboardService) GetRecordedSnapshots(ctx context.Context, hours int) ([]domain.Snapshot, error) {
	to := s.trafficSvc.now()
	from := to.Add(-time.Duration(hours) * time.Hour)
	return s.repo.GetSnapshots(ctx, from, to)
}

// Health checks the repository
func (s *DashboardService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}
