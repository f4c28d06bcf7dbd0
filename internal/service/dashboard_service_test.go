package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/smartcity/trafficsim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	mu        sync.Mutex
	snapshots []domain.Snapshot
	saveErr   error
}

func (r *recordingRepo) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

func (r *recordingRepo) GetSnapshots(ctx context.Context, from, to time.Time) ([]domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Snapshot
	for _, s := range r.snapshots {
		if !s.Timestamp.Before(from) && !s.Timestamp.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *recordingRepo) Health(ctx context.Context) error { return nil }

type recordingPublisher struct {
	mu        sync.Mutex
	published []string
}

func (p *recordingPublisher) Publish(ctx context.Context, snapshot domain.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, snapshot.ID)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newDashboard(repo SnapshotRepository, pub SnapshotPublisher, log logrus.FieldLogger) *DashboardService {
	traffic := NewTrafficService(rand.New(rand.NewSource(2)), WithClock(fixedClock(12)))
	return NewDashboardService(traffic, repo, pub, log)
}

func TestDashboardService_Refresh(t *testing.T) {
	repo := &recordingRepo{}
	pub := &recordingPublisher{}
	logger, _ := logtest.NewNullLogger()
	svc := newDashboard(repo, pub, logger)

	data, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	svc.WaitBackground()

	assert.Equal(t, data.Snapshot.ID, svc.Latest().Snapshot.ID)
	assert.Equal(t, len(data.Snapshot.Readings), data.Stats.TotalRoads)
	require.Len(t, repo.snapshots, 1)
	assert.Equal(t, data.Snapshot.ID, repo.snapshots[0].ID)
	assert.Equal(t, []string{data.Snapshot.ID}, pub.published)

	recorded, err := svc.GetRecordedSnapshots(context.Background(), 24)
	require.NoError(t, err)
	assert.Len(t, recorded, 1)
}

func TestDashboardService_RefreshLogsSaveFailure(t *testing.T) {
	repo := &recordingRepo{saveErr: errors.New("connection refused")}
	logger, hook := logtest.NewNullLogger()
	svc := newDashboard(repo, nil, logger)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	svc.WaitBackground()

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "Failed to save snapshot", hook.LastEntry().Message)
}

func TestDashboardService_GetDashboardData(t *testing.T) {
	repo := &recordingRepo{}
	logger, _ := logtest.NewNullLogger()
	svc := newDashboard(repo, nil, logger)

	first, err := svc.GetDashboardData(context.Background())
	require.NoError(t, err)
	second, err := svc.GetDashboardData(context.Background())
	require.NoError(t, err)
	svc.WaitBackground()

	assert.Equal(t, first.Snapshot.ID, second.Snapshot.ID)
	assert.Len(t, repo.snapshots, 1)
}

func TestDashboardService_LatestReturnsCopy(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	svc := newDashboard(&recordingRepo{}, nil, logger)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	svc.WaitBackground()

	data := svc.Latest()
	data.Snapshot.Readings[0].SpeedKmh = -1

	assert.NotEqual(t, -1, svc.Latest().Snapshot.Readings[0].SpeedKmh)
}

func TestDashboardService_RefreshCancelled(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	svc := newDashboard(&recordingRepo{}, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Refresh(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDashboardService_RefreshAfterShutdown(t *testing.T) {
	repo := &recordingRepo{}
	pub := &recordingPublisher{}
	logger, _ := logtest.NewNullLogger()
	svc := newDashboard(repo, pub, logger)

	svc.WaitBackground()
	data, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	svc.WaitBackground()

	assert.Equal(t, data.Snapshot.ID, svc.Latest().Snapshot.ID)
	assert.Empty(t, repo.snapshots)
	assert.Empty(t, pub.published)
}

func TestDashboardService_RefreshDuringShutdown(t *testing.T) {
	repo := &recordingRepo{}
	logger, _ := logtest.NewNullLogger()
	traffic := NewTrafficService(NewLockedRandom(5), WithClock(fixedClock(12)))
	svc := NewDashboardService(traffic, repo, nil, logger)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Refresh(context.Background())
		}()
	}
	svc.WaitBackground()
	wg.Wait()
	svc.WaitBackground()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.LessOrEqual(t, len(repo.snapshots), 16)
}
