package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/smartcity/trafficsim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)

func snapshotAt(hour int) domain.Snapshot {
	ts := base.Add(time.Duration(hour) * time.Hour)
	return domain.Snapshot{
		ID:        fmt.Sprintf("snap-%d", hour),
		Timestamp: ts,
		Readings: []domain.RoadReading{
			domain.NewRoadReading("traffic-0", domain.DefaultRoadCatalog[0], 40+hour, ts),
		},
	}
}

func TestMockRepository_SaveAndGet(t *testing.T) {
	repo := NewMockRepository(0)
	ctx := context.Background()

	for _, h := range []int{5, 1, 3} {
		require.NoError(t, repo.SaveSnapshot(ctx, snapshotAt(h)))
	}

	got, err := repo.GetSnapshots(ctx, base.Add(time.Hour), base.Add(4*time.Hour))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "snap-1", got[0].ID)
	assert.Equal(t, "snap-3", got[1].ID)
	assert.NoError(t, repo.Health(ctx))
}

func TestMockRepository_Limit(t *testing.T) {
	repo := NewMockRepository(2)
	ctx := context.Background()

	for h := 0; h < 5; h++ {
		require.NoError(t, repo.SaveSnapshot(ctx, snapshotAt(h)))
	}

	got, err := repo.GetSnapshots(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "snap-3", got[0].ID)
	assert.Equal(t, "snap-4", got[1].ID)
}

func TestMockRepository_StoresCopies(t *testing.T) {
	repo := NewMockRepository(0)
	ctx := context.Background()
	snap := snapshotAt(1)
	require.NoError(t, repo.SaveSnapshot(ctx, snap))

	snap.Readings[0].SpeedKmh = 0
	got, err := repo.GetSnapshots(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	got[0].Readings[0].SpeedKmh = 1

	again, err := repo.GetSnapshots(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 41, again[0].Readings[0].SpeedKmh)
}

func TestGroupSnapshots(t *testing.T) {
	a, b := snapshotAt(1), snapshotAt(2)
	rows := []snapshotRow{
		{SnapshotID: a.ID, TakenAt: a.Timestamp, Reading: domain.RoadReading{ID: "traffic-0"}},
		{SnapshotID: a.ID, TakenAt: a.Timestamp, Reading: domain.RoadReading{ID: "traffic-1"}},
		{SnapshotID: b.ID, TakenAt: b.Timestamp, Reading: domain.RoadReading{ID: "traffic-0"}},
	}

	got := groupSnapshots(rows)

	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, a.Timestamp, got[0].Timestamp)
	assert.Len(t, got[0].Readings, 2)
	assert.Equal(t, "traffic-1", got[0].Readings[1].ID)
	assert.Len(t, got[1].Readings, 1)
	assert.Empty(t, groupSnapshots(nil))
}

func TestSnapshotLimit(t *testing.T) {
	assert.Nil(t, snapshotLimit(0))
	assert.Nil(t, snapshotLimit(-5))

	limit := snapshotLimit(2880)
	require.NotNil(t, limit)
	assert.Equal(t, int64(2880), *limit)
}

func TestRecordedSnapshotsQuery_LimitsSnapshotsNotRows(t *testing.T) {
	q := recordedSnapshotsQuery
	cte := q[:strings.Index(q, "SELECT s.id")]

	assert.Contains(t, cte, "FROM traffic_snapshots")
	assert.Contains(t, cte, "ORDER BY taken_at DESC")
	assert.Contains(t, cte, "LIMIT $3")
	assert.NotContains(t, q[len(cte):], "LIMIT")
	assert.Contains(t, q[len(cte):], "ORDER BY s.taken_at ASC")
}
