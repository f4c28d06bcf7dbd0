package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartcity/trafficsim/internal/domain"
)

// schema creates the snapshot tables on first start
const schema = `
	CREATE TABLE IF NOT EXISTS traffic_snapshots (
		id       UUID PRIMARY KEY,
		taken_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS traffic_snapshots_taken_at_idx ON traffic_snapshots (taken_at);

	CREATE TABLE IF NOT EXISTS road_readings (
		snapshot_id      UUID NOT NULL REFERENCES traffic_snapshots (id) ON DELETE CASCADE,
		position         INTEGER NOT NULL,
		reading_id       TEXT NOT NULL,
		road_name        TEXT NOT NULL,
		lat              DOUBLE PRECISION NOT NULL,
		lng              DOUBLE PRECISION NOT NULL,
		speed_kmh        INTEGER NOT NULL,
		congestion_level TEXT NOT NULL,
		taken_at         TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (snapshot_id, position)
	);
`

var readingColumns = []string{
	"snapshot_id", "position", "reading_id", "road_name",
	"lat", "lng", "speed_kmh", "congestion_level", "taken_at",
}

// recordedSnapshotsQuery picks the newest $3 snapshots in [$1, $2] (all of them when $3 is NULL)
// and returns their readings oldest snapshot first
const recordedSnapshotsQuery = `
	WITH recent AS (
		SELECT id, taken_at
		FROM traffic_snapshots
		WHERE taken_at BETWEEN $1 AND $2
		ORDER BY taken_at DESC
		LIMIT $3
	)
	SELECT s.id::text, s.taken_at, r.reading_id, r.road_name, r.lat, r.lng,
		   r.speed_kmh, r.congestion_level, r.taken_at
	FROM recent s
	JOIN road_readings r ON r.snapshot_id = s.id
	ORDER BY s.taken_at ASC, s.id, r.position ASC
`

// PostgresRepository implements domain.SnapshotRepository
type PostgresRepository struct {
	pool  *pgxpool.Pool
	limit int
}

// NewPostgresRepository creates a new PostgreSQL repository. Range queries return at most
// the newest limit snapshots; a non-positive limit returns every match.
func NewPostgresRepository(pool *pgxpool.Pool, limit int) *PostgresRepository {
	return &PostgresRepository{pool: pool, limit: limit}
}

// snapshotLimit maps the configured limit to a LIMIT argument, NULL meaning no limit
func snapshotLimit(limit int) *int64 {
	if limit <= 0 {
		return nil
	}
	n := int64(limit)
	return &n
}

// Migrate creates the tables if they do not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to migrate schema: %w", err)
	}
	return nil
}

// SaveSnapshot persists a snapshot and bulk-copies its readings in one transaction
func (r *PostgresRepository) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO traffic_snapshots (id, taken_at) VALUES ($1, $2)`,
		snapshot.ID, snapshot.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save snapshot: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"road_readings"},
		readingColumns,
		pgx.CopyFromSlice(len(snapshot.Readings), func(i int) ([]any, error) {
			rd := snapshot.Readings[i]
			return []any{
				snapshot.ID, i, rd.ID, rd.RoadName,
				rd.Location.Lat, rd.Location.Lng, rd.SpeedKmh, string(rd.CongestionLevel), rd.Timestamp,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to copy readings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit snapshot: %w", err)
	}

	return nil
}

// snapshotRow is one joined snapshot/reading row
type snapshotRow struct {
	SnapshotID string
	TakenAt    time.Time
	Reading    domain.RoadReading
}

// GetSnapshots retrieves snapshots taken within [from, to], oldest first.
// Every returned snapshot carries all of its readings.
func (r *PostgresRepository) GetSnapshots(ctx context.Context, from, to time.Time) ([]domain.Snapshot, error) {
	rows, err := r.pool.Query(ctx, recordedSnapshotsQuery, from, to, snapshotLimit(r.limit))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var results []snapshotRow
	for rows.Next() {
		var (
			row   snapshotRow
			level string
		)
		err := rows.Scan(
			&row.SnapshotID, &row.TakenAt, &row.Reading.ID, &row.Reading.RoadName,
			&row.Reading.Location.Lat, &row.Reading.Location.Lng,
			&row.Reading.SpeedKmh, &level, &row.Reading.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan snapshot row: %w", err)
		}
		row.Reading.CongestionLevel = domain.CongestionLevel(level)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read snapshot rows: %w", err)
	}

	return groupSnapshots(results), nil
}

// groupSnapshots folds ordered joined rows back into snapshots
func groupSnapshots(rows []snapshotRow) []domain.Snapshot {
	var snapshots []domain.Snapshot
	for _, row := range rows {
		n := len(snapshots)
		if n == 0 || snapshots[n-1].ID != row.SnapshotID {
			snapshots = append(snapshots, domain.Snapshot{ID: row.SnapshotID, Timestamp: row.TakenAt})
			n++
		}
		snapshots[n-1].Readings = append(snapshots[n-1].Readings, row.Reading)
	}
	return snapshots
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
