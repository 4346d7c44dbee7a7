package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"

	"go.uber.org/zap"
)

// SQLDistanceCache is a Postgres-backed cache for directed road legs.
type SQLDistanceCache struct {
	DB     *sql.DB
	Logger *zap.Logger
}

func NewSQLDistanceCache(db *sql.DB, logger *zap.Logger) *SQLDistanceCache {
	return &SQLDistanceCache{DB: db, Logger: logger}
}

// Fetch cached legs from one origin to many destinations.
func (s *SQLDistanceCache) GetMany(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ map[domain.Coordinates]ports.DistanceResult, err error) {
	if s.Logger != nil {
		defer obs.Time(ctx, s.Logger, "distance.cache.GetMany")(&err)
	}

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	o := Key(origin)
	uniq := uniqueKeys(o, destinations)
	if len(uniq) == 0 {
		return map[domain.Coordinates]ports.DistanceResult{}, nil
	}

	lats := make([]float64, 0, len(uniq))
	lons := make([]float64, 0, len(uniq))
	for _, d := range uniq {
		lats = append(lats, d.Lat)
		lons = append(lons, d.Lon)
	}

	q := `
	SELECT c.dest_lat, c.dest_lon, c.distance_meters, c.duration_seconds
	FROM distance_cache c
	JOIN unnest($3::float8[], $4::float8[]) AS d(lat, lon)
		ON c.dest_lat = d.lat AND c.dest_lon = d.lon
	WHERE c.origin_lat = $1
		AND c.origin_lon = $2;
	`

	rows, err := s.DB.QueryContext(ctx, q, o.Lat, o.Lon, lats, lons)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Coordinates]ports.DistanceResult, len(uniq))
	for rows.Next() {
		var dest domain.Coordinates
		var r ports.DistanceResult
		if err := rows.Scan(&dest.Lat, &dest.Lon, &r.DistanceMeters, &r.DurationSeconds); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		out[dest] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many legs from a single origin.
func (s *SQLDistanceCache) PutMany(
	ctx context.Context,
	origin domain.Coordinates,
	results map[domain.Coordinates]ports.DistanceResult,
) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (origin_lat, origin_lon, dest_lat, dest_lon, distance_meters, duration_seconds)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (origin_lat, origin_lon, dest_lat, dest_lon) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds;
	`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	o := Key(origin)
	for dest, r := range results {
		d := Key(dest)
		if _, err := stmt.ExecContext(ctx, o.Lat, o.Lon, d.Lat, d.Lon, r.DistanceMeters, r.DurationSeconds); err != nil {
			return fmt.Errorf("insert distance cache dest=%v: %w", d, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}
