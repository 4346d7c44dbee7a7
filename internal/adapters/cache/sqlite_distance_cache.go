package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"strings"
)

// SQLite backed cache for directed road legs between coordinates.
type SqliteDistanceCache struct {
	DB *sql.DB
}

func NewSqliteDistanceCache(db *sql.DB) *SqliteDistanceCache {
	return &SqliteDistanceCache{DB: db}
}

// Fetch cached legs from one origin to many destinations. Missing legs are
// simply absent from the result.
func (s *SqliteDistanceCache) GetMany(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (map[domain.Coordinates]ports.DistanceResult, error) {
	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	o := Key(origin)
	uniq := uniqueKeys(o, destinations)
	if len(uniq) == 0 {
		return map[domain.Coordinates]ports.DistanceResult{}, nil
	}

	ph := make([]string, 0, len(uniq))
	args := make([]any, 0, 2+2*len(uniq))
	args = append(args, o.Lat, o.Lon)
	for _, d := range uniq {
		ph = append(ph, "(?, ?)")
		args = append(args, d.Lat, d.Lon)
	}

	// SQLite cannot bind a slice of row values; only the placeholder
	// structure is interpolated and every value stays parameterized.
	q := fmt.Sprintf(`
	SELECT
		dest_lat,
		dest_lon,
		distance_meters,
		duration_seconds
	FROM distance_cache
	WHERE origin_lat = ?
		AND origin_lon = ?
		AND (dest_lat, dest_lon) IN (VALUES %s);
	`, strings.Join(ph, ", "))

	rows, err := s.DB.QueryContext(ctx, q, args...)
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
func (s *SqliteDistanceCache) PutMany(
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
	INSERT OR REPLACE INTO distance_cache (
		origin_lat,
		origin_lon,
		dest_lat,
		dest_lon,
		distance_meters,
		duration_seconds
	)
	VALUES (?, ?, ?, ?, ?, ?)
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
