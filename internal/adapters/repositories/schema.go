package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/platform/db"
	"strconv"
	"strings"
)

// Initialize the database schema for the given dialect.
func InitSchema(conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	float := "REAL"
	if dialect == db.Postgres {
		float = "DOUBLE PRECISION"
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		trip_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		day_count INTEGER NOT NULL,
		lodging_name TEXT,
		lodging_lat ` + float + `,
		lodging_lon ` + float + `
	);
	`

	createActivitiesQuery := `
	CREATE TABLE IF NOT EXISTS activities (
		activity_id TEXT PRIMARY KEY,
		trip_id TEXT NOT NULL REFERENCES trips(trip_id) ON DELETE CASCADE,
		day_number INTEGER NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		latitude ` + float + `,
		longitude ` + float + `,
		order_index INTEGER NOT NULL DEFAULT 0,
		cost ` + float + ` NOT NULL DEFAULT 0
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin_lat ` + float + ` NOT NULL,
		origin_lon ` + float + ` NOT NULL,
		dest_lat ` + float + ` NOT NULL,
		dest_lon ` + float + ` NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		PRIMARY KEY (origin_lat, origin_lon, dest_lat, dest_lon)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_activities_trip_day_order
	ON activities(trip_id, day_number, order_index);
	`

	statements := []string{
		createTripsQuery,
		createActivitiesQuery,
		createDistanceCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func rebind(dialect db.Dialect, query string) string {
	if dialect != db.Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
