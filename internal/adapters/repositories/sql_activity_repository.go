package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/db"
	"itinerary-route-service/internal/ports"
	"sort"
)

// SQL-backed implementation of the ActivityRepository port.
// The same queries serve SQLite and Postgres; only placeholders differ.
type SQLActivityRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLActivityRepository(conn *sql.DB, dialect db.Dialect) *SQLActivityRepository {
	return &SQLActivityRepository{DB: conn, Dialect: dialect}
}

func (s *SQLActivityRepository) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if s.DB == nil {
		return nil, errors.New("activity repository: DB is nil")
	}

	query := rebind(s.Dialect, `
	SELECT
		trip_id,
		name,
		day_count,
		lodging_name,
		lodging_lat,
		lodging_lon
	FROM trips
	WHERE trip_id = ?;
	`)

	var (
		trip       domain.Trip
		lodging    sql.NullString
		lodgingLat sql.NullFloat64
		lodgingLon sql.NullFloat64
	)
	err := s.DB.QueryRowContext(ctx, query, tripID).Scan(
		&trip.TripID, &trip.Name, &trip.DayCount, &lodging, &lodgingLat, &lodgingLon,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get trip %q: %w", tripID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get trip %q: query trips table: %w", tripID, err)
	}

	if lodgingLat.Valid && lodgingLon.Valid {
		trip.Lodging = &domain.Origin{
			Name:        lodging.String,
			Coordinates: domain.Coordinates{Lat: lodgingLat.Float64, Lon: lodgingLon.Float64},
		}
	}

	return &trip, nil
}

func (s *SQLActivityRepository) ListDay(ctx context.Context, tripID string, dayNumber int) (*domain.Day, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("list day: %w", err)
	}
	if dayNumber < 1 || dayNumber > trip.DayCount {
		return nil, fmt.Errorf("list day: trip %q has no day %d: %w", tripID, dayNumber, ports.ErrNotFound)
	}

	activities, err := s.queryActivities(ctx, `
	SELECT activity_id, trip_id, day_number, name, address, latitude, longitude, order_index, cost
	FROM activities
	WHERE trip_id = ? AND day_number = ?
	ORDER BY order_index, activity_id;
	`, tripID, dayNumber)
	if err != nil {
		return nil, fmt.Errorf("list day: %w", err)
	}

	return &domain.Day{DayNumber: dayNumber, Activities: activities}, nil
}

func (s *SQLActivityRepository) ListDays(ctx context.Context, tripID string) ([]*domain.Day, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}

	activities, err := s.queryActivities(ctx, `
	SELECT activity_id, trip_id, day_number, name, address, latitude, longitude, order_index, cost
	FROM activities
	WHERE trip_id = ?
	ORDER BY day_number, order_index, activity_id;
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}

	byDay := make(map[int]*domain.Day, trip.DayCount)
	for n := 1; n <= trip.DayCount; n++ {
		byDay[n] = &domain.Day{DayNumber: n, Activities: []*domain.Activity{}}
	}
	for _, a := range activities {
		day, ok := byDay[a.DayNumber]
		if !ok {
			day = &domain.Day{DayNumber: a.DayNumber}
			byDay[a.DayNumber] = day
		}
		day.Activities = append(day.Activities, a)
	}

	days := make([]*domain.Day, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })

	return days, nil
}

func (s *SQLActivityRepository) UpdateOrder(ctx context.Context, tripID string, dayNumber int, activityIDs []string) error {
	if s.DB == nil {
		return errors.New("activity repository: DB is nil")
	}
	if len(activityIDs) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update order: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, rebind(s.Dialect, `
	UPDATE activities
	SET order_index = ?
	WHERE activity_id = ? AND trip_id = ? AND day_number = ?;
	`))
	if err != nil {
		return fmt.Errorf("update order: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, id := range activityIDs {
		res, err := stmt.ExecContext(ctx, i, id, tripID, dayNumber)
		if err != nil {
			return fmt.Errorf("update order activity_id=%s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update order activity_id=%s: rows affected: %w", id, err)
		}
		if n != 1 {
			return fmt.Errorf("update order: activity %s on day %d of trip %s: %w", id, dayNumber, tripID, ports.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update order commit: %w", err)
	}

	return nil
}

func (s *SQLActivityRepository) queryActivities(ctx context.Context, query string, args ...any) ([]*domain.Activity, error) {
	rows, err := s.DB.QueryContext(ctx, rebind(s.Dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("query activities table: %w", err)
	}
	defer rows.Close()

	activities := make([]*domain.Activity, 0, 16)
	for rows.Next() {
		var (
			a        domain.Activity
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(
			&a.ActivityID, &a.TripID, &a.DayNumber, &a.Name, &a.Address,
			&lat, &lon, &a.OrderIndex, &a.Cost,
		); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		if lat.Valid && lon.Valid {
			a.Lat = &lat.Float64
			a.Lon = &lon.Float64
		}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("activity row iteration: %w", err)
	}

	return activities, nil
}
