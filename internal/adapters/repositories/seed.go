package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"itinerary-route-service/internal/platform/db"
	"os"
	"strings"

	"github.com/google/uuid"
)

type LodgingSeed struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ActivitySeed struct {
	ActivityID string   `json:"activity_id"`
	DayNumber  int      `json:"day_number"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Cost       float64  `json:"cost"`
}

type TripSeed struct {
	TripID     string         `json:"trip_id"`
	Name       string         `json:"name"`
	DayCount   int            `json:"day_count"`
	Lodging    *LodgingSeed   `json:"lodging"`
	Activities []ActivitySeed `json:"activities"`
}

// Populate the database with trips and activities from a JSON file.
//
// Missing IDs are derived deterministically from the trip name and the
// activity position, so seeding the same file twice updates rows in place.
func SeedFromJSON(conn *sql.DB, dialect db.Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed trips: read %q: %w", jsonPath, err)
	}

	var data []TripSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed trips: parse json: %w", err)
	}

	for i := range data {
		if err := normalizeTripSeed(&data[i], i); err != nil {
			return err
		}
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("seed trips: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tripStmt, err := tx.Prepare(rebind(dialect, `
	INSERT INTO trips (trip_id, name, day_count, lodging_name, lodging_lat, lodging_lon)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (trip_id) DO UPDATE
	SET name = excluded.name,
		day_count = excluded.day_count,
		lodging_name = excluded.lodging_name,
		lodging_lat = excluded.lodging_lat,
		lodging_lon = excluded.lodging_lon;
	`))
	if err != nil {
		return fmt.Errorf("seed trips: prepare trip insert: %w", err)
	}
	defer tripStmt.Close()

	activityStmt, err := tx.Prepare(rebind(dialect, `
	INSERT INTO activities (activity_id, trip_id, day_number, name, address, latitude, longitude, order_index, cost)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (activity_id) DO UPDATE
	SET trip_id = excluded.trip_id,
		day_number = excluded.day_number,
		name = excluded.name,
		address = excluded.address,
		latitude = excluded.latitude,
		longitude = excluded.longitude,
		order_index = excluded.order_index,
		cost = excluded.cost;
	`))
	if err != nil {
		return fmt.Errorf("seed trips: prepare activity insert: %w", err)
	}
	defer activityStmt.Close()

	for _, trip := range data {
		var lodgingName sql.NullString
		var lodgingLat, lodgingLon sql.NullFloat64
		if trip.Lodging != nil {
			lodgingName = sql.NullString{String: trip.Lodging.Name, Valid: true}
			lodgingLat = sql.NullFloat64{Float64: trip.Lodging.Latitude, Valid: true}
			lodgingLon = sql.NullFloat64{Float64: trip.Lodging.Longitude, Valid: true}
		}

		if _, err := tripStmt.Exec(trip.TripID, trip.Name, trip.DayCount, lodgingName, lodgingLat, lodgingLon); err != nil {
			return fmt.Errorf("seed trips: insert trip_id=%s: %w", trip.TripID, err)
		}

		orderInDay := make(map[int]int)
		for _, a := range trip.Activities {
			order := orderInDay[a.DayNumber]
			orderInDay[a.DayNumber]++

			if _, err := activityStmt.Exec(
				a.ActivityID, trip.TripID, a.DayNumber, a.Name, a.Address,
				nullFloat(a.Latitude), nullFloat(a.Longitude), order, a.Cost,
			); err != nil {
				return fmt.Errorf("seed trips: insert activity_id=%s: %w", a.ActivityID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed trips: commit tx: %w", err)
	}

	return nil
}

func normalizeTripSeed(trip *TripSeed, idx int) error {
	trip.Name = strings.TrimSpace(trip.Name)
	if trip.Name == "" {
		return fmt.Errorf("seed trips: trip at index %d: name cannot be empty", idx+1)
	}
	if trip.DayCount <= 0 {
		return fmt.Errorf("seed trips: trip %q: invalid day_count %d", trip.Name, trip.DayCount)
	}

	if trip.TripID == "" {
		trip.TripID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("trip:"+trip.Name)).String()
	} else if _, err := uuid.Parse(trip.TripID); err != nil {
		return fmt.Errorf("seed trips: trip %q: invalid trip_id: %w", trip.Name, err)
	}
	tripUUID := uuid.MustParse(trip.TripID)

	for i := range trip.Activities {
		a := &trip.Activities[i]
		a.Name = strings.TrimSpace(a.Name)
		if a.Name == "" {
			return fmt.Errorf("seed trips: trip %q activity at index %d: name cannot be empty", trip.Name, i+1)
		}
		if a.DayNumber < 1 || a.DayNumber > trip.DayCount {
			return fmt.Errorf("seed trips: trip %q activity %q: day_number %d outside 1..%d",
				trip.Name, a.Name, a.DayNumber, trip.DayCount)
		}
		if (a.Latitude == nil) != (a.Longitude == nil) {
			return fmt.Errorf("seed trips: trip %q activity %q: latitude and longitude must be set together",
				trip.Name, a.Name)
		}
		if a.ActivityID == "" {
			a.ActivityID = uuid.NewSHA1(tripUUID, []byte(fmt.Sprintf("%d/%d/%s", a.DayNumber, i, a.Name))).String()
		}
	}

	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
