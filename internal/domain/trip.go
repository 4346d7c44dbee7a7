package domain

// Represents a planned trip. Lodging is optional; when set it is used as
// the origin of every day's route.
type Trip struct {
	TripID   string
	Name     string
	DayCount int
	Lodging  *Origin
}

// Represents a scheduled activity on one day of a trip.
// Latitude and longitude are nullable: activities without a location are
// kept in the itinerary but never take part in route optimization.
type Activity struct {
	ActivityID string
	TripID     string
	DayNumber  int
	Name       string
	Address    string
	Lat        *float64
	Lon        *float64
	OrderIndex int
	Cost       float64
}

// Stop adapts an activity to an optimizer stop.
// It returns false when the activity has no coordinates.
func (a *Activity) Stop() (*Stop, bool) {
	if a.Lat == nil || a.Lon == nil {
		return nil, false
	}
	return &Stop{
		ID:          a.ActivityID,
		Name:        a.Name,
		Coordinates: Coordinates{Lat: *a.Lat, Lon: *a.Lon},
	}, true
}

// A single day of a trip with its activities in their current order.
type Day struct {
	DayNumber  int
	Activities []*Activity
}

// Stops returns the coordinate-bearing activities of the day as stops,
// preserving their current order.
func (d *Day) Stops() []*Stop {
	stops := make([]*Stop, 0, len(d.Activities))
	for _, a := range d.Activities {
		if s, ok := a.Stop(); ok {
			stops = append(stops, s)
		}
	}
	return stops
}
