package dto

type OriginResponse struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ActivityResponse struct {
	ActivityID string   `json:"activity_id"`
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	OrderIndex int      `json:"order_index"`
	Cost       float64  `json:"cost"`
}

type DayPlanResponse struct {
	TripID            string             `json:"trip_id"`
	DayNumber         int                `json:"day_number"`
	Optimized         bool               `json:"optimized"`
	Persisted         bool               `json:"persisted"`
	ClosedLoop        bool               `json:"closed_loop"`
	InitialDistanceKm float64            `json:"initial_distance_km"`
	DistanceKm        float64            `json:"distance_km"`
	Iterations        int                `json:"iterations"`
	Truncated         bool               `json:"truncated"`
	Activities        []ActivityResponse `json:"activities"`
}

type TripPlanResponse struct {
	TripID string            `json:"trip_id"`
	Origin *OriginResponse   `json:"origin"`
	Days   []DayPlanResponse `json:"days"`
}
