package ports

import (
	"context"
	"errors"
	"itinerary-route-service/internal/domain"
)

// ErrNotFound is returned when a trip or day does not exist.
var ErrNotFound = errors.New("not found")

// Port: a boundary for loading itinerary data and persisting new orders.
type ActivityRepository interface {
	// Retrieve a trip, including its lodging origin when set.
	GetTrip(ctx context.Context, tripID string) (*domain.Trip, error)
	// Retrieve one day's activities in their current order.
	ListDay(ctx context.Context, tripID string, dayNumber int) (*domain.Day, error)
	// Retrieve every day of a trip, including days with no activities.
	ListDays(ctx context.Context, tripID string) ([]*domain.Day, error)
	// Persist order_index for the given activity IDs, in slice order.
	UpdateOrder(ctx context.Context, tripID string, dayNumber int, activityIDs []string) error
}
