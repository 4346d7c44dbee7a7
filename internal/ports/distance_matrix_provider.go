package ports

import (
	"context"
	"itinerary-route-service/internal/domain"
)

// Distance and travel duration of a single directed leg.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for retrieving directed road distances between coordinates.
// Row i, column j is the leg from points[i] to points[j].
type DistanceMatrixProvider interface {
	GetMatrix(ctx context.Context, points []domain.Coordinates) ([][]DistanceResult, error)
}

// Persistent cache of directed legs keyed by rounded coordinates.
type DistanceCache interface {
	GetMany(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) (map[domain.Coordinates]DistanceResult, error)
	PutMany(ctx context.Context, origin domain.Coordinates, results map[domain.Coordinates]DistanceResult) error
}
