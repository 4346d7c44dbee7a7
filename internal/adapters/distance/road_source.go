package distance

import (
	"context"
	"fmt"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/optimizer"
	"itinerary-route-service/internal/ports"
)

// RoadSource adapts a DistanceMatrixProvider to optimizer.MatrixSource.
// Legs are converted from meters to kilometers; the result is usually
// asymmetric.
type RoadSource struct {
	Provider ports.DistanceMatrixProvider
}

func NewRoadSource(p ports.DistanceMatrixProvider) *RoadSource {
	return &RoadSource{Provider: p}
}

func (s *RoadSource) Matrix(ctx context.Context, points []domain.Coordinates) (optimizer.Matrix, error) {
	legs, err := s.Provider.GetMatrix(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("road matrix: %w", err)
	}
	if len(legs) != len(points) {
		return nil, fmt.Errorf("road matrix: expected %d rows, got %d", len(points), len(legs))
	}

	m := make(optimizer.Matrix, len(legs))
	for i, row := range legs {
		if len(row) != len(points) {
			return nil, fmt.Errorf("road matrix: row %d has %d columns, want %d", i, len(row), len(points))
		}
		m[i] = make([]float64, len(row))
		for j, r := range row {
			if i != j {
				m[i][j] = float64(r.DistanceMeters) / 1000
			}
		}
	}
	return m, nil
}
