package optimizer

import (
	"context"
	"fmt"
	"itinerary-route-service/internal/domain"
	"math"
)

// DistanceFunc computes the travel cost between two points.
type DistanceFunc func(a, b domain.Coordinates) float64

// Matrix holds pairwise travel costs in kilometers. Cell [i][j] is the cost
// of going from point i to point j. Diagonal cells are always 0.
type Matrix [][]float64

// MatrixSource produces a distance matrix for an ordered list of points.
// Implementations may call external services; the optimizer treats the
// result as read-only.
type MatrixSource interface {
	Matrix(ctx context.Context, points []domain.Coordinates) (Matrix, error)
}

// HaversineSource builds straight-line great-circle matrices. It never fails.
type HaversineSource struct{}

func (HaversineSource) Matrix(_ context.Context, points []domain.Coordinates) (Matrix, error) {
	return BuildMatrix(points, Haversine), nil
}

// BuildMatrix evaluates dist for every ordered pair of distinct points.
func BuildMatrix(points []domain.Coordinates, dist DistanceFunc) Matrix {
	n := len(points)
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i != j {
				m[i][j] = dist(points[i], points[j])
			}
		}
	}
	return m
}

// Size returns the number of points the matrix covers.
func (m Matrix) Size() int { return len(m) }

// Symmetric reports whether m[i][j] == m[j][i] for every pair.
func (m Matrix) Symmetric() bool {
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			if m[i][j] != m[j][i] {
				return false
			}
		}
	}
	return true
}

// TourLength sums the cost of consecutive legs of t.
func (m Matrix) TourLength(t Tour) float64 {
	total := 0.0
	for i := 0; i+1 < len(t); i++ {
		total += m[t[i]][t[i+1]]
	}
	return total
}

// Validate checks that m is n×n with a zero diagonal and finite,
// non-negative cells. A single NaN would silently poison every comparison
// in the refinement loop, so it is rejected here.
func (m Matrix) Validate(n int) error {
	if len(m) != n {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidMatrix, n, len(m))
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidMatrix, i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: cell [%d][%d]=%v", ErrInvalidMatrix, i, j, v)
			}
			if i == j && v != 0 {
				return fmt.Errorf("%w: diagonal cell [%d][%d]=%v", ErrInvalidMatrix, i, j, v)
			}
		}
	}
	return nil
}
