package distance

import (
	"context"
	"fmt"
	"itinerary-route-service/internal/adapters/cache"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
)

type MockLeg struct {
	From, To domain.Coordinates
	Meters   int
	Seconds  int
}

// MockMatrixProvider serves a fixed set of directed legs. Calls counts how
// many matrices were requested.
type MockMatrixProvider struct {
	m     map[[2]domain.Coordinates]ports.DistanceResult
	Calls int
}

func NewMockMatrixProvider(legs []MockLeg) *MockMatrixProvider {
	m := make(map[[2]domain.Coordinates]ports.DistanceResult, len(legs))
	for _, l := range legs {
		m[[2]domain.Coordinates{cache.Key(l.From), cache.Key(l.To)}] = ports.DistanceResult{
			DistanceMeters:  l.Meters,
			DurationSeconds: l.Seconds,
		}
	}
	return &MockMatrixProvider{m: m}
}

func (p *MockMatrixProvider) GetMatrix(_ context.Context, points []domain.Coordinates) ([][]ports.DistanceResult, error) {
	p.Calls++
	out := make([][]ports.DistanceResult, len(points))
	for i, from := range points {
		out[i] = make([]ports.DistanceResult, len(points))
		for j, to := range points {
			if i == j {
				continue
			}
			r, ok := p.m[[2]domain.Coordinates{cache.Key(from), cache.Key(to)}]
			if !ok {
				return nil, fmt.Errorf("missing leg %v -> %v", from, to)
			}
			out[i][j] = r
		}
	}
	return out, nil
}
