package optimizer

import (
	"itinerary-route-service/internal/domain"
	"math/rand/v2"
)

func stop(id string, lat, lon float64) *domain.Stop {
	return &domain.Stop{ID: id, Name: id, Coordinates: domain.Coordinates{Lat: lat, Lon: lon}}
}

func ids(stops []*domain.Stop) []string {
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.ID)
	}
	return out
}

func randomMatrix(r *rand.Rand, n int, symmetric bool) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || (symmetric && j < i) {
				continue
			}
			m[i][j] = 1 + r.Float64()*50
			if symmetric {
				m[j][i] = m[i][j]
			}
		}
	}
	return m
}

func randomStops(r *rand.Rand, n int) []*domain.Stop {
	stops := make([]*domain.Stop, 0, n)
	for i := 0; i < n; i++ {
		stops = append(stops, stop(string(rune('a'+i)), 35.5+r.Float64()*0.4, 139.5+r.Float64()*0.4))
	}
	return stops
}

// permutations calls fn with every ordering of xs. xs is reused between calls.
func permutations(xs []int, fn func([]int)) {
	var rec func(k int)
	rec = func(k int) {
		if k == len(xs) {
			fn(xs)
			return
		}
		for i := k; i < len(xs); i++ {
			xs[k], xs[i] = xs[i], xs[k]
			rec(k + 1)
			xs[k], xs[i] = xs[i], xs[k]
		}
	}
	rec(0)
}
