package cache

import (
	"itinerary-route-service/internal/domain"
	"math"
)

// Key rounds coordinates to 5 decimals (about 1 m), the precision at which
// cached legs are stored and looked up. Callers index results by Key(c).
func Key(c domain.Coordinates) domain.Coordinates {
	return domain.Coordinates{
		Lat: math.Round(c.Lat*1e5) / 1e5,
		Lon: math.Round(c.Lon*1e5) / 1e5,
	}
}

func uniqueKeys(origin domain.Coordinates, destinations []domain.Coordinates) []domain.Coordinates {
	seen := make(map[domain.Coordinates]struct{}, len(destinations))
	uniq := make([]domain.Coordinates, 0, len(destinations))
	for _, d := range destinations {
		k := Key(d)
		if k == origin {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}
