// Package export renders optimized routes for map clients.
package export

import (
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/optimizer"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func point(c domain.Coordinates) orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// DayRoute builds a FeatureCollection with one Point per stop, in visiting
// order, and a LineString of the path. With an origin the origin is added as
// its own Point and the line starts and ends there.
func DayRoute(result optimizer.DayResult, origin *domain.Origin) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := make(orb.LineString, 0, len(result.Stops)+2)
	if origin != nil {
		f := geojson.NewFeature(point(origin.Coordinates))
		f.Properties["kind"] = "origin"
		f.Properties["name"] = origin.Name
		fc.Append(f)
		line = append(line, point(origin.Coordinates))
	}

	for i, s := range result.Stops {
		f := geojson.NewFeature(point(s.Coordinates))
		f.ID = s.ID
		f.Properties["kind"] = "stop"
		f.Properties["id"] = s.ID
		f.Properties["name"] = s.Name
		f.Properties["position"] = i + 1
		fc.Append(f)
		line = append(line, point(s.Coordinates))
	}

	if origin != nil && len(result.Stops) > 0 {
		line = append(line, point(origin.Coordinates))
	}

	if len(line) >= 2 {
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["closed_loop"] = origin != nil
		f.Properties["distance_km"] = result.DistanceKm
		f.Properties["optimized"] = result.Optimized
		fc.Append(f)
	}

	return fc
}
