package export

import (
	"encoding/json"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/optimizer"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hotel = &domain.Origin{Name: "hotel", Coordinates: domain.Coordinates{Lat: 35.69, Lon: 139.70}}
	east  = &domain.Stop{ID: "e", Name: "East", Coordinates: domain.Coordinates{Lat: 35.75, Lon: 139.70}}
	far   = &domain.Stop{ID: "f", Name: "Far", Coordinates: domain.Coordinates{Lat: 35.60, Lon: 139.70}}
)

func TestDayRouteWithOrigin(t *testing.T) {
	fc := DayRoute(optimizer.DayResult{
		Stops:      []*domain.Stop{east, far},
		Optimized:  true,
		ClosedLoop: true,
		DistanceKm: 33.36,
	}, hotel)

	require.Len(t, fc.Features, 4)
	assert.Equal(t, "origin", fc.Features[0].Properties["kind"])
	assert.Equal(t, orb.Point{139.70, 35.69}, fc.Features[0].Geometry)

	assert.Equal(t, "e", fc.Features[1].Properties["id"])
	assert.Equal(t, 1, fc.Features[1].Properties["position"])
	assert.Equal(t, orb.Point{139.70, 35.75}, fc.Features[1].Geometry)
	assert.Equal(t, 2, fc.Features[2].Properties["position"])

	route := fc.Features[3]
	ls, ok := route.Geometry.(orb.LineString)
	require.True(t, ok)
	require.Len(t, ls, 4)
	assert.Equal(t, ls[0], ls[len(ls)-1])
	assert.Equal(t, true, route.Properties["closed_loop"])
	assert.Equal(t, 33.36, route.Properties["distance_km"])
}

func TestDayRouteWithoutOrigin(t *testing.T) {
	fc := DayRoute(optimizer.DayResult{Stops: []*domain.Stop{east, far}, Optimized: true}, nil)

	require.Len(t, fc.Features, 3)
	ls, ok := fc.Features[2].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.LineString{{139.70, 35.75}, {139.70, 35.60}}, ls)
}

func TestDayRouteSingleStopHasNoLine(t *testing.T) {
	fc := DayRoute(optimizer.DayResult{Stops: []*domain.Stop{east}}, nil)
	require.Len(t, fc.Features, 1)

	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"FeatureCollection"`)
}
