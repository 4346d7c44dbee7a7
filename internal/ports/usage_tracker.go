package ports

import (
	"context"
	"time"
)

// External API categories whose usage is billed.
type APIType string

const (
	APIMaps           APIType = "maps"
	APIPlaces         APIType = "places"
	APIDistanceMatrix APIType = "distance_matrix"
	APIGeocoding      APIType = "geocoding"
	APIOptimization   APIType = "optimization"
)

// AllAPITypes lists every tracked category in display order.
var AllAPITypes = []APIType{APIMaps, APIPlaces, APIDistanceMatrix, APIGeocoding, APIOptimization}

// Monthly usage totals with estimated cost against the free tier.
type UsageSummary struct {
	Month      string
	Requests   map[APIType]int64
	Costs      map[APIType]float64
	TotalCost  float64
	Percentage float64
	IsWarning  bool
	IsDanger   bool
}

// Contract for recording external API usage. Implementations are injected
// and scoped explicitly; nothing is tracked through global state.
type UsageTracker interface {
	Track(ctx context.Context, api APIType, count int64) error
	Summary(ctx context.Context, at time.Time) (UsageSummary, error)
	Reset(ctx context.Context, at time.Time) error
}
