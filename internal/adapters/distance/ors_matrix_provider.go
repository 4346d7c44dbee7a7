package distance

import (
	"context"
	"errors"
	"fmt"
	"itinerary-route-service/internal/adapters/cache"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org"
	defaultProfile = "foot-walking"
)

// ORSMatrixProvider implements DistanceMatrixProvider using OpenRouteService.
//
// It coordinates:
//   - Persistent distance caching keyed by rounded coordinates
//   - External matrix calls with retry/backoff
//   - Usage tracking for the elements actually fetched
//
// The provider is safe for concurrent use.
type ORSMatrixProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	distanceCache ports.DistanceCache
	usage         ports.UsageTracker
	logger        *zap.Logger
}

func NewORSMatrixProvider(
	apiKey string,
	profile string,
	distanceCache ports.DistanceCache,
	usage ports.UsageTracker,
	logger *zap.Logger,
) (*ORSMatrixProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if profile == "" {
		profile = defaultProfile
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	provider := &ORSMatrixProvider{
		session:       &http.Client{Timeout: 10 * time.Second},
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		profile:       profile,
		distanceCache: distanceCache,
		usage:         usage,
		logger:        logger,
	}

	return provider, nil
}

// GetMatrix returns directed legs between every pair of points. Cached legs
// are served without a network call; a single miss fetches the full matrix.
// Points that round to the same key are treated as zero-length legs.
func (o *ORSMatrixProvider) GetMatrix(
	ctx context.Context,
	points []domain.Coordinates,
) (_ [][]ports.DistanceResult, err error) {
	defer obs.Time(ctx, o.logger, "ors.GetMatrix")(&err)

	n := len(points)
	out := make([][]ports.DistanceResult, n)
	for i := range out {
		out[i] = make([]ports.DistanceResult, n)
	}
	if n < 2 {
		return out, nil
	}

	keys := make([]domain.Coordinates, n)
	for i, p := range points {
		keys[i] = cache.Key(p)
	}

	missing := 0
	for i := range points {
		hits := map[domain.Coordinates]ports.DistanceResult{}
		// Check persistent distance cache before issuing external API calls.
		if o.distanceCache != nil {
			hits, err = o.distanceCache.GetMany(ctx, keys[i], keys)
			if err != nil {
				return nil, fmt.Errorf("ORS get distance cache: %w", err)
			}
		}
		for j := range points {
			if keys[i] == keys[j] {
				continue
			}
			r, ok := hits[keys[j]]
			if !ok {
				missing++
				continue
			}
			out[i][j] = r
		}
	}

	if missing == 0 {
		return out, nil
	}

	fetched, err := o.fetchMatrix(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix: %w", err)
	}

	if o.usage != nil {
		if err := o.usage.Track(ctx, ports.APIDistanceMatrix, int64(n*n)); err != nil {
			o.logger.Warn("usage tracking failed", zap.Error(err))
		}
	}

	for i := range points {
		row := make(map[domain.Coordinates]ports.DistanceResult, n-1)
		for j := range points {
			if keys[i] == keys[j] {
				continue
			}
			out[i][j] = fetched[i][j]
			row[keys[j]] = fetched[i][j]
		}

		if o.distanceCache != nil && len(row) > 0 {
			if err := o.distanceCache.PutMany(ctx, keys[i], row); err != nil {
				o.logger.Warn("distance cache write failed", zap.Error(err))
			}
		}
	}

	return out, nil
}
