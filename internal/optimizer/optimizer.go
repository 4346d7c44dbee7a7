// Package optimizer orders a day's stops to approximately minimize travel
// distance. It solves each day as a small TSP: nearest-neighbor construction
// followed by 2-opt refinement, optionally anchored at a fixed origin.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"itinerary-route-service/internal/domain"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Options configures an Optimizer. The zero value optimizes with Haversine
// distances and no refinement budget.
type Options struct {
	Source        MatrixSource
	Epsilon       float64
	MaxIterations int
	TimeBudget    time.Duration
	Workers       int
	Logger        *zap.Logger
}

// Optimizer is safe for concurrent use; it keeps no state between calls.
type Optimizer struct {
	source        MatrixSource
	epsilon       float64
	maxIterations int
	timeBudget    time.Duration
	workers       int
	logger        *zap.Logger
}

func New(opts Options) *Optimizer {
	o := &Optimizer{
		source:        opts.Source,
		epsilon:       opts.Epsilon,
		maxIterations: opts.MaxIterations,
		timeBudget:    opts.TimeBudget,
		workers:       opts.Workers,
		logger:        opts.Logger,
	}
	if o.source == nil {
		o.source = HaversineSource{}
	}
	if o.epsilon <= 0 {
		o.epsilon = DefaultEpsilon
	}
	if o.workers <= 0 {
		o.workers = defaultWorkers
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// DayResult is the outcome of optimizing one day.
type DayResult struct {
	// Stops in visiting order. The origin is never included.
	Stops []*domain.Stop
	// Optimized is false when there were too few stops to reorder.
	Optimized bool
	// ClosedLoop is true when the tour starts and ends at an origin.
	ClosedLoop bool
	// Tour lengths in km before and after 2-opt, including the closing leg.
	InitialDistanceKm float64
	DistanceKm        float64
	Stats             Stats
}

// DayInput is one day of a multi-day trip.
type DayInput struct {
	DayNumber int
	Stops     []*domain.Stop
}

// OptimizeDay reorders stops for minimal approximate travel distance.
//
// With an origin the tour starts and ends there; without one it is anchored
// at the first stop and closed back to it. Fewer than two stops are returned
// unchanged. The returned slice is new but holds the caller's *Stop values.
func (o *Optimizer) OptimizeDay(
	ctx context.Context,
	stops []*domain.Stop,
	origin *domain.Origin,
) (DayResult, error) {
	if err := validateInput(stops, origin); err != nil {
		return DayResult{}, err
	}

	if len(stops) < 2 {
		return DayResult{
			Stops:      append([]*domain.Stop(nil), stops...),
			ClosedLoop: origin != nil,
		}, nil
	}

	// Node IDs map tour indices back to stops; the origin has no ID.
	points := make([]domain.Coordinates, 0, len(stops)+1)
	nodeIDs := make([]string, 0, len(stops)+1)
	byID := make(map[string]*domain.Stop, len(stops))
	if origin != nil {
		points = append(points, origin.Coordinates)
		nodeIDs = append(nodeIDs, "")
	}
	for _, s := range stops {
		points = append(points, s.Coordinates)
		nodeIDs = append(nodeIDs, s.ID)
		byID[s.ID] = s
	}

	m, err := o.source.Matrix(ctx, points)
	if err != nil {
		return DayResult{}, fmt.Errorf("optimize day: build distance matrix: %w", err)
	}
	if err := m.Validate(len(points)); err != nil {
		return DayResult{}, fmt.Errorf("optimize day: %w", err)
	}

	initial := NearestNeighbor(m, 0)
	refined, stats := TwoOpt(m, initial, o.budget(ctx))
	if err := refined.Validate(len(points)); err != nil {
		return DayResult{}, fmt.Errorf("optimize day: %w", err)
	}

	// Without an origin the anchor stop leads the day and the closing leg is
	// implicit; with one, the origin is stripped from both ends.
	order := refined[:len(refined)-1]
	if origin != nil {
		order = refined.Interior()
	}

	ordered := make([]*domain.Stop, 0, len(stops))
	for _, idx := range order {
		s, ok := byID[nodeIDs[idx]]
		if !ok {
			return DayResult{}, fmt.Errorf("optimize day: %w: node %d has no stop", ErrInvalidTour, idx)
		}
		ordered = append(ordered, s)
	}

	res := DayResult{
		Stops:             ordered,
		Optimized:         true,
		ClosedLoop:        origin != nil,
		InitialDistanceKm: m.TourLength(initial),
		DistanceKm:        m.TourLength(refined),
		Stats:             stats,
	}

	o.logger.Debug("day optimized",
		zap.Int("stops", len(stops)),
		zap.Bool("origin", origin != nil),
		zap.Float64("initial_km", res.InitialDistanceKm),
		zap.Float64("final_km", res.DistanceKm),
		zap.Int("iterations", stats.Iterations),
		zap.Bool("truncated", stats.Truncated),
	)

	return res, nil
}

// OptimizeTrip optimizes every day independently with the same origin.
// Days run concurrently; each writes only its own result slot.
func (o *Optimizer) OptimizeTrip(
	ctx context.Context,
	days []DayInput,
	origin *domain.Origin,
) (map[int]DayResult, error) {
	seen := make(map[int]struct{}, len(days))
	for _, d := range days {
		if _, ok := seen[d.DayNumber]; ok {
			return nil, fmt.Errorf("optimize trip: %w: %d", ErrDuplicateDay, d.DayNumber)
		}
		seen[d.DayNumber] = struct{}{}
	}

	results := make([]DayResult, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, d := range days {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := o.OptimizeDay(gctx, d.Stops, origin)
			if err != nil {
				return fmt.Errorf("optimize trip: day %d: %w", d.DayNumber, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[int]DayResult, len(days))
	for i, d := range days {
		out[d.DayNumber] = results[i]
	}
	return out, nil
}

// budget combines the configured limits with the context deadline,
// whichever comes first.
func (o *Optimizer) budget(ctx context.Context) Budget {
	b := Budget{
		MaxIterations: o.maxIterations,
		Epsilon:       o.epsilon,
	}
	if o.timeBudget > 0 {
		b.Deadline = time.Now().Add(o.timeBudget)
	}
	if dl, ok := ctx.Deadline(); ok && (b.Deadline.IsZero() || dl.Before(b.Deadline)) {
		b.Deadline = dl
	}
	return b
}

func validateInput(stops []*domain.Stop, origin *domain.Origin) error {
	if origin != nil && !origin.Coordinates.Valid() {
		return fmt.Errorf("%w: origin %q (%v, %v)",
			ErrInvalidCoordinates, origin.Name, origin.Coordinates.Lat, origin.Coordinates.Lon)
	}

	seen := make(map[string]struct{}, len(stops))
	for i, s := range stops {
		if s == nil {
			return fmt.Errorf("%w: stop at position %d is nil", ErrInvalidCoordinates, i)
		}
		if !s.Coordinates.Valid() {
			return fmt.Errorf("%w: stop %q (%v, %v)",
				ErrInvalidCoordinates, s.ID, s.Coordinates.Lat, s.Coordinates.Lon)
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateStop, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// IsInputError reports whether err was caused by caller-supplied stops.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidCoordinates) || errors.Is(err, ErrDuplicateStop) || errors.Is(err, ErrDuplicateDay)
}
