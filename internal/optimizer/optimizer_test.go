package optimizer

import (
	"context"
	"errors"
	"itinerary-route-service/internal/domain"
	"math"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokyoSquare() []*domain.Stop {
	return []*domain.Stop{
		stop("A", 35.68, 139.65),
		stop("B", 35.70, 139.77),
		stop("C", 35.66, 139.70),
		stop("D", 35.71, 139.70),
	}
}

func pathLength(stops []*domain.Stop, origin *domain.Origin) float64 {
	total := 0.0
	for i := 0; i+1 < len(stops); i++ {
		total += Haversine(stops[i].Coordinates, stops[i+1].Coordinates)
	}
	if origin != nil && len(stops) > 0 {
		total += Haversine(origin.Coordinates, stops[0].Coordinates)
		total += Haversine(stops[len(stops)-1].Coordinates, origin.Coordinates)
	}
	return total
}

func TestOptimizeDayTokyoSquareWithoutOrigin(t *testing.T) {
	stops := tokyoSquare()
	res, err := New(Options{}).OptimizeDay(context.Background(), stops, nil)
	require.NoError(t, err)

	assert.True(t, res.Optimized)
	assert.False(t, res.ClosedLoop)
	assert.Equal(t, []string{"A", "C", "B", "D"}, ids(res.Stops))
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, ids(res.Stops))

	// The walked path beats the input order.
	assert.LessOrEqual(t, pathLength(res.Stops, nil), pathLength(stops, nil))

	// The optimized closed loop from A matches exhaustive search.
	best := math.Inf(1)
	permutations([]int{1, 2, 3}, func(p []int) {
		order := []*domain.Stop{stops[0], stops[p[0]], stops[p[1]], stops[p[2]]}
		if l := pathLength(order, nil) + Haversine(order[3].Coordinates, order[0].Coordinates); l < best {
			best = l
		}
	})
	assert.InDelta(t, best, res.DistanceKm, 1e-9)
	assert.InDelta(t, 24.7963, res.DistanceKm, 1e-3)
	assert.InDelta(t, 28.0750, res.InitialDistanceKm, 1e-3)
}

func TestOptimizeDayWithOrigin(t *testing.T) {
	hotel := &domain.Origin{Name: "hotel", Coordinates: domain.Coordinates{Lat: 35.69, Lon: 139.70}}
	stops := []*domain.Stop{
		stop("F", 35.60, 139.70),
		stop("E", 35.75, 139.70),
	}

	res, err := New(Options{}).OptimizeDay(context.Background(), stops, hotel)
	require.NoError(t, err)

	assert.True(t, res.ClosedLoop)
	assert.ElementsMatch(t, []string{"E", "F"}, ids(res.Stops))
	// Nearest to the hotel is E (6.7 km north) so the tour heads there first.
	assert.Equal(t, []string{"E", "F"}, ids(res.Stops))
	assert.LessOrEqual(t, res.DistanceKm, res.InitialDistanceKm)
	assert.InDelta(t, pathLength(res.Stops, hotel), res.DistanceKm, 1e-9)
	for _, s := range res.Stops {
		assert.NotEqual(t, "hotel", s.Name)
	}
}

func TestOptimizeDayTrivialInputsUnchanged(t *testing.T) {
	opt := New(Options{})
	hotel := &domain.Origin{Name: "hotel", Coordinates: domain.Coordinates{Lat: 1, Lon: 1}}

	for _, origin := range []*domain.Origin{nil, hotel} {
		res, err := opt.OptimizeDay(context.Background(), nil, origin)
		require.NoError(t, err)
		assert.Empty(t, res.Stops)
		assert.False(t, res.Optimized)

		one := []*domain.Stop{stop("solo", 10, 10)}
		res, err = opt.OptimizeDay(context.Background(), one, origin)
		require.NoError(t, err)
		require.Len(t, res.Stops, 1)
		assert.Same(t, one[0], res.Stops[0])
		assert.False(t, res.Optimized)
	}
}

func TestOptimizeDayReturnsPermutationOfSameStops(t *testing.T) {
	r := rand.New(rand.NewPCG(2024, 10))
	opt := New(Options{})
	hotel := &domain.Origin{Name: "hotel", Coordinates: domain.Coordinates{Lat: 35.7, Lon: 139.7}}

	for trial := 0; trial < 40; trial++ {
		stops := randomStops(r, 2+trial%15)
		input := append([]*domain.Stop(nil), stops...)

		var origin *domain.Origin
		if trial%2 == 0 {
			origin = hotel
		}

		res, err := opt.OptimizeDay(context.Background(), stops, origin)
		require.NoError(t, err)
		require.Len(t, res.Stops, len(stops))

		seen := make(map[*domain.Stop]bool, len(stops))
		for _, s := range res.Stops {
			require.False(t, seen[s], "stop %q returned twice", s.ID)
			seen[s] = true
		}
		for _, s := range stops {
			require.True(t, seen[s], "stop %q missing", s.ID)
		}

		// Caller's slice is untouched.
		assert.Equal(t, input, stops)
		assert.LessOrEqual(t, res.DistanceKm, res.InitialDistanceKm+1e-9)
	}
}

func TestOptimizeDayIsDeterministic(t *testing.T) {
	r := rand.New(rand.NewPCG(77, 1))
	stops := randomStops(r, 12)
	hotel := &domain.Origin{Name: "hotel", Coordinates: domain.Coordinates{Lat: 35.6, Lon: 139.6}}

	first, err := New(Options{}).OptimizeDay(context.Background(), stops, hotel)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := New(Options{}).OptimizeDay(context.Background(), stops, hotel)
		require.NoError(t, err)
		assert.Equal(t, ids(first.Stops), ids(again.Stops))
	}
}

func TestOptimizeDayRejectsInvalidInput(t *testing.T) {
	opt := New(Options{})
	ctx := context.Background()

	_, err := opt.OptimizeDay(ctx, []*domain.Stop{stop("a", 1, 1), stop("b", math.NaN(), 1)}, nil)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = opt.OptimizeDay(ctx, []*domain.Stop{stop("a", 1, 1), stop("b", 91, 1)}, nil)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = opt.OptimizeDay(ctx, []*domain.Stop{stop("a", 1, 1), nil}, nil)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	badOrigin := &domain.Origin{Name: "nowhere", Coordinates: domain.Coordinates{Lat: 0, Lon: math.Inf(-1)}}
	_, err = opt.OptimizeDay(ctx, []*domain.Stop{stop("a", 1, 1), stop("b", 2, 2)}, badOrigin)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = opt.OptimizeDay(ctx, []*domain.Stop{stop("a", 1, 1), stop("a", 2, 2)}, nil)
	assert.ErrorIs(t, err, ErrDuplicateStop)
	assert.True(t, IsInputError(err))
}

type fakeSource struct {
	matrix Matrix
	err    error
	calls  int
}

func (f *fakeSource) Matrix(_ context.Context, points []domain.Coordinates) (Matrix, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.matrix != nil {
		return f.matrix, nil
	}
	return BuildMatrix(points, Haversine), nil
}

func TestOptimizeDayUsesMatrixSource(t *testing.T) {
	ctx := context.Background()
	stops := tokyoSquare()

	boom := errors.New("matrix service down")
	_, err := New(Options{Source: &fakeSource{err: boom}}).OptimizeDay(ctx, stops, nil)
	assert.ErrorIs(t, err, boom)

	_, err = New(Options{Source: &fakeSource{matrix: Matrix{{0, 1}, {1, 0}}}}).OptimizeDay(ctx, stops, nil)
	assert.ErrorIs(t, err, ErrInvalidMatrix)

	poisoned := BuildMatrix([]domain.Coordinates{{}, {}, {}, {}}, func(a, b domain.Coordinates) float64 { return 1 })
	poisoned[1][2] = math.NaN()
	_, err = New(Options{Source: &fakeSource{matrix: poisoned}}).OptimizeDay(ctx, stops, nil)
	assert.ErrorIs(t, err, ErrInvalidMatrix)

	src := &fakeSource{}
	res, err := New(Options{Source: src}).OptimizeDay(ctx, stops, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, []string{"A", "C", "B", "D"}, ids(res.Stops))
}

func TestOptimizeDayHonoursIterationBudget(t *testing.T) {
	r := rand.New(rand.NewPCG(8, 8))
	stops := randomStops(r, 15)

	res, err := New(Options{MaxIterations: 1}).OptimizeDay(context.Background(), stops, nil)
	require.NoError(t, err)
	require.Len(t, res.Stops, 15)
	assert.LessOrEqual(t, res.Stats.Iterations, 1)
	assert.LessOrEqual(t, res.DistanceKm, res.InitialDistanceKm)
}

func TestOptimizeDayExpiredContextKeepsConstructionTour(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Millisecond))
	defer cancel()

	res, err := New(Options{}).OptimizeDay(ctx, tokyoSquare(), nil)
	require.NoError(t, err)
	assert.True(t, res.Stats.Truncated)
	assert.Equal(t, []string{"A", "C", "D", "B"}, ids(res.Stops))
	assert.Equal(t, res.InitialDistanceKm, res.DistanceKm)
}

func TestOptimizeTripMatchesPerDayResults(t *testing.T) {
	r := rand.New(rand.NewPCG(31, 4))
	hotel := &domain.Origin{Name: "hotel", Coordinates: domain.Coordinates{Lat: 35.7, Lon: 139.7}}

	days := []DayInput{
		{DayNumber: 1, Stops: randomStops(r, 6)},
		{DayNumber: 2, Stops: nil},
		{DayNumber: 3, Stops: randomStops(r, 1)},
		{DayNumber: 4, Stops: randomStops(r, 11)},
		{DayNumber: 5, Stops: tokyoSquare()},
	}

	opt := New(Options{Workers: 3})
	trip, err := opt.OptimizeTrip(context.Background(), days, hotel)
	require.NoError(t, err)
	require.Len(t, trip, len(days))

	dayNumbers := make([]int, 0, len(trip))
	for n := range trip {
		dayNumbers = append(dayNumbers, n)
	}
	sort.Ints(dayNumbers)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, dayNumbers)

	for _, d := range days {
		alone, err := opt.OptimizeDay(context.Background(), d.Stops, hotel)
		require.NoError(t, err)
		assert.Equal(t, ids(alone.Stops), ids(trip[d.DayNumber].Stops), "day %d", d.DayNumber)
		assert.Equal(t, alone.DistanceKm, trip[d.DayNumber].DistanceKm, "day %d", d.DayNumber)
	}
	assert.Empty(t, trip[2].Stops)
	assert.False(t, trip[3].Optimized)
}

func TestOptimizeTripErrors(t *testing.T) {
	opt := New(Options{})
	ctx := context.Background()

	_, err := opt.OptimizeTrip(ctx, []DayInput{{DayNumber: 1}, {DayNumber: 1}}, nil)
	assert.ErrorIs(t, err, ErrDuplicateDay)

	_, err = opt.OptimizeTrip(ctx, []DayInput{
		{DayNumber: 1, Stops: tokyoSquare()},
		{DayNumber: 2, Stops: []*domain.Stop{stop("x", 1, 1), stop("y", 1, 200)}},
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}
