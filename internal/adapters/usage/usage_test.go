package usage

import (
	"context"
	"itinerary-route-service/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var october = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

func TestSummarizeCosts(t *testing.T) {
	s := Summarize("2026-10", map[ports.APIType]int64{
		ports.APIMaps:           1000,
		ports.APIPlaces:         2000,
		ports.APIDistanceMatrix: 400,
		ports.APIOptimization:   50,
	})

	assert.Equal(t, "2026-10", s.Month)
	assert.InDelta(t, 7.0, s.Costs[ports.APIMaps], 1e-9)
	assert.InDelta(t, 34.0, s.Costs[ports.APIPlaces], 1e-9)
	assert.InDelta(t, 2.0, s.Costs[ports.APIDistanceMatrix], 1e-9)
	assert.Zero(t, s.Costs[ports.APIGeocoding])
	assert.Zero(t, s.Costs[ports.APIOptimization])
	assert.Equal(t, int64(50), s.Requests[ports.APIOptimization])
	assert.InDelta(t, 43.0, s.TotalCost, 1e-9)
	assert.InDelta(t, 21.5, s.Percentage, 1e-9)
	assert.False(t, s.IsWarning)
	assert.False(t, s.IsDanger)
}

func TestSummarizeThresholds(t *testing.T) {
	// 30,000 distance matrix elements cost $150, exactly 75 %.
	s := Summarize("2026-10", map[ports.APIType]int64{ports.APIDistanceMatrix: 30000})
	assert.True(t, s.IsWarning)
	assert.False(t, s.IsDanger)

	s = Summarize("2026-10", map[ports.APIType]int64{ports.APIDistanceMatrix: 36000})
	assert.InDelta(t, 90.0, s.Percentage, 1e-9)
	assert.True(t, s.IsWarning)
	assert.True(t, s.IsDanger)
}

func TestMonthKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, "2026-09", MonthKey(time.Date(2026, time.October, 1, 3, 0, 0, 0, loc)))
}

func newRedisTracker(t *testing.T, logger *zap.Logger) *RedisTracker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tr := NewRedisTracker(client, logger)
	tr.now = func() time.Time { return october }
	return tr
}

func newMemoryTracker(logger *zap.Logger) *MemoryTracker {
	tr := NewMemoryTracker(logger)
	tr.now = func() time.Time { return october }
	return tr
}

func TestTrackers(t *testing.T) {
	trackers := map[string]func(*testing.T, *zap.Logger) ports.UsageTracker{
		"memory": func(_ *testing.T, l *zap.Logger) ports.UsageTracker { return newMemoryTracker(l) },
		"redis":  func(t *testing.T, l *zap.Logger) ports.UsageTracker { return newRedisTracker(t, l) },
	}

	for name, mk := range trackers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			core, logs := observer.New(zapcore.WarnLevel)
			tr := mk(t, zap.New(core))

			require.NoError(t, tr.Track(ctx, ports.APIDistanceMatrix, 16))
			require.NoError(t, tr.Track(ctx, ports.APIDistanceMatrix, 9))
			require.NoError(t, tr.Track(ctx, ports.APIOptimization, 1))

			s, err := tr.Summary(ctx, october)
			require.NoError(t, err)
			assert.Equal(t, int64(25), s.Requests[ports.APIDistanceMatrix])
			assert.Equal(t, int64(1), s.Requests[ports.APIOptimization])
			assert.InDelta(t, 0.125, s.TotalCost, 1e-9)
			assert.Zero(t, logs.Len())

			// Other months are independent.
			s, err = tr.Summary(ctx, october.AddDate(0, -1, 0))
			require.NoError(t, err)
			assert.Zero(t, s.TotalCost)

			// Crossing 75 % logs one warning; staying above it does not log again.
			require.NoError(t, tr.Track(ctx, ports.APIDistanceMatrix, 30000))
			require.NoError(t, tr.Track(ctx, ports.APIDistanceMatrix, 10))
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)

			// Crossing 90 % logs at error level.
			require.NoError(t, tr.Track(ctx, ports.APIDistanceMatrix, 6000))
			require.Equal(t, 2, logs.Len())
			assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)

			require.NoError(t, tr.Reset(ctx, october))
			s, err = tr.Summary(ctx, october)
			require.NoError(t, err)
			assert.Zero(t, s.TotalCost)

			assert.ErrorIs(t, tr.Track(ctx, ports.APIType("telemetry"), 1), ErrUnknownAPI)
			assert.Error(t, tr.Track(ctx, ports.APIMaps, -1))
		})
	}
}

func TestRedisTrackerKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	tr := NewRedisTracker(client, nil)
	tr.now = func() time.Time { return october }

	require.NoError(t, tr.Track(context.Background(), ports.APIPlaces, 3))

	v, err := mr.Get("usage:2026-10:places")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
	assert.True(t, mr.TTL("usage:2026-10:places") > 0)
}
