package usage

import (
	"context"
	"fmt"
	"itinerary-route-service/internal/ports"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counters outlive their month so the previous month can still be read.
const keyTTL = 400 * 24 * time.Hour

// RedisTracker stores one counter per month and API type, e.g.
// "usage:2026-10:distance_matrix". Counters are shared by every process
// pointed at the same Redis.
type RedisTracker struct {
	client *redis.Client
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

func NewRedisTracker(client *redis.Client, logger *zap.Logger) *RedisTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTracker{
		client: client,
		prefix: "usage",
		now:    time.Now,
		logger: logger,
	}
}

// NewRedisTrackerFromURL parses a redis:// URL and pings the server.
func NewRedisTrackerFromURL(ctx context.Context, url string, logger *zap.Logger) (*RedisTracker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisTracker(client, logger), nil
}

func (t *RedisTracker) key(month string, api ports.APIType) string {
	return t.prefix + ":" + month + ":" + string(api)
}

func (t *RedisTracker) Track(ctx context.Context, api ports.APIType, count int64) error {
	if err := validate(api, count); err != nil {
		return err
	}

	month := MonthKey(t.now())
	key := t.key(month, api)

	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.IncrBy(ctx, key, count)
		pipe.Expire(ctx, key, keyTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("track usage %s: %w", key, err)
	}

	s, err := t.summary(ctx, month)
	if err != nil {
		return err
	}
	alert(t.logger, api, count, s)
	return nil
}

func (t *RedisTracker) Summary(ctx context.Context, at time.Time) (ports.UsageSummary, error) {
	return t.summary(ctx, MonthKey(at))
}

func (t *RedisTracker) summary(ctx context.Context, month string) (ports.UsageSummary, error) {
	keys := make([]string, len(ports.AllAPITypes))
	for i, api := range ports.AllAPITypes {
		keys[i] = t.key(month, api)
	}

	vals, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return ports.UsageSummary{}, fmt.Errorf("read usage %s: %w", month, err)
	}

	counts := make(map[ports.APIType]int64, len(keys))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return ports.UsageSummary{}, fmt.Errorf("parse usage %s: %w", keys[i], err)
		}
		counts[ports.AllAPITypes[i]] = n
	}

	return Summarize(month, counts), nil
}

func (t *RedisTracker) Reset(ctx context.Context, at time.Time) error {
	month := MonthKey(at)
	keys := make([]string, len(ports.AllAPITypes))
	for i, api := range ports.AllAPITypes {
		keys[i] = t.key(month, api)
	}
	if err := t.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("reset usage %s: %w", month, err)
	}
	return nil
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}
