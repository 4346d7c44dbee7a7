package usage

import (
	"context"
	"itinerary-route-service/internal/ports"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryTracker keeps usage counts in process memory. Counts are lost on
// restart.
type MemoryTracker struct {
	mu     sync.Mutex
	months map[string]map[ports.APIType]int64
	now    func() time.Time
	logger *zap.Logger
}

func NewMemoryTracker(logger *zap.Logger) *MemoryTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryTracker{
		months: make(map[string]map[ports.APIType]int64),
		now:    time.Now,
		logger: logger,
	}
}

func (t *MemoryTracker) Track(_ context.Context, api ports.APIType, count int64) error {
	if err := validate(api, count); err != nil {
		return err
	}

	month := MonthKey(t.now())

	t.mu.Lock()
	counts, ok := t.months[month]
	if !ok {
		counts = make(map[ports.APIType]int64)
		t.months[month] = counts
	}
	counts[api] += count
	s := Summarize(month, counts)
	t.mu.Unlock()

	alert(t.logger, api, count, s)
	return nil
}

func (t *MemoryTracker) Summary(_ context.Context, at time.Time) (ports.UsageSummary, error) {
	month := MonthKey(at)

	t.mu.Lock()
	defer t.mu.Unlock()
	return Summarize(month, t.months[month]), nil
}

func (t *MemoryTracker) Reset(_ context.Context, at time.Time) error {
	t.mu.Lock()
	delete(t.months, MonthKey(at))
	t.mu.Unlock()
	return nil
}
