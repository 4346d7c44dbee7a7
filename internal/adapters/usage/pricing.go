// Package usage records billable external API usage per calendar month and
// estimates its cost against the monthly free tier.
package usage

import (
	"errors"
	"fmt"
	"itinerary-route-service/internal/ports"
	"time"

	"go.uber.org/zap"
)

const (
	// FreeTierLimit is the monthly credit in USD.
	FreeTierLimit = 200.0

	WarningPercent = 75.0
	DangerPercent  = 90.0
)

var ErrUnknownAPI = errors.New("unknown api type")

// Cost in USD per 1,000 requests or elements.
var costPer1000 = map[ports.APIType]float64{
	ports.APIMaps:           7,
	ports.APIPlaces:         17,
	ports.APIDistanceMatrix: 5,
	ports.APIGeocoding:      5,
	ports.APIOptimization:   0,
}

// Cost estimates the USD cost of count units of api.
func Cost(api ports.APIType, count int64) float64 {
	return float64(count) / 1000 * costPer1000[api]
}

// MonthKey formats the UTC calendar month of t, e.g. "2026-10".
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Summarize turns raw per-API counts into a cost summary.
func Summarize(month string, requests map[ports.APIType]int64) ports.UsageSummary {
	s := ports.UsageSummary{
		Month:    month,
		Requests: make(map[ports.APIType]int64, len(ports.AllAPITypes)),
		Costs:    make(map[ports.APIType]float64, len(ports.AllAPITypes)),
	}
	for _, api := range ports.AllAPITypes {
		n := requests[api]
		c := Cost(api, n)
		s.Requests[api] = n
		s.Costs[api] = c
		s.TotalCost += c
	}
	s.Percentage = s.TotalCost / FreeTierLimit * 100
	s.IsWarning = s.Percentage >= WarningPercent
	s.IsDanger = s.Percentage >= DangerPercent
	return s
}

func validate(api ports.APIType, count int64) error {
	if _, ok := costPer1000[api]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAPI, api)
	}
	if count < 0 {
		return fmt.Errorf("usage count must be non-negative, got %d", count)
	}
	return nil
}

// alert logs once when a Track call moves usage across a threshold.
func alert(logger *zap.Logger, api ports.APIType, count int64, after ports.UsageSummary) {
	before := after.Percentage - Cost(api, count)/FreeTierLimit*100
	fields := []zap.Field{
		zap.String("month", after.Month),
		zap.Float64("total_cost", after.TotalCost),
		zap.Float64("percentage", after.Percentage),
	}
	switch {
	case before < DangerPercent && after.Percentage >= DangerPercent:
		logger.Error("api usage above danger threshold", fields...)
	case before < WarningPercent && after.Percentage >= WarningPercent:
		logger.Warn("api usage above warning threshold", fields...)
	}
}
