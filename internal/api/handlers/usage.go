package handlers

import (
	"itinerary-route-service/internal/adapters/usage"
	"itinerary-route-service/internal/api/dto"
	"itinerary-route-service/internal/ports"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type UsageHandler struct {
	Tracker ports.UsageTracker
	Logger  *zap.Logger
	Now     func() time.Time
}

// Summary reports the current month's API usage and estimated cost.
func (h *UsageHandler) Summary(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	s, err := h.Tracker.Summary(r.Context(), now())
	if err != nil {
		writeServiceError(w, r, h.Logger, "usage summary", err)
		return
	}

	res := dto.UsageResponse{
		Month:      s.Month,
		APIs:       make(map[string]dto.UsageAPIResponse, len(s.Requests)),
		TotalCost:  s.TotalCost,
		FreeTier:   usage.FreeTierLimit,
		Percentage: s.Percentage,
		IsWarning:  s.IsWarning,
		IsDanger:   s.IsDanger,
	}
	for _, api := range ports.AllAPITypes {
		res.APIs[string(api)] = dto.UsageAPIResponse{Requests: s.Requests[api], Cost: s.Costs[api]}
	}

	writeJSON(w, r, http.StatusOK, res)
}
