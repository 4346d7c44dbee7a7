package handlers

import (
	"context"
	"itinerary-route-service/internal/api/dto"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/export"
	"itinerary-route-service/internal/services"
	"net/http"

	"go.uber.org/zap"
)

// PlanService is the subset of services.Planner the handlers need.
type PlanService interface {
	PlanDay(ctx context.Context, tripID string, dayNumber int) (*services.DayPlan, error)
	PreviewDay(ctx context.Context, tripID string, dayNumber int) (*services.DayPlan, error)
	PlanTrip(ctx context.Context, tripID string) (*services.TripPlan, error)
}

type PlanHandler struct {
	Planner PlanService
	Logger  *zap.Logger
}

// OptimizeDay reorders one day's activities and persists the result.
func (h *PlanHandler) OptimizeDay(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid trip id")
		return
	}
	day, ok := dayParam(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid day number")
		return
	}

	plan, err := h.Planner.PlanDay(r.Context(), tripID, day)
	if err != nil {
		writeServiceError(w, r, h.Logger, "optimize day", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dayPlanResponse(plan))
}

// OptimizeTrip reorders every day of a trip and persists the results.
func (h *PlanHandler) OptimizeTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid trip id")
		return
	}

	plan, err := h.Planner.PlanTrip(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, r, h.Logger, "optimize trip", err)
		return
	}

	res := dto.TripPlanResponse{
		TripID: plan.TripID,
		Origin: originResponse(plan.Origin),
		Days:   make([]dto.DayPlanResponse, 0, len(plan.Days)),
	}
	for _, d := range plan.Days {
		res.Days = append(res.Days, dayPlanResponse(d))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// DayRoute renders the optimized route of a day as GeoJSON without
// persisting the order.
func (h *PlanHandler) DayRoute(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid trip id")
		return
	}
	day, ok := dayParam(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid day number")
		return
	}

	plan, err := h.Planner.PreviewDay(r.Context(), tripID, day)
	if err != nil {
		writeServiceError(w, r, h.Logger, "day route", err)
		return
	}

	raw, err := export.DayRoute(plan.Result, plan.Origin).MarshalJSON()
	if err != nil {
		writeServiceError(w, r, h.Logger, "day route", err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		h.Logger.Warn("write failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func originResponse(o *domain.Origin) *dto.OriginResponse {
	if o == nil {
		return nil
	}
	return &dto.OriginResponse{Name: o.Name, Latitude: o.Coordinates.Lat, Longitude: o.Coordinates.Lon}
}

func dayPlanResponse(p *services.DayPlan) dto.DayPlanResponse {
	res := dto.DayPlanResponse{
		TripID:            p.TripID,
		DayNumber:         p.DayNumber,
		Optimized:         p.Result.Optimized,
		Persisted:         p.Persisted,
		ClosedLoop:        p.Result.ClosedLoop,
		InitialDistanceKm: p.Result.InitialDistanceKm,
		DistanceKm:        p.Result.DistanceKm,
		Iterations:        p.Result.Stats.Iterations,
		Truncated:         p.Result.Stats.Truncated,
		Activities:        make([]dto.ActivityResponse, 0, len(p.Activities)),
	}
	for _, a := range p.Activities {
		res.Activities = append(res.Activities, dto.ActivityResponse{
			ActivityID: a.ActivityID,
			Name:       a.Name,
			Address:    a.Address,
			Latitude:   a.Lat,
			Longitude:  a.Lon,
			OrderIndex: a.OrderIndex,
			Cost:       a.Cost,
		})
	}
	return res
}
