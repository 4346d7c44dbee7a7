package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"itinerary-route-service/internal/optimizer"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps service and adapter errors onto HTTP statuses.
// Unexpected errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, services.ErrNothingToOptimize):
		writeError(w, r, http.StatusUnprocessableEntity, "nothing to optimize: no activity has coordinates")
	case optimizer.IsInputError(err):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "optimization timed out")
	default:
		logger.Error(op+" failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func tripIDParam(r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func dayParam(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
