package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"aidraw-backend/internal/middleware"
	"aidraw-backend/internal/models"
	"aidraw-backend/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) models.ErrorResponse {
	return models.ErrorResponse{Error: message}
}

// handleServiceError maps typed service errors to status codes. Upstream
// failures keep the provider's message.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *services.ValidationError
		authErr       *services.AuthError
		rateErr       *services.RateLimitError
		upstreamErr   *services.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResp(validationErr.Message))
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusUnauthorized, errorResp(authErr.Message))
	case errors.As(err, &rateErr):
		writeJSON(w, http.StatusTooManyRequests, errorResp(rateErr.Message))
	case errors.As(err, &upstreamErr):
		log.WithFields(log.Fields{
			"provider":        upstreamErr.Provider,
			"upstream_status": upstreamErr.Status,
			"request_id":      r.Header.Get(middleware.RequestIDHeader),
		}).Errorf("Chat error: %s", upstreamErr.Message)
		writeJSON(w, http.StatusInternalServerError, errorResp(upstreamErr.Message))
	default:
		log.WithField("request_id", r.Header.Get(middleware.RequestIDHeader)).WithError(err).Error("Chat error")
		writeJSON(w, http.StatusInternalServerError, errorResp(err.Error()))
	}
}
