package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"idp-tool/internal/service"
)

// respondJSON writes data as a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondError writes a JSON error body
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service sentinel errors onto HTTP statuses.
// Anything unrecognized becomes a 500 with a generic body.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrShareNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotShareOwner):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrDuplicateShare),
		errors.Is(err, service.ErrFeedbackStarted),
		errors.Is(err, service.ErrFeedbackSubmitted):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrIncompleteFeedback),
		errors.Is(err, service.ErrUnknownRole),
		errors.Is(err, service.ErrUnknownCompetency),
		errors.Is(err, service.ErrInvalidAssessmentLevel),
		errors.Is(err, service.ErrInvalidEmail):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidLoginToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("Request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
