package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// statusFor translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrMissingMessage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSerialization):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrRejected):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrBrokerUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// mapError writes err for read endpoints; unknown errors are not echoed.
func mapError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}

// publishError writes a failed publish as "<prefix>: <cause>".
func publishError(w http.ResponseWriter, prefix string, err error) {
	respondError(w, statusFor(err), prefix+": "+err.Error())
}
