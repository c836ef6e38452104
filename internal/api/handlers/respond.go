package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/pokedex/internal/domain"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps a domain error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidEntry):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrListChanged):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFetchFailed), errors.Is(err, domain.ErrMutationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op, zap.Error(err))
	} else {
		logger.Debug(op, zap.Int("status", status), zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}
