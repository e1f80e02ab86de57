package httpapi

import (
	"errors"
	"net/http"

	engine "github.com/kalmanoharan/rebalance-engine"
)

// writeEngineError maps an engine error to the HTTP status the error kinds
// of §7 call for: VALIDATION -> 400, NOT_FOUND/NO_ACTIVE_STRATEGY -> 404,
// anything else -> 500.
func writeEngineError(w http.ResponseWriter, err error) {
	var validationErr *engine.ValidationError
	var notFoundErr *engine.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, "validation failed", err)
	case errors.As(err, &notFoundErr):
		respondError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, engine.ErrNoActiveStrategy):
		respondError(w, http.StatusNotFound, "no active strategy", err)
	default:
		respondError(w, http.StatusInternalServerError, "internal error", err)
	}
}
