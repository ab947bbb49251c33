package sessions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/proctor/internal/engine"
)

// Domain errors for session record operations.
var (
	ErrNotFound      = errors.New("session not found")
	ErrDuplicate     = errors.New("session already exists")
	ErrInvalidFilter = errors.New("invalid filter")
)

// MapHTTPStatus maps session domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidFilter), errors.Is(err, engine.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
