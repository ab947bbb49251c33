package monitor

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/pkg/handlers"
)

// Domain errors for live monitor operations.
var (
	ErrNotFound     = errors.New("monitor not found")
	ErrShuttingDown = errors.New("monitor registry is shutting down")
)

// MapHTTPStatus maps monitor and engine errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, handlers.ErrBodyTooLarge),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrShuttingDown):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
