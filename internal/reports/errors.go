package reports

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/proctor/internal/sessions"
	"github.com/JaimeStill/proctor/pkg/storage"
)

// Domain errors for report operations.
var (
	ErrNotArchived   = errors.New("report has not been archived")
	ErrSessionActive = errors.New("session is still active")
)

// MapHTTPStatus maps report, session, and storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotArchived):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionActive):
		return http.StatusConflict
	case errors.Is(err, sessions.ErrNotFound):
		return sessions.MapHTTPStatus(err)
	default:
		return storage.MapHTTPStatus(err)
	}
}
