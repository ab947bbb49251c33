// Package handlers provides response and request helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

var (
	// ErrBodyTooLarge indicates a request body exceeded its size limit.
	ErrBodyTooLarge = errors.New("request body too large")
	// ErrInvalidBody indicates a request body could not be decoded.
	ErrInvalidBody = errors.New("invalid request body")
)

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."}.
// Server errors log at error level; client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// DecodeJSON decodes the request body into dst, reading at most limit bytes.
// A non-positive limit disables the cap.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	body := r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrInvalidBody)
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}
