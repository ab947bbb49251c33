package reports

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/pkg/handlers"
	"github.com/JaimeStill/proctor/pkg/routes"
)

var errInvalidID = errors.New("invalid session id")

// Handler provides HTTP endpoints for session reports.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "reports"),
	}
}

// Routes returns the route group definition for report endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/reports",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Generate, OpenAPI: generateOp},
			{Method: "POST", Pattern: "/{id}/archive", Handler: h.Archive, OpenAPI: archiveOp},
			{Method: "GET", Pattern: "/{id}/download", Handler: h.Download, OpenAPI: downloadOp},
		},
	}
}

// Generate returns a freshly computed report.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	report, err := h.sys.Generate(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Archive stores the report of an ended session in blob storage.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	archived, err := h.sys.Archive(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, archived)
}

// Download streams an archived report as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	blob, err := h.sys.Download(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.json"`, id))
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Warn("report download interrupted", "session_id", id, "error", err)
	}
}
