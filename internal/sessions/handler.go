package sessions

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/pkg/handlers"
	"github.com/JaimeStill/proctor/pkg/pagination"
	"github.com/JaimeStill/proctor/pkg/routes"
)

const searchBodyLimit = 64 << 10

var errInvalidID = errors.New("invalid session id")

// Handler provides HTTP endpoints for persisted session records.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "sessions"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: listOp},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: searchOp},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: findOp},
			{Method: "GET", Pattern: "/{id}/events", Handler: h.Events, OpenAPI: eventsOp},
		},
	}
}

// List returns a paginated list of sessions filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := handlers.DecodeJSON(w, r, searchBodyLimit, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single session by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	s, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Events returns a session's events in timestamp order, optionally filtered
// by the kind and severity query parameters.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	filters, err := EventFiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	events, err := h.sys.Events(r.Context(), id, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, events)
}
