package monitor

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/pkg/handlers"
	"github.com/JaimeStill/proctor/pkg/routes"
)

var errInvalidID = errors.New("invalid session id")

// Handler provides HTTP and WebSocket endpoints for live monitors.
type Handler struct {
	sys            System
	logger         *slog.Logger
	maxMessageSize int64
}

// NewHandler creates a Handler. maxMessageSize caps tick bodies and stream frames.
func NewHandler(sys System, logger *slog.Logger, maxMessageSize int64) *Handler {
	return &Handler{
		sys:            sys,
		logger:         logger.With("handler", "monitor"),
		maxMessageSize: maxMessageSize,
	}
}

// Routes returns the route group definition for monitor endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/monitors",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Start, OpenAPI: startOp},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats, OpenAPI: statsOp},
			{Method: "GET", Pattern: "/{id}", Handler: h.Status, OpenAPI: statusOp},
			{Method: "POST", Pattern: "/{id}/ticks", Handler: h.Tick, OpenAPI: tickOp},
			{Method: "GET", Pattern: "/{id}/events", Handler: h.Events, OpenAPI: eventsOp},
			{Method: "POST", Pattern: "/{id}/end", Handler: h.End, OpenAPI: endOp},
			{Method: "GET", Pattern: "/{id}/stream", Handler: h.Stream, OpenAPI: streamOp},
		},
	}
}

// Start opens a session for the candidate named in the request body.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var cmd StartCommand
	if err := handlers.DecodeJSON(w, r, h.maxMessageSize, &cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	s, err := h.sys.Start(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, s)
}

// Status returns the live state of a monitor.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Status(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Tick classifies one perception snapshot.
func (h *Handler) Tick(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var tick engine.Tick
	if err := handlers.DecodeJSON(w, r, h.maxMessageSize, &tick); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Tick(r.Context(), id, tick)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Events returns the in-memory event log of a monitor.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	events, err := h.sys.Events(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, events)
}

// End closes a session and freezes its score.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	s, err := h.sys.End(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Stats reports persistence delivery counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Stats())
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
