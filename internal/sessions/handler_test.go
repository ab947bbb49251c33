package sessions_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/internal/sessions"
	"github.com/JaimeStill/proctor/pkg/integrity"
	"github.com/JaimeStill/proctor/pkg/pagination"
)

var pageConfig = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

type mockSystem struct {
	listFn   func(ctx context.Context, page pagination.PageRequest, filters sessions.Filters) (*pagination.PageResult[engine.Session], error)
	findFn   func(ctx context.Context, id uuid.UUID) (*engine.Session, error)
	eventsFn func(ctx context.Context, id uuid.UUID, filters sessions.EventFilters) ([]engine.Event, error)
}

func (m *mockSystem) Handler() *sessions.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters sessions.Filters) (*pagination.PageResult[engine.Session], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*engine.Session, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Events(ctx context.Context, id uuid.UUID, filters sessions.EventFilters) ([]engine.Event, error) {
	return m.eventsFn(ctx, id, filters)
}

func (m *mockSystem) SessionStarted(context.Context, engine.Session) error { return nil }
func (m *mockSystem) EventRecorded(context.Context, engine.Event) error { return nil }
func (m *mockSystem) SessionEnded(context.Context, engine.Session) error { return nil }

func newTestHandler(sys sessions.System) *sessions.Handler {
	return sessions.NewHandler(sys, slog.New(slog.NewTextHandler(io.Discard, nil)), pageConfig)
}

func setupMux(h *sessions.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleSession() engine.Session {
	end := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return engine.Session{
		ID:             uuid.MustParse("6f1c2a4e-8b1d-4c55-9a0e-3d2f7b8c9e01"),
		CandidateName:  "Alice",
		StartTime:      time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		EndTime:        &end,
		IntegrityScore: 85,
	}
}

func TestHandlerList(t *testing.T) {
	s := sampleSession()

	t.Run("returns paginated list", func(t *testing.T) {
		var captured sessions.Filters
		var capturedPage pagination.PageRequest
		sys := &mockSystem{
			listFn: func(_ context.Context, page pagination.PageRequest, f sessions.Filters) (*pagination.PageResult[engine.Session], error) {
				captured, capturedPage = f, page
				result := pagination.NewPageResult([]engine.Session{s}, 1, 1, 20)
				return &result, nil
			},
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/sessions?candidate_name=ali&active=false&sort=-IntegrityScore", nil)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var result pagination.PageResult[engine.Session]
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		require.Len(t, result.Data, 1)
		assert.Equal(t, s.ID, result.Data[0].ID)
		assert.Equal(t, 85, result.Data[0].IntegrityScore)

		require.NotNil(t, captured.CandidateName)
		assert.Equal(t, "ali", *captured.CandidateName)
		require.NotNil(t, captured.Active)
		assert.False(t, *captured.Active)
		require.Len(t, capturedPage.Sort, 1)
		assert.True(t, capturedPage.Sort[0].Descending)
	})

	t.Run("rejects invalid filter", func(t *testing.T) {
		sys := &mockSystem{}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/sessions?min_score=abc", nil)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("system failure is a server error", func(t *testing.T) {
		sys := &mockSystem{
			listFn: func(context.Context, pagination.PageRequest, sessions.Filters) (*pagination.PageResult[engine.Session], error) {
				return nil, fmt.Errorf("connection reset")
			},
		}

		rec := httptest.NewRecorder()
		setupMux(newTestHandler(sys)).ServeHTTP(rec, httptest.NewRequest("GET", "/sessions", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandlerSearch(t *testing.T) {
	var captured sessions.SearchRequest
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, f sessions.Filters) (*pagination.PageResult[engine.Session], error) {
			captured = sessions.SearchRequest{PageRequest: page, Filters: f}
			result := pagination.NewPageResult([]engine.Session{}, 0, page.Page, page.PageSize)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("decodes body", func(t *testing.T) {
		body := `{"page":2,"page_size":500,"sort":"CandidateName","min_score":60,"active":true}`
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/sessions/search", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, captured.Page)
		assert.Equal(t, 100, captured.PageSize)
		require.NotNil(t, captured.MinScore)
		assert.Equal(t, 60, *captured.MinScore)
		require.NotNil(t, captured.Active)
		assert.True(t, *captured.Active)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/sessions/search", strings.NewReader("{")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps invalid filter from system", func(t *testing.T) {
		sys.listFn = func(context.Context, pagination.PageRequest, sessions.Filters) (*pagination.PageResult[engine.Session], error) {
			return nil, sessions.ErrInvalidFilter
		}

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/sessions/search", strings.NewReader(`{"min_score":500}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerFind(t *testing.T) {
	s := sampleSession()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*engine.Session, error) {
			if id != s.ID {
				return nil, sessions.ErrNotFound
			}
			return &s, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/sessions/" + s.ID.String(), http.StatusOK},
		{"not found", "/sessions/" + uuid.New().String(), http.StatusNotFound},
		{"bad id", "/sessions/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandlerEvents(t *testing.T) {
	s := sampleSession()
	events := []engine.Event{
		{ID: uuid.New(), SessionID: s.ID, Kind: engine.FocusLost, Severity: integrity.Major, Timestamp: s.StartTime.Add(time.Minute)},
		{ID: uuid.New(), SessionID: s.ID, Kind: engine.UnauthorizedItem, Severity: integrity.Major, Label: "phone", Timestamp: s.StartTime.Add(2 * time.Minute)},
	}

	var captured sessions.EventFilters
	sys := &mockSystem{
		eventsFn: func(_ context.Context, id uuid.UUID, f sessions.EventFilters) ([]engine.Event, error) {
			if id != s.ID {
				return nil, sessions.ErrNotFound
			}
			captured = f
			return events, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("returns events", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/sessions/"+s.ID.String()+"/events?kind=unauthorized_item", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var got []engine.Event
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, "phone", got[1].Label)
		require.NotNil(t, captured.Kind)
		assert.Equal(t, engine.UnauthorizedItem, *captured.Kind)
		assert.Nil(t, captured.Severity)
	})

	t.Run("unknown kind", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/sessions/"+s.ID.String()+"/events?kind=yawning", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/sessions/"+uuid.New().String()+"/events", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{sessions.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", sessions.ErrDuplicate), http.StatusConflict},
		{sessions.ErrInvalidFilter, http.StatusBadRequest},
		{engine.ErrInvalidInput, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sessions.MapHTTPStatus(tt.err), tt.err.Error())
	}
}
