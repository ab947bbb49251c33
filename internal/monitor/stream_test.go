package monitor_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/internal/monitor"
)

type frame struct {
	Type    string             `json:"type"`
	Payload monitor.TickResult `json:"payload"`
}

func dialStream(t *testing.T, sys monitor.System) (*websocket.Conn, uuid.UUID) {
	t.Helper()

	s, err := sys.Start(t.Context(), monitor.StartCommand{CandidateName: "Alice"})
	require.NoError(t, err)

	srv := httptest.NewServer(setupMux(sys.Handler(maxMessageSize)))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/monitors/" + s.Session.ID.String() + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn, s.Session.ID
}

func TestStreamTickResults(t *testing.T) {
	clock := &fakeClock{now: epoch}
	sys := newRegistry(t, clock, &memorySink{}, 0)
	conn, _ := dialStream(t, sys)

	clock.Advance(time.Second)
	require.NoError(t, conn.WriteJSON(engine.Tick{FaceCount: 2}))

	var got frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, monitor.MessageTickResult, got.Type)
	require.Len(t, got.Payload.Events, 1)
	assert.Equal(t, engine.MultipleFaces, got.Payload.Events[0].Kind)
	assert.Equal(t, 85, got.Payload.Score)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var bad struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&bad))
	assert.Equal(t, monitor.MessageError, bad.Type)
	assert.EqualValues(t, http.StatusBadRequest, bad.Payload["status"])

	require.NoError(t, conn.WriteJSON(engine.Tick{FaceCount: -3}))
	require.NoError(t, conn.ReadJSON(&bad))
	assert.Equal(t, monitor.MessageError, bad.Type)
}

func TestStreamClosesAfterEnd(t *testing.T) {
	sys := newRegistry(t, &fakeClock{now: epoch}, &memorySink{}, 0)
	conn, id := dialStream(t, sys)

	_, err := sys.End(t.Context(), id)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(engine.Tick{FaceCount: 1}))

	var got frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, monitor.MessageEnded, got.Type)
	assert.Equal(t, engine.Ended, got.Payload.State)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestStreamReportsEndWithoutTick(t *testing.T) {
	clock := &fakeClock{now: epoch}
	sys := newRegistry(t, clock, &memorySink{}, 0)
	conn, id := dialStream(t, sys)

	clock.Advance(time.Second)
	require.NoError(t, conn.WriteJSON(engine.Tick{FaceCount: 0}))
	var got frame
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, monitor.MessageTickResult, got.Type)

	_, err := sys.End(t.Context(), id)
	require.NoError(t, err)

	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, monitor.MessageEnded, got.Type)
	assert.Equal(t, engine.Ended, got.Payload.State)
	assert.Equal(t, 85, got.Payload.Score)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestStreamReportsShutdown(t *testing.T) {
	sys := newRegistry(t, &fakeClock{now: epoch}, &memorySink{}, 0)
	conn, _ := dialStream(t, sys)

	require.NoError(t, sys.Shutdown(t.Context()))

	var got frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, monitor.MessageEnded, got.Type)
	assert.Equal(t, 100, got.Payload.Score)
}

func TestStreamRejectsOversizedFrames(t *testing.T) {
	sys := newRegistry(t, &fakeClock{now: epoch}, &memorySink{}, 0)
	conn, _ := dialStream(t, sys)

	big := `{"face_count":1,"detected_objects":["` + strings.Repeat("x", 2*maxMessageSize) + `"]}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(big)))

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
