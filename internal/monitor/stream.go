package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/pkg/handlers"
)

// Stream message types sent to clients.
const (
	MessageTickResult = "tick_result"
	MessageError      = "error"
	MessageEnded      = "ended"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

// Message is a server to client stream frame.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type streamClient struct {
	conn   *websocket.Conn
	send   chan Message
	done   chan struct{}
	logger *slog.Logger
}

// Stream upgrades to a WebSocket that accepts tick JSON frames and answers
// each with a tick_result or error message. Once the session ends, by a
// tick, the REST end endpoint, or shutdown, the stream sends one ended
// message and closes.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ended, err := h.sys.Done(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "session_id", id, "error", err)
		return
	}

	client := &streamClient{
		conn:   conn,
		send:   make(chan Message, sendBuffer),
		done:   make(chan struct{}),
		logger: h.logger.With("session_id", id, "remote", r.RemoteAddr),
	}

	client.logger.Info("stream connected")

	go client.writePump(ended, func() Message {
		return h.endedMessage(id)
	})
	client.readPump(r.Context(), h.maxMessageSize, func(ctx context.Context, tick engine.Tick) (*TickResult, error) {
		return h.sys.Tick(ctx, id, tick)
	})

	client.logger.Info("stream disconnected")
}

func (c *streamClient) readPump(
	ctx context.Context,
	limit int64,
	process func(context.Context, engine.Tick) (*TickResult, error),
) {
	defer func() {
		close(c.send)
		<-c.done
		c.conn.Close()
	}()

	if limit > 0 {
		c.conn.SetReadLimit(limit)
	}
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("stream read failed", "error", err)
			}
			return
		}

		var tick engine.Tick
		if err := json.Unmarshal(data, &tick); err != nil {
			c.write(errorMessage(fmt.Errorf("%w: %v", handlers.ErrInvalidBody, err)))
			continue
		}

		result, err := process(ctx, tick)
		if err != nil {
			c.write(errorMessage(err))
			continue
		}

		if result.State == engine.Ended {
			return
		}

		c.write(Message{Type: MessageTickResult, Payload: result})
	}
}

func (c *streamClient) writePump(ended <-chan struct{}, final func() Message) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				select {
				case <-ended:
					c.finish(final())
				default:
					c.closeNormal()
				}
				return
			}
			if !c.writeJSON(msg) {
				return
			}
		case <-ended:
			if !c.flush() {
				return
			}
			c.finish(final())
			c.conn.SetReadDeadline(time.Now().Add(writeWait))
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

func (c *streamClient) writeJSON(msg Message) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Warn("stream write failed", "error", err)
		c.conn.Close()
		return false
	}
	return true
}

// flush writes the messages already queued without waiting for more.
func (c *streamClient) flush() bool {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return true
			}
			if !c.writeJSON(msg) {
				return false
			}
		default:
			return true
		}
	}
}

func (c *streamClient) finish(msg Message) {
	if c.writeJSON(msg) {
		c.closeNormal()
	}
}

func (c *streamClient) closeNormal() {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
}

func (c *streamClient) write(msg Message) {
	select {
	case c.send <- msg:
	case <-c.done:
	}
}

func (h *Handler) endedMessage(id uuid.UUID) Message {
	result := TickResult{Events: []engine.Event{}, State: engine.Ended}
	if s, err := h.sys.Status(id); err == nil {
		result.Score = s.Score
		result.State = s.State
	}
	return Message{Type: MessageEnded, Payload: result}
}

func errorMessage(err error) Message {
	return Message{
		Type: MessageError,
		Payload: map[string]any{
			"error":  err.Error(),
			"status": MapHTTPStatus(err),
		},
	}
}
