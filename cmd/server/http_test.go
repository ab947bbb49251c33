package main

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/proctor/internal/config"
)

func TestHTTPServerCountsUpgradedConnections(t *testing.T) {
	cfg := &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     "5s",
		WriteTimeout:    "5s",
		ShutdownTimeout: "5s",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /plain", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /upgrade", func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := http.NewResponseController(w).Hijack()
		if err != nil {
			t.Errorf("hijack failed: %v", err)
			return
		}
		defer conn.Close()
		buf.WriteString("HTTP/1.1 101 Switching Protocols\r\nConnection: Upgrade\r\nUpgrade: test\r\n\r\n")
		buf.Flush()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := newHTTPServer(cfg, mux, logger)

	ts := httptest.NewUnstartedServer(mux)
	ts.Config.ConnState = srv.http.ConnState
	ts.Start()
	defer ts.Close()

	res, err := http.Get(ts.URL + "/plain")
	if err != nil {
		t.Fatalf("plain request failed: %v", err)
	}
	res.Body.Close()

	conn, err := net.Dial("tcp", ts.Listener.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "GET /upgrade HTTP/1.1\r\nHost: test\r\nConnection: Upgrade\r\nUpgrade: test\r\n\r\n"); err != nil {
		t.Fatalf("write request failed: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	status, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read status failed: %v", err)
	}
	if status != "HTTP/1.1 101 Switching Protocols\r\n" {
		t.Errorf("status line: got %q", status)
	}

	if got := srv.streams.Load(); got != 1 {
		t.Errorf("upgraded connections: got %d, want 1", got)
	}
}
