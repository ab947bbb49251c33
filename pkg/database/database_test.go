package database_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/JaimeStill/proctor/pkg/database"
)

func testConfig() database.Config {
	return database.Config{
		Host:            "localhost",
		Port:            5432,
		Name:            "proctor",
		User:            "proctor",
		Password:        "secret",
		SSLMode:         "disable",
		MaxOpenConns:    42,
		MaxIdleConns:    7,
		ConnMaxLifetime: "10m",
		ConnTimeout:     "3s",
	}
}

func TestNewReturnsLazySystem(t *testing.T) {
	cfg := testConfig()

	sys, err := database.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn := sys.Connection()
	if conn == nil {
		t.Fatal("Connection() returned nil")
	}
	defer conn.Close()

	if sys.Ready() {
		t.Error("system should not be ready before the startup ping")
	}

	if got := conn.Stats().MaxOpenConnections; got != 42 {
		t.Errorf("MaxOpenConnections = %d, want 42", got)
	}
}
