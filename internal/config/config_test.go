package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/proctor/internal/config"
)

const baseConfig = `
shutdown_timeout = "20s"
version = "1.2.0"

[server]
port = 9090

[database]
name = "proctor"
user = "proctor"
password = "proctor"

[storage]
connection_string = "UseDevelopmentStorage=true"

[api]
max_message_size = "32KB"

[api.openapi]
title = "Exam Proctor"

[api.pagination]
default_page_size = 25
max_page_size = 50

[monitor]
focus_window = "8s"
restricted = ["phone", "smartwatch"]
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadBaseConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.BaseConfigFile, baseConfig)
	t.Chdir(dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"shutdown_timeout", cfg.ShutdownTimeoutDuration(), 20 * time.Second},
		{"version", cfg.Version, "1.2.0"},
		{"server.port", cfg.Server.Port, 9090},
		{"server.host default", cfg.Server.Host, "0.0.0.0"},
		{"database.name", cfg.Database.Name, "proctor"},
		{"database.port default", cfg.Database.Port, 5432},
		{"storage.container default", cfg.Storage.ContainerName, "reports"},
		{"api.base_path default", cfg.API.BasePath, "/api"},
		{"api.max_message_size", cfg.API.MaxMessageSizeBytes(), int64(32 * 1024)},
		{"api.openapi.title", cfg.API.OpenAPI.Title, "Exam Proctor"},
		{"api.openapi.description default", cfg.API.OpenAPI.Description, "Live proctoring session monitoring and integrity reporting."},
		{"api.pagination.default", cfg.API.Pagination.DefaultPageSize, 25},
		{"monitor.focus_window", cfg.Monitor.Rules().FocusWindow, 8 * time.Second},
		{"monitor.absence_window default", cfg.Monitor.Rules().AbsenceWindow, 15 * time.Second},
		{"monitor.item_window default", cfg.Monitor.Rules().ItemWindow, 30 * time.Second},
		{"monitor.restricted", strings.Join(cfg.Monitor.Rules().Restricted, ","), "phone,smartwatch"},
		{"monitor.sink_buffer default", cfg.Monitor.SinkBuffer, 256},
		{"monitor.retention default", cfg.Monitor.RetentionDuration(), 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.BaseConfigFile, baseConfig)
	writeFile(t, dir, "config.staging.toml", `
[server]
port = 7070

[monitor]
item_window = "45s"
`)
	t.Chdir(dir)
	t.Setenv(config.EnvProctorEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env() != "staging" {
		t.Errorf("env = %s, want staging", cfg.Env())
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("overlay port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Monitor.Rules().ItemWindow != 45*time.Second {
		t.Errorf("overlay item_window = %v", cfg.Monitor.Rules().ItemWindow)
	}
	if cfg.Monitor.Rules().FocusWindow != 8*time.Second {
		t.Error("base values should survive the overlay")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.BaseConfigFile, baseConfig)
	t.Chdir(dir)

	t.Setenv(config.EnvServerPort, "6060")
	t.Setenv("PROCTOR_DB_HOST", "db.internal")
	t.Setenv(config.EnvAPIMaxMessageSize, "1KB")
	t.Setenv(config.EnvMonitorRestricted, "earbuds, phone")
	t.Setenv(config.EnvMonitorAbsenceWindow, "20s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 6060 {
		t.Errorf("port = %d, want 6060", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("db host = %s", cfg.Database.Host)
	}
	if cfg.API.MaxMessageSizeBytes() != 1024 {
		t.Errorf("max message size = %d", cfg.API.MaxMessageSizeBytes())
	}
	if got := cfg.Monitor.Rules().Restricted; len(got) != 2 || got[0] != "earbuds" {
		t.Errorf("restricted = %v", got)
	}
	if cfg.Monitor.Rules().AbsenceWindow != 20*time.Second {
		t.Errorf("absence window = %v", cfg.Monitor.Rules().AbsenceWindow)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.BaseConfigFile, baseConfig)
	writeFile(t, dir, config.DotEnvFile, "PROCTOR_VERSION=9.9.9\n")
	t.Chdir(dir)
	t.Setenv(config.EnvProctorVersion, "")
	os.Unsetenv(config.EnvProctorVersion)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Version != "9.9.9" {
		t.Errorf("version = %s, want 9.9.9 from .env", cfg.Version)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing database name", `
[database]
user = "proctor"
[storage]
connection_string = "UseDevelopmentStorage=true"
`, "database"},
		{"valid", baseConfig, ""},
		{"bad message size", strings.Replace(baseConfig, `"32KB"`, `"lots"`, 1), "max_message_size"},
		{"non-positive window", strings.Replace(baseConfig, `focus_window = "8s"`, `focus_window = "0s"`, 1), "focus_window"},
		{"bad shutdown timeout", strings.Replace(baseConfig, `"20s"`, `"soon"`, 1), "shutdown_timeout"},
		{"zero sink buffer", strings.Replace(baseConfig, "[monitor]", "[monitor]\nsink_buffer = -1", 1), "sink_buffer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, config.BaseConfigFile, tt.content)
			t.Chdir(dir)

			_, err := config.Load()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}
