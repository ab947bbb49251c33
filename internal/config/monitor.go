package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/pkg/environ"
)

const (
	EnvMonitorFocusWindow         = "PROCTOR_MONITOR_FOCUS_WINDOW"
	EnvMonitorAbsenceWindow       = "PROCTOR_MONITOR_ABSENCE_WINDOW"
	EnvMonitorMultipleFacesWindow = "PROCTOR_MONITOR_MULTIPLE_FACES_WINDOW"
	EnvMonitorItemWindow          = "PROCTOR_MONITOR_ITEM_WINDOW"
	EnvMonitorRestricted          = "PROCTOR_MONITOR_RESTRICTED"
	EnvMonitorSinkBuffer          = "PROCTOR_MONITOR_SINK_BUFFER"
	EnvMonitorSinkTimeout         = "PROCTOR_MONITOR_SINK_TIMEOUT"
	EnvMonitorRetention           = "PROCTOR_MONITOR_RETENTION"
)

// MonitorConfig tunes classification windows, restricted items, and the
// asynchronous persistence pipeline.
type MonitorConfig struct {
	FocusWindow         string   `toml:"focus_window"`
	AbsenceWindow       string   `toml:"absence_window"`
	MultipleFacesWindow string   `toml:"multiple_faces_window"`
	ItemWindow          string   `toml:"item_window"`
	Restricted          []string `toml:"restricted"`
	SinkBuffer          int      `toml:"sink_buffer"`
	SinkTimeout         string   `toml:"sink_timeout"`
	Retention           string   `toml:"retention"`
}

// Rules converts the configured windows and labels into classifier rules.
func (c *MonitorConfig) Rules() engine.Rules {
	return engine.Rules{
		FocusWindow:         parse(c.FocusWindow),
		AbsenceWindow:       parse(c.AbsenceWindow),
		MultipleFacesWindow: parse(c.MultipleFacesWindow),
		ItemWindow:          parse(c.ItemWindow),
		Restricted:          append([]string(nil), c.Restricted...),
	}
}

// SinkTimeoutDuration returns SinkTimeout as a time.Duration.
func (c *MonitorConfig) SinkTimeoutDuration() time.Duration {
	return parse(c.SinkTimeout)
}

// RetentionDuration returns how long an ended monitor stays queryable in memory.
func (c *MonitorConfig) RetentionDuration() time.Duration {
	return parse(c.Retention)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MonitorConfig) Finalize() error {
	c.loadDefaults()

	environ.String(EnvMonitorFocusWindow, &c.FocusWindow)
	environ.String(EnvMonitorAbsenceWindow, &c.AbsenceWindow)
	environ.String(EnvMonitorMultipleFacesWindow, &c.MultipleFacesWindow)
	environ.String(EnvMonitorItemWindow, &c.ItemWindow)
	environ.List(EnvMonitorRestricted, &c.Restricted)
	environ.Int(EnvMonitorSinkBuffer, &c.SinkBuffer)
	environ.String(EnvMonitorSinkTimeout, &c.SinkTimeout)
	environ.String(EnvMonitorRetention, &c.Retention)

	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *MonitorConfig) Merge(overlay *MonitorConfig) {
	if overlay.FocusWindow != "" {
		c.FocusWindow = overlay.FocusWindow
	}
	if overlay.AbsenceWindow != "" {
		c.AbsenceWindow = overlay.AbsenceWindow
	}
	if overlay.MultipleFacesWindow != "" {
		c.MultipleFacesWindow = overlay.MultipleFacesWindow
	}
	if overlay.ItemWindow != "" {
		c.ItemWindow = overlay.ItemWindow
	}
	if overlay.Restricted != nil {
		c.Restricted = overlay.Restricted
	}
	if overlay.SinkBuffer != 0 {
		c.SinkBuffer = overlay.SinkBuffer
	}
	if overlay.SinkTimeout != "" {
		c.SinkTimeout = overlay.SinkTimeout
	}
	if overlay.Retention != "" {
		c.Retention = overlay.Retention
	}
}

func (c *MonitorConfig) loadDefaults() {
	d := engine.DefaultRules()
	if c.FocusWindow == "" {
		c.FocusWindow = d.FocusWindow.String()
	}
	if c.AbsenceWindow == "" {
		c.AbsenceWindow = d.AbsenceWindow.String()
	}
	if c.MultipleFacesWindow == "" {
		c.MultipleFacesWindow = d.MultipleFacesWindow.String()
	}
	if c.ItemWindow == "" {
		c.ItemWindow = d.ItemWindow.String()
	}
	if len(c.Restricted) == 0 {
		c.Restricted = d.Restricted
	}
	if c.SinkBuffer == 0 {
		c.SinkBuffer = 256
	}
	if c.SinkTimeout == "" {
		c.SinkTimeout = "5s"
	}
	if c.Retention == "" {
		c.Retention = "10m"
	}
}

func (c *MonitorConfig) validate() error {
	durations := []struct {
		name  string
		value string
	}{
		{"focus_window", c.FocusWindow},
		{"absence_window", c.AbsenceWindow},
		{"multiple_faces_window", c.MultipleFacesWindow},
		{"item_window", c.ItemWindow},
		{"sink_timeout", c.SinkTimeout},
		{"retention", c.Retention},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}

	if c.SinkBuffer < 1 {
		return fmt.Errorf("sink_buffer must be positive")
	}
	return c.Rules().Validate()
}

func parse(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
