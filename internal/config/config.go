// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"slices"
	"time"
)

// Load policies for the non-active tabs of a newly selected event.
const (
	PolicyEager = "eager"
	PolicyLazy  = "lazy"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address of the API sink, e.g. ":9080".
	Addr string `koanf:"addr"`

	// APIBase is the spreadsheet-backed leaderboard endpoint.
	APIBase string `koanf:"api_base"`

	// ActionParam names the query parameter carrying the logical endpoint.
	// Variants use either "endpoint" or "action".
	ActionParam string `koanf:"action_param"`

	// EventIDParam names the query parameter carrying the event id.
	EventIDParam string `koanf:"event_id_param"`

	// EventsAction is the endpoint name returning the events list.
	EventsAction string `koanf:"events_action"`

	// TabActions maps a tab key to the endpoint name serving its rows.
	TabActions map[string]string `koanf:"tab_actions"`

	// Tabs lists the enabled tabs in display order.
	Tabs []string `koanf:"tabs"`

	// DefaultTab is active before the user picks one.
	DefaultTab string `koanf:"default_tab"`

	// LoadPolicy is "eager" (fan out every tab on event select) or "lazy".
	LoadPolicy string `koanf:"load_policy"`

	// RequestTimeoutMS bounds each upstream request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RequestsPerMinute rate-limits upstream calls; 0 disables limiting.
	RequestsPerMinute int `koanf:"requests_per_minute"`

	// WholePayloadFallback returns the whole envelope when "data" is absent.
	WholePayloadFallback bool `koanf:"whole_payload_fallback"`

	// CORSAllowOrigins lists browser origins allowed to read the API sink.
	CORSAllowOrigins []string `koanf:"cors_allow_origins"`

	// UserAgent is sent with every upstream request.
	UserAgent string `koanf:"user_agent"`

	// WorkerCount is the number of concurrent leaderboard loaders.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the pending load queue.
	QueueSize int `koanf:"queue_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		Addr:         ":9080",
		APIBase:      "http://localhost:9090/exec",
		ActionParam:  "endpoint",
		EventIDParam: "event_id",
		EventsAction: "events",
		TabActions: map[string]string{
			"total":  "leaderboard",
			"day1":   "day1",
			"day2":   "day2",
			"season": "season",
		},
		Tabs:                 []string{"total", "day1", "day2", "season"},
		DefaultTab:           "total",
		LoadPolicy:           PolicyEager,
		RequestTimeoutMS:     15_000,
		RequestsPerMinute:    0,
		WholePayloadFallback: true,
		CORSAllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		UserAgent:   "bassboard/1.0",
		WorkerCount: 4,
		QueueSize:   64,
	}
}

// RequestTimeout returns the upstream timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.APIBase == "":
		return fmt.Errorf("%w: api_base must not be empty", ErrInvalidConfig)
	case c.ActionParam == "":
		return fmt.Errorf("%w: action_param must not be empty", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.RequestsPerMinute < 0:
		return fmt.Errorf("%w: requests_per_minute must not be negative", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.LoadPolicy != PolicyEager && c.LoadPolicy != PolicyLazy:
		return fmt.Errorf("%w: load_policy must be %q or %q", ErrInvalidConfig, PolicyEager, PolicyLazy)
	case len(c.Tabs) == 0:
		return fmt.Errorf("%w: tabs must not be empty", ErrInvalidConfig)
	case !slices.Contains(c.Tabs, c.DefaultTab):
		return fmt.Errorf("%w: default_tab %q is not an enabled tab", ErrInvalidConfig, c.DefaultTab)
	}
	for _, tab := range c.Tabs {
		if c.TabActions[tab] == "" {
			return fmt.Errorf("%w: tab %q has no entry in tab_actions", ErrInvalidConfig, tab)
		}
	}
	return nil
}
