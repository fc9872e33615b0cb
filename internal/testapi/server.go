// Package testapi is a synthetic spreadsheet-backed leaderboard API. It serves
// generated events in one of several key-spelling variants so clients can be
// exercised without the real backend.
package testapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/okian/bassboard/pkg/logger"
)

// Server answers the events and leaderboard endpoints.
type Server struct {
	data     *Dataset
	variant  Variant
	latency  time.Duration
	logger   logger.Logger
	requests atomic.Int64
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer generates a dataset from cfg and serves it.
func NewServer(cfg Config, opts ...Option) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		data:    Generate(cfg),
		variant: cfg.Variant,
		latency: cfg.Latency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("testapi")
	}
	return s
}

// Dataset returns the served data.
func (s *Server) Dataset() *Dataset { return s.data }

// Variant returns the served dialect.
func (s *Server) Variant() Variant { return s.variant }

// Requests returns the number of requests served.
func (s *Server) Requests() int64 { return s.requests.Load() }

// ServeHTTP handles GET ?endpoint=<name>&event_id=<id>. The "action"
// parameter is accepted in place of "endpoint". Failures are reported in the
// envelope with status 200, as the spreadsheet backend does.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !s.delay(r.Context()) {
		return
	}

	q := r.URL.Query()
	action := q.Get("endpoint")
	if action == "" {
		action = q.Get("action")
	}
	eventID := q.Get("event_id")

	s.logger.Debug(r.Context(), "test api request",
		logger.String("action", action),
		logger.String("event_id", eventID),
		logger.String("variant", string(s.variant)),
	)
	writeJSON(w, s.payload(action, eventID))
}

func (s *Server) payload(action, eventID string) map[string]any {
	if action == "events" {
		return s.variant.eventsPayload(s.data)
	}
	b, ok := boards[action]
	if !ok {
		return failure(msgUnknownEndpoint)
	}
	if eventID == "" {
		return failure(msgMissingEventID)
	}
	e, ok := s.data.Event(eventID)
	if !ok {
		return failure(msgEventNotFound)
	}
	return s.variant.boardPayload(e, b)
}

// delay waits out the configured latency. It reports false when the client
// went away first.
func (s *Server) delay(ctx context.Context) bool {
	if s.latency <= 0 {
		return true
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
