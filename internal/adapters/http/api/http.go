// Package api serves the dashboard over HTTP: a JSON render sink for browser
// clients and a control surface for selecting events, tabs and rows.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	service "github.com/okian/bassboard/internal/app"
	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/internal/domain/viewstate"
	"github.com/okian/bassboard/pkg/logger"
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	LoadEvents(ctx context.Context) error
	Events() []model.Event
	Event(id string) (model.Event, bool)

	SelectEvent(ctx context.Context, eventID string) error
	SelectTab(ctx context.Context, tab model.Tab) error
	SelectRow(ctx context.Context, index int) bool
	Back(ctx context.Context)

	Snapshot() viewstate.Snapshot
	Status() service.Status
	WaitIdle(ctx context.Context) error
}

// Default server configuration constants.
const (
	defaultWaitTimeout = 10 * time.Second
)

// Server wires HTTP routes for the dashboard API.
type Server struct {
	origins     []string
	waitTimeout time.Duration
	routes      []func(chi.Router)
	logger      logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	eventsHandler *EventsHandler
	viewHandler   *ViewHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{waitTimeout: defaultWaitTimeout}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(stats)
	s.eventsHandler = NewEventsHandler(deps, s.waitTimeout, s.logger)
	s.viewHandler = NewViewHandler(deps, s.waitTimeout)
	return s
}

// Handler builds the router with every route attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Cache-Control"},
		AllowCredentials: false,
	}).Handler)

	s.Register(r)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", MetricsMiddleware(s.eventsHandler.HandleList, "events"))
		r.Post("/events/reload", MetricsMiddleware(s.eventsHandler.HandleReload, "events_reload"))
		r.Get("/events/{eventID}", MetricsMiddleware(s.eventsHandler.HandleGet, "event"))
		r.Post("/events/{eventID}/select", MetricsMiddleware(s.eventsHandler.HandleSelect, "event_select"))

		r.Post("/tabs/{tab}/select", MetricsMiddleware(s.viewHandler.HandleSelectTab, "tab_select"))
		r.Post("/rows/{index}/select", MetricsMiddleware(s.viewHandler.HandleSelectRow, "row_select"))
		r.Post("/view/back", MetricsMiddleware(s.viewHandler.HandleBack, "view_back"))
		r.Get("/view", MetricsMiddleware(s.viewHandler.HandleView, "view"))
		r.Get("/view/selected", MetricsMiddleware(s.viewHandler.HandleSelected, "view_selected"))
		r.Get("/status", MetricsMiddleware(s.viewHandler.HandleStatus, "status"))
	})

	for _, fn := range s.routes {
		fn(r)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// viewResponse pairs the view with the status line so clients render both
// from one response.
type viewResponse struct {
	View   viewstate.Snapshot `json:"view"`
	Status service.Status     `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service failures to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyEventID):
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
	case errors.Is(err, model.ErrUnknownTab):
		writeError(w, http.StatusNotFound, "unknown_tab", wrap(op, err))
	case errors.Is(err, service.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", wrap(op, ErrBackpressure))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_started", wrap(op, err))
	default:
		writeError(w, http.StatusBadGateway, "upstream_error", wrap(op, err))
	}
}

// wantsWait reports whether the caller asked to block until loads settle.
func wantsWait(r *http.Request) bool {
	switch r.URL.Query().Get("wait") {
	case "1", "true", "yes":
		return true
	}
	return false
}

// respondView answers a control request with the current view. With ?wait
// the pending loads are awaited first and the answer is 200, otherwise 202.
func respondView(w http.ResponseWriter, r *http.Request, deps Dependencies, waitTimeout time.Duration) {
	status := http.StatusAccepted
	if wantsWait(r) {
		ctx, cancel := context.WithTimeout(r.Context(), waitTimeout)
		defer cancel()
		if err := deps.WaitIdle(ctx); err != nil {
			writeError(w, http.StatusGatewayTimeout, "timeout", wrap("api.wait", err))
			return
		}
		status = http.StatusOK
	}
	writeJSON(w, status, viewResponse{View: deps.Snapshot(), Status: deps.Status()})
}
