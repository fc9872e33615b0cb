package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/pkg/logger"
)

// EventsHandler handles the events list and event selection.
type EventsHandler struct {
	deps        Dependencies
	waitTimeout time.Duration
	logger      logger.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies, waitTimeout time.Duration, log logger.Logger) *EventsHandler {
	return &EventsHandler{deps: deps, waitTimeout: waitTimeout, logger: log}
}

type eventsResponse struct {
	Events []model.Event `json:"events"`
	Count  int           `json:"count"`
}

func newEventsResponse(events []model.Event) eventsResponse {
	if events == nil {
		events = []model.Event{}
	}
	return eventsResponse{Events: events, Count: len(events)}
}

// HandleList handles GET /api/events with the last loaded list.
func (h *EventsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newEventsResponse(h.deps.Events()))
}

// HandleReload handles POST /api/events/reload. The list is fetched
// synchronously; failures surface as 502 with the upstream message.
func (h *EventsHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload_events"
	if err := h.deps.LoadEvents(r.Context()); err != nil {
		h.logger.Warn(r.Context(), "reloading events failed", logger.Error(err))
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventsResponse(h.deps.Events()))
}

// HandleGet handles GET /api/events/{eventID}.
func (h *EventsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_event"
	id := chi.URLParam(r, "eventID")
	e, ok := h.deps.Event(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", wrap(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleSelect handles POST /api/events/{eventID}/select. Loads run in the
// background; see respondView for the ?wait flag.
func (h *EventsHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	const op = "api.select_event"
	id := strings.TrimSpace(chi.URLParam(r, "eventID"))
	if err := h.deps.SelectEvent(r.Context(), id); err != nil {
		writeServiceError(w, op, err)
		return
	}
	respondView(w, r, h.deps, h.waitTimeout)
}
