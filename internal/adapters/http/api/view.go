package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/bassboard/internal/domain/model"
)

// ViewHandler handles tab and row selection and view reads.
type ViewHandler struct {
	deps        Dependencies
	waitTimeout time.Duration
}

// NewViewHandler creates a new view handler.
func NewViewHandler(deps Dependencies, waitTimeout time.Duration) *ViewHandler {
	return &ViewHandler{deps: deps, waitTimeout: waitTimeout}
}

type rowSelectResponse struct {
	Selected bool `json:"selected"`
	viewResponse
}

// HandleSelectTab handles POST /api/tabs/{tab}/select.
func (h *ViewHandler) HandleSelectTab(w http.ResponseWriter, r *http.Request) {
	const op = "api.select_tab"
	tab, err := model.ParseTab(chi.URLParam(r, "tab"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if err := h.deps.SelectTab(r.Context(), tab); err != nil {
		writeServiceError(w, op, err)
		return
	}
	respondView(w, r, h.deps, h.waitTimeout)
}

// HandleSelectRow handles POST /api/rows/{index}/select. An index outside the
// current rows is ignored and answered with selected=false.
func (h *ViewHandler) HandleSelectRow(w http.ResponseWriter, r *http.Request) {
	const op = "api.select_row"
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, fmt.Errorf("%w: index must be an integer", ErrBadRequest)))
		return
	}
	ok := h.deps.SelectRow(r.Context(), index)
	writeJSON(w, http.StatusOK, rowSelectResponse{
		Selected:     ok,
		viewResponse: viewResponse{View: h.deps.Snapshot(), Status: h.deps.Status()},
	})
}

// HandleBack handles POST /api/view/back.
func (h *ViewHandler) HandleBack(w http.ResponseWriter, r *http.Request) {
	h.deps.Back(r.Context())
	writeJSON(w, http.StatusOK, viewResponse{View: h.deps.Snapshot(), Status: h.deps.Status()})
}

// HandleView handles GET /api/view.
func (h *ViewHandler) HandleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, viewResponse{View: h.deps.Snapshot(), Status: h.deps.Status()})
}

// HandleSelected handles GET /api/view/selected.
func (h *ViewHandler) HandleSelected(w http.ResponseWriter, _ *http.Request) {
	const op = "api.selected_row"
	snap := h.deps.Snapshot()
	if snap.Selected == nil {
		writeError(w, http.StatusNotFound, "no_selection", wrap(op, ErrNoSelection))
		return
	}
	writeJSON(w, http.StatusOK, snap.Selected)
}

// HandleStatus handles GET /api/status.
func (h *ViewHandler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Status())
}
