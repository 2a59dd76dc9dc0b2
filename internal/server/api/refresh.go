package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"abbaytv/portal/internal/controller"
	"abbaytv/portal/internal/debounce"
)

// RefreshResponse acknowledges a scheduled reload.
type RefreshResponse struct {
	Status string `json:"status"`
	Page   string `json:"page"`
}

// RefreshHandler collapses bursts of reload requests into one reload.
type RefreshHandler struct {
	ctrl     *controller.Controller
	debounce *debounce.Debouncer
	timeout  time.Duration
}

// NewRefreshHandler reloads at most once per quiet period of wait.
func NewRefreshHandler(ctrl *controller.Controller, wait, timeout time.Duration) *RefreshHandler {
	return &RefreshHandler{
		ctrl:     ctrl,
		debounce: debounce.New(wait),
		timeout:  timeout,
	}
}

// PostRefresh handles POST /v1/refresh[?page=news].
func (h *RefreshHandler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	page := controller.PageIndex
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, ok := controller.PageFromPath(raw)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "Unknown page")
			return
		}
		page = p
	}

	h.debounce.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		ran, err := h.ctrl.Refresh(ctx, page)
		if err != nil {
			log.Error().Err(err).Str("page", string(page)).Msg("Requested refresh failed")
			return
		}
		log.Info().Str("page", string(page)).Bool("ran", ran).Msg("Requested refresh finished")
	})

	hlog.FromRequest(r).Info().Str("page", string(page)).Msg("Refresh scheduled")
	writeJSON(w, r, http.StatusAccepted, RefreshResponse{Status: "scheduled", Page: string(page)})
}

// Stop drops a pending reload.
func (h *RefreshHandler) Stop() {
	h.debounce.Stop()
}
