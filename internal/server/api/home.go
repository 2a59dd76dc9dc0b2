package api

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"abbaytv/portal/internal/controller"
	"abbaytv/portal/internal/query"
)

// HomeHandler serves the landing page sections.
type HomeHandler struct {
	ctrl *controller.Controller
	now  func() time.Time
}

// NewHomeHandler creates a new handler instance.
func NewHomeHandler(ctrl *controller.Controller) *HomeHandler {
	return &HomeHandler{ctrl: ctrl, now: time.Now}
}

// GetHome handles GET /v1/home. With a search term of at least two
// characters it returns matches from every collection instead.
func (h *HomeHandler) GetHome(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(term) >= query.MinSearchLength {
		writeJSON(w, r, http.StatusOK, h.ctrl.SearchAll(term))
		return
	}

	writeJSON(w, r, http.StatusOK, h.ctrl.Home(h.now()))
}
