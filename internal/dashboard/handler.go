package dashboard

import (
	"net/http"

	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Screen *Screen
}

func NewHandler(baseHandler *transport.BaseHandler, screen *Screen) *Handler {
	return &Handler{BaseHandler: baseHandler, Screen: screen}
}

// Get handles GET /dashboard. search and sort apply to the user table. A failed stats load
// still answers with placeholders, as the view does.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q := listing.ParseQuery(r.URL.Query())
	if q.Refresh || !h.Screen.Stats.Loaded() {
		_ = h.Screen.Stats.Load(r.Context())
	}
	if q.Refresh || !h.Screen.Subscriptions.Loaded() {
		_ = h.Screen.Subscriptions.Load(r.Context())
	}
	if _, err := h.Screen.Users.Query(r.Context(), q); err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Screen.Summary())
}
