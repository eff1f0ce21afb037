package notification

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

// ListRecipients handles GET /notifications/recipients
func (h *Handler) ListRecipients(w http.ResponseWriter, r *http.Request) {
	view, err := h.Screen.Recipients.Query(r.Context(), listing.ParseQuery(r.URL.Query()))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// Send handles POST /notifications
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := h.DecodeJSON(r, &form); err != nil {
		h.WriteError(w, r, err)
		return
	}
	toast, err := h.Screen.Send(r.Context(), form)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, listing.ToastResponse{Toast: toast})
}
