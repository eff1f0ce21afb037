package ticket

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

// List handles GET /tickets
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.Screen.Tickets.Query(r.Context(), listing.ParseQuery(r.URL.Query()))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// UpdateStatus handles PATCH /tickets/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var form StatusForm
	if err := h.DecodeJSON(r, &form); err != nil {
		h.WriteError(w, r, err)
		return
	}
	toast, err := h.Screen.UpdateStatus(r.Context(), form)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, listing.ToastResponse{Toast: toast})
}

// Analytics handles GET /tickets/analytics
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.Screen.Analytics(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statuses": a,
		"total":    a.Total(),
	})
}

// Export handles GET /tickets/export; it honours the same search and sort as the list.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Screen.Tickets.Query(r.Context(), listing.ParseQuery(r.URL.Query())); err != nil {
		h.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFileName(h.Screen.now())+`"`)
	if _, err := h.Screen.Export(w); err != nil {
		h.Logger.Error("Export: failed to write tickets", "error", err)
	}
}
