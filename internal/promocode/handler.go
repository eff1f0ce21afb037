package promocode

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

// ListCodes handles GET /promo-codes
func (h *Handler) ListCodes(w http.ResponseWriter, r *http.Request) {
	view, err := h.Screen.Codes.Query(r.Context(), listing.ParseQuery(r.URL.Query()))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// ListAssigned handles GET /promo-codes/assigned
func (h *Handler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	view, err := h.Screen.Assigned.Query(r.Context(), listing.ParseQuery(r.URL.Query()))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// ListUsers handles GET /promo-codes/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	view, err := h.Screen.Users.Query(r.Context(), listing.ParseQuery(r.URL.Query()))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// Available handles GET /promo-codes/available?type=monthly
func (h *Handler) Available(w http.ResponseWriter, r *http.Request) {
	promoType := r.URL.Query().Get("type")
	if promoType == "" {
		promoType = TypeMonthly
	}
	if !h.Screen.Codes.Loaded() {
		if err := h.Screen.Codes.Load(r.Context()); err != nil {
			h.WriteError(w, r, err)
			return
		}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"promoType": promoType,
		"codes":     h.Screen.AvailableCodes(promoType),
	})
}

// Generate handles POST /promo-codes
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var form GenerateForm
	if err := h.DecodeJSON(r, &form); err != nil {
		h.WriteError(w, r, err)
		return
	}
	toast, err := h.Screen.Generate(r.Context(), form)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, listing.ToastResponse{Toast: toast})
}

// Assign handles POST /promo-codes/assign
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var form AssignForm
	if err := h.DecodeJSON(r, &form); err != nil {
		h.WriteError(w, r, err)
		return
	}
	toast, err := h.Screen.Assign(r.Context(), form)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, listing.ToastResponse{Toast: toast})
}
