package video

import (
	"net/http"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Screen *Screen
}

func NewHandler(baseHandler *transport.BaseHandler, screen *Screen) *Handler {
	return &Handler{BaseHandler: baseHandler, Screen: screen}
}

// List handles GET /videos
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.Screen.Videos.Query(r.Context(), listing.ParseQuery(r.URL.Query()))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// Create handles POST /videos
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := h.DecodeJSON(r, &form); err != nil {
		h.WriteError(w, r, err)
		return
	}
	form.ID = ""
	h.save(w, r, form, http.StatusCreated)
}

// Update handles PUT /videos/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := h.DecodeJSON(r, &form); err != nil {
		h.WriteError(w, r, err)
		return
	}
	form.ID = datamodel.ID(chi.URLParam(r, "id"))
	h.save(w, r, form, http.StatusOK)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, form Form, status int) {
	toast, err := h.Screen.Save(r.Context(), form)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, status, listing.ToastResponse{Toast: toast})
}

// Delete handles DELETE /videos/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	toast, err := h.Screen.Delete(r.Context(), datamodel.ID(chi.URLParam(r, "id")))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, listing.ToastResponse{Toast: toast})
}
