package shell

import (
	"errors"
	"net/http"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Shell *Shell
}

func NewHandler(baseHandler *transport.BaseHandler, shell *Shell) *Handler {
	return &Handler{BaseHandler: baseHandler, Shell: shell}
}

type ViewsResponse struct {
	Active View   `json:"active"`
	Views  []View `json:"views"`
}

// List handles GET /views
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, ViewsResponse{Active: h.Shell.Active(), Views: Views})
}

// Select handles POST /views/{view}. Load failures were toasted already, so the view is
// reported as mounted regardless, unless the session ended.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	view, err := ParseView(chi.URLParam(r, "view"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	err = h.Shell.Select(r.Context(), string(view))
	if errors.Is(err, internal.ErrLoginRequired) || internal.IsType(err, internal.ErrorTypeUnauthorized) {
		h.WriteError(w, r, err)
		return
	}
	if err != nil {
		h.Logger.Warn("view mounted with load failures", "view", view, "error", err)
	}
	h.WriteJSON(w, http.StatusOK, ViewsResponse{Active: h.Shell.Active(), Views: Views})
}
