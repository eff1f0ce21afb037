package user

import (
	"context"
	"net/http"

	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/transport"
)

type ControllerAPI interface {
	Query(ctx context.Context, q listing.Query) (listing.View[User], error)
}

type Handler struct {
	*transport.BaseHandler
	Users ControllerAPI
}

func NewHandler(baseHandler *transport.BaseHandler, users ControllerAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Users:       users,
	}
}

// List handles GET /users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.Users.Query(r.Context(), listing.ParseQuery(r.URL.Query()))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}
