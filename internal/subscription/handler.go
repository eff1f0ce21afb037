package subscription

import (
	"context"
	"net/http"

	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/transport"
)

type ControllerAPI interface {
	Query(ctx context.Context, q listing.Query) (listing.View[Subscription], error)
}

type Handler struct {
	*transport.BaseHandler
	Subscriptions ControllerAPI
}

func NewHandler(baseHandler *transport.BaseHandler, subs ControllerAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Subscriptions: subs}
}

// List handles GET /subscriptions
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.Subscriptions.Query(r.Context(), listing.ParseQuery(r.URL.Query()))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}
