package auth

import (
	"net/http"

	"github.com/fmastery/admin-console/internal/transport"
	"github.com/fmastery/admin-console/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Flow FlowAPI
}

func NewHandler(flow FlowAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Flow:        flow,
	}
}

type SessionResponse struct {
	State   State    `json:"state"`
	Profile *Profile `json:"profile,omitempty"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, r, err)
		return
	}

	profile, err := h.Flow.Login(r.Context(), dto)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SessionResponse{State: StateAuthenticated, Profile: profile})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Flow.Logout(r.Context()); err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SessionResponse{State: h.Flow.State()})
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, SessionResponse{State: h.Flow.State(), Profile: h.Flow.Profile()})
}
