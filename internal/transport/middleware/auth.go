package middleware

import (
	"net/http"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/pkg/logger"
)

// SessionGate reports whether an operator is signed in and who it is.
type SessionGate interface {
	Authenticated() bool
}

// RequireSession answers 401 LOGIN_REQUIRED while no operator is signed in.
func RequireSession(gate SessionGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Authenticated() {
				logger.From(r.Context()).Debug("request rejected without session", "path", r.URL.Path)
				writeAppError(w, internal.ErrLoginRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
