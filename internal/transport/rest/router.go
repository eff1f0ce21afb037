package rest

import (
	"log/slog"
	"net/http"

	"github.com/fmastery/admin-console/internal/auth"
	"github.com/fmastery/admin-console/internal/dashboard"
	"github.com/fmastery/admin-console/internal/notification"
	"github.com/fmastery/admin-console/internal/promocode"
	"github.com/fmastery/admin-console/internal/shell"
	"github.com/fmastery/admin-console/internal/subscription"
	"github.com/fmastery/admin-console/internal/ticket"
	"github.com/fmastery/admin-console/internal/transport/middleware"
	"github.com/fmastery/admin-console/internal/transport/openapi"
	"github.com/fmastery/admin-console/internal/user"
	"github.com/fmastery/admin-console/internal/video"
	"github.com/go-chi/chi"
)

// Handlers groups everything the router mounts. A nil handler leaves its routes out.
type Handlers struct {
	Health        *HealthHandler
	Auth          *auth.Handler
	Shell         *shell.Handler
	Dashboard     *dashboard.Handler
	Users         *user.Handler
	Subscriptions *subscription.Handler
	Notifications *notification.Handler
	PromoCodes    *promocode.Handler
	Tickets       *ticket.Handler
	Videos        *video.Handler
}

type RouterConfig struct {
	AllowedOrigins []string
	Gate           middleware.SessionGate
	Validator      *openapi.Validator
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, cfg RouterConfig, logger *slog.Logger) {
	// Apply global middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if cfg.Validator != nil {
		router.Use(cfg.Validator.Middleware)
	}

	// Serve the OpenAPI document at root (outside API prefix)
	router.Get(openapi.DocumentPath, openapi.ServeDocument)
	router.Handle("/swagger/*", openapi.SwaggerHandler())

	// Mount API under /api/v1 to match the document's paths
	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Auth != nil {
			r.Route("/session", func(sr chi.Router) {
				sr.Get("/", h.Auth.Current)
				sr.Post("/login", h.Auth.Login)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		// Everything below needs a signed-in operator
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireSession(cfg.Gate))

			if h.Shell != nil {
				pr.Get("/views", h.Shell.List)
				pr.Post("/views/{view}", h.Shell.Select)
			}

			if h.Dashboard != nil {
				pr.Get("/dashboard", h.Dashboard.Get)
			}

			if h.Users != nil {
				pr.Get("/users", h.Users.List)
			}

			if h.Subscriptions != nil {
				pr.Get("/subscriptions", h.Subscriptions.List)
			}

			if h.Notifications != nil {
				pr.Route("/notifications", func(nr chi.Router) {
					nr.Post("/", h.Notifications.Send)
					nr.Get("/recipients", h.Notifications.ListRecipients)
				})
			}

			if h.PromoCodes != nil {
				pr.Route("/promo-codes", func(pc chi.Router) {
					pc.Get("/", h.PromoCodes.ListCodes)
					pc.Post("/", h.PromoCodes.Generate)
					pc.Get("/available", h.PromoCodes.Available)
					pc.Get("/users", h.PromoCodes.ListUsers)
					pc.Get("/assigned", h.PromoCodes.ListAssigned)
					pc.Post("/assign", h.PromoCodes.Assign)
				})
			}

			if h.Tickets != nil {
				pr.Route("/tickets", func(tr chi.Router) {
					tr.Get("/", h.Tickets.List)
					tr.Get("/analytics", h.Tickets.Analytics)
					tr.Get("/export", h.Tickets.Export)
					tr.Patch("/status", h.Tickets.UpdateStatus)
				})
			}

			if h.Videos != nil {
				pr.Route("/videos", func(vr chi.Router) {
					vr.Get("/", h.Videos.List)
					vr.Post("/", h.Videos.Create)
					vr.Put("/{id}", h.Videos.Update)
					vr.Delete("/{id}", h.Videos.Delete)
				})
			}
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"NOT_FOUND","code":"ROUTE_NOT_FOUND","message":"Not found"}}`))
	})
}
