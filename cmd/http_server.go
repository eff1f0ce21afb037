package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fmastery/admin-console/internal/auth"
	"github.com/fmastery/admin-console/internal/dashboard"
	"github.com/fmastery/admin-console/internal/notification"
	"github.com/fmastery/admin-console/internal/promocode"
	"github.com/fmastery/admin-console/internal/shell"
	"github.com/fmastery/admin-console/internal/subscription"
	"github.com/fmastery/admin-console/internal/ticket"
	"github.com/fmastery/admin-console/internal/transport"
	"github.com/fmastery/admin-console/internal/transport/openapi"
	"github.com/fmastery/admin-console/internal/transport/rest"
	"github.com/fmastery/admin-console/internal/user"
	"github.com/fmastery/admin-console/internal/video"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Serve the console API under /api/v1 with Swagger UI at /swagger/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, startHTTPServer)
	},
}

func startHTTPServer(ctx context.Context, deps *Dependencies) error {
	router, err := setupRoutes(ctx, deps)
	if err != nil {
		return err
	}

	if deps.Objects != nil {
		if err := deps.Objects.EnsureBucket(ctx); err != nil {
			deps.Logger.Warn("object storage unavailable", "error", err)
		}
	}

	cfg := deps.Config.Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "upstream", deps.Config.API.BaseURL, "session", deps.Flow.State())

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	deps.Logger.Info("Server stopped")
	return nil
}

func setupRoutes(ctx context.Context, deps *Dependencies) (*chi.Mux, error) {
	validator, err := openapi.NewValidator(ctx, deps.Logger)
	if err != nil {
		return nil, err
	}

	base := transport.NewBaseHandler(deps.Logger)
	handlers := rest.Handlers{
		Health:        rest.NewHealthHandler(deps.Store, deps.Config.API.BaseURL),
		Auth:          auth.NewHandler(deps.Flow),
		Shell:         shell.NewHandler(base, deps.Shell),
		Dashboard:     dashboard.NewHandler(base, deps.Dashboard),
		Users:         user.NewHandler(base, deps.Users),
		Subscriptions: subscription.NewHandler(base, deps.Subscriptions),
		Notifications: notification.NewHandler(base, deps.Notifications),
		PromoCodes:    promocode.NewHandler(base, deps.PromoCodes),
		Tickets:       ticket.NewHandler(base, deps.Tickets),
		Videos:        video.NewHandler(base, deps.Videos),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, rest.RouterConfig{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		Gate:           deps.Flow,
		Validator:      validator,
	}, deps.Logger)
	return router, nil
}
