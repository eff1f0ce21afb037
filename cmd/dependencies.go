package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/apiclient"
	"github.com/fmastery/admin-console/internal/auth"
	"github.com/fmastery/admin-console/internal/core/events"
	"github.com/fmastery/admin-console/internal/dashboard"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/notification"
	"github.com/fmastery/admin-console/internal/promocode"
	"github.com/fmastery/admin-console/internal/session"
	"github.com/fmastery/admin-console/internal/session/gormstore"
	"github.com/fmastery/admin-console/internal/session/redisstore"
	"github.com/fmastery/admin-console/internal/shell"
	"github.com/fmastery/admin-console/internal/storage"
	"github.com/fmastery/admin-console/internal/subscription"
	"github.com/fmastery/admin-console/internal/ticket"
	"github.com/fmastery/admin-console/internal/user"
	"github.com/fmastery/admin-console/internal/video"
	"github.com/fmastery/admin-console/pkg/logger"
)

type Dependencies struct {
	Config *internal.Config
	Logger *slog.Logger

	Store  *session.Store
	Client *apiclient.Client
	Bus    *events.EventBus
	Flow   *auth.Flow
	Toasts *listing.ToastLog
	Shell  *shell.Shell

	// Objects is nil unless storage is enabled.
	Objects *storage.ObjectStore

	Dashboard     *dashboard.Screen
	Users         *listing.Controller[user.User]
	Subscriptions *listing.Controller[subscription.Subscription]
	Notifications *notification.Screen
	PromoCodes    *promocode.Screen
	Tickets       *ticket.Screen
	Videos        *video.Screen

	closers []func() error
}

// initializeDependencies builds the whole console from cfg and restores any stored session.
func initializeDependencies(ctx context.Context, cfg *internal.Config) (*Dependencies, error) {
	logger.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)
	lg := logger.LoggerWrapper()

	deps := &Dependencies{Config: cfg, Logger: lg}

	backend, err := deps.openSessionBackend(ctx, cfg.Session)
	if err != nil {
		deps.Close()
		return nil, err
	}

	var opts []session.Option
	key, err := cfg.Session.GetEncryptionKey()
	if err != nil {
		deps.Close()
		return nil, err
	}
	if key != nil {
		sealer, err := session.NewSealer(key)
		if err != nil {
			deps.Close()
			return nil, err
		}
		opts = append(opts, session.WithSealer(sealer))
	}
	deps.Store = session.NewStore(backend, lg, opts...)

	deps.Client, err = apiclient.New(cfg.API.BaseURL, deps.Store,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(lg),
	)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	deps.Bus = events.NewEventBus(lg)
	for _, t := range []string{events.EventTypeLoggedIn, events.EventTypeLoggedOut, events.EventTypeSessionExpired} {
		deps.Bus.Subscribe(t, func(_ context.Context, e events.Event) error {
			lg.Debug("auth event", "event_id", e.EventID(), "event_type", e.EventType(), "payload", e.Payload())
			return nil
		})
	}
	deps.Flow = auth.NewFlow(deps.Client, deps.Bus, lg)
	deps.Toasts = listing.NewToastLog(50, lg)

	if cfg.Storage.Enabled {
		deps.Objects, err = storage.NewObjectStore(cfg.Storage)
		if err != nil {
			deps.Close()
			return nil, err
		}
	}

	deps.buildScreens()
	deps.Flow.Restore(ctx)
	return deps, nil
}

func (d *Dependencies) openSessionBackend(ctx context.Context, cfg internal.SessionConfig) (session.Backend, error) {
	switch cfg.Driver {
	case "memory":
		return session.NewMemoryBackend(), nil
	case "redis":
		client := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		b := redisstore.New(client, cfg.Namespace)
		d.closers = append(d.closers, b.Close)
		return b, nil
	case "sqlite", "postgres":
		db, err := gormstore.Open(cfg.Driver, cfg.Source)
		if err != nil {
			return nil, err
		}
		b := gormstore.New(db)
		d.closers = append(d.closers, b.Close)
		if err := gormstore.Migrate(ctx, db, cfg.Driver, false); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported session driver %q", cfg.Driver)
	}
}

func (d *Dependencies) buildScreens() {
	users := user.NewService(d.Client)

	var uploader storage.Uploader
	if d.Objects != nil {
		uploader = d.Objects
	}

	d.Dashboard = dashboard.NewScreen(dashboard.NewService(d.Client), users.FetchAll, d.Toasts, d.Logger)
	d.Users = listing.NewController(user.NewResource(users.FetchAll), d.Toasts, d.Logger)
	d.Subscriptions = listing.NewController(subscription.NewResource(subscription.NewService(d.Client).FetchAll), d.Toasts, d.Logger)
	d.Notifications = notification.NewScreen(notification.NewService(d.Client), users.FetchAll, d.Toasts, d.Logger)
	d.PromoCodes = promocode.NewScreen(promocode.NewService(d.Client), users.FetchAll, d.Toasts, d.Logger)

	var ticketOpts []ticket.ScreenOption
	if uploader != nil {
		ticketOpts = append(ticketOpts, ticket.WithUploader(uploader))
	}
	d.Tickets = ticket.NewScreen(ticket.NewService(d.Client), d.Toasts, d.Logger, ticketOpts...)
	d.Videos = video.NewScreen(video.NewService(d.Client), uploader, d.Toasts, d.Logger)

	d.Shell = shell.New(d.Flow, d.Bus, d.Logger)
	d.Shell.Register(shell.ViewDashboard, d.Dashboard)
	d.Shell.Register(shell.ViewUsers, collections{d.Users})
	d.Shell.Register(shell.ViewSubscriptions, collections{d.Subscriptions})
	d.Shell.Register(shell.ViewNotifications, d.Notifications)
	d.Shell.Register(shell.ViewPromoCode, d.PromoCodes)
	d.Shell.Register(shell.ViewTickets, d.Tickets)
	d.Shell.Register(shell.ViewVideos, d.Videos)
}

// requireSession fails with LOGIN_REQUIRED unless a session was restored.
func (d *Dependencies) requireSession() error {
	if !d.Flow.Authenticated() {
		return internal.ErrLoginRequired
	}
	return nil
}

func (d *Dependencies) Close() {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil && d.Logger != nil {
		d.Logger.Error("failed to close dependencies", "error", err)
	}
}

// collections adapts bare controllers to a shell screen.
type collections []listing.Collection

func (c collections) Collections() []listing.Collection { return c }

// withDependencies loads config, builds the console, runs fn and tears everything down.
func withDependencies(cmd interface{ Context() context.Context }, fn func(ctx context.Context, d *Dependencies) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(ctx, deps)
}
