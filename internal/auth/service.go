package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/apiclient"
	"github.com/fmastery/admin-console/internal/core/events"
	"github.com/fmastery/admin-console/internal/session"
)

const (
	msgLoginFailed = "Login failed"
	msgLoginError  = "An error occurred during login"
)

type Flow struct {
	client *apiclient.Client
	store  *session.Store
	bus    *events.EventBus
	logger *slog.Logger

	mu      sync.RWMutex
	state   State
	profile *Profile
}

var _ FlowAPI = (*Flow)(nil)

// NewFlow registers itself as the client's session-expiry hook.
func NewFlow(client *apiclient.Client, bus *events.EventBus, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	if bus == nil {
		bus = events.NewEventBus(logger)
	}
	f := &Flow{
		client: client,
		store:  client.Store(),
		bus:    bus,
		logger: logger,
		state:  StateChecking,
	}
	client.OnSessionExpired(f.Expire)
	return f
}

// Restore decides the initial state from the store alone; no network call is made.
func (f *Flow) Restore(ctx context.Context) State {
	f.set(StateChecking, nil)

	sess := f.store.Get(ctx)
	if sess.AccessToken == "" {
		f.set(StateAnonymous, nil)
		return StateAnonymous
	}

	f.set(StateAuthenticated, ParseProfile(sess.Profile))
	return StateAuthenticated
}

func (f *Flow) Login(ctx context.Context, dto LoginDTO) (*Profile, error) {
	dto.Email = strings.TrimSpace(dto.Email)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	resp, err := f.client.Do(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      LoginPath,
		Body:      loginRequest{Email: dto.Email, Password: dto.Password},
		Anonymous: true,
	})
	if err != nil {
		f.logger.Warn("login request failed", "email", dto.Email, "error", err)
		return nil, internal.NewUnauthorizedError(msgLoginError, internal.ErrCodeInvalidCredentials).WithCause(err)
	}

	fallback := msgLoginFailed
	if resp.StatusCode >= http.StatusBadRequest {
		fallback = msgLoginError
	}
	if resp.Envelope == nil || !resp.Envelope.IsRequestSuccessful {
		msg := resp.Envelope.Message(fallback)
		f.logger.Info("login rejected", "email", dto.Email, "status", resp.StatusCode)
		return nil, internal.NewUnauthorizedError(msg, internal.ErrCodeInvalidCredentials)
	}

	result, err := apiclient.Decode[LoginResult](resp, msgLoginFailed)
	if err != nil {
		return nil, err
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		return nil, internal.NewBusinessError(msgLoginFailed, http.StatusBadGateway)
	}

	tokens := session.Tokens{AccessToken: result.AccessToken, RefreshToken: result.RefreshToken}
	if err := f.store.Set(ctx, tokens, result.User); err != nil {
		return nil, internal.NewInternalError("failed to save session", err)
	}

	profile := ParseProfile(result.User)
	if profile == nil {
		profile = &Profile{Email: dto.Email}
	}
	f.set(StateAuthenticated, profile)
	f.logger.Info("operator logged in", "email", profile.Email)

	// listeners may still be running when Login returns
	_ = f.bus.Publish(context.WithoutCancel(ctx), events.NewLoggedInEvent(profile.Email))
	return profile.clone(), nil
}

// Logout clears the store and resets every subscriber. It is safe to call when anonymous.
func (f *Flow) Logout(ctx context.Context) error {
	var email string
	if p := f.Profile(); p != nil {
		email = p.Email
	}

	err := f.store.Clear(ctx)
	f.set(StateAnonymous, nil)
	f.logger.Info("operator logged out", "email", email)

	_ = f.bus.PublishSync(ctx, events.NewLoggedOutEvent(email))
	return err
}

// Expire runs after the client has torn the session down. Re-entering checking mirrors a
// fresh start: with the store empty the flow settles on anonymous.
func (f *Flow) Expire(ctx context.Context) {
	f.logger.Warn("session expired")
	f.Restore(ctx)
	_ = f.bus.PublishSync(ctx, events.NewSessionExpiredEvent())
}

func (f *Flow) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *Flow) Profile() *Profile {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.profile.clone()
}

func (f *Flow) Authenticated() bool {
	return f.State() == StateAuthenticated
}

func (f *Flow) set(state State, profile *Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	f.profile = profile
}

func (p *Profile) clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
