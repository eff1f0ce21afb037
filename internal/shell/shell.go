// Package shell owns navigation between the console views and the teardown of view state
// when the operator session ends.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/core/events"
	"github.com/fmastery/admin-console/internal/listing"
)

type View string

const (
	ViewDashboard     View = "dashboard"
	ViewUsers         View = "users"
	ViewSubscriptions View = "subscriptions"
	ViewNotifications View = "notifications"
	ViewPromoCode     View = "promocode"
	ViewVideos        View = "videos"
	ViewTickets       View = "tickets"

	DefaultView = ViewDashboard
)

// Views is the sidebar order.
var Views = []View{
	ViewDashboard,
	ViewUsers,
	ViewSubscriptions,
	ViewNotifications,
	ViewPromoCode,
	ViewVideos,
	ViewTickets,
}

func ParseView(name string) (View, error) {
	for _, v := range Views {
		if string(v) == name {
			return v, nil
		}
	}
	return "", internal.NewValidationError(fmt.Sprintf("Unknown view %q", name), internal.ErrCodeInvalidView)
}

// Screen is a mounted view: the collections it fetches when selected.
type Screen interface {
	Collections() []listing.Collection
}

// Gate reports whether an operator is signed in.
type Gate interface {
	Authenticated() bool
}

type Shell struct {
	gate   Gate
	logger *slog.Logger

	mu      sync.Mutex
	screens map[View]Screen
	active  View
}

// New subscribes the shell to the session-ending events of bus.
func New(gate Gate, bus *events.EventBus, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Shell{
		gate:    gate,
		logger:  logger.With("component", "shell"),
		screens: make(map[View]Screen),
		active:  DefaultView,
	}
	if bus != nil {
		bus.Subscribe(events.EventTypeLoggedOut, s.onSessionEnded)
		bus.Subscribe(events.EventTypeSessionExpired, s.onSessionEnded)
	}
	return s
}

func (s *Shell) Register(view View, screen Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screens[view] = screen
}

func (s *Shell) Screen(view View) (Screen, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.screens[view]
	return sc, ok
}

func (s *Shell) Active() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Select mounts view: the previous view's in-flight loads are abandoned and every collection
// of the new one is fetched afresh, in order. Load failures have already been toasted; they
// are returned joined and the view stays selected. A session that ends mid-mount stops the
// remaining loads and its error is returned alone.
func (s *Shell) Select(ctx context.Context, name string) error {
	if !s.gate.Authenticated() {
		return internal.ErrLoginRequired
	}
	view, err := ParseView(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.screens[s.active]
	next, ok := s.screens[view]
	s.active = view
	s.mu.Unlock()

	if previous != nil && previous != next {
		for _, c := range previous.Collections() {
			c.Close()
		}
	}
	if !ok {
		s.logger.Debug("view has no screen", "view", view)
		return nil
	}

	s.logger.Debug("mounting view", "view", view)
	var errs []error
	for _, c := range next.Collections() {
		if err := c.Load(ctx); err != nil {
			if internal.IsType(err, internal.ErrorTypeUnauthorized) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reset returns to the default view and drops the state of every registered collection.
func (s *Shell) Reset() {
	s.mu.Lock()
	s.active = DefaultView
	screens := make([]Screen, 0, len(s.screens))
	for _, sc := range s.screens {
		screens = append(screens, sc)
	}
	s.mu.Unlock()

	for _, sc := range screens {
		for _, c := range sc.Collections() {
			c.Reset()
		}
	}
}

func (s *Shell) onSessionEnded(_ context.Context, e events.Event) error {
	s.logger.Info("session ended, resetting views", "event_type", e.EventType())
	s.Reset()
	return nil
}
