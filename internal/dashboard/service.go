package dashboard

import (
	"context"
	"log/slog"

	"github.com/fmastery/admin-console/internal/apiclient"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/user"
)

const (
	UserStatsPath         = "/users/dashboard/user-stats"
	SubscriptionStatsPath = "/users/dashboard/subscription-stats"
)

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) UserStats(ctx context.Context) ([]StatCard, error) {
	cards, err := apiclient.Get[[]StatCard](ctx, s.client, UserStatsPath, "Failed to fetch user stats")
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []StatCard{}
	}
	return cards, nil
}

func (s *Service) SubscriptionStats(ctx context.Context) ([]SubscriptionStat, error) {
	stats, err := apiclient.Get[[]SubscriptionStat](ctx, s.client, SubscriptionStatsPath, "Failed to fetch subscription stats")
	if err != nil {
		return nil, err
	}
	out := make([]SubscriptionStat, len(stats))
	for i, st := range stats {
		st.Color = ColorFor(st.Label)
		out[i] = st
	}
	return out, nil
}

type Screen struct {
	Stats         *listing.Controller[StatCard]
	Subscriptions *listing.Controller[SubscriptionStat]
	Users         *listing.Controller[user.User]
}

func NewScreen(svc *Service, users func(ctx context.Context) ([]user.User, error), toaster listing.Toaster, logger *slog.Logger) *Screen {
	return &Screen{
		Stats:         listing.NewController(NewStatsResource(svc.UserStats), toaster, logger),
		Subscriptions: listing.NewController(NewSubscriptionStatsResource(svc.SubscriptionStats), toaster, logger),
		Users:         listing.NewController(NewUsersResource(users), toaster, logger),
	}
}

// Collections load in this order when the view mounts.
func (s *Screen) Collections() []listing.Collection {
	return []listing.Collection{s.Stats, s.Subscriptions, s.Users}
}

type Summary struct {
	Stats         []StatCard              `json:"stats"`
	Subscriptions []SubscriptionStat      `json:"subscriptions"`
	Users         listing.View[user.User] `json:"users"`
}

// Summary assembles the dashboard from what has been loaded, with placeholder cards until
// the stats arrive.
func (s *Screen) Summary() Summary {
	stats := s.Stats.Items()
	if !s.Stats.Loaded() {
		stats = append([]StatCard(nil), PlaceholderCards...)
	}
	return Summary{
		Stats:         stats,
		Subscriptions: s.Subscriptions.Items(),
		Users:         s.Users.View(),
	}
}
