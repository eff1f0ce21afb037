package subscription

import (
	"context"

	"github.com/fmastery/admin-console/internal/apiclient"
)

const StatusPath = "/users/dashboard/subscription-status"

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) FetchAll(ctx context.Context) ([]Subscription, error) {
	subs, err := apiclient.Get[[]Subscription](ctx, s.client, StatusPath, "Failed to fetch subscriptions")
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []Subscription{}
	}
	return subs, nil
}
