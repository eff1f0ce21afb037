package user

import (
	"context"

	"github.com/fmastery/admin-console/internal/apiclient"
)

const AllUsersPath = "/users/dashboard/all-users"

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) FetchAll(ctx context.Context) ([]User, error) {
	users, err := apiclient.Get[[]User](ctx, s.client, AllUsersPath, "Failed to fetch users")
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}
