// Package subscription lists app users' subscription plans.
package subscription

import (
	"context"
	"strings"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/listing"
)

const ResourceName = "subscriptions"

type Subscription struct {
	ID               datamodel.ID   `json:"id"`
	UserID           datamodel.ID   `json:"userId,omitempty"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	SubscriptionType string         `json:"subscriptionType"`
	Status           string         `json:"status"`
	Amount           string         `json:"amount,omitempty"`
	StartDate        datamodel.Time `json:"startDate"`
	EndDate          datamodel.Time `json:"endDate"`
}

// Active reports whether the status reads "active" in any casing.
func (s Subscription) Active() bool {
	return strings.EqualFold(s.Status, "active")
}

func NewResource(fetch func(ctx context.Context) ([]Subscription, error)) listing.Resource[Subscription] {
	return listing.Resource[Subscription]{
		Name:  ResourceName,
		Fetch: fetch,
		Search: func(s Subscription) []string {
			return []string{s.Name, s.Email, s.SubscriptionType, s.Status}
		},
		SortFields: map[string]func(Subscription) interface{}{
			"name":             func(s Subscription) interface{} { return s.Name },
			"email":            func(s Subscription) interface{} { return s.Email },
			"subscriptionType": func(s Subscription) interface{} { return s.SubscriptionType },
			"status":           func(s Subscription) interface{} { return s.Status },
			"endDate":          func(s Subscription) interface{} { return s.EndDate.SortValue() },
		},
		Keys: []func(Subscription) datamodel.ID{
			func(s Subscription) datamodel.ID { return s.ID },
			func(s Subscription) datamodel.ID { return s.UserID },
		},
	}
}
