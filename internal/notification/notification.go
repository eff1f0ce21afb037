// Package notification composes bulk push notifications to app users.
package notification

import (
	"context"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/user"
)

const MaxMessageLength = 1000

type Audience string

const (
	AudienceAll    Audience = "all"
	AudiencePaid   Audience = "paid"
	AudienceUnpaid Audience = "unpaid"
	AudienceSelect Audience = "select"
)

var Audiences = []string{string(AudienceAll), string(AudiencePaid), string(AudienceUnpaid), string(AudienceSelect)}

// Recipient is a user as listed on the notification screen.
type Recipient = user.User

func NewRecipientsResource(fetch func(ctx context.Context) ([]Recipient, error)) listing.Resource[Recipient] {
	fields := user.SortFields()
	delete(fields, "signupMethod")
	delete(fields, "createdAt")
	return listing.Resource[Recipient]{
		Name:  user.ResourceName,
		Fetch: fetch,
		Search: func(u Recipient) []string {
			return []string{u.Name, u.Email, u.Role}
		},
		SortFields: fields,
		Keys:       user.Keys(),
	}
}

// Resolve returns the ids the audience addresses, in list order. Paid and unpaid are read
// from each user's plan.
func Resolve(users []Recipient, audience Audience, selected []datamodel.ID) []datamodel.ID {
	ids := make([]datamodel.ID, 0, len(users))
	switch audience {
	case AudienceAll:
		for _, u := range users {
			ids = append(ids, u.RefID())
		}
	case AudiencePaid, AudienceUnpaid:
		plan := user.PlanPaid
		if audience == AudienceUnpaid {
			plan = user.PlanFree
		}
		for _, u := range users {
			if u.Plan == plan {
				ids = append(ids, u.RefID())
			}
		}
	case AudienceSelect:
		ids = append(ids, selected...)
	}
	return ids
}
