// Package promocode covers the promo code screen: generated codes, the users they can be
// assigned to, and the codes already assigned.
package promocode

import (
	"context"
	"strings"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/user"
)

const (
	TypeMonthly = "monthly"
	TypeYearly  = "yearly"
)

var Types = []string{TypeMonthly, TypeYearly}

type PromoCode struct {
	ID           datamodel.ID   `json:"id"`
	PromoCode    string         `json:"promoCode"`
	PromoType    string         `json:"promoType"`
	IsUsed       bool           `json:"isUsed"`
	CreationDate datamodel.Time `json:"creationDate"`
}

func (p PromoCode) Status() string {
	if p.IsUsed {
		return "Used"
	}
	return "Available"
}

type AssignedPromo struct {
	ID                    datamodel.ID   `json:"id"`
	User                  *user.Account  `json:"user"`
	PromoCode             *PromoCode     `json:"promoCode"`
	SubscriptionStartDate datamodel.Time `json:"subscriptionStartDate"`
	SubscriptionEndDate   datamodel.Time `json:"subscriptionEndDate"`
}

// UserName prefers the profile user name over the account's full name.
func (a AssignedPromo) UserName() string {
	return a.User.DisplayName()
}

func (a AssignedPromo) UserEmail() string {
	return a.User.EmailAddress()
}

func (a AssignedPromo) Code() string {
	if a.PromoCode == nil {
		return ""
	}
	return a.PromoCode.PromoCode
}

func (a AssignedPromo) Type() string {
	if a.PromoCode == nil {
		return ""
	}
	return a.PromoCode.PromoType
}

func NewCodesResource(fetch func(ctx context.Context) ([]PromoCode, error)) listing.Resource[PromoCode] {
	return listing.Resource[PromoCode]{
		Name:  "promo codes",
		Fetch: fetch,
		Search: func(p PromoCode) []string {
			return []string{p.PromoCode, p.PromoType}
		},
		SortFields: map[string]func(PromoCode) interface{}{
			"promoCode":    func(p PromoCode) interface{} { return p.PromoCode },
			"promoType":    func(p PromoCode) interface{} { return p.PromoType },
			"isUsed":       func(p PromoCode) interface{} { return p.IsUsed },
			"creationDate": func(p PromoCode) interface{} { return p.CreationDate.SortValue() },
		},
		Keys: []func(PromoCode) datamodel.ID{
			func(p PromoCode) datamodel.ID { return p.ID },
		},
	}
}

func NewAssignedResource(fetch func(ctx context.Context) ([]AssignedPromo, error)) listing.Resource[AssignedPromo] {
	return listing.Resource[AssignedPromo]{
		Name:  "assigned promos",
		Fetch: fetch,
		Search: func(a AssignedPromo) []string {
			fields := []string{a.UserName(), a.UserEmail(), a.Code(), a.Type()}
			if a.User != nil {
				fields = append(fields, a.User.FullName)
			}
			return fields
		},
		SortFields: map[string]func(AssignedPromo) interface{}{
			"userName":              func(a AssignedPromo) interface{} { return a.UserName() },
			"userEmail":             func(a AssignedPromo) interface{} { return a.UserEmail() },
			"promoCode":             func(a AssignedPromo) interface{} { return a.Code() },
			"promoType":             func(a AssignedPromo) interface{} { return a.Type() },
			"subscriptionStartDate": func(a AssignedPromo) interface{} { return a.SubscriptionStartDate.SortValue() },
			"subscriptionEndDate":   func(a AssignedPromo) interface{} { return a.SubscriptionEndDate.SortValue() },
		},
		Keys: []func(AssignedPromo) datamodel.ID{
			func(a AssignedPromo) datamodel.ID { return a.ID },
		},
	}
}

// NewUsersResource is the assign tab's user list.
func NewUsersResource(fetch func(ctx context.Context) ([]user.User, error)) listing.Resource[user.User] {
	return listing.Resource[user.User]{
		Name:  user.ResourceName,
		Fetch: fetch,
		Search: func(u user.User) []string {
			return []string{u.Name, u.Email, u.Role}
		},
		SortFields: user.SortFields(),
		Keys:       user.Keys(),
	}
}

// Available returns the unused codes of promoType, in list order.
func Available(codes []PromoCode, promoType string) []PromoCode {
	out := make([]PromoCode, 0, len(codes))
	for _, c := range codes {
		if c.PromoType == promoType && !c.IsUsed {
			out = append(out, c)
		}
	}
	return out
}

func typeLabel(promoType string) string {
	if promoType == "" {
		return ""
	}
	return strings.ToUpper(promoType[:1]) + promoType[1:]
}
