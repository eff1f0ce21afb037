// Package dashboard is the landing view: headline user counts, the subscription mix and the
// full user table.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/user"
)

// StatValue is a card figure; the backend sends it as a number or as preformatted text.
type StatValue string

func (v *StatValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StatValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = StatValue(n.String())
	return nil
}

type StatCard struct {
	Title string    `json:"title"`
	Value StatValue `json:"value"`
}

// PlaceholderCards are shown until the first stats load succeeds.
var PlaceholderCards = []StatCard{
	{Title: "Total Users", Value: "0"},
	{Title: "Active Users", Value: "0"},
	{Title: "Premium Accounts", Value: "0"},
	{Title: "Free Accounts", Value: "0"},
}

type SubscriptionStat struct {
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

var labelColors = map[string]string{
	"Monthly Subscriptions": "#22c55e",
	"Yearly Subscriptions":  "#eab308",
	"Without Subscription":  "#ef4444",
	"Free Trials":           "#d1d5db",
}

const defaultColor = "#9ca3af"

// ColorFor is the chart colour of a subscription label.
func ColorFor(label string) string {
	if c, ok := labelColors[label]; ok {
		return c
	}
	return defaultColor
}

func NewStatsResource(fetch func(ctx context.Context) ([]StatCard, error)) listing.Resource[StatCard] {
	return listing.Resource[StatCard]{
		Name:  "stats",
		Fetch: fetch,
		Keys: []func(StatCard) datamodel.ID{
			func(c StatCard) datamodel.ID { return datamodel.ID(c.Title) },
		},
	}
}

func NewSubscriptionStatsResource(fetch func(ctx context.Context) ([]SubscriptionStat, error)) listing.Resource[SubscriptionStat] {
	return listing.Resource[SubscriptionStat]{
		Name:  "subscription stats",
		Fetch: fetch,
		Keys: []func(SubscriptionStat) datamodel.ID{
			func(s SubscriptionStat) datamodel.ID { return datamodel.ID(s.Label) },
		},
	}
}

// NewUsersResource is the dashboard's user table, which also searches signup method.
func NewUsersResource(fetch func(ctx context.Context) ([]user.User, error)) listing.Resource[user.User] {
	fields := user.SortFields()
	delete(fields, "createdAt")
	return listing.Resource[user.User]{
		Name:  user.ResourceName,
		Fetch: fetch,
		Search: func(u user.User) []string {
			return []string{u.Name, u.Email, u.Role, u.SignupMethod, u.Status, u.Plan}
		},
		SortFields: fields,
		Keys:       user.Keys(),
	}
}

// FormatPercentage renders 12.5 as "12.5%" and 40 as "40%".
func FormatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}
