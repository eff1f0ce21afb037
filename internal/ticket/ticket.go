// Package ticket handles support tickets reported from the app: listing, status updates,
// status analytics and export.
package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/user"
)

const ResourceName = "tickets"

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

type StatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StatusOptions are the statuses an operator can move a ticket to.
var StatusOptions = []StatusOption{
	{Value: StatusInProgress, Label: "In Progress"},
	{Value: StatusResolved, Label: "Resolved"},
	{Value: StatusClosed, Label: "Closed"},
}

type Ticket struct {
	ID            datamodel.ID   `json:"id"`
	UserID        datamodel.ID   `json:"userId"`
	User          *user.Account  `json:"user,omitempty"`
	Type          string         `json:"type"`
	Status        string         `json:"status"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	ScreenshotURL string         `json:"screenshotUrl,omitempty"`
	CreatedAt     datamodel.Time `json:"createdAt"`
}

func (t Ticket) UserName() string { return t.User.UserName() }

func (t Ticket) UserEmail() string { return t.User.EmailAddress() }

func NewResource(fetch func(ctx context.Context) ([]Ticket, error)) listing.Resource[Ticket] {
	return listing.Resource[Ticket]{
		Name:  ResourceName,
		Fetch: fetch,
		Search: func(t Ticket) []string {
			return []string{t.Title, t.Type, t.Status, t.Description, t.UserName(), t.UserEmail()}
		},
		SortFields: map[string]func(Ticket) interface{}{
			"userName":  func(t Ticket) interface{} { return t.UserName() },
			"userEmail": func(t Ticket) interface{} { return t.UserEmail() },
			"type":      func(t Ticket) interface{} { return t.Type },
			"status":    func(t Ticket) interface{} { return t.Status },
			"title":     func(t Ticket) interface{} { return t.Title },
			"createdAt": func(t Ticket) interface{} { return t.CreatedAt.SortValue() },
		},
		Keys: []func(Ticket) datamodel.ID{
			func(t Ticket) datamodel.ID { return t.ID },
		},
	}
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Analytics is the per-status ticket count. The backend answers either with a list of
// {status, count} objects or with a status-to-count map.
type Analytics []StatusCount

func (a *Analytics) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []StatusCount
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*a = list
		return nil
	}
	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err != nil {
		return err
	}
	list := make([]StatusCount, 0, len(counts))
	for status, n := range counts {
		list = append(list, StatusCount{Status: status, Count: n})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Status < list[j].Status })
	*a = list
	return nil
}

func (a Analytics) Total() int {
	n := 0
	for _, c := range a {
		n += c.Count
	}
	return n
}
