// Package user is the app-user directory: the users list screen and the user records reused
// by the dashboard, promo assignment and notification recipients.
package user

import (
	"context"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/listing"
)

const ResourceName = "users"

// User is one row of GET /users/dashboard/all-users.
type User struct {
	ID           datamodel.ID   `json:"id"`
	UserID       datamodel.ID   `json:"userId,omitempty"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	Status       string         `json:"status"`
	Plan         string         `json:"plan,omitempty"`
	SignupMethod string         `json:"signupMethod,omitempty"`
	CreatedAt    datamodel.Time `json:"createdAt"`
}

// RefID is the identifier sent when acting on the user: id, then userId.
func (u User) RefID() datamodel.ID {
	return datamodel.FirstID(u.ID, u.UserID)
}

const (
	StatusActive  = "active"
	StatusBanned  = "banned"
	StatusPending = "pending"

	PlanPaid = "Paid"
	PlanFree = "Free"
)

// SortFields are the sortable user columns. Screens pick the subset they show.
func SortFields() map[string]func(User) interface{} {
	return map[string]func(User) interface{}{
		"name":         func(u User) interface{} { return u.Name },
		"email":        func(u User) interface{} { return u.Email },
		"role":         func(u User) interface{} { return u.Role },
		"status":       func(u User) interface{} { return u.Status },
		"plan":         func(u User) interface{} { return u.Plan },
		"signupMethod": func(u User) interface{} { return u.SignupMethod },
		"createdAt":    func(u User) interface{} { return u.CreatedAt.SortValue() },
	}
}

// Keys prefers userId, then id.
func Keys() []func(User) datamodel.ID {
	return []func(User) datamodel.ID{
		func(u User) datamodel.ID { return u.UserID },
		func(u User) datamodel.ID { return u.ID },
	}
}

// NewResource describes the users screen. Status is searchable so "ban" finds banned users.
func NewResource(fetch func(ctx context.Context) ([]User, error)) listing.Resource[User] {
	fields := SortFields()
	delete(fields, "signupMethod")
	return listing.Resource[User]{
		Name:  ResourceName,
		Fetch: fetch,
		Search: func(u User) []string {
			return []string{u.Name, u.Email, u.Role, u.Status, u.Plan}
		},
		SortFields: fields,
		Keys:       Keys(),
	}
}
