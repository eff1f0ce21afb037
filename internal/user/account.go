package user

import "github.com/fmastery/admin-console/internal/core/datamodel"

type Details struct {
	UserName string `json:"userName"`
}

// Account is the user record nested in tickets and promo assignments. It uses the backend's
// account casing rather than the dashboard's.
type Account struct {
	ID              datamodel.ID   `json:"id"`
	FullName        string         `json:"FullName"`
	Email           string         `json:"Email"`
	UserDetails     *Details       `json:"userDetails,omitempty"`
	SignupProvider  string         `json:"signupProvider,omitempty"`
	IsEmailVerified bool           `json:"isEmailVerified"`
	ReferralCode    string         `json:"referralCode,omitempty"`
	CreatedAt       datamodel.Time `json:"createdAt"`
}

// UserName is the profile user name; nil-safe.
func (a *Account) UserName() string {
	if a == nil || a.UserDetails == nil {
		return ""
	}
	return a.UserDetails.UserName
}

// DisplayName prefers the profile user name over the full name.
func (a *Account) DisplayName() string {
	if name := a.UserName(); name != "" {
		return name
	}
	if a == nil {
		return ""
	}
	return a.FullName
}

func (a *Account) EmailAddress() string {
	if a == nil {
		return ""
	}
	return a.Email
}
