// Package auth owns the operator's authentication state. A Flow starts in checking, settles
// into anonymous or authenticated, and returns to anonymous on logout or when the session can
// no longer be refreshed.
package auth

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/fmastery/admin-console/internal/core/datamodel"
)

type State string

const (
	StateChecking      State = "checking"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

const LoginPath = "/authentication/login"

// Profile is the display copy of the operator's own user record cached at login.
type Profile struct {
	ID    datamodel.ID `json:"id"`
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Role  string       `json:"role"`
}

// UnmarshalJSON accepts the several spellings the backend uses for the same fields.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID       datamodel.ID `json:"id"`
		UserID   datamodel.ID `json:"userId"`
		MongoID  datamodel.ID `json:"_id"`
		Name     string       `json:"name"`
		FullName string       `json:"FullName"`
		UserName string       `json:"userName"`
		Email    string       `json:"email"`
		EmailUC  string       `json:"Email"`
		Role     string       `json:"role"`
		RoleUC   string       `json:"Role"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ID = datamodel.FirstID(aux.ID, aux.UserID, aux.MongoID)
	p.Name = firstNonEmpty(aux.Name, aux.FullName, aux.UserName)
	p.Email = firstNonEmpty(aux.Email, aux.EmailUC)
	p.Role = firstNonEmpty(aux.Role, aux.RoleUC)
	return nil
}

// DisplayName is what the header shows for the operator.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	return firstNonEmpty(p.Name, p.Email, "Admin")
}

// ParseProfile decodes a cached profile; nil means nothing usable was stored.
func ParseProfile(raw json.RawMessage) *Profile {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return &p
}

// LoginResult is the successResponse of the login endpoint.
type LoginResult struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         json.RawMessage `json:"user"`
}

type FlowAPI interface {
	Restore(ctx context.Context) State
	Login(ctx context.Context, dto LoginDTO) (*Profile, error)
	Logout(ctx context.Context) error
	Expire(ctx context.Context)
	State() State
	Profile() *Profile
	Authenticated() bool
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
