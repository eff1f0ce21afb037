package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLoggedIn       = "auth.logged_in"
	EventTypeLoggedOut      = "auth.logged_out"
	EventTypeSessionExpired = "auth.session_expired"
)

// AuthEvent marks a transition of the operator session.
type AuthEvent struct {
	BaseEvent
	Email string `json:"email,omitempty"`
}

func newAuthEvent(eventType, email string) *AuthEvent {
	return &AuthEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"email": email,
			},
		},
		Email: email,
	}
}

func NewLoggedInEvent(email string) *AuthEvent {
	return newAuthEvent(EventTypeLoggedIn, email)
}

func NewLoggedOutEvent(email string) *AuthEvent {
	return newAuthEvent(EventTypeLoggedOut, email)
}

func NewSessionExpiredEvent() *AuthEvent {
	return newAuthEvent(EventTypeSessionExpired, "")
}
