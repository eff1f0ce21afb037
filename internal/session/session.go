// Package session persists the operator's credentials: the access token, the refresh token
// and a cached copy of the operator's own profile. Values live under fixed key names in a
// pluggable key-value Backend. No expiry is tracked here; the server alone decides whether a
// token is still valid.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyProfile      = "user"
)

// Keys lists every key the store owns, in write order.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyProfile}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session is a snapshot of the store. Missing keys surface as empty strings and a nil Profile.
type Session struct {
	AccessToken  string
	RefreshToken string
	Profile      json.RawMessage
}

func (s Session) Tokens() Tokens {
	return Tokens{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
}

// Backend is the durable key-value storage behind a Store.
type Backend interface {
	// Read returns the values present for keys; absent keys are omitted from the map.
	Read(ctx context.Context, keys ...string) (map[string]string, error)
	Write(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

type Store struct {
	backend Backend
	sealer  *Sealer
	logger  *slog.Logger
}

type Option func(*Store)

// WithSealer encrypts every value before it reaches the backend.
func WithSealer(s *Sealer) Option {
	return func(st *Store) {
		st.sealer = s
	}
}

func NewStore(backend Backend, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{backend: backend, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set writes all three keys. Token contents are not inspected.
func (s *Store) Set(ctx context.Context, tokens Tokens, profile json.RawMessage) error {
	if len(bytes.TrimSpace(profile)) == 0 {
		profile = json.RawMessage("null")
	}
	return s.write(ctx, map[string]string{
		KeyAccessToken:  tokens.AccessToken,
		KeyRefreshToken: tokens.RefreshToken,
		KeyProfile:      string(profile),
	})
}

// SetTokens replaces the token pair and leaves the cached profile alone.
func (s *Store) SetTokens(ctx context.Context, tokens Tokens) error {
	return s.write(ctx, map[string]string{
		KeyAccessToken:  tokens.AccessToken,
		KeyRefreshToken: tokens.RefreshToken,
	})
}

func (s *Store) write(ctx context.Context, values map[string]string) error {
	if s.sealer != nil {
		for k, v := range values {
			sealed, err := s.sealer.Seal(v)
			if err != nil {
				return fmt.Errorf("session: seal %s: %w", k, err)
			}
			values[k] = sealed
		}
	}
	if err := s.backend.Write(ctx, values); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	return nil
}

// Get never fails: backend and decryption errors are logged and the affected fields are
// reported as missing.
func (s *Store) Get(ctx context.Context) Session {
	values, err := s.backend.Read(ctx, Keys...)
	if err != nil {
		s.logger.Warn("session: read failed, treating session as empty", "error", err)
		return Session{}
	}

	var out Session
	out.AccessToken = s.open(KeyAccessToken, values[KeyAccessToken])
	out.RefreshToken = s.open(KeyRefreshToken, values[KeyRefreshToken])

	profile := bytes.TrimSpace([]byte(s.open(KeyProfile, values[KeyProfile])))
	if len(profile) > 0 && !bytes.Equal(profile, []byte("null")) && json.Valid(profile) {
		out.Profile = json.RawMessage(profile)
	}
	return out
}

func (s *Store) open(key, value string) string {
	if value == "" || s.sealer == nil {
		return value
	}
	plain, err := s.sealer.Open(value)
	if err != nil {
		s.logger.Warn("session: unreadable sealed value, ignoring", "key", key, "error", err)
		return ""
	}
	return plain
}

// Clear removes every key. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, Keys...); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// IsPresent is true iff a non-empty access token is stored.
func (s *Store) IsPresent(ctx context.Context) bool {
	return s.Get(ctx).AccessToken != ""
}

func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// ErrBackendClosed is returned by backends used after Close.
var ErrBackendClosed = errors.New("session: backend closed")
