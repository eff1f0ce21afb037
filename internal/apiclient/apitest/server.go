// Package apitest runs an in-process imitation of the mobile-app backend for tests. Tokens are
// real HS256 JWTs; access tokens can be expired and refresh tokens revoked on demand so the
// refresh protocol can be exercised end to end.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fmastery/admin-console/internal/apiclient"
	"github.com/fmastery/admin-console/internal/session"
	"github.com/fmastery/admin-console/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Operator struct {
	Email    string
	Password string
	Profile  map[string]interface{}
}

type Server struct {
	*httptest.Server
	Router chi.Router

	secret []byte

	mu        sync.Mutex
	operators map[string]Operator
	access    map[string]bool
	refresh   map[string]bool
	calls     map[string]int
	bodies    map[string][]json.RawMessage

	refreshCalls int32

	// RefreshDelay holds every refresh response, widening the window for concurrent 401s.
	RefreshDelay time.Duration
	// RefreshFails makes the refresh endpoint answer with a non-success envelope.
	RefreshFails bool
}

func NewServer() *Server {
	s := &Server{
		secret:    []byte(uuid.NewString()),
		operators: make(map[string]Operator),
		access:    make(map[string]bool),
		refresh:   make(map[string]bool),
		calls:     make(map[string]int),
		bodies:    make(map[string][]json.RawMessage),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/authentication/login", s.handleLogin)
	r.Post("/authentication/refresh", s.handleRefresh)
	s.Router = r
	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) AddOperator(op Operator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operators[strings.ToLower(op.Email)] = op
}

// Issue mints and registers a fresh token pair for subject.
func (s *Server) Issue(subject string) session.Tokens {
	access := s.mint(subject, "access", 15*time.Minute)
	refresh := s.mint(subject, "refresh", 24*time.Hour)

	s.mu.Lock()
	s.access[access] = true
	s.refresh[refresh] = true
	s.mu.Unlock()

	return session.Tokens{AccessToken: access, RefreshToken: refresh}
}

func (s *Server) mint(subject, use string, ttl time.Duration) string {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"use": use,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return signed
}

// ExpireAccessTokens makes every access token issued so far answer 401.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]bool)
}

func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]bool)
}

func (s *Server) RefreshCalls() int {
	return int(atomic.LoadInt32(&s.refreshCalls))
}

// Calls counts requests seen for "METHOD /path".
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// Bodies returns the JSON bodies received for "METHOD /path", oldest first.
func (s *Server) Bodies(method, path string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage(nil), s.bodies[method+" "+path]...)
}

// Authed registers a handler behind bearer validation.
func (s *Server) Authed(method, path string, h http.HandlerFunc) {
	s.Router.Method(method, path, s.requireAccess(h))
}

// JSON registers an authenticated endpoint answering with a success envelope around payload().
func (s *Server) JSON(method, path string, payload func(r *http.Request) interface{}) {
	s.Authed(method, path, func(w http.ResponseWriter, r *http.Request) {
		WriteSuccess(w, payload(r))
	})
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		var body json.RawMessage
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
			r.Body.Close()
			r.Body = http.NoBody
			if len(body) > 0 {
				r.Body = io.NopCloser(bytes.NewReader(body))
			}
		}

		s.mu.Lock()
		s.calls[key]++
		if len(body) > 0 {
			s.bodies[key] = append(s.bodies[key], body)
		}
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			WriteFailure(w, http.StatusUnauthorized, "Authorization header missing")
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		if _, err := s.parse(raw, "access"); err != nil {
			WriteFailure(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		s.mu.Lock()
		ok := s.access[raw]
		s.mu.Unlock()
		if !ok {
			WriteFailure(w, http.StatusUnauthorized, "Token expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) parse(raw, use string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims["use"] != use {
		return nil, fmt.Errorf("token is not a %s token", use)
	}
	return claims, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"Email"`
		Password string `json:"Password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	op, ok := s.operators[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || op.Password != req.Password {
		WriteFailure(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	tokens := s.Issue(op.Email)
	WriteSuccess(w, map[string]interface{}{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user":          op.Profile,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.refreshCalls, 1)
	if s.RefreshDelay > 0 {
		time.Sleep(s.RefreshDelay)
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		WriteFailure(w, http.StatusBadRequest, "Refresh token is required")
		return
	}
	if s.RefreshFails {
		WriteFailure(w, http.StatusOK, "Refresh token expired")
		return
	}

	claims, err := s.parse(req.RefreshToken, "refresh")
	s.mu.Lock()
	valid := err == nil && s.refresh[req.RefreshToken]
	delete(s.refresh, req.RefreshToken)
	s.mu.Unlock()
	if !valid {
		WriteFailure(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	subject, _ := claims.GetSubject()
	tokens := s.Issue(subject)
	WriteSuccess(w, map[string]string{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

func WriteSuccess(w http.ResponseWriter, payload interface{}) {
	writeEnvelope(w, http.StatusOK, map[string]interface{}{
		"isRequestSuccessful": true,
		"successResponse":     payload,
	})
}

// WriteFailure answers with a non-success envelope whose message sits in errorResponse.
func WriteFailure(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, map[string]interface{}{
		"isRequestSuccessful": false,
		"errorResponse":       map[string]string{"message": message},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// SignedIn returns a client whose store already holds a fresh token pair for subject.
func (s *Server) SignedIn(subject string) (*apiclient.Client, *session.Store) {
	store := session.NewStore(session.NewMemoryBackend(), logger.Discard())
	if err := store.SetTokens(context.Background(), s.Issue(subject)); err != nil {
		panic(fmt.Sprintf("apitest: seed session: %v", err))
	}
	client, err := apiclient.New(s.URL, store, apiclient.WithLogger(logger.Discard()))
	if err != nil {
		panic(fmt.Sprintf("apitest: client: %v", err))
	}
	return client, store
}
