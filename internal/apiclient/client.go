// Package apiclient is the single path every backend call takes. It attaches the stored bearer
// token, and on a first 401 refreshes the token pair once and replays the request. A failed
// refresh tears the session down.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/session"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	RefreshPath = "/authentication/refresh"

	maxBodyBytes = 10 << 20
)

var (
	errNoRefreshToken = errors.New("no refresh token stored")
	errRefreshEmpty   = errors.New("refresh response did not include a token pair")
)

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	// Anonymous requests carry no bearer token and bypass the 401 refresh protocol.
	Anonymous bool
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Envelope is nil when the body is not a JSON object.
	Envelope *Envelope
	// Retried is set when the response came from the replay after a refresh.
	Retried bool
}

type Client struct {
	baseURL string
	http    *http.Client
	store   *session.Store
	logger  *slog.Logger

	mu        sync.RWMutex
	onExpired func(ctx context.Context)

	refreshes singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(baseURL string, store *session.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", baseURL)
	}
	if store == nil {
		return nil, errors.New("apiclient: session store is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnSessionExpired registers the hook run after an unrecoverable refresh failure has cleared
// the store.
func (c *Client) OnSessionExpired(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Store() *session.Store { return c.store }

// Do sends req. Responses other than a first 401 are returned untouched, whatever their
// status; only transport failures and session teardown produce an error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode request body", err)
	}

	if req.Anonymous {
		return c.send(ctx, req, body, "")
	}

	sent := c.store.Get(ctx).AccessToken
	resp, err := c.send(ctx, req, body, sent)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	token, err := c.tokenForRetry(ctx, sent)
	if err != nil {
		return nil, err
	}

	retried, err := c.send(ctx, req, body, token)
	if err != nil {
		return nil, err
	}
	retried.Retried = true
	return retried, nil
}

// tokenForRetry returns the access token to replay with. When another request already rotated
// the pair, the newer token is reused instead of refreshing again.
func (c *Client) tokenForRetry(ctx context.Context, sent string) (string, error) {
	if current := c.store.Get(ctx).AccessToken; current != "" && current != sent {
		c.logger.Debug("apiclient: token rotated while request was in flight, replaying")
		return current, nil
	}

	// keyed by the rejected token so every request that failed with it shares one refresh
	v, err, shared := c.refreshes.Do(sent, func() (interface{}, error) {
		detached := context.WithoutCancel(ctx)
		if current := c.store.Get(detached); current.AccessToken != "" && current.AccessToken != sent {
			return current.Tokens(), nil
		}
		return c.refresh(detached)
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.logger.Debug("apiclient: joined in-flight token refresh")
	}
	return v.(session.Tokens).AccessToken, nil
}

func (c *Client) refresh(ctx context.Context) (session.Tokens, error) {
	refreshToken := c.store.Get(ctx).RefreshToken
	if refreshToken == "" {
		return session.Tokens{}, c.teardown(ctx, errNoRefreshToken)
	}

	c.logger.Info("apiclient: access token rejected, refreshing")

	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return session.Tokens{}, c.teardown(ctx, err)
	}
	resp, err := c.send(ctx, Request{Method: http.MethodPost, Path: RefreshPath}, body, "")
	if err != nil {
		return session.Tokens{}, c.teardown(ctx, err)
	}
	if resp.Envelope == nil || !resp.Envelope.IsRequestSuccessful {
		msg := resp.Envelope.Message(fmt.Sprintf("refresh rejected with status %d", resp.StatusCode))
		return session.Tokens{}, c.teardown(ctx, internal.NewUnauthorizedError(msg, internal.ErrCodeRefreshRejected))
	}

	var tokens session.Tokens
	if err := json.Unmarshal(resp.Envelope.SuccessResponse, &tokens); err != nil {
		return session.Tokens{}, c.teardown(ctx, err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return session.Tokens{}, c.teardown(ctx, errRefreshEmpty)
	}

	if err := c.store.SetTokens(ctx, tokens); err != nil {
		return session.Tokens{}, c.teardown(ctx, err)
	}
	c.logger.Info("apiclient: token pair refreshed")
	return tokens, nil
}

// teardown clears the store and notifies the owner that the session is gone.
func (c *Client) teardown(ctx context.Context, cause error) error {
	c.logger.Warn("apiclient: session could not be refreshed, logging out", "error", cause)

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("apiclient: failed to clear session", "error", err)
	}

	c.mu.RLock()
	hook := c.onExpired
	c.mu.RUnlock()
	if hook != nil {
		hook(ctx)
	}

	code := internal.ErrCodeSessionExpired
	if errors.Is(cause, errNoRefreshToken) {
		code = internal.ErrCodeMissingRefresh
	}
	return internal.NewUnauthorizedError("Your session has expired. Please log in again.", code).WithCause(cause)
}

func (c *Client) send(ctx context.Context, req Request, body []byte, token string) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(req.Path, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return nil, internal.NewInternalError("failed to build request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	requestID := internal.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", requestID)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("apiclient: request failed", "method", req.Method, "path", req.Path, "request_id", requestID, "error", err)
		return nil, internal.NewTransportError(err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, internal.NewTransportError(err)
	}

	c.logger.Debug("apiclient: request completed",
		"method", req.Method,
		"path", req.Path,
		"status", httpResp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
		Envelope:   parseEnvelope(raw),
	}, nil
}

func encodeBody(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	}
	return json.Marshal(v)
}
