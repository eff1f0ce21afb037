package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fmastery/admin-console/internal"
)

// Decode turns a response into its payload or an error. A non-success envelope becomes a
// BUSINESS_ERROR carrying the server's message, or fallback when the server sent none.
func Decode[T any](resp *Response, fallback string) (T, error) {
	var out T
	if resp == nil {
		return out, internal.NewInternalError(fallback, nil)
	}
	env := resp.Envelope
	if env == nil {
		appErr := internal.NewBusinessError(fallback, resp.StatusCode)
		appErr.Code = internal.ErrCodeBadResponse
		return out, appErr
	}
	if !env.IsRequestSuccessful {
		return out, internal.NewBusinessError(env.Message(fallback), resp.StatusCode)
	}
	if !env.HasPayload() {
		return out, nil
	}
	if err := json.Unmarshal(env.SuccessResponse, &out); err != nil {
		appErr := internal.NewBusinessError(fallback, http.StatusBadGateway)
		appErr.Code = internal.ErrCodeBadResponse
		return out, appErr.WithCause(err)
	}
	return out, nil
}

// Call sends req and decodes the envelope payload into T.
func Call[T any](ctx context.Context, c *Client, req Request, fallback string) (T, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](resp, fallback)
}

func Get[T any](ctx context.Context, c *Client, path, fallback string) (T, error) {
	return Call[T](ctx, c, Request{Method: http.MethodGet, Path: path}, fallback)
}

func Post[T any](ctx context.Context, c *Client, path string, body interface{}, fallback string) (T, error) {
	return Call[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body}, fallback)
}

func Patch[T any](ctx context.Context, c *Client, path string, body interface{}, fallback string) (T, error) {
	return Call[T](ctx, c, Request{Method: http.MethodPatch, Path: path, Body: body}, fallback)
}

func Delete[T any](ctx context.Context, c *Client, path, fallback string) (T, error) {
	return Call[T](ctx, c, Request{Method: http.MethodDelete, Path: path}, fallback)
}

// Message is a successResponse that only carries text, as returned by most mutations.
type Message struct {
	Message string `json:"message"`
}

// UnmarshalJSON accepts either {"message": "..."} or a bare string payload.
func (m *Message) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Message = s
		return nil
	}
	type plain Message
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		// mutations sometimes answer with the created record; the text is optional
		return nil
	}
	*m = Message(p)
	return nil
}

// Or returns the message, or fallback when the server sent none.
func (m Message) Or(fallback string) string {
	if m.Message == "" {
		return fallback
	}
	return m.Message
}
