package apiclient

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Envelope is the response wrapper every backend endpoint uses. IsRequestSuccessful is the
// only success signal; the HTTP status class is not consulted.
type Envelope struct {
	IsRequestSuccessful bool              `json:"isRequestSuccessful"`
	SuccessResponse     json.RawMessage   `json:"successResponse,omitempty"`
	ErrorDetail         *ErrorBody        `json:"errorDetail,omitempty"`
	ErrorResponse       *ErrorBody        `json:"errorResponse,omitempty"`
	Errors              []json.RawMessage `json:"errors,omitempty"`
}

type ErrorBody struct {
	Message string `json:"message"`
}

// Message picks the first server-supplied message: errorDetail, errorResponse, then the
// first entry of errors. fallback is returned when none is present.
func (e *Envelope) Message(fallback string) string {
	if e == nil {
		return fallback
	}
	if e.ErrorDetail != nil && strings.TrimSpace(e.ErrorDetail.Message) != "" {
		return e.ErrorDetail.Message
	}
	if e.ErrorResponse != nil && strings.TrimSpace(e.ErrorResponse.Message) != "" {
		return e.ErrorResponse.Message
	}
	if len(e.Errors) > 0 {
		if msg := rawMessage(e.Errors[0]); msg != "" {
			return msg
		}
	}
	return fallback
}

// rawMessage accepts either a bare string or an object with a message field.
func rawMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var body ErrorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		return body.Message
	}
	return ""
}

// HasPayload reports whether successResponse carries anything besides null.
func (e *Envelope) HasPayload() bool {
	trimmed := bytes.TrimSpace(e.SuccessResponse)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func parseEnvelope(body []byte) *Envelope {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil
	}
	return &env
}
