package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeBusiness     ErrorType = "BUSINESS_ERROR"
	ErrorTypeTransport    ErrorType = "TRANSPORT_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidSortKey   ErrorCode = "INVALID_SORT_KEY"
	ErrCodeInvalidView      ErrorCode = "INVALID_VIEW"
	ErrCodeSelectPromoCode  ErrorCode = "SELECT_PROMO_CODE"
	ErrCodeNoRecipients     ErrorCode = "NO_RECIPIENTS"
	ErrCodeMessageTooLong   ErrorCode = "MESSAGE_TOO_LONG"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeLoginRequired      ErrorCode = "LOGIN_REQUIRED"
	ErrCodeSessionExpired     ErrorCode = "SESSION_EXPIRED"
	ErrCodeMissingRefresh     ErrorCode = "MISSING_REFRESH_TOKEN"
	ErrCodeRefreshRejected    ErrorCode = "REFRESH_REJECTED"

	ErrCodeRequestRejected ErrorCode = "REQUEST_REJECTED"
	ErrCodeNetwork         ErrorCode = "NETWORK_FAILURE"
	ErrCodeBadResponse     ErrorCode = "BAD_RESPONSE"
	ErrCodeRecordNotFound  ErrorCode = "RECORD_NOT_FOUND"
)

// GenericNetworkMessage is shown for failures where no response was received.
const GenericNetworkMessage = "Unable to reach the server. Please check your connection and try again."

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage returns the text an operator should see: every field message for
// validation failures, the plain message otherwise.
func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewBusinessError wraps a server envelope that reported isRequestSuccessful=false.
func NewBusinessError(message string, status int) *AppError {
	if status < 400 {
		status = http.StatusUnprocessableEntity
	}
	return &AppError{
		Type:       ErrorTypeBusiness,
		Code:       ErrCodeRequestRejected,
		Message:    message,
		StatusCode: status,
	}
}

func NewTransportError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransport,
		Code:       ErrCodeNetwork,
		Message:    GenericNetworkMessage,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrLoginRequired  = NewUnauthorizedError("Please log in to continue", ErrCodeLoginRequired)
	ErrSelectPromo    = NewValidationError("Please select a promo code", ErrCodeSelectPromoCode)
	ErrNoRecipients   = NewValidationError("Select at least one user to notify", ErrCodeNoRecipients)
	ErrRecordNotFound = NewNotFoundError("Record not found", ErrCodeRecordNotFound)
)

// IsAppError reports whether err is, or wraps, an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

// UserMessage converts any error into the text surfaced in a toast or inline form error.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if appErr, ok := IsAppError(err); ok {
		if msg := appErr.GetDetailedMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
