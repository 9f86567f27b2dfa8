package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
)

// Error codes
const (
	// 4xx Client Errors
	CodeInvalidInput     = "INVALID_INPUT"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeTooManyRequests  = "TOO_MANY_REQUESTS"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeInvalidNonce     = "INVALID_NONCE"
	CodeInvalidTimestamp = "INVALID_TIMESTAMP"
	CodeNonceReused      = "NONCE_REUSED"
	CodeTimestampExpired = "TIMESTAMP_EXPIRED"
	CodeUnknownConsumer  = "UNKNOWN_CONSUMER"

	// 5xx Server Errors
	CodeInternal      = "INTERNAL_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeDBError       = "DB_ERROR"
	CodeStoreError    = "NONCE_STORE_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// Error constructors

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func Unauthorized(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func UnknownConsumer(consumerKey string) *AppError {
	return &AppError{
		Code:       CodeUnknownConsumer,
		Message:    "Unknown consumer key",
		StatusCode: http.StatusForbidden,
		Details:    map[string]any{"consumer_key": consumerKey},
	}
}

func MethodNotAllowed(method string) *AppError {
	return &AppError{
		Code:       CodeMethodNotAllowed,
		Message:    fmt.Sprintf("Method %s cannot be signed", method),
		StatusCode: http.StatusMethodNotAllowed,
	}
}

func TooManyRequests() *AppError {
	return &AppError{
		Code:       CodeTooManyRequests,
		Message:    "Too many launch requests",
		StatusCode: http.StatusTooManyRequests,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func Configuration(err error) *AppError {
	return &AppError{
		Code:       CodeConfiguration,
		Message:    "Launch validation is misconfigured",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

func DBError(err error) *AppError {
	return &AppError{
		Code:       CodeDBError,
		Message:    "Database error occurred",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

func StoreError(err error) *AppError {
	return &AppError{
		Code:       CodeStoreError,
		Message:    "Nonce store unavailable",
		StatusCode: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// FromValidation maps launch validation failures to HTTP errors. Messages
// stay generic; the cause is kept in Err for logging only.
func FromValidation(err error) *AppError {
	var appErr *AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, oauth1.ErrInvalidSignature):
		return Unauthorized(CodeInvalidSignature, "Invalid signature").WithError(err)
	case stderrors.Is(err, oauth1.ErrNonceReused):
		return Unauthorized(CodeNonceReused, "Request has already been processed").WithError(err)
	case stderrors.Is(err, oauth1.ErrTimestampExpired):
		return Unauthorized(CodeTimestampExpired, "Request timestamp outside the accepted window").WithError(err)
	case stderrors.Is(err, oauth1.ErrInvalidNonce):
		return &AppError{Code: CodeInvalidNonce, Message: "Invalid nonce", StatusCode: http.StatusBadRequest, Err: err}
	case stderrors.Is(err, oauth1.ErrInvalidTimestamp):
		return &AppError{Code: CodeInvalidTimestamp, Message: "Invalid timestamp", StatusCode: http.StatusBadRequest, Err: err}
	case stderrors.Is(err, oauth1.ErrConfiguration):
		return Configuration(err)
	}
	return StoreError(err)
}
