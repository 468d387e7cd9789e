package client

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// FallbackMessage is used when no message can be extracted from a failure.
const FallbackMessage = "An unexpected error occurred"

// Common errors returned by the client.
var (
	// ErrRateLimited is returned when the local quota gate blocks a request.
	ErrRateLimited = errors.New("request quota exhausted")

	// ErrEmptyPayload is wrapped when a success status carries no body.
	ErrEmptyPayload = errors.New("response has no payload")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassTransport represents failures without a response: timeouts,
	// DNS and connection errors.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassServer represents non-2xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassUnexpected represents a 2xx response that is not
	// 200/201/202 or carries no payload.
	ErrorClassUnexpected ErrorClass = "unexpected"

	// ErrorClassRateLimit represents requests blocked by the quota gate.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassUnknown represents failures that carry no usable detail.
	ErrorClassUnknown ErrorClass = "unknown"
)

// APIError is a failed call with the human-readable message extracted from it.
type APIError struct {
	Endpoint   string
	StatusCode int
	Class      ErrorClass
	Message    string
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("NASA API %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("NASA API %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ExtractMessage returns the best human-readable message for a failure, in
// priority order: the body's "message" field, the body's "error" field
// (or its nested "error.message"), the underlying error's message, and
// finally FallbackMessage.
func ExtractMessage(body []byte, err error) string {
	if len(body) > 0 && gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}

		field := gjson.GetBytes(body, "error")
		switch {
		case field.Type == gjson.String && field.Str != "":
			return field.Str
		case field.IsObject():
			if msg := field.Get("message"); msg.Type == gjson.String && msg.Str != "" {
				return msg.Str
			}
		}
	}

	if err != nil && err.Error() != "" {
		return err.Error()
	}

	return FallbackMessage
}

// NewUnexpectedError builds the error for a response that reached the
// caller with an unusable status or payload.
func NewUnexpectedError(resp *Response) *APIError {
	if resp == nil {
		return &APIError{
			Class:   ErrorClassUnknown,
			Message: FallbackMessage,
		}
	}

	cause := fmt.Errorf("unexpected status code %d", resp.StatusCode)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && isEmptyPayload(resp.Body) {
		cause = ErrEmptyPayload
	}

	return &APIError{
		Endpoint:   resp.Endpoint,
		StatusCode: resp.StatusCode,
		Class:      ErrorClassUnexpected,
		Message:    ExtractMessage(resp.Body, cause),
		Body:       resp.Body,
		Err:        cause,
	}
}

// Classify converts any error into an *APIError. Errors already carrying an
// *APIError are returned as is; anything else becomes ErrorClassUnknown with
// the error's own message.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr
	}
	return &APIError{
		Class:   ErrorClassUnknown,
		Message: ExtractMessage(nil, err),
		Err:     err,
	}
}
