package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FallbackMessage is shown when nothing better can be extracted from an error.
const FallbackMessage = "An unexpected error occurred"

// ErrCanceled marks an operation abandoned by its caller.
var ErrCanceled = errors.New("request canceled")

// Payload is the error body shape the backend sends.
type Payload struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HTTPError is returned for responses with status >= 400. It keeps the raw body
// so callers can inspect anything the backend sent.
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Body       []byte
	Payload    Payload
}

// NewHTTPError builds an HTTPError, decoding the backend payload when the body is JSON.
func NewHTTPError(status int, method, url string, body []byte) *HTTPError {
	e := &HTTPError{
		StatusCode: status,
		Method:     method,
		URL:        url,
		Body:       body,
	}
	if len(body) > 0 {
		var p Payload
		if err := json.Unmarshal(body, &p); err == nil {
			e.Payload = p
		}
	}
	return e
}

func (e *HTTPError) Error() string {
	switch {
	case e.Payload.Message != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Payload.Message)
	case e.Payload.Error != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Payload.Error)
	default:
		return fmt.Sprintf("%s %s: status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// RequestError is a transport failure: no response was received.
type RequestError struct {
	Method string
	URL    string
	Err    error
	// ContextDone records that the request's context was already done when the
	// failure surfaced.
	ContextDone bool
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ValidationError is a client-side check that failed before any request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation returns a ValidationError for field.
func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// Message extracts a user-displayable message from v, which may be an error,
// a string, or anything else. Precedence: backend message, backend error,
// error text, raw string, fallback.
func Message(v any) string {
	switch val := v.(type) {
	case nil:
		return FallbackMessage
	case error:
		var he *HTTPError
		if errors.As(val, &he) {
			if he.Payload.Message != "" {
				return he.Payload.Message
			}
			if he.Payload.Error != "" {
				return he.Payload.Error
			}
		}
		var ve *ValidationError
		if errors.As(val, &ve) && ve.Message != "" {
			return ve.Message
		}
		if msg := strings.TrimSpace(val.Error()); msg != "" {
			return msg
		}
	case string:
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return FallbackMessage
}
