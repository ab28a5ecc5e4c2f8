package httpclient

import (
	"context"
	"net/url"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Call describes a single request relative to the client's base URL.
type Call struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    any
}

// Doer abstracts HTTP calls so services can be tested with fakes.
type Doer interface {
	Do(ctx context.Context, call Call) (Response, error)
}

// Session is whatever the private client needs from the current login.
type Session interface {
	Token() string
}

// SessionFunc returns the current session. It is evaluated on every request so
// a login that completes after the client was built is still honored.
type SessionFunc func() Session

// Logger defines the logging surface the clients rely on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
