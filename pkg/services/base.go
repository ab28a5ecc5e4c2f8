// Package services exposes resource-shaped operations over the backend REST API.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meetfeed/meetfeed-client/pkg/apierror"
	"github.com/meetfeed/meetfeed-client/pkg/httpclient"
)

// Payload is a request body under construction.
type Payload map[string]any

type undefined struct{}

// Undefined marks a payload key that must not be sent. It differs from nil,
// which is sent as JSON null, and from "", which is sent as an empty string.
var Undefined = undefined{}

// Clean returns a shallow copy of p without Undefined values.
func Clean(p Payload) Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		if _, skip := v.(undefined); skip {
			continue
		}
		out[k] = v
	}
	return out
}

// Logger defines the logging surface services rely on.
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

// executor runs service calls with uniform logging.
type executor struct {
	service string
	log     Logger
}

// execute runs fn. Canceled errors are returned without logging; any other
// error is logged and returned unchanged so callers keep status and body.
func execute[T any](ctx context.Context, ex executor, op string, fn func(context.Context) (T, error)) (T, error) {
	res, err := fn(ctx)
	if err != nil {
		if apierror.IsCanceled(err) {
			return res, err
		}
		ex.log.ErrorObj(ex.service+"."+op+" failed", "service_error", map[string]any{
			"service":   ex.service,
			"operation": op,
			"class":     apierror.Classify(err),
			"status":    apierror.StatusCode(err),
			"error":     err.Error(),
		})
		return res, err
	}
	ex.log.DebugObj(ex.service+"."+op+" succeeded", "service_result", map[string]any{
		"service":   ex.service,
		"operation": op,
	})
	return res, nil
}

func decode(resp httpclient.Response, out any) error {
	body := resp.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode(), err)
	}
	return nil
}
