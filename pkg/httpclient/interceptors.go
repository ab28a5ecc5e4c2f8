package httpclient

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/meetfeed/meetfeed-client/pkg/apierror"
)

// interceptors carries the cross-cutting request/response behavior of one client.
type interceptors struct {
	name         string
	private      bool
	session      SessionFunc
	bypassHeader string
	bypassValue  string
	log          Logger
}

// onRequest injects auth and bypass headers and logs the outgoing call.
// Headers the caller set explicitly are never overwritten.
func (ic *interceptors) onRequest(c *resty.Client, r *resty.Request) error {
	if ic.private && r.Header.Get(HeaderAuthorization) == "" {
		if token := ic.currentToken(); token != "" {
			r.SetHeader(HeaderAuthorization, "Bearer "+token)
		}
	}
	if ic.bypassHeader != "" && r.Header.Get(ic.bypassHeader) == "" {
		r.SetHeader(ic.bypassHeader, ic.bypassValue)
	}

	ic.log.DebugObj("api request", "api_request", map[string]any{
		"client":  ic.name,
		"method":  strings.ToUpper(r.Method),
		"url":     FullURL(c.BaseURL, r.URL),
		"headers": redactHeaders(mergeHeaders(c.Header, r.Header)),
		"params":  r.QueryParam.Encode(),
	})
	return nil
}

// onResponse logs successful responses and turns error statuses into
// *apierror.HTTPError so callers see one error shape.
func (ic *interceptors) onResponse(_ *resty.Client, resp *resty.Response) error {
	req := resp.Request
	if resp.IsError() {
		return apierror.NewHTTPError(resp.StatusCode(), req.Method, req.URL, resp.Body())
	}
	ic.log.DebugObj("api response", "api_response", map[string]any{
		"client":     ic.name,
		"method":     req.Method,
		"url":        req.URL,
		"status":     resp.StatusCode(),
		"elapsed_ms": resp.Time().Milliseconds(),
	})
	return nil
}

// onError classifies a failed call and logs it. The error itself is passed
// back to the caller untouched by Do.
func (ic *interceptors) onError(r *resty.Request, err error) {
	var classified error = err
	var httpErr *apierror.HTTPError
	if !errors.As(err, &httpErr) {
		classified = transportError(r, err)
	}

	meta := map[string]any{
		"client": ic.name,
		"method": r.Method,
		"url":    r.URL,
		"status": apierror.StatusCode(classified),
		"error":  err.Error(),
	}

	switch apierror.Classify(classified) {
	case apierror.ClassCanceled:
		ic.log.DebugObj("api request canceled", "api_canceled", meta)
	case apierror.ClassAuth:
		ic.log.WarnObj("api authentication failed", "api_auth_error", meta)
	case apierror.ClassForbidden:
		ic.log.WarnObj("api access forbidden", "api_forbidden_error", meta)
	default:
		meta["message"] = apierror.Message(classified)
		ic.log.ErrorObj("api request failed", "api_error", meta)
	}
}

func (ic *interceptors) currentToken() string {
	if ic.session == nil {
		return ""
	}
	s := ic.session()
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.Token())
}

func mergeHeaders(base, overrides http.Header) http.Header {
	out := make(http.Header, len(base)+len(overrides))
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range overrides {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// redactHeaders keeps the auth scheme but hides the credential.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		v := h.Get(k)
		if strings.EqualFold(k, HeaderAuthorization) {
			scheme, _, _ := strings.Cut(v, " ")
			v = scheme + " ***"
		}
		out[k] = v
	}
	return out
}
