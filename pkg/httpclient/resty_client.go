package httpclient

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/meetfeed/meetfeed-client/pkg/apierror"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
)

// ErrMissingBaseURL is returned when the clients are built without a base URL.
var ErrMissingBaseURL = errors.New("api base url is not configured")

// Options configures the public and private clients. A zero Timeout leaves
// request duration to the transport and the caller's context.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	BypassHeader string
	BypassValue  string
	Session      SessionFunc
	Logger       Logger
}

// Clients holds the two preconfigured API clients.
type Clients struct {
	Public  *Client
	Private *Client

	opts  Options
	log   Logger
	setUp atomic.Bool
}

// Client adapts resty.Client to the Doer interface.
type Client struct {
	name   string
	client *resty.Client
}

// New builds the public and private clients and registers their interceptors.
func New(opts Options) (*Clients, error) {
	opts.BaseURL = strings.TrimSpace(opts.BaseURL)
	if opts.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if opts.Timeout < 0 {
		opts.Timeout = 0
	}
	opts.BypassHeader = strings.TrimSpace(opts.BypassHeader)

	public := newRestyBaseClient(opts.Timeout)
	public.SetBaseURL(opts.BaseURL)

	private := newRestyBaseClient(opts.Timeout)
	private.SetBaseURL(opts.BaseURL)
	private.SetHeader(HeaderContentType, contentTypeJSON)

	cs := &Clients{
		Public:  &Client{name: "public", client: public},
		Private: &Client{name: "private", client: private},
		opts:    opts,
		log:     ensureLogger(opts.Logger),
	}
	cs.Setup()
	return cs, nil
}

// Setup registers the request/response interceptors. Only the first call has
// any effect.
func (cs *Clients) Setup() {
	if cs == nil || !cs.setUp.CompareAndSwap(false, true) {
		return
	}
	cs.register(cs.Public, false)
	cs.register(cs.Private, true)
}

func (cs *Clients) register(c *Client, private bool) {
	ic := &interceptors{
		name:         c.name,
		private:      private,
		session:      cs.opts.Session,
		bypassHeader: cs.opts.BypassHeader,
		bypassValue:  cs.opts.BypassValue,
		log:          cs.log,
	}
	c.client.OnBeforeRequest(ic.onRequest)
	c.client.OnAfterResponse(ic.onResponse)
	c.client.OnError(ic.onError)
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Name returns "public" or "private".
func (c *Client) Name() string { return c.name }

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string { return c.client.BaseURL }

// Do performs the call. Responses with status >= 400 come back as
// *apierror.HTTPError; transport failures as *apierror.RequestError wrapping
// the underlying error.
func (c *Client) Do(ctx context.Context, call Call) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req := c.client.R().SetContext(ctx)
	if len(call.Headers) > 0 {
		req.SetHeaders(call.Headers)
	}
	if len(call.Query) > 0 {
		req.SetQueryParamsFromValues(call.Query)
	}
	if call.Body != nil {
		req.SetBody(call.Body)
	}

	resp, err := req.Execute(call.Method, call.Path)
	if err != nil {
		var httpErr *apierror.HTTPError
		if errors.As(err, &httpErr) {
			return nil, httpErr
		}
		return nil, transportError(req, err)
	}
	return &restyResponseAdapter{resp: resp}, nil
}

func transportError(req *resty.Request, err error) *apierror.RequestError {
	var re *apierror.RequestError
	if errors.As(err, &re) {
		return re
	}
	return &apierror.RequestError{
		Method:      req.Method,
		URL:         req.URL,
		Err:         err,
		ContextDone: req.Context().Err() != nil,
	}
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
