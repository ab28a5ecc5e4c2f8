package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/meetfeed/meetfeed-client/pkg/apierror"
)

type tokenSession string

func (t tokenSession) Token() string { return string(t) }

type recordedLog struct {
	level string
	msg   string
}

// memLogger records log calls so tests can count them.
type memLogger struct {
	mu      sync.Mutex
	entries []recordedLog
}

func (m *memLogger) add(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, recordedLog{level: level, msg: msg})
}

func (m *memLogger) InfoObj(msg, _ string, _ interface{})  { m.add("info", msg) }
func (m *memLogger) DebugObj(msg, _ string, _ interface{}) { m.add("debug", msg) }
func (m *memLogger) WarnObj(msg, _ string, _ interface{})  { m.add("warn", msg) }
func (m *memLogger) ErrorObj(msg, _ string, _ interface{}) { m.add("error", msg) }

func (m *memLogger) count(level, msg string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.level == level && e.msg == msg {
			n++
		}
	}
	return n
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "  "}); !errors.Is(err, ErrMissingBaseURL) {
		t.Fatalf("expected ErrMissingBaseURL, got %v", err)
	}
}

func TestPrivateClientReadsSessionPerRequest(t *testing.T) {
	var gotAuth, gotBypass, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBypass = r.Header.Get("ngrok-skip-browser-warning")
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var current Session
	clients, err := New(Options{
		BaseURL:      srv.URL,
		BypassHeader: "ngrok-skip-browser-warning",
		BypassValue:  "true",
		Session:      func() Session { return current },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := clients.Private.Do(context.Background(), Call{Method: http.MethodGet, Path: "/events/me"}); err != nil {
		t.Fatalf("Do before login: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header before login, got %q", gotAuth)
	}

	// login completes after the client was built
	current = tokenSession("tok-1")
	if _, err := clients.Private.Do(context.Background(), Call{Method: http.MethodGet, Path: "/events/me"}); err != nil {
		t.Fatalf("Do after login: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if gotBypass != "true" {
		t.Fatalf("expected bypass header, got %q", gotBypass)
	}
	if gotType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotType)
	}
}

func TestPrivateClientKeepsExplicitAuthorization(t *testing.T) {
	var gotAuth, gotBypass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBypass = r.Header.Get("X-Bypass")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	clients, err := New(Options{
		BaseURL:      srv.URL,
		BypassHeader: "X-Bypass",
		BypassValue:  "1",
		Session:      func() Session { return tokenSession("session-token") },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = clients.Private.Do(context.Background(), Call{
		Method:  http.MethodGet,
		Path:    "/profiles/me",
		Headers: map[string]string{"Authorization": "Bearer explicit", "X-Bypass": "caller"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "Bearer explicit" {
		t.Fatalf("interceptor overwrote Authorization: %q", gotAuth)
	}
	if gotBypass != "caller" {
		t.Fatalf("interceptor overwrote bypass header: %q", gotBypass)
	}
}

func TestPublicClientNeverAddsSessionToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	clients, err := New(Options{BaseURL: srv.URL, Session: func() Session { return tokenSession("tok") }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := clients.Public.Do(context.Background(), Call{Method: http.MethodPost, Path: "/auth/login-telegram", Body: map[string]any{}}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("public client must not add session token, got %q", gotAuth)
	}
}

func TestSetupIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := &memLogger{}
	clients, err := New(Options{BaseURL: srv.URL, Logger: log})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clients.Setup()
	clients.Setup()

	if _, err := clients.Private.Do(context.Background(), Call{Method: http.MethodGet, Path: "/events/me"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if n := log.count("debug", "api request"); n != 1 {
		t.Fatalf("expected one request log entry, got %d", n)
	}
	if n := log.count("debug", "api response"); n != 1 {
		t.Fatalf("expected one response log entry, got %d", n)
	}
}

func TestErrorStatusReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"init data expired"}`))
	}))
	defer srv.Close()

	log := &memLogger{}
	clients, err := New(Options{BaseURL: srv.URL, Logger: log})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = clients.Private.Do(context.Background(), Call{Method: http.MethodGet, Path: "/profiles/me"})
	var httpErr *apierror.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T %v", err, err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", httpErr.StatusCode)
	}
	if apierror.Message(err) != "init data expired" {
		t.Fatalf("unexpected message %q", apierror.Message(err))
	}
	if n := log.count("warn", "api authentication failed"); n != 1 {
		t.Fatalf("expected auth failure to be logged once, got %d", n)
	}
	if n := log.count("error", "api request failed"); n != 0 {
		t.Fatalf("auth failure must not be logged as generic error")
	}
}

func TestCanceledRequestIsClassifiedAndNotLoggedAsError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	log := &memLogger{}
	clients, err := New(Options{BaseURL: srv.URL, Logger: log})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err = clients.Private.Do(ctx, Call{Method: http.MethodGet, Path: "/events/me"})
	if err == nil {
		t.Fatalf("expected error from canceled request")
	}
	var reqErr *apierror.RequestError
	if !errors.As(err, &reqErr) || !reqErr.ContextDone {
		t.Fatalf("expected RequestError with ContextDone, got %T %v", err, err)
	}
	if apierror.Classify(err) != apierror.ClassCanceled {
		t.Fatalf("expected canceled classification, got %q", apierror.Classify(err))
	}
	if n := log.count("error", "api request failed"); n != 0 {
		t.Fatalf("canceled request logged as error")
	}
	if n := log.count("debug", "api request canceled"); n != 1 {
		t.Fatalf("expected one canceled log entry, got %d", n)
	}
}

func TestClientTimeoutIsNetworkFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	log := &memLogger{}
	clients, err := New(Options{BaseURL: srv.URL, Timeout: 100 * time.Millisecond, Logger: log})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = clients.Private.Do(context.Background(), Call{Method: http.MethodGet, Path: "/events/me"})
	var reqErr *apierror.RequestError
	if !errors.As(err, &reqErr) || reqErr.ContextDone {
		t.Fatalf("expected RequestError without ContextDone, got %T %v", err, err)
	}
	if got := apierror.Classify(err); got != apierror.ClassNetwork {
		t.Fatalf("expected network classification, got %q (%v)", got, err)
	}
	if n := log.count("error", "api request failed"); n != 1 {
		t.Fatalf("expected timeout to be logged as failure, got %d", n)
	}
}

func TestNoClientTimeoutByDefault(t *testing.T) {
	clients, err := New(Options{BaseURL: "https://api.example.com"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := clients.Private.client.GetClient().Timeout; got != 0 {
		t.Fatalf("unexpected default timeout %v", got)
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	clients, err := New(Options{BaseURL: base, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = clients.Public.Do(context.Background(), Call{Method: http.MethodGet, Path: "/events/1"})
	if apierror.Classify(err) != apierror.ClassNetwork {
		t.Fatalf("expected network classification, got %q (%v)", apierror.Classify(err), err)
	}
}

func TestFullURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://api.example.com/v1", "/events/me", "https://api.example.com/v1/events/me"},
		{"https://api.example.com/v1/", "events/me", "https://api.example.com/v1/events/me"},
		{"https://api.example.com/v1//", "//events/me", "https://api.example.com/v1/events/me"},
		{"https://api.example.com/v1", "https://other.example.com/x", "https://other.example.com/x"},
		{"https://api.example.com/v1", "", "https://api.example.com/v1/"},
		{"", "/events/me", "/events/me"},
	}
	for _, tc := range tests {
		if got := FullURL(tc.base, tc.path); got != tc.want {
			t.Errorf("FullURL(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}
