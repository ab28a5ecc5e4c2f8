package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/pkg/services"
)

// LoginStatus is the phase of the login gate.
type LoginStatus string

const (
	LoginLoading LoginStatus = "loading"
	LoginReady   LoginStatus = "ready"
	LoginFailed  LoginStatus = "failed"
)

// LoginFailedMessage is shown whenever authentication cannot complete.
const LoginFailedMessage = "Unable to authenticate. Please try again later."

// LoginState is a snapshot of the login gate.
type LoginState struct {
	Status  LoginStatus
	Loading bool
	Error   string
	Session *domain.AuthSession
}

// Login authenticates with Telegram init data and stores the session the
// private client reads.
type Login struct {
	base
	auth   Authenticator
	effect Effect[*domain.AuthSession]

	mu sync.Mutex
	st LoginState
}

// NewLogin starts in the Loading state.
func NewLogin(d Deps) *Login {
	return &Login{
		base: newBase("login", d),
		auth: d.Auth,
		st:   LoginState{Status: LoginLoading, Loading: true},
	}
}

// Mount runs the login. An existing session short-circuits to Ready; missing
// init data fails without any request.
func (l *Login) Mount(ctx context.Context, initData string) error {
	if sess := l.session.Get(); sess.Token() != "" {
		l.set(LoginState{Status: LoginReady, Session: sess})
		return nil
	}
	if strings.TrimSpace(initData) == "" {
		l.log.WarnObj("init data is not available", "login", map[string]any{"screen": l.name})
		l.set(LoginState{Status: LoginFailed, Error: LoginFailedMessage})
		return services.ErrMissingInitData
	}

	return l.effect.Run(ctx,
		func(ctx context.Context) (*domain.AuthSession, error) {
			return l.auth.LoginTelegram(ctx, initData)
		},
		func(sess *domain.AuthSession) {
			l.session.Set(sess)
			l.log.InfoObj("login succeeded", "login", map[string]any{"user_id": sess.UserID})
			l.set(LoginState{Status: LoginReady, Session: sess})
		},
		func(err error) {
			l.failure("authenticate", err)
			l.set(LoginState{Status: LoginFailed, Error: LoginFailedMessage})
		},
	)
}

// Unmount abandons an in-flight login.
func (l *Login) Unmount() { l.effect.Stop() }

// State returns a snapshot.
func (l *Login) State() LoginState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st
}

func (l *Login) set(st LoginState) {
	l.mu.Lock()
	l.st = st
	l.mu.Unlock()
}
