package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/pkg/httpclient"
)

const pathLoginTelegram = "/auth/login-telegram"

var (
	// ErrMissingInitData is returned before any request when no Telegram init data is available.
	ErrMissingInitData = errors.New("telegram init data is not available")
	// ErrAuthFailed is returned when the login call succeeds at HTTP level but not with 200/201.
	ErrAuthFailed = errors.New("authentication failed")
)

// AuthService logs in against the public client.
type AuthService struct {
	client httpclient.Doer
	ex     executor
}

// NewAuthService builds the auth façade over the public client.
func NewAuthService(public httpclient.Doer, log Logger) *AuthService {
	return &AuthService{client: public, ex: executor{service: "authService", log: ensureLogger(log)}}
}

// LoginTelegram exchanges raw init data for a session. The init data itself is
// the bearer credential of this call.
func (s *AuthService) LoginTelegram(ctx context.Context, initData string) (*domain.AuthSession, error) {
	initData = strings.TrimSpace(initData)
	if initData == "" {
		return nil, ErrMissingInitData
	}

	return execute(ctx, s.ex, "loginWithTelegram", func(ctx context.Context) (*domain.AuthSession, error) {
		resp, err := s.client.Do(ctx, httpclient.Call{
			Method:  http.MethodPost,
			Path:    pathLoginTelegram,
			Headers: map[string]string{httpclient.HeaderAuthorization: "Bearer " + initData},
			Body:    map[string]any{},
		})
		if err != nil {
			return nil, err
		}
		if status := resp.StatusCode(); status != http.StatusOK && status != http.StatusCreated {
			return nil, fmt.Errorf("%w: unexpected status %d", ErrAuthFailed, status)
		}
		return sessionFromBody(initData, resp.Body())
	})
}

func sessionFromBody(initData string, body []byte) (*domain.AuthSession, error) {
	sess := &domain.AuthSession{InitData: initData}
	if len(strings.TrimSpace(string(body))) == 0 {
		return sess, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	sess.Raw = raw

	var typed struct {
		AccessToken string     `json:"access_token"`
		Token       string     `json:"token"`
		AccessCamel string     `json:"accessToken"`
		UserID      flexString `json:"user_id"`
		User        struct {
			ID          flexString `json:"id"`
			DisplayName string     `json:"display_name"`
			Name        string     `json:"name"`
			FirstName   string     `json:"first_name"`
		} `json:"user"`
	}
	// user may be a scalar id on some deployments; ignore shape mismatches
	_ = json.Unmarshal(body, &typed)

	sess.AccessToken = firstNonEmpty(typed.AccessToken, typed.AccessCamel, typed.Token)
	sess.UserID = firstNonEmpty(string(typed.User.ID), string(typed.UserID), userRef(rawField(raw, "user")))
	sess.DisplayName = firstNonEmpty(typed.User.DisplayName, typed.User.Name, typed.User.FirstName)
	return sess, nil
}

func rawField(m map[string]any, key string) json.RawMessage {
	v, ok := m[key]
	if !ok {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
