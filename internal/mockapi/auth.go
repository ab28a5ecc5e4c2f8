package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// telegramUser is the "user" field of Telegram init data. The signature is
// not checked; this backend is for local development only.
type telegramUser struct {
	ID        json.Number `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Username  string      `json:"username"`
	PhotoURL  string      `json:"photo_url"`
}

func (u telegramUser) displayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}

// parseInitData extracts the user from raw init data
// ("query_id=...&user=%7B...%7D&auth_date=...&hash=...").
func parseInitData(raw string) (telegramUser, error) {
	vals, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return telegramUser{}, fmt.Errorf("parse init data: %w", err)
	}
	userJSON := vals.Get("user")
	if userJSON == "" {
		return telegramUser{}, errors.New("init data has no user")
	}
	var u telegramUser
	if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
		return telegramUser{}, fmt.Errorf("decode init data user: %w", err)
	}
	if u.ID.String() == "" {
		return telegramUser{}, errors.New("init data user has no id")
	}
	return u, nil
}

func bearer(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return tok, tok != ""
}

func (s *Server) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     s.now().Unix(),
		"exp":     s.now().Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", errors.New("token has no user")
	}
	return userID, nil
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c)
		if !ok {
			jsonMessage(c, http.StatusUnauthorized, "Missing Authorization header")
			c.Abort()
			return
		}
		userID, err := s.parseToken(raw)
		if err != nil {
			jsonMessage(c, http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

func (s *Server) loginTelegram(c *gin.Context) {
	raw, ok := bearer(c)
	if !ok {
		jsonMessage(c, http.StatusUnauthorized, "Missing init data")
		return
	}
	tgUser, err := parseInitData(raw)
	if err != nil {
		jsonMessage(c, http.StatusUnauthorized, "Invalid init data")
		return
	}

	userID := tgUser.ID.String()
	prof := s.ensureProfile(userID, tgUser.displayName(), tgUser.PhotoURL)

	token, err := s.issueToken(userID)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	s.log.InfoObj("mock login", "mock_login", map[string]any{"user_id": userID})

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user": gin.H{
			"id":           userID,
			"display_name": prof.DisplayName,
			"photo_url":    prof.PhotoURL,
		},
	})
}
