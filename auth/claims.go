package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"salonpro-gateway/models"
)

// Claims are the readable parts of an API access token. They are decoded
// without verifying the signature and only serve as hints (expiry display,
// proactive refresh); the API remains the judge of every token.
type Claims struct {
	UserID    models.ID `json:"user_id"`
	Subject   string    `json:"sub,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at now. A token
// without expiry never expires.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	var c Claims
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	switch v := mc["user_id"].(type) {
	case float64:
		c.UserID = models.ID(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.UserID = models.ID(n)
		}
	}
	return &c, nil
}

// TokenClaims decodes the access token of the session.
func (s *Session) TokenClaims() (*Claims, error) {
	return ParseClaims(s.tokens.AccessToken())
}
