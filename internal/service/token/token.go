package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smartstore/backend/internal/apperr"
)

// Service issues and verifies HS256 bearer tokens carrying the username as
// subject. Nothing else is stored in the token; privilege is resolved from
// the users table on every use.
type Service struct {
	Secret  []byte
	Expires time.Duration
}

func New(secret []byte, expires time.Duration) *Service {
	if expires <= 0 {
		expires = 180 * time.Minute
	}
	return &Service{Secret: secret, Expires: expires}
}

func (s *Service) Issue(username string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.Expires)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Verify returns the token subject or an auth error for anything malformed,
// forged or expired.
func (s *Service) Verify(raw string) (string, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !t.Valid {
		return "", apperr.Wrap(apperr.KindAuth, "invalid token", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperr.Auth("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", apperr.Auth("token missing subject")
	}
	return sub, nil
}
