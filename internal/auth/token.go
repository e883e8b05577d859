// Package auth handles credential primitives: HS256 access tokens and
// bcrypt password hashes. The core trusts whatever identity these yield;
// everything policy-related lives in internal/policy.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer mints and verifies HS256 access tokens carrying the username
// as subject.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds an issuer. ttlMin is the token lifetime in minutes.
func NewTokenIssuer(secret string, ttlMin int) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: time.Duration(ttlMin) * time.Minute}
}

// Issue signs a token for the given username.
func (i *TokenIssuer) Issue(username string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": username,
		"exp": now.Add(i.ttl).Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Subject verifies a raw token and returns its subject claim. Any parse,
// signature, or expiry failure collapses into ErrInvalidToken so callers
// never learn why a credential was rejected.
func (i *TokenIssuer) Subject(raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
