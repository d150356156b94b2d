// Package jwtx mints and verifies HS256 portal access tokens. A token is
// issued after a successful one-time-code verification and names the
// application tokens the holder may view without re-authenticating.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a portal access token.
type Claims struct {
	// Phone is the normalized phone the holder proved possession of.
	Phone string `json:"phone"`
	// ApplicationTokens lists the application tokens the session covers.
	ApplicationTokens []string `json:"app_tokens,omitempty"`

	jwt.RegisteredClaims
}

// Covers reports whether the claims grant access to the given application token.
func (c Claims) Covers(token string) bool {
	for _, t := range c.ApplicationTokens {
		if t == token {
			return true
		}
	}
	return false
}

// newRegisteredClaims builds the registered claim set for an issuance.
func newRegisteredClaims(issuer, subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
