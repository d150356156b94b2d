package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL matches the portal-session window: a verified token is
// trusted for five minutes before the holder must re-verify.
const DefaultSessionTTL = 5 * time.Minute

var (
	// ErrInvalidToken reports a token that failed signature or claim validation.
	ErrInvalidToken = errors.New("jwtx: invalid token")
	// ErrExpiredToken reports a structurally valid token past its expiry.
	ErrExpiredToken = errors.New("jwtx: token expired")
)

// Signer issues and verifies portal access tokens with a single shared
// HMAC-SHA256 secret. The portal is both issuer and sole verifier, so an
// asymmetric scheme with key distribution would buy nothing here.
type Signer struct {
	Issuer string
	Secret []byte
	TTL    time.Duration

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewSigner returns a Signer with the default session TTL.
func NewSigner(issuer string, secret []byte) *Signer {
	return &Signer{Issuer: issuer, Secret: secret, TTL: DefaultSessionTTL}
}

func (s *Signer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Signer) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultSessionTTL
}

// Sign issues a portal access token for the given normalized phone covering
// the listed application tokens.
func (s *Signer) Sign(phone string, applicationTokens []string) (string, error) {
	if len(s.Secret) == 0 {
		return "", errors.New("jwtx: signer has no secret")
	}

	claims := Claims{
		Phone:             phone,
		ApplicationTokens: applicationTokens,
		RegisteredClaims:  newRegisteredClaims(s.Issuer, phone, s.now(), s.ttl()),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a portal access token, returning its claims.
func (s *Signer) Verify(raw string) (Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
			}
			return s.Secret, nil
		},
		jwt.WithIssuer(s.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
