package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewSigner("portal-test", []byte("0123456789abcdef0123456789abcdef"))

	raw, err := s.Sign("5551234567", []string{"tok-a", "tok-b"})
	require.NoError(t, err)

	claims, err := s.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "5551234567", claims.Phone)
	require.Equal(t, "5551234567", claims.Subject)
	require.True(t, claims.Covers("tok-a"))
	require.True(t, claims.Covers("tok-b"))
	require.False(t, claims.Covers("tok-c"))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	a := NewSigner("portal-test", []byte("secret-a-secret-a-secret-a-secret"))
	b := NewSigner("portal-test", []byte("secret-b-secret-b-secret-b-secret"))

	raw, err := a.Sign("5551234567", nil)
	require.NoError(t, err)

	_, err = b.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	secret := []byte("0123456789abcdef0123456789abcdef")
	a := NewSigner("portal-a", secret)
	b := NewSigner("portal-b", secret)

	raw, err := a.Sign("5551234567", nil)
	require.NoError(t, err)

	_, err = b.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewSigner("portal-test", []byte("0123456789abcdef0123456789abcdef"))
	s.Now = func() time.Time { return issued }

	raw, err := s.Sign("5551234567", nil)
	require.NoError(t, err)

	// Move past the session TTL.
	s.Now = func() time.Time { return issued.Add(DefaultSessionTTL + time.Second) }
	_, err = s.Verify(raw)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestSignRequiresSecret(t *testing.T) {
	t.Parallel()

	s := &Signer{Issuer: "portal-test"}
	_, err := s.Sign("5551234567", nil)
	require.Error(t, err)
}
