package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"

	"github.com/borealfin/portal/internal/portal/domain"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/pkg/cryptox"
	"github.com/borealfin/portal/pkg/phonex"
	"github.com/borealfin/portal/pkg/slogx"
)

// Sender delivers a one-time code out of band (SMS gateway, demo console).
// The delivery channel is opaque to the portal.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, phone, code string) error

func (f SenderFunc) SendCode(ctx context.Context, phone, code string) error {
	return f(ctx, phone, code)
}

// OTPService issues and verifies the portal's one-time login codes. At most
// one code is pending at a time; requesting a new one replaces it.
type OTPService struct {
	Store  store.Store
	Sender Sender

	// DevEchoOTP returns the generated code to the caller. Demo and test
	// environments only; production delivery goes through Sender alone.
	DevEchoOTP bool

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Request generates a fresh 6-digit code for phone, stores its hash as the
// single pending code, and hands the plaintext to the Sender. The returned
// echo is empty unless DevEchoOTP is on.
func (s *OTPService) Request(ctx context.Context, phone string) (echo string, err error) {
	key := phonex.Normalize(phone)
	if key == "" {
		return "", ErrEmptyPhone
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	hash, err := cryptox.HashCode(code)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	pending := domain.PendingOTP{
		Phone:     key,
		CodeHash:  hash,
		CreatedAt: s.now(),
	}
	if err := s.Store.OTPs().PutPendingOTP(ctx, pending); err != nil {
		return "", fmt.Errorf("store pending code: %w", err)
	}

	if s.Sender != nil {
		if err := s.Sender.SendCode(ctx, phone, code); err != nil {
			// The code is stored and can still be verified; delivery is
			// retried by the client asking again.
			slogx.FromContext(ctx).Warn("one-time code delivery failed", "error", err)
		}
	}

	if s.DevEchoOTP {
		return code, nil
	}
	return "", nil
}

// Verify reports whether code is the live pending code for phone. True only
// when the normalized phone matches, the hash matches, and the code is
// within its 5-minute window. Success consumes the code; a wrong code
// leaves it pending; an expired code is deleted and treated as absent.
// Mismatch and expiry are routine outcomes, not errors.
func (s *OTPService) Verify(ctx context.Context, phone, code string) bool {
	key := phonex.Normalize(phone)
	if key == "" || code == "" {
		return false
	}

	pending, err := s.Store.OTPs().GetPendingOTP(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	if err != nil {
		slogx.FromContext(ctx).Warn("pending code read failed", "error", err)
		return false
	}

	if pending.ExpiredAt(s.now()) {
		if err := s.Store.OTPs().DeletePendingOTP(ctx); err != nil {
			slogx.FromContext(ctx).Warn("expired code cleanup failed", "error", err)
		}
		return false
	}

	if pending.Phone != key {
		return false
	}
	if err := cryptox.VerifyCode(code, pending.CodeHash); err != nil {
		return false
	}

	if err := s.Store.OTPs().DeletePendingOTP(ctx); err != nil {
		slogx.FromContext(ctx).Warn("verified code cleanup failed", "error", err)
	}
	return true
}

// generateCode derives a 6-digit numeric code via HOTP over a throwaway
// random secret. The secret is never stored; only the argon2id hash of the
// resulting code is.
func generateCode() (string, error) {
	var raw [20]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw[:])
	return hotp.GenerateCodeCustom(secret, 0, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}
