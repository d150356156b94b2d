package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/borealfin/portal/internal/portal/domain"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/pkg/phonex"
	"github.com/borealfin/portal/pkg/slogx"
)

var (
	// ErrEmptyPhone reports a phone with no digits at all; such input can
	// never form a profile key and the write is skipped.
	ErrEmptyPhone = errors.New("empty_phone")
)

// ProfileService manages the per-client profile records keyed by normalized
// phone. A profile tracks every application token a client has touched so
// the portal can route returning clients to the right place.
type ProfileService struct {
	Store store.Store

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

func (s *ProfileService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Get returns the profile stored under the normalized form of phone.
// Storage failures degrade to absence: the portal must keep working for a
// client even when the profile record cannot be read.
func (s *ProfileService) Get(ctx context.Context, phone string) (domain.ClientProfile, error) {
	key := phonex.Normalize(phone)
	if key == "" {
		return domain.ClientProfile{}, ErrEmptyPhone
	}

	profile, err := s.Store.Profiles().GetProfile(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ClientProfile{}, store.ErrNotFound
	}
	if err != nil {
		slogx.FromContext(ctx).Warn("profile read failed, treating as absent",
			"error", err)
		return domain.ClientProfile{}, store.ErrNotFound
	}
	return profile, nil
}

// Upsert merges an application token into the profile for phone, creating
// the profile when missing. The token is prepended (newest first, no
// duplicates) and becomes the last active token. The display phone is also
// recorded for entry-form prefill.
func (s *ProfileService) Upsert(ctx context.Context, phone, token string) (domain.ClientProfile, error) {
	key := phonex.Normalize(phone)
	if key == "" {
		return domain.ClientProfile{}, ErrEmptyPhone
	}

	var merged domain.ClientProfile
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		profile, err := tx.Profiles().GetProfile(ctx, key)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		profile.Phone = phone
		profile.NormalizedPhone = key
		if token != "" {
			profile.ApplicationTokens = prependToken(profile.ApplicationTokens, token)
			profile.LastActiveToken = token
		}
		profile.UpdatedAt = s.now()

		if err := tx.Profiles().PutProfile(ctx, profile); err != nil {
			return err
		}
		if err := tx.Profiles().SetLastUsedPhone(ctx, phone); err != nil {
			return err
		}
		merged = profile
		return nil
	})
	if err != nil {
		return domain.ClientProfile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return merged, nil
}

// MarkSubmitted records that token reached submission under phone: it joins
// both token lists (newest first, no duplicates) and becomes the last
// submitted token.
func (s *ProfileService) MarkSubmitted(ctx context.Context, phone, token string) (domain.ClientProfile, error) {
	key := phonex.Normalize(phone)
	if key == "" {
		return domain.ClientProfile{}, ErrEmptyPhone
	}
	if token == "" {
		return domain.ClientProfile{}, errors.New("empty token")
	}

	var merged domain.ClientProfile
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		profile, err := tx.Profiles().GetProfile(ctx, key)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		profile.Phone = phone
		profile.NormalizedPhone = key
		profile.ApplicationTokens = prependToken(profile.ApplicationTokens, token)
		profile.SubmittedTokens = prependToken(profile.SubmittedTokens, token)
		profile.LastSubmittedToken = token
		profile.UpdatedAt = s.now()

		if err := tx.Profiles().PutProfile(ctx, profile); err != nil {
			return err
		}
		merged = profile
		return nil
	})
	if err != nil {
		return domain.ClientProfile{}, fmt.Errorf("mark submitted: %w", err)
	}
	return merged, nil
}

// ListTokens returns the profile's application tokens, newest first. Absent
// profiles and storage failures both yield an empty list.
func (s *ProfileService) ListTokens(ctx context.Context, phone string) []string {
	profile, err := s.Get(ctx, phone)
	if err != nil {
		return nil
	}
	return profile.ApplicationTokens
}

// HasAnyProfile reports whether any client profile exists. Storage failures
// degrade to false with a warning.
func (s *ProfileService) HasAnyProfile(ctx context.Context) bool {
	ok, err := s.Store.Profiles().HasAnyProfile(ctx)
	if err != nil {
		slogx.FromContext(ctx).Warn("profile existence check failed", "error", err)
		return false
	}
	return ok
}

// HasSubmittedProfile reports whether any profile carries a submitted
// application. Storage failures degrade to false with a warning.
func (s *ProfileService) HasSubmittedProfile(ctx context.Context) bool {
	ok, err := s.Store.Profiles().HasSubmittedProfile(ctx)
	if err != nil {
		slogx.FromContext(ctx).Warn("submitted-profile check failed", "error", err)
		return false
	}
	return ok
}

// LastUsedPhone returns the display phone from the most recent upsert, for
// prefill. Empty when never set or unreadable.
func (s *ProfileService) LastUsedPhone(ctx context.Context) string {
	phone, err := s.Store.Profiles().GetLastUsedPhone(ctx)
	if err != nil {
		slogx.FromContext(ctx).Warn("last-used phone read failed", "error", err)
		return ""
	}
	return phone
}

// prependToken puts token at the head of list unless already present, in
// which case the list is returned unchanged.
func prependToken(list []string, token string) []string {
	for _, t := range list {
		if t == token {
			return list
		}
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, token)
	return append(out, list...)
}
