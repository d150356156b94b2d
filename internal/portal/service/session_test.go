package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/borealfin/portal/internal/portal/domain"
	"github.com/borealfin/portal/pkg/jwtx"
)

func newSessionService(t *testing.T) (*SessionService, func() time.Time) {
	t.Helper()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fast, _ := newTestFast(t)
	svc := &SessionService{
		Store:  newTestStore(t),
		Fast:   fast,
		Cache:  NewSessionCache(),
		Signer: jwtx.NewSigner("test-issuer", []byte("test-secret")),
		Now:    func() time.Time { return now },
	}
	return svc, func() time.Time { return now }
}

func TestSessionMarkVerified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newSessionService(t)

	token, err := svc.MarkVerified(ctx, "5551112222", "app-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "5551112222", claims.Phone)
	require.True(t, claims.Covers("app-1"))
	require.False(t, claims.Covers("app-2"))

	require.True(t, svc.HasSession(ctx, "app-1"))
	require.False(t, svc.HasSession(ctx, "app-2"))
	require.False(t, svc.HasSession(ctx, ""))
}

func TestSessionNewestFirstAndDedup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newSessionService(t)

	_, err := svc.MarkVerified(ctx, "5551112222", "app-1")
	require.NoError(t, err)
	_, err = svc.MarkVerified(ctx, "5551112222", "app-2")
	require.NoError(t, err)
	_, err = svc.MarkVerified(ctx, "5551112222", "app-1")
	require.NoError(t, err)

	sessions := svc.Load(ctx)
	require.Len(t, sessions, 2)
	require.Equal(t, "app-1", sessions[0].Token)
	require.Equal(t, "app-2", sessions[1].Token)
}

func TestSessionExpiryPrunedOnRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fast, _ := newTestFast(t)
	svc := &SessionService{
		Store:  newTestStore(t),
		Fast:   fast,
		Cache:  NewSessionCache(),
		Signer: jwtx.NewSigner("test-issuer", []byte("test-secret")),
		Now:    func() time.Time { return now },
	}

	_, err := svc.MarkVerified(ctx, "5551112222", "app-1")
	require.NoError(t, err)

	now = now.Add(domain.SessionTTL + time.Second)
	require.False(t, svc.HasSession(ctx, "app-1"))
	require.Empty(t, svc.Load(ctx))
}

func TestSessionHydrateFromDurable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, nowFn := newSessionService(t)

	durable := []domain.PortalSession{
		{Token: "app-1", VerifiedAt: nowFn(), ExpiresAt: nowFn().Add(domain.SessionTTL)},
	}
	require.NoError(t, svc.Store.Sessions().ReplaceSessions(ctx, durable))

	// The fast tier starts with stale junk that hydration must overwrite.
	require.NoError(t, svc.Fast.SetSessions(ctx, []domain.PortalSession{
		{Token: "stale", VerifiedAt: nowFn(), ExpiresAt: nowFn().Add(time.Minute)},
	}))

	require.NoError(t, svc.Hydrate(ctx))

	sessions := svc.Load(ctx)
	require.Len(t, sessions, 1)
	require.Equal(t, "app-1", sessions[0].Token)
}

func TestSessionHydrateEmptyDurableLeavesFastAlone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, nowFn := newSessionService(t)

	require.NoError(t, svc.Fast.SetSessions(ctx, []domain.PortalSession{
		{Token: "app-1", VerifiedAt: nowFn(), ExpiresAt: nowFn().Add(domain.SessionTTL)},
	}))

	require.NoError(t, svc.Hydrate(ctx))

	sessions := svc.Load(ctx)
	require.Len(t, sessions, 1)
	require.Equal(t, "app-1", sessions[0].Token)
}

func TestSessionClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newSessionService(t)

	_, err := svc.MarkVerified(ctx, "5551112222", "app-1")
	require.NoError(t, err)
	require.True(t, svc.HasSession(ctx, "app-1"))

	require.NoError(t, svc.Clear(ctx))
	require.False(t, svc.HasSession(ctx, "app-1"))
	require.Empty(t, svc.Load(ctx))
}

func TestSessionSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, nowFn := newSessionService(t)

	want := []domain.PortalSession{
		{Token: "app-1", VerifiedAt: nowFn(), ExpiresAt: nowFn().Add(domain.SessionTTL)},
		{Token: "app-2", VerifiedAt: nowFn().Add(-time.Minute), ExpiresAt: nowFn().Add(domain.SessionTTL - time.Minute)},
	}
	require.NoError(t, svc.Save(ctx, want))

	// A fresh cache forces the read back through the fast tier.
	svc.Cache = NewSessionCache()
	require.Equal(t, want, svc.Load(ctx))
}

func TestSessionLoadFiltersMalformedFastEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fast, mr := newTestFast(t)
	svc := &SessionService{
		Store:  newTestStore(t),
		Fast:   fast,
		Cache:  NewSessionCache(),
		Signer: jwtx.NewSigner("test-issuer", []byte("test-secret")),
		Now:    func() time.Time { return now },
	}

	good := domain.PortalSession{Token: "app-1", VerifiedAt: now, ExpiresAt: now.Add(domain.SessionTTL)}
	goodJSON, err := json.Marshal(good)
	require.NoError(t, err)

	// One valid entry among a token-less entry, an expiry-less entry, and
	// outright garbage.
	blob := `[` + string(goodJSON) +
		`,{"verifiedAt":"2026-03-01T09:00:00Z","expiresAt":"2026-03-01T09:05:00Z"}` +
		`,{"token":"app-2"}` +
		`,"garbage"]`
	require.NoError(t, mr.Set("portal:sessions", blob))

	sessions := svc.Load(ctx)
	require.Len(t, sessions, 1)
	require.Equal(t, "app-1", sessions[0].Token)
}
