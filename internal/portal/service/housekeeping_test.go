package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/borealfin/portal/internal/portal/domain"
	"github.com/borealfin/portal/internal/portal/store"
)

func TestHousekeepingSweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	now := time.Now().UTC()

	// Expired one-time code.
	require.NoError(t, st.OTPs().PutPendingOTP(ctx, domain.PendingOTP{
		Phone:     "5551234567",
		CodeHash:  "$argon2id$stale",
		CreatedAt: now.Add(-domain.OTPTTL - time.Minute),
	}))

	// One live and one expired portal session.
	require.NoError(t, st.Sessions().ReplaceSessions(ctx, []domain.PortalSession{
		{Token: "tok-live", VerifiedAt: now, ExpiresAt: now.Add(domain.SessionTTL)},
		{Token: "tok-dead", VerifiedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-time.Hour)},
	}))

	// A stale draft, a fresh draft, and an old terminal snapshot that must
	// survive as portal history.
	stale := domain.Application{ApplicationToken: "tok-stale", Stage: domain.StageDraft, UpdatedAt: now.Add(-60 * 24 * time.Hour)}
	fresh := domain.Application{ApplicationToken: "tok-fresh", Stage: domain.StageDraft, UpdatedAt: now}
	closed := domain.Application{ApplicationToken: "tok-closed", Stage: domain.StageAccepted, UpdatedAt: now.Add(-60 * 24 * time.Hour)}
	for _, app := range []domain.Application{stale, fresh, closed} {
		require.NoError(t, st.Applications().PutSnapshot(ctx, app))
	}

	hk := NewHousekeepingService(st, logger, time.Hour, 30*24*time.Hour)
	hk.sweep()

	_, err := st.OTPs().GetPendingOTP(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	sessions, err := st.Sessions().ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "tok-live", sessions[0].Token)

	_, err = st.Applications().GetSnapshot(ctx, "tok-stale")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Applications().GetSnapshot(ctx, "tok-fresh")
	require.NoError(t, err)
	_, err = st.Applications().GetSnapshot(ctx, "tok-closed")
	require.NoError(t, err)
}

func TestHousekeepingStartStop(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hk := NewHousekeepingService(st, logger, 50*time.Millisecond, time.Hour)
	hk.Start()
	time.Sleep(120 * time.Millisecond)
	hk.Stop()
}
