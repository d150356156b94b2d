package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/borealfin/portal/internal/portal/store"
)

func TestProfileUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := &ProfileService{Store: newTestStore(t)}

	t.Run("creates a profile on first upsert", func(t *testing.T) {
		p, err := svc.Upsert(ctx, "(555) 123-4567", "tok-a")
		require.NoError(t, err)
		require.Equal(t, "5551234567", p.NormalizedPhone)
		require.Equal(t, "(555) 123-4567", p.Phone)
		require.Equal(t, []string{"tok-a"}, p.ApplicationTokens)
		require.Equal(t, "tok-a", p.LastActiveToken)
	})

	t.Run("prepends newer tokens without duplicates", func(t *testing.T) {
		_, err := svc.Upsert(ctx, "5551234567", "tok-b")
		require.NoError(t, err)
		p, err := svc.Upsert(ctx, "5551234567", "tok-a")
		require.NoError(t, err)

		require.Equal(t, []string{"tok-b", "tok-a"}, p.ApplicationTokens)
		require.Equal(t, "tok-a", p.LastActiveToken)
	})

	t.Run("different formats of the same number share one profile", func(t *testing.T) {
		p, err := svc.Get(ctx, "555-123-4567")
		require.NoError(t, err)
		require.Equal(t, "5551234567", p.NormalizedPhone)
		require.Len(t, p.ApplicationTokens, 2)
	})

	t.Run("records the last used phone for prefill", func(t *testing.T) {
		require.Equal(t, "5551234567", svc.LastUsedPhone(ctx))
	})

	t.Run("rejects phones with no digits", func(t *testing.T) {
		_, err := svc.Upsert(ctx, "---", "tok-x")
		require.ErrorIs(t, err, ErrEmptyPhone)
	})
}

func TestProfileMarkSubmitted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := &ProfileService{Store: newTestStore(t)}

	_, err := svc.Upsert(ctx, "5550001111", "tok-1")
	require.NoError(t, err)

	p, err := svc.MarkSubmitted(ctx, "5550001111", "tok-2")
	require.NoError(t, err)

	require.Equal(t, []string{"tok-2", "tok-1"}, p.ApplicationTokens)
	require.Equal(t, []string{"tok-2"}, p.SubmittedTokens)
	require.Equal(t, "tok-2", p.LastSubmittedToken)
	require.True(t, p.HasSubmissions())

	t.Run("submitting again is idempotent on the lists", func(t *testing.T) {
		p, err := svc.MarkSubmitted(ctx, "5550001111", "tok-2")
		require.NoError(t, err)
		require.Equal(t, []string{"tok-2", "tok-1"}, p.ApplicationTokens)
		require.Equal(t, []string{"tok-2"}, p.SubmittedTokens)
	})

	t.Run("creates the profile when phone was never seen", func(t *testing.T) {
		p, err := svc.MarkSubmitted(ctx, "5559998888", "tok-z")
		require.NoError(t, err)
		require.Equal(t, "tok-z", p.LastSubmittedToken)
		require.Equal(t, []string{"tok-z"}, p.ApplicationTokens)
	})
}

func TestProfilePredicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := &ProfileService{Store: newTestStore(t)}

	require.False(t, svc.HasAnyProfile(ctx))
	require.False(t, svc.HasSubmittedProfile(ctx))

	_, err := svc.Upsert(ctx, "5551230000", "tok-a")
	require.NoError(t, err)

	require.True(t, svc.HasAnyProfile(ctx))
	require.False(t, svc.HasSubmittedProfile(ctx))

	_, err = svc.MarkSubmitted(ctx, "5551230000", "tok-a")
	require.NoError(t, err)
	require.True(t, svc.HasSubmittedProfile(ctx))
}

func TestProfileGetAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := &ProfileService{Store: newTestStore(t)}

	_, err := svc.Get(ctx, "5550000000")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.Empty(t, svc.ListTokens(ctx, "5550000000"))
	require.Empty(t, svc.LastUsedPhone(ctx))
}

func TestProfileUpdatedAtRefreshes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := &ProfileService{Store: newTestStore(t), Now: func() time.Time { return now }}

	p, err := svc.Upsert(ctx, "5551112222", "tok-a")
	require.NoError(t, err)
	require.Equal(t, now, p.UpdatedAt.UTC())

	now = now.Add(time.Hour)
	p, err = svc.Upsert(ctx, "5551112222", "tok-b")
	require.NoError(t, err)
	require.Equal(t, now, p.UpdatedAt.UTC())
}
