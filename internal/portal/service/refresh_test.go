package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/borealfin/portal/pkg/jwtx"
)

type stubRefresher struct {
	calls atomic.Int64
	delay time.Duration
	err   error
}

func (s *stubRefresher) RefreshSession(ctx context.Context) error {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.err
}

func TestRefreshOnceCollapsesConcurrentCallers(t *testing.T) {
	t.Parallel()

	upstream := &stubRefresher{delay: 50 * time.Millisecond}
	coord := &RefreshCoordinator{Upstream: upstream}

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = coord.RefreshOnce(context.Background())
		}(i)
	}
	wg.Wait()

	for _, ok := range results {
		require.True(t, ok)
	}
	require.Equal(t, int64(1), upstream.calls.Load())
}

func TestRefreshFailureLatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	fast, _ := newTestFast(t)
	sessions := &SessionService{
		Store:  newTestStore(t),
		Fast:   fast,
		Cache:  NewSessionCache(),
		Signer: jwtx.NewSigner("test-issuer", []byte("test-secret")),
	}
	_, err := sessions.MarkVerified(ctx, "5551112222", "app-1")
	require.NoError(t, err)

	var invalidated atomic.Bool
	upstream := &stubRefresher{err: errors.New("upstream down")}
	coord := &RefreshCoordinator{
		Upstream: upstream,
		Sessions: sessions,
		Invalidator: CacheInvalidatorFunc(func(ctx context.Context) {
			invalidated.Store(true)
		}),
	}

	require.False(t, coord.RefreshOnce(ctx))
	require.True(t, coord.Failed())
	require.True(t, invalidated.Load())
	require.False(t, sessions.HasSession(ctx, "app-1"))

	t.Run("latched calls do no upstream I/O", func(t *testing.T) {
		before := upstream.calls.Load()
		require.False(t, coord.RefreshOnce(ctx))
		require.False(t, coord.RefreshOnce(ctx))
		require.Equal(t, before, upstream.calls.Load())
	})

	t.Run("reset unlatches", func(t *testing.T) {
		upstream.err = nil
		coord.Reset()
		require.False(t, coord.Failed())
		require.True(t, coord.RefreshOnce(ctx))
	})
}
