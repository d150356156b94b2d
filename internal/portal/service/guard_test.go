package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/borealfin/portal/internal/portal/domain"
)

func TestGuardResolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("offline always noops", func(t *testing.T) {
		fast, _ := newTestFast(t)
		g := &GuardService{Markers: fast}
		require.Equal(t, GuardNoop, g.Resolve(ctx, GuardInput{Offline: true}))
		require.Equal(t, GuardNoop, g.Resolve(ctx, GuardInput{Offline: true, Authenticated: true}))
	})

	t.Run("authenticated noops and clears the marker", func(t *testing.T) {
		fast, _ := newTestFast(t)
		g := &GuardService{Markers: fast}

		require.NoError(t, fast.SetReloadMarker(ctx))
		require.Equal(t, GuardNoop, g.Resolve(ctx, GuardInput{Authenticated: true}))

		set, err := fast.HasReloadMarker(ctx)
		require.NoError(t, err)
		require.False(t, set)
	})

	t.Run("no marker storage redirects", func(t *testing.T) {
		g := &GuardService{}
		require.Equal(t, GuardRedirect, g.Resolve(ctx, GuardInput{}))
	})

	t.Run("grants exactly one reload", func(t *testing.T) {
		fast, _ := newTestFast(t)
		g := &GuardService{Markers: fast}

		require.Equal(t, GuardReload, g.Resolve(ctx, GuardInput{}))
		require.Equal(t, GuardRedirect, g.Resolve(ctx, GuardInput{}))
		require.Equal(t, GuardRedirect, g.Resolve(ctx, GuardInput{}))
	})

	t.Run("marker expiry restores the reload allowance", func(t *testing.T) {
		fast, mr := newTestFast(t)
		g := &GuardService{Markers: fast}

		require.Equal(t, GuardReload, g.Resolve(ctx, GuardInput{}))
		mr.FastForward(domain.SessionTTL + time.Second)
		require.Equal(t, GuardReload, g.Resolve(ctx, GuardInput{}))
	})
}

func TestRouteAuthRequirement(t *testing.T) {
	t.Parallel()

	t.Run("status needs a portal session for its token", func(t *testing.T) {
		req, token := RouteAuthRequirement("/status", url.Values{"token": {"app-1"}})
		require.Equal(t, RequirePortalSession, req)
		require.Equal(t, "app-1", token)
	})

	t.Run("later wizard steps need a cached application", func(t *testing.T) {
		for _, path := range []string{"/apply/step-2", "/apply/step-6"} {
			req, _ := RouteAuthRequirement(path, nil)
			require.Equal(t, RequireCachedApplication, req, path)
		}
	})

	t.Run("everything else is public", func(t *testing.T) {
		for _, path := range []string{"/", "/portal", "/resume", "/apply/step-1", "/apply/step-x"} {
			req, _ := RouteAuthRequirement(path, nil)
			require.Equal(t, RequireNothing, req, path)
		}
	})
}
