package service

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/borealfin/portal/pkg/slogx"
)

// Refresher performs the actual upstream session refresh call.
type Refresher interface {
	RefreshSession(ctx context.Context) error
}

// CacheInvalidator drops client-side caches after auth is lost, so stale
// authenticated responses cannot be served to a logged-out client.
type CacheInvalidator interface {
	InvalidateCaches(ctx context.Context)
}

// CacheInvalidatorFunc adapts a function to the CacheInvalidator interface.
type CacheInvalidatorFunc func(ctx context.Context)

func (f CacheInvalidatorFunc) InvalidateCaches(ctx context.Context) { f(ctx) }

// RefreshCoordinator collapses concurrent session refresh attempts into a
// single upstream call and latches after the first failure so a dead
// refresh endpoint is not hammered. The latch holds for the life of the
// process until Reset, typically after a fresh one-time-code login.
type RefreshCoordinator struct {
	Upstream    Refresher
	Sessions    *SessionService
	Invalidator CacheInvalidator

	group  singleflight.Group
	failed atomic.Bool
}

// RefreshOnce refreshes the session, sharing one in-flight upstream call
// among concurrent callers. Returns false without any I/O once a prior
// attempt has failed.
func (c *RefreshCoordinator) RefreshOnce(ctx context.Context) bool {
	if c.failed.Load() {
		return false
	}

	_, err, _ := c.group.Do("refresh", func() (any, error) {
		return nil, c.Upstream.RefreshSession(ctx)
	})
	if err == nil {
		return true
	}
	if c.failed.CompareAndSwap(false, true) {
		c.onFailure(ctx, err)
	}
	return false
}

// Failed reports whether the coordinator is latched.
func (c *RefreshCoordinator) Failed() bool {
	return c.failed.Load()
}

// Reset unlatches the coordinator. Call after new credentials were
// established.
func (c *RefreshCoordinator) Reset() {
	c.failed.Store(false)
}

func (c *RefreshCoordinator) onFailure(ctx context.Context, cause error) {
	logger := slogx.FromContext(ctx)
	logger.Warn("session refresh failed, latching", "error", cause)

	if c.Sessions != nil {
		if err := c.Sessions.Clear(ctx); err != nil {
			logger.Warn("session clear after refresh failure", "error", err)
		}
	}
	if c.Invalidator != nil {
		c.Invalidator.InvalidateCaches(ctx)
	}
}
