package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/borealfin/portal/pkg/slogx"
)

// GuardAction is the session guard's verdict for a route change.
type GuardAction string

const (
	// GuardNoop lets the navigation proceed untouched.
	GuardNoop GuardAction = "noop"
	// GuardReload grants exactly one full reload so asynchronously hydrated
	// auth state gets a chance to land.
	GuardReload GuardAction = "reload"
	// GuardRedirect sends the client back to the authentication entry point.
	GuardRedirect GuardAction = "redirect"
)

// MarkerStore tracks the single-reload allowance. Backed by the fast tier;
// markers carry a TTL so an abandoned allowance expires on its own.
type MarkerStore interface {
	SetReloadMarker(ctx context.Context) error
	HasReloadMarker(ctx context.Context) (bool, error)
	ClearReloadMarker(ctx context.Context) error
}

// GuardInput is the state the guard decides on.
type GuardInput struct {
	Offline       bool
	Authenticated bool
}

// GuardService decides what happens to an unauthenticated navigation into a
// protected route. A nil Markers means reload-attempt state cannot be
// tracked, which forces the safer terminal action.
type GuardService struct {
	Markers MarkerStore
}

// Resolve applies the guard rules in order:
//
//  1. offline: noop, never force navigation while the network itself may
//     be the thing that is down.
//  2. authenticated: clear any reload marker, noop.
//  3. no marker storage: redirect.
//  4. marker not yet set: set it and grant one reload.
//  5. marker already set: the one reload did not establish auth, redirect.
func (g *GuardService) Resolve(ctx context.Context, in GuardInput) GuardAction {
	if in.Offline {
		return GuardNoop
	}
	if in.Authenticated {
		if g.Markers != nil {
			if err := g.Markers.ClearReloadMarker(ctx); err != nil {
				slogx.FromContext(ctx).Warn("reload marker clear failed", "error", err)
			}
		}
		return GuardNoop
	}
	if g.Markers == nil {
		return GuardRedirect
	}

	set, err := g.Markers.HasReloadMarker(ctx)
	if err != nil {
		slogx.FromContext(ctx).Warn("reload marker read failed", "error", err)
		return GuardRedirect
	}
	if !set {
		if err := g.Markers.SetReloadMarker(ctx); err != nil {
			slogx.FromContext(ctx).Warn("reload marker write failed", "error", err)
			return GuardRedirect
		}
		return GuardReload
	}
	return GuardRedirect
}

// AuthRequirement is what a route demands before it may render.
type AuthRequirement int

const (
	// RequireNothing marks a public route.
	RequireNothing AuthRequirement = iota
	// RequirePortalSession demands a verified portal session for the token
	// in the query string.
	RequirePortalSession
	// RequireCachedApplication demands an in-progress application token.
	RequireCachedApplication
)

// RouteAuthRequirement resolves what a route path demands: /status needs a
// verified portal session for its query token, wizard steps past the first
// need a cached application token, everything else is public.
func RouteAuthRequirement(path string, query url.Values) (AuthRequirement, string) {
	if path == "/status" {
		return RequirePortalSession, query.Get("token")
	}
	if step, ok := strings.CutPrefix(path, "/apply/step-"); ok {
		if n, err := strconv.Atoi(step); err == nil && n > 1 {
			return RequireCachedApplication, ""
		}
	}
	return RequireNothing, ""
}
