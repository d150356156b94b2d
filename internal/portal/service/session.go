package service

import (
	"context"
	"sync"
	"time"

	"github.com/borealfin/portal/internal/portal/domain"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/pkg/jwtx"
	"github.com/borealfin/portal/pkg/slogx"
)

// FastTier is the volatile session storage (redis). Reads and writes are
// synchronous; its contents are rebuilt from the durable tier on start.
type FastTier interface {
	GetSessions(ctx context.Context) ([]domain.PortalSession, error)
	SetSessions(ctx context.Context, sessions []domain.PortalSession) error
	DeleteSessions(ctx context.Context) error
}

// SessionCache is the in-process view of the portal session list. It is
// injected rather than kept as package state so tests get isolated
// instances.
type SessionCache struct {
	mu       sync.Mutex
	sessions []domain.PortalSession
	loaded   bool
}

func NewSessionCache() *SessionCache { return &SessionCache{} }

func (c *SessionCache) get() ([]domain.PortalSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return nil, false
	}
	out := make([]domain.PortalSession, len(c.sessions))
	copy(out, c.sessions)
	return out, true
}

func (c *SessionCache) set(sessions []domain.PortalSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = make([]domain.PortalSession, len(sessions))
	copy(c.sessions, sessions)
	c.loaded = true
}

func (c *SessionCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = nil
	c.loaded = false
}

// SessionService keeps the portal verification sessions across three layers:
// an in-process cache for reads, redis as the synchronous fast tier, and
// sqlite as the durable source of truth across restarts.
type SessionService struct {
	Store  store.Store
	Fast   FastTier
	Cache  *SessionCache
	Signer *jwtx.Signer

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Load returns the live session list: the in-process cache when primed,
// otherwise the fast tier. Expired sessions are pruned on every read. Fast
// tier failures degrade to an empty list with a warning.
func (s *SessionService) Load(ctx context.Context) []domain.PortalSession {
	if sessions, ok := s.Cache.get(); ok {
		return s.prune(ctx, sessions)
	}

	sessions, err := s.Fast.GetSessions(ctx)
	if err != nil {
		slogx.FromContext(ctx).Warn("fast-tier session read failed", "error", err)
		return nil
	}
	s.Cache.set(sessions)
	return s.prune(ctx, sessions)
}

// Save replaces the session list in the cache and the fast tier
// synchronously, then mirrors to the durable tier in the background.
func (s *SessionService) Save(ctx context.Context, sessions []domain.PortalSession) error {
	s.Cache.set(sessions)
	if err := s.Fast.SetSessions(ctx, sessions); err != nil {
		return err
	}
	s.mirrorDurable(ctx, sessions)
	return nil
}

// Hydrate primes the fast tier and cache from the durable tier. Called once
// on start; when the durable tier holds sessions they overwrite whatever
// the fast tier had.
func (s *SessionService) Hydrate(ctx context.Context) error {
	sessions, err := s.Store.Sessions().ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}
	s.Cache.set(sessions)
	return s.Fast.SetSessions(ctx, sessions)
}

// Clear drops every session: cache and fast tier synchronously, durable
// tier in the background.
func (s *SessionService) Clear(ctx context.Context) error {
	s.Cache.set(nil)
	if err := s.Fast.DeleteSessions(ctx); err != nil {
		return err
	}
	logger := slogx.FromContext(ctx)
	go func() {
		bg := slogx.WithContext(context.WithoutCancel(ctx), logger)
		if err := s.Store.Sessions().ClearSessions(bg); err != nil {
			logger.Warn("durable session clear failed", "error", err)
		}
	}()
	return nil
}

// MarkVerified records that possession of token was proven via one-time
// code. The session joins the list newest first with a fresh 5-minute
// expiry, replacing any prior session for the same token, and a portal
// access token is minted for the bearer.
func (s *SessionService) MarkVerified(ctx context.Context, phone, token string) (string, error) {
	now := s.now()
	session := domain.PortalSession{
		Token:      token,
		VerifiedAt: now,
		ExpiresAt:  now.Add(domain.SessionTTL),
	}

	existing := s.Load(ctx)
	merged := make([]domain.PortalSession, 0, len(existing)+1)
	merged = append(merged, session)
	for _, e := range existing {
		if e.Token == token {
			continue
		}
		merged = append(merged, e)
	}

	if err := s.Save(ctx, merged); err != nil {
		return "", err
	}
	return s.Signer.Sign(phone, []string{token})
}

// HasSession reports whether an unexpired session exists for token.
func (s *SessionService) HasSession(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	now := s.now()
	for _, session := range s.Load(ctx) {
		if session.Token == token && session.ValidAt(now) {
			return true
		}
	}
	return false
}

// prune drops expired sessions, persisting the shrunken list when anything
// was removed.
func (s *SessionService) prune(ctx context.Context, sessions []domain.PortalSession) []domain.PortalSession {
	now := s.now()
	live := make([]domain.PortalSession, 0, len(sessions))
	for _, session := range sessions {
		if session.ValidAt(now) {
			live = append(live, session)
		}
	}
	if len(live) != len(sessions) {
		if err := s.Save(ctx, live); err != nil {
			slogx.FromContext(ctx).Warn("pruned session save failed", "error", err)
		}
	}
	return live
}

func (s *SessionService) mirrorDurable(ctx context.Context, sessions []domain.PortalSession) {
	logger := slogx.FromContext(ctx)
	snapshot := make([]domain.PortalSession, len(sessions))
	copy(snapshot, sessions)
	go func() {
		bg := slogx.WithContext(context.WithoutCancel(ctx), logger)
		if err := s.Store.Sessions().ReplaceSessions(bg, snapshot); err != nil {
			logger.Warn("durable session mirror failed", "error", err)
		}
	}()
}
