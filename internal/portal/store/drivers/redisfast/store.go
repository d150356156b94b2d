// Package redisfast is the volatile fast tier of the portal session store.
// It holds the live session list and the reload marker; the sqlite tier
// remains the source of truth across restarts.
package redisfast

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/borealfin/portal/internal/portal/domain"
)

const (
	sessionsKey     = "portal:sessions"
	reloadMarkerKey = "portal:reload_marker"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

type Store struct {
	client *redis.Client
}

func NewStore(cfg Config) *Store {
	return &Store{client: redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})}
}

// NewStoreWithClient wraps an existing client. Used by tests (miniredis).
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetSessions returns the stored session list. Malformed entries (missing
// token, absent expiry) are dropped rather than failing the whole read, so
// one corrupt element cannot lock clients out.
func (s *Store) GetSessions(ctx context.Context) ([]domain.PortalSession, error) {
	raw, err := s.client.Get(ctx, sessionsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, nil
	}

	sessions := make([]domain.PortalSession, 0, len(elems))
	for _, elem := range elems {
		var sess domain.PortalSession
		if err := json.Unmarshal(elem, &sess); err != nil {
			continue
		}
		if sess.Token == "" || sess.ExpiresAt.IsZero() || sess.ExpiresAt.Unix() <= 0 {
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// SetSessions overwrites the stored session list.
func (s *Store) SetSessions(ctx context.Context, sessions []domain.PortalSession) error {
	if len(sessions) == 0 {
		return s.client.Del(ctx, sessionsKey).Err()
	}
	payload, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionsKey, payload, 0).Err()
}

func (s *Store) DeleteSessions(ctx context.Context) error {
	return s.client.Del(ctx, sessionsKey).Err()
}

// SetReloadMarker arms the single-reload allowance. The marker carries a TTL
// matching the session lifetime so an abandoned reload attempt expires
// instead of consuming the allowance forever.
func (s *Store) SetReloadMarker(ctx context.Context) error {
	return s.client.Set(ctx, reloadMarkerKey, "1", domain.SessionTTL).Err()
}

func (s *Store) HasReloadMarker(ctx context.Context) (bool, error) {
	_, err := s.client.Get(ctx, reloadMarkerKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ClearReloadMarker(ctx context.Context) error {
	return s.client.Del(ctx, reloadMarkerKey).Err()
}
