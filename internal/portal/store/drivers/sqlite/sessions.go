package sqlite

import (
	"context"
	"time"

	"github.com/borealfin/portal/internal/portal/domain"
)

type sessionsRepo struct {
	q dbtx
}

func (r *sessionsRepo) ListSessions(ctx context.Context) ([]domain.PortalSession, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT token, verified_at, expires_at
		FROM portal_sessions ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.PortalSession
	for rows.Next() {
		var s domain.PortalSession
		if err := rows.Scan(&s.Token, &s.VerifiedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ReplaceSessions swaps the stored list wholesale, preserving order.
func (r *sessionsRepo) ReplaceSessions(ctx context.Context, sessions []domain.PortalSession) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM portal_sessions`); err != nil {
		return err
	}
	for i, s := range sessions {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO portal_sessions (token, verified_at, expires_at, position)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(token) DO UPDATE SET
				verified_at = excluded.verified_at,
				expires_at = excluded.expires_at,
				position = excluded.position`,
			s.Token, s.VerifiedAt, s.ExpiresAt, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *sessionsRepo) ClearSessions(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM portal_sessions`)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM portal_sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
