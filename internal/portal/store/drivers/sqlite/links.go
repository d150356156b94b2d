package sqlite

import (
	"context"

	"github.com/borealfin/portal/internal/portal/domain"
)

type linksRepo struct {
	q dbtx
}

func (r *linksRepo) ListByParent(ctx context.Context, parentToken string) ([]domain.LinkedApplication, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT parent_token, token, reason, created_at
		FROM linked_applications
		WHERE parent_token = ? ORDER BY created_at, token`, parentToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.LinkedApplication
	for rows.Next() {
		var l domain.LinkedApplication
		var reason string
		if err := rows.Scan(&l.ParentToken, &l.Token, &reason, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Reason = domain.LinkReason(reason)
		links = append(links, l)
	}
	return links, rows.Err()
}

// Append records a link; re-appending an existing child is a no-op.
func (r *linksRepo) Append(ctx context.Context, link domain.LinkedApplication) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO linked_applications (parent_token, token, reason, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(parent_token, token) DO NOTHING`,
		link.ParentToken, link.Token, string(link.Reason), link.CreatedAt)
	return err
}
