package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/borealfin/portal/internal/portal/domain"
)

const lastUsedPhoneKey = "last_used_phone"

type profilesRepo struct {
	q dbtx
}

func (r *profilesRepo) GetProfile(ctx context.Context, normalizedPhone string) (domain.ClientProfile, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT normalized_phone, phone, application_tokens, last_active_token,
		       submitted_tokens, last_submitted_token, updated_at
		FROM client_profiles WHERE normalized_phone = ?`, normalizedPhone)

	var p domain.ClientProfile
	var appTokens, submittedTokens string
	err := row.Scan(&p.NormalizedPhone, &p.Phone, &appTokens, &p.LastActiveToken,
		&submittedTokens, &p.LastSubmittedToken, &p.UpdatedAt)
	if err != nil {
		return domain.ClientProfile{}, mapNotFound(err)
	}

	p.ApplicationTokens = splitTokens(appTokens)
	p.SubmittedTokens = splitTokens(submittedTokens)
	return p, nil
}

func (r *profilesRepo) PutProfile(ctx context.Context, p domain.ClientProfile) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO client_profiles
			(normalized_phone, phone, application_tokens, last_active_token,
			 submitted_tokens, last_submitted_token, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(normalized_phone) DO UPDATE SET
			phone = excluded.phone,
			application_tokens = excluded.application_tokens,
			last_active_token = excluded.last_active_token,
			submitted_tokens = excluded.submitted_tokens,
			last_submitted_token = excluded.last_submitted_token,
			updated_at = excluded.updated_at`,
		p.NormalizedPhone, p.Phone, joinTokens(p.ApplicationTokens), p.LastActiveToken,
		joinTokens(p.SubmittedTokens), p.LastSubmittedToken, p.UpdatedAt)
	return err
}

func (r *profilesRepo) HasAnyProfile(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM client_profiles`).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *profilesRepo) HasSubmittedProfile(ctx context.Context) (bool, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM client_profiles
		WHERE submitted_tokens != '' OR last_submitted_token != ''`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *profilesRepo) GetLastUsedPhone(ctx context.Context) (string, error) {
	var phone string
	err := r.q.QueryRowContext(ctx,
		`SELECT value FROM portal_meta WHERE key = ?`, lastUsedPhoneKey).Scan(&phone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return phone, nil
}

func (r *profilesRepo) SetLastUsedPhone(ctx context.Context, phone string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO portal_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastUsedPhoneKey, phone)
	return err
}
