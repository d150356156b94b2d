package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/borealfin/portal/internal/portal/domain"
	"github.com/borealfin/portal/internal/portal/store"
)

type applicationsRepo struct {
	q dbtx
}

func (r *applicationsRepo) GetSnapshot(ctx context.Context, token string) (domain.Application, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT stage, payload, updated_at
		FROM application_snapshots WHERE token = ?`, token)

	var stage, payload string
	var updatedAt time.Time
	if err := row.Scan(&stage, &payload, &updatedAt); err != nil {
		return domain.Application{}, mapNotFound(err)
	}

	var app domain.Application
	if err := json.Unmarshal([]byte(payload), &app); err != nil {
		return domain.Application{}, err
	}
	app.ApplicationToken = token
	app.Stage = domain.Stage(stage)
	app.UpdatedAt = updatedAt
	app.Normalize()
	return app, nil
}

// PutSnapshot persists the application state. Snapshots in a terminal
// stage are frozen and reject further writes.
func (r *applicationsRepo) PutSnapshot(ctx context.Context, app domain.Application) error {
	var existingStage string
	err := r.q.QueryRowContext(ctx,
		`SELECT stage FROM application_snapshots WHERE token = ?`, app.ApplicationToken).Scan(&existingStage)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err == nil && domain.Stage(existingStage).Terminal() {
		return store.ErrReadOnly
	}

	payload, err := json.Marshal(app)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO application_snapshots (token, stage, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			stage = excluded.stage,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		app.ApplicationToken, string(app.Stage), string(payload), app.UpdatedAt)
	return err
}

func (r *applicationsRepo) DeleteSnapshot(ctx context.Context, token string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM application_snapshots WHERE token = ?`, token)
	return err
}

func (r *applicationsRepo) HasAnySnapshot(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM application_snapshots`).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *applicationsRepo) DeleteStaleSnapshots(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM application_snapshots
		WHERE updated_at <= ? AND stage = ?`, cutoff, string(domain.StageDraft))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
