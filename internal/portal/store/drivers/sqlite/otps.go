package sqlite

import (
	"context"
	"time"

	"github.com/borealfin/portal/internal/portal/domain"
)

type otpsRepo struct {
	q dbtx
}

// PutPendingOTP replaces any pending challenge. Only one OTP is ever
// in flight for the portal, so the table is a single fixed row.
func (r *otpsRepo) PutPendingOTP(ctx context.Context, otp domain.PendingOTP) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO pending_otp (id, phone, code_hash, created_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			phone = excluded.phone,
			code_hash = excluded.code_hash,
			created_at = excluded.created_at`,
		otp.Phone, otp.CodeHash, otp.CreatedAt)
	return err
}

func (r *otpsRepo) GetPendingOTP(ctx context.Context) (domain.PendingOTP, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT phone, code_hash, created_at FROM pending_otp WHERE id = 1`)

	var otp domain.PendingOTP
	if err := row.Scan(&otp.Phone, &otp.CodeHash, &otp.CreatedAt); err != nil {
		return domain.PendingOTP{}, mapNotFound(err)
	}
	return otp, nil
}

func (r *otpsRepo) DeletePendingOTP(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM pending_otp WHERE id = 1`)
	return err
}

func (r *otpsRepo) DeleteExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM pending_otp WHERE created_at <= ?`, now.Add(-domain.OTPTTL))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
