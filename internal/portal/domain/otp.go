package domain

import "time"

// OTPTTL is the validity window for a pending one-time code.
const OTPTTL = 5 * time.Minute

// PendingOTP is the single live one-time code. At most one exists at a time:
// issuing a new code overwrites any prior pending one, regardless of phone.
// The code itself is stored only as an argon2id hash.
type PendingOTP struct {
	// Phone is normalized (digits only).
	Phone string

	// CodeHash is the PHC-format argon2id hash of the 6-digit code.
	CodeHash string

	CreatedAt time.Time
}

// ExpiredAt reports whether the code is past its validity window at now.
func (o PendingOTP) ExpiredAt(now time.Time) bool {
	return now.Sub(o.CreatedAt) > OTPTTL
}
