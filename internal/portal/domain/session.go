package domain

import "time"

// SessionTTL is how long a portal verification stays valid before the
// holder must re-verify. Matches the one-time-code window.
const SessionTTL = 5 * time.Minute

// PortalSession records that possession of an application token was proven
// via one-time code. A token present and unexpired means the holder may view
// its status page without re-authentication.
type PortalSession struct {
	Token      string    `json:"token"`
	VerifiedAt time.Time `json:"verifiedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ValidAt reports whether the session is live at now.
func (s PortalSession) ValidAt(now time.Time) bool {
	return s.Token != "" && s.ExpiresAt.After(now)
}
