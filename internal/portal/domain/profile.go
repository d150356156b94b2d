package domain

import "time"

// ClientProfile is the per-subscriber record keyed by normalized phone. It
// tracks every application token the client has touched, newest first, plus
// which of those were submitted.
type ClientProfile struct {
	// Phone is the display string as last entered by the client. Storage and
	// lookup always go through the digit-only normalization, never this field.
	Phone string

	// NormalizedPhone is the digit-only storage key.
	NormalizedPhone string

	// ApplicationTokens is ordered most-recent-first and contains no duplicates.
	ApplicationTokens []string

	// LastActiveToken is refreshed on every upsert.
	LastActiveToken string

	// SubmittedTokens is ordered most-recent-first and contains no duplicates.
	SubmittedTokens []string

	// LastSubmittedToken is set when an application reaches submission.
	LastSubmittedToken string

	UpdatedAt time.Time
}

// HasSubmissions reports whether any application under this profile was submitted.
func (p ClientProfile) HasSubmissions() bool {
	return p.LastSubmittedToken != "" || len(p.SubmittedTokens) > 0
}

// LatestToken returns the most recent in-progress token, or "".
func (p ClientProfile) LatestToken() string {
	if p.LastActiveToken != "" {
		return p.LastActiveToken
	}
	if len(p.ApplicationTokens) > 0 {
		return p.ApplicationTokens[0]
	}
	return ""
}

// LatestSubmittedToken returns the most recent submitted token, or "".
func (p ClientProfile) LatestSubmittedToken() string {
	if p.LastSubmittedToken != "" {
		return p.LastSubmittedToken
	}
	if len(p.SubmittedTokens) > 0 {
		return p.SubmittedTokens[0]
	}
	return ""
}
