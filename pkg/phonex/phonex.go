// Package phonex canonicalizes phone numbers into digit-only lookup keys.
//
// The portal treats two phone strings that differ only in punctuation,
// spacing, or formatting as the same subscriber. Normalization is the sole
// key derivation used by profile storage, so it deliberately does no locale
// handling and no length validation.
package phonex

import "strings"

// Normalize strips every non-digit rune from phone and returns the result.
// An input with no digits normalizes to the empty string.
func Normalize(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsNormalizable reports whether phone contains at least one digit, i.e.
// whether Normalize would produce a non-empty key.
func IsNormalizable(phone string) bool {
	return strings.ContainsAny(phone, "0123456789")
}
