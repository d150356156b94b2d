package phonex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "5551234567", "5551234567"},
		{"formatted", "(555) 123-4567", "5551234567"},
		{"international prefix", "+1 555 123 4567", "15551234567"},
		{"dots and spaces", "555.123.4567 ", "5551234567"},
		{"no digits", "abc-def", ""},
		{"empty", "", ""},
		{"unicode noise", "☎ 555‑123‑4567", "5551234567"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	t.Parallel()

	// Differently formatted renderings of the same number must produce the
	// same key, since the key is the only profile identity.
	forms := []string{"(555) 123-4567", "555-123-4567", "555 123 4567", "5551234567"}
	for _, f := range forms {
		require.Equal(t, "5551234567", Normalize(f), "form %q", f)
	}
}

func TestIsNormalizable(t *testing.T) {
	t.Parallel()

	require.True(t, IsNormalizable("07"))
	require.False(t, IsNormalizable("++--"))
	require.False(t, IsNormalizable(""))
}
