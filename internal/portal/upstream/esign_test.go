package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/borealfin/portal/internal/portal/domain"
)

func TestESignClientSigningURL(t *testing.T) {
	t.Parallel()

	t.Run("returns the embedded url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/public/signnow/tok-1/signing-url", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"signingUrl": "https://sign.example/s/abc"})
		}))
		defer srv.Close()

		url, err := NewESignClient(srv.URL).SigningURL(context.Background(), "tok-1")
		require.NoError(t, err)
		require.Equal(t, "https://sign.example/s/abc", url)
	})

	t.Run("empty url is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer srv.Close()

		_, err := NewESignClient(srv.URL).SigningURL(context.Background(), "tok-1")
		require.ErrorIs(t, err, ErrNoSigningURL)
	})
}

func TestESignClientSignStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.SignStatus{
		"signed":        domain.SignSigned,
		"failed":        domain.SignFailed,
		"pending":       domain.SignNotInitiated,
		"":              domain.SignNotInitiated,
		"something_new": domain.SignNotInitiated,
	}

	for upstreamStatus, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/public/signnow/tok-1/status", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"status": upstreamStatus})
		}))

		got, err := NewESignClient(srv.URL).SignStatus(context.Background(), "tok-1")
		require.NoError(t, err)
		require.Equal(t, want, got, "status %q", upstreamStatus)
		srv.Close()
	}
}
