package upstream

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// sessionRefresher collapses concurrent refreshes into one upstream call.
// Satisfied by service.RefreshCoordinator.
type sessionRefresher interface {
	RefreshOnce(ctx context.Context) bool
}

// AuthRetryTransport retries a request exactly once after a coordinated
// session refresh when the backend answers with an auth failure. One
// refresh, one retry, never more; anything still failing after that is the
// caller's problem.
type AuthRetryTransport struct {
	Base      http.RoundTripper
	Refresher sessionRefresher
}

func (t *AuthRetryTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *AuthRetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Buffer the body up front so the request can be replayed.
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if !isAuthFailure(resp.StatusCode) || t.Refresher == nil {
		return resp, nil
	}

	if !t.Refresher.RefreshOnce(req.Context()) {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	retry := req.Clone(req.Context())
	if body != nil {
		retry.Body = io.NopCloser(bytes.NewReader(body))
	}
	return t.base().RoundTrip(retry)
}

// isAuthFailure covers the statuses the backend uses for a dead session,
// including the non-standard 419 some gateways emit for expired auth.
func isAuthFailure(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, 419:
		return true
	}
	return false
}
