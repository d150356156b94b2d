// Package upstream holds the clients for the portal's opaque collaborators:
// the staff backend and the e-signature provider. The portal depends only
// on HTTP status and a handful of JSON fields, never on their internals.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/borealfin/portal/internal/portal/service"
)

// ErrUpstream reports a non-2xx answer from the staff backend.
var ErrUpstream = errors.New("upstream request failed")

// StaffClient talks to the staff backend REST API.
type StaffClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewStaffClient creates a staff backend client with sane timeouts.
func NewStaffClient(baseURL string) *StaffClient {
	return &StaffClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *StaffClient) url(path string) string {
	return c.BaseURL + path
}

// RefreshSession asks the staff backend to extend the client session. Only
// the HTTP status matters.
func (c *StaffClient) RefreshSession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/client/session/refresh"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: session refresh returned %d", ErrUpstream, resp.StatusCode)
	}
	return nil
}

// SubmitApplication posts the finished submission payload. The response's
// application identifier is the only field read; submissions are
// deduplicated upstream by the idempotency key.
func (c *StaffClient) SubmitApplication(ctx context.Context, token, idempotencyKey string, payload service.SubmissionPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.url("/api/public/applications/"+token+"/submit"), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: submit returned %d", ErrUpstream, resp.StatusCode)
	}

	var result struct {
		ApplicationID string `json:"applicationId"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		// The id is a nice-to-have; the submission itself succeeded.
		return "", nil
	}
	return result.ApplicationID, nil
}
