package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/borealfin/portal/internal/portal/domain"
)

// ErrNoSigningURL reports a signing-url response without a usable URL.
var ErrNoSigningURL = errors.New("no signing url in response")

// ESignClient talks to the e-signature provider through the staff backend's
// proxy routes. The provider is opaque: the portal only needs a signing URL
// and, later, a status field.
type ESignClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewESignClient(baseURL string) *ESignClient {
	return &ESignClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *ESignClient) url(path string) string {
	return c.BaseURL + path
}

// SigningURL obtains the embedded signing URL for an application token.
func (c *ESignClient) SigningURL(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.url("/api/public/signnow/"+token+"/signing-url"), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: signing url returned %d", ErrUpstream, resp.StatusCode)
	}

	var result struct {
		SigningURL string `json:"signingUrl"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return "", fmt.Errorf("decode signing url: %w", err)
	}
	if result.SigningURL == "" {
		return "", ErrNoSigningURL
	}
	return result.SigningURL, nil
}

// SignStatus polls the signing status for an application token. Unknown or
// missing statuses map to not_initiated rather than failing the poll.
func (c *ESignClient) SignStatus(ctx context.Context, token string) (domain.SignStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.url("/api/public/signnow/"+token+"/status"), nil)
	if err != nil {
		return domain.SignNotInitiated, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return domain.SignNotInitiated, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.SignNotInitiated, fmt.Errorf("%w: status poll returned %d", ErrUpstream, resp.StatusCode)
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return domain.SignNotInitiated, fmt.Errorf("decode status: %w", err)
	}

	switch domain.SignStatus(result.Status) {
	case domain.SignSigned:
		return domain.SignSigned, nil
	case domain.SignFailed:
		return domain.SignFailed, nil
	default:
		return domain.SignNotInitiated, nil
	}
}
