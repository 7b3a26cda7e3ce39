package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// maxProfileSize bounds the directory response body.
const maxProfileSize = 1 << 20

// Client fetches a user's profile document on their behalf.
type Client interface {
	// FetchProfile returns the profile document for the owner of accessToken.
	// A nil map with a nil error means the directory had nothing for the token.
	FetchProfile(ctx context.Context, accessToken string) (map[string]any, error)
}

// HTTPClient calls a Graph style "/me" endpoint with the access token as a bearer credential.
type HTTPClient struct {
	profileURL string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// ClientOption configures the HTTP directory client.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets the base HTTP client used to reach the directory.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient = httpClient
	}
}

// NewHTTPClient creates a directory client for profileURL. Every call is
// bounded by timeout.
func NewHTTPClient(profileURL string, timeout time.Duration, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		profileURL: profileURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) FetchProfile(ctx context.Context, accessToken string) (map[string]any, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = c.httpClient.Timeout

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("[directory FetchProfile] building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[directory FetchProfile] %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[directory FetchProfile] profile request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileSize))
	if err != nil {
		return nil, fmt.Errorf("[directory FetchProfile] reading body: %w", err)
	}
	var profile map[string]any
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("[directory FetchProfile] decoding body: %w", err)
	}
	return profile, nil
}
