package onedrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// GraphBaseURL is the Microsoft Graph v1.0 endpoint.
const GraphBaseURL = "https://graph.microsoft.com/v1.0"

// Client is an authenticated OneDrive client on top of Microsoft Graph.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Graph client whose refreshed tokens are written back
// to store.
func NewClient(ctx context.Context, tok *oauth2.Token, cfg *oauth2.Config, store *TokenStore) *Client {
	ts := cfg.TokenSource(ctx, tok)
	return NewClientWithHTTP(oauth2.NewClient(ctx, &savingTokenSource{ts: ts, store: store}), GraphBaseURL)
}

// NewClientWithHTTP wraps an already authorized http.Client.
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts    oauth2.TokenSource
	store *TokenStore
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = s.store.Save(tok)
	return tok, nil
}

// DriveItem is the subset of a Graph driveItem returned after an upload.
type DriveItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	WebURL string `json:"webUrl"`
}

// Upload stores body as folder/name in the signed-in user's OneDrive,
// replacing any existing file of the same name. Simple upload needs the
// length up front, so body is taken whole.
func (c *Client) Upload(ctx context.Context, folder, name, contentType string, body []byte) (*DriveItem, error) {
	endpoint := fmt.Sprintf("%s/me/drive/root:/%s:/content", c.baseURL, drivePath(folder, name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph API request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("graph API error %d: %s", resp.StatusCode, string(data))
	}

	var item DriveItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decoding graph response: %w", err)
	}
	return &item, nil
}

// drivePath escapes each segment of folder/name for a path-based address.
func drivePath(folder, name string) string {
	var parts []string
	for _, p := range strings.Split(strings.Trim(folder, "/"), "/") {
		if p != "" {
			parts = append(parts, url.PathEscape(p))
		}
	}
	parts = append(parts, url.PathEscape(name))
	return strings.Join(parts, "/")
}
