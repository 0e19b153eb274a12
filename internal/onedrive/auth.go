package onedrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/punchclock/internal/config"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Files.ReadWrite",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// TokenStore persists the OAuth2 token between runs.
type TokenStore struct {
	path string
}

// NewTokenStore keeps tokens at path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// DefaultTokenStore keeps tokens in <base dir>/auth/onedrive_tokens.json.
func DefaultTokenStore() (*TokenStore, error) {
	base, err := config.BaseDir()
	if err != nil {
		return nil, err
	}
	return NewTokenStore(filepath.Join(base, "auth", "onedrive_tokens.json")), nil
}

// Load returns the saved token, or nil if none was saved yet.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", s.path, err)
	}
	return &tok, nil
}

// Save writes tok atomically.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// OAuth2Config returns the oauth2.Config for Microsoft Graph file access.
func OAuth2Config(cfg config.OneDriveConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID: cfg.ClientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(cfg.TenantID, "devicecode"),
			TokenURL:      msEndpoint(cfg.TenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// Authenticate returns a usable token. It reuses the saved token, refreshes
// it if needed, or runs the device code flow, printing the sign-in
// instructions to out.
func Authenticate(ctx context.Context, cfg *oauth2.Config, store *TokenStore, out io.Writer) (*oauth2.Token, error) {
	tok, err := store.Load()
	if err != nil {
		// Corrupt token: warn and re-auth.
		fmt.Fprintf(out, "Warning: %v\n", err)
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err2 := store.Save(refreshed); err2 != nil {
				fmt.Fprintf(out, "Warning: could not save refreshed token: %v\n", err2)
			}
			return refreshed, nil
		}
		fmt.Fprintf(out, "Token refresh failed (%v), re-authenticating...\n", err)
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}

	if err := store.Save(newTok); err != nil {
		fmt.Fprintf(out, "Warning: could not save token: %v\n", err)
	}
	return newTok, nil
}
