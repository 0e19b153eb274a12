package onedrive_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/punchclock/internal/config"
	"github.com/Tiliavir/punchclock/internal/onedrive"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth", "tokens.json")
	store := onedrive.NewTokenStore(path)

	tok, err := store.Load()
	if err != nil || tok != nil {
		t.Fatalf("Load on empty store = %v, %v; want nil, nil", tok, err)
	}

	want := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour).Round(time.Second)}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("token = %+v, want %+v", got, want)
	}
}

func TestTokenStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := onedrive.NewTokenStore(path).Load(); err == nil {
		t.Fatal("expected error for corrupt token file")
	}
}

func TestAuthenticateReusesValidToken(t *testing.T) {
	store := onedrive.NewTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	saved := &oauth2.Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)}
	if err := store.Save(saved); err != nil {
		t.Fatal(err)
	}

	cfg := onedrive.OAuth2Config(config.OneDriveConfig{TenantID: "common", ClientID: "client"})
	var out bytes.Buffer
	tok, err := onedrive.Authenticate(context.Background(), cfg, store, &out)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if tok.AccessToken != "cached" {
		t.Errorf("AccessToken = %q, want cached", tok.AccessToken)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestOAuth2Config(t *testing.T) {
	cfg := onedrive.OAuth2Config(config.OneDriveConfig{TenantID: "contoso", ClientID: "abc"})
	if cfg.ClientID != "abc" {
		t.Errorf("ClientID = %q", cfg.ClientID)
	}
	if cfg.Endpoint.TokenURL != "https://login.microsoftonline.com/contoso/oauth2/v2.0/token" {
		t.Errorf("TokenURL = %q", cfg.Endpoint.TokenURL)
	}
	if cfg.Endpoint.DeviceAuthURL != "https://login.microsoftonline.com/contoso/oauth2/v2.0/devicecode" {
		t.Errorf("DeviceAuthURL = %q", cfg.Endpoint.DeviceAuthURL)
	}
}
