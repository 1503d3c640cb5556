package spotify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/aria-assistant/aria/pkg/config"
)

func TestTokenCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}

	if err := SaveToken(path, tok); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("token cache should be owner-only, got %v", info.Mode().Perm())
	}

	got, err := LoadToken(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != "access" || got.RefreshToken != "refresh" {
		t.Fatalf("unexpected token: %+v", got)
	}
}

func TestLoadTokenMissing(t *testing.T) {
	if _, err := LoadToken(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing cache")
	}
}

func TestLoadTokenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadToken(path); err == nil {
		t.Fatal("expected error for empty token")
	}
}

type fakeTokenSource struct {
	tokens []*oauth2.Token
	calls  int
}

func (f *fakeTokenSource) Token() (*oauth2.Token, error) {
	tok := f.tokens[f.calls]
	if f.calls < len(f.tokens)-1 {
		f.calls++
	}
	return tok, nil
}

func TestPersistingTokenSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	original := &oauth2.Token{AccessToken: "old", RefreshToken: "refresh"}
	refreshed := &oauth2.Token{AccessToken: "new", RefreshToken: "refresh"}

	src := newPersistingTokenSource(path, &fakeTokenSource{tokens: []*oauth2.Token{original, refreshed}}, original)

	// First call returns the original token; nothing to persist yet.
	if _, err := src.Token(); err != nil {
		t.Fatalf("token: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("unchanged token should not be persisted")
	}

	// Second call simulates a refresh; the new token must hit disk.
	tok, err := src.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok.AccessToken != "new" {
		t.Fatalf("unexpected token: %+v", tok)
	}
	saved, err := LoadToken(path)
	if err != nil {
		t.Fatalf("load persisted: %v", err)
	}
	if saved.AccessToken != "new" {
		t.Fatalf("refreshed token not persisted: %+v", saved)
	}
}

func TestNewOAuthConfig(t *testing.T) {
	oc := NewOAuthConfig(config.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "http://127.0.0.1:8888/callback",
	})
	if oc.Endpoint.AuthURL != "https://accounts.spotify.com/authorize" {
		t.Fatalf("unexpected auth url: %s", oc.Endpoint.AuthURL)
	}
	if len(oc.Scopes) == 0 {
		t.Fatal("expected playback scopes")
	}
}
