package spotify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/aria-assistant/aria/pkg/config"
)

// loginResult is delivered by the callback handler.
type loginResult struct {
	code string
	err  error
}

// Login runs the authorization-code flow with PKCE: it serves the redirect
// URI on a local listener, prints the authorization URL for the user to open,
// exchanges the returned code and persists the token to the configured cache.
func Login(ctx context.Context, cfg config.SpotifyConfig, log *slog.Logger) (*oauth2.Token, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("missing spotify credentials (SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET)")
	}

	redirect, err := url.Parse(cfg.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("parse redirect uri: %w", err)
	}
	callbackPath := redirect.Path
	if callbackPath == "" {
		callbackPath = "/"
	}

	oc := NewOAuthConfig(cfg)

	stateBytes := make([]byte, 32)
	_, _ = rand.Read(stateBytes)
	state := hex.EncodeToString(stateBytes)
	verifier := oauth2.GenerateVerifier()

	results := make(chan loginResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- loginResult{err: fmt.Errorf("state mismatch in callback")}
			return
		}
		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, errMsg, http.StatusBadRequest)
			results <- loginResult{err: fmt.Errorf("authorization denied: %s", errMsg)}
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><p>Spotify authentication complete. You can close this tab.</p></body></html>")
		results <- loginResult{code: q.Get("code")}
	})

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", redirect.Host, err)
	}
	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			results <- loginResult{err: err}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := oc.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	log.Info("waiting for spotify authorization", "redirect", cfg.RedirectURI)
	fmt.Printf("Open this URL in your browser to authorize Spotify:\n\n  %s\n\n", authURL)

	var res loginResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}

	token, err := oc.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := SaveToken(cfg.TokenCache, token); err != nil {
		return nil, fmt.Errorf("persist token cache: %w", err)
	}
	log.Info("spotify token saved", "path", cfg.TokenCache)
	return token, nil
}
