package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"

	"github.com/aria-assistant/aria/pkg/config"
)

const defaultAPIBase = "https://api.spotify.com/v1"

// apiError carries the HTTP status of a failed Web API call so callers can
// map the well-known cases (no device, missing premium) to friendly messages.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spotify api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("spotify api: status %d", e.Status)
}

// Session is the process-wide Spotify integration state: an authenticated
// HTTP client plus the cached playback device. It replaces the lazy global
// singleton of earlier iterations with an explicitly injected object; the
// device cache is guarded for concurrent requests.
type Session struct {
	log     *slog.Logger
	client  *http.Client
	apiBase string
	market  string

	mu       sync.Mutex
	deviceID string
	ready    bool
	user     string
}

// NewSession builds a session from the cached OAuth token. A missing or
// unreadable cache yields a not-ready session whose operations report the
// authentication problem instead of failing the process.
func NewSession(ctx context.Context, cfg config.SpotifyConfig, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}

	s := &Session{
		log:     log,
		apiBase: defaultAPIBase,
		market:  cfg.Market,
	}
	if s.market == "" {
		s.market = "US"
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		log.Error("missing spotify credentials",
			"client_id", boolWord(cfg.ClientID != ""),
			"client_secret", boolWord(cfg.ClientSecret != ""))
		return s
	}

	tok, err := LoadToken(cfg.TokenCache)
	if err != nil {
		log.Warn("no cached spotify token; run 'aria auth' first", "path", cfg.TokenCache, "error", err)
		return s
	}

	oc := NewOAuthConfig(cfg)
	src := newPersistingTokenSource(cfg.TokenCache, oc.TokenSource(ctx, tok), tok)
	s.client = oauth2.NewClient(ctx, src)
	return s
}

func boolWord(set bool) string {
	if set {
		return "set"
	}
	return "missing"
}

// Initialize verifies the token by fetching the user profile and warms the
// device cache. Device lookup failure is not fatal; it is retried on demand.
func (s *Session) Initialize(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("spotify not authenticated")
	}

	var profile struct {
		DisplayName string `json:"display_name"`
	}
	if err := s.get(ctx, "/me", nil, &profile); err != nil {
		return fmt.Errorf("fetch current user: %w", err)
	}

	s.mu.Lock()
	s.ready = true
	s.user = profile.DisplayName
	s.mu.Unlock()

	s.log.Info("spotify session initialized", "user", profile.DisplayName)

	if _, err := s.device(ctx); err != nil {
		s.log.Warn("no spotify device available yet", "error", err)
	}
	return nil
}

// Ready reports whether the session has an authenticated, verified client.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// User returns the authenticated display name, if known.
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

type device struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// device returns the cached playback device id, refreshing the cache from the
// API when empty. An active device wins; otherwise the first one listed.
func (s *Session) device(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.deviceID != "" {
		id := s.deviceID
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	var resp struct {
		Devices []device `json:"devices"`
	}
	if err := s.get(ctx, "/me/player/devices", nil, &resp); err != nil {
		return "", err
	}
	if len(resp.Devices) == 0 {
		return "", fmt.Errorf("no spotify devices found")
	}

	chosen := resp.Devices[0]
	for _, d := range resp.Devices {
		if d.IsActive {
			chosen = d
			break
		}
	}
	s.log.Info("using spotify device", "name", chosen.Name)

	s.mu.Lock()
	s.deviceID = chosen.ID
	s.mu.Unlock()
	return chosen.ID, nil
}

// forgetDevice clears the cached device id so the next call re-resolves it.
func (s *Session) forgetDevice() {
	s.mu.Lock()
	s.deviceID = ""
	s.mu.Unlock()
}

// HTTP plumbing

func (s *Session) get(ctx context.Context, path string, query url.Values, out any) error {
	return s.do(ctx, http.MethodGet, path, query, nil, out)
}

func (s *Session) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := s.apiBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(data, &apiResp)
		return &apiError{Status: resp.StatusCode, Message: apiResp.Error.Message}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
