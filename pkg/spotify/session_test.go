package spotify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeAPI is a minimal Spotify Web API double. Handlers are keyed by
// "METHOD /path"; unmatched requests fail the test.
type fakeAPI struct {
	t        *testing.T
	mux      map[string]http.HandlerFunc
	requests []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{t: t, mux: make(map[string]http.HandlerFunc)}
}

func (f *fakeAPI) handle(key string, fn http.HandlerFunc) {
	f.mux[key] = fn
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	fn, ok := f.mux[key]
	if !ok {
		f.t.Fatalf("unexpected request: %s", key)
	}
	fn(w, r)
}

func jsonBody(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func apiFailure(status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		jsonBody(w, map[string]any{"error": map[string]any{"status": status, "message": message}})
	}
}

func newTestSession(t *testing.T, api *fakeAPI) (*Session, *httptest.Server) {
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	s := &Session{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		client:  srv.Client(),
		apiBase: srv.URL,
		market:  "US",
		ready:   true,
	}
	return s, srv
}

func TestControlPlaybackSkip(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("POST /me/player/next", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s, _ := newTestSession(t, api)

	res := s.ControlPlayback(context.Background(), "skip")
	if res.Status != "success" || res.Message != "Skipped to next track" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestControlPlaybackNoActiveDevice(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("POST /me/player/next", apiFailure(http.StatusNotFound, "Device not found"))
	s, _ := newTestSession(t, api)
	s.deviceID = "stale"

	res := s.ControlPlayback(context.Background(), "skip")
	if res.Status != "error" {
		t.Fatalf("expected error, got %+v", res)
	}
	if res.Message != "No active device found. Please open Spotify." {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if s.deviceID != "" {
		t.Fatal("stale device id should be forgotten after 404")
	}
}

func TestControlPlaybackPremiumRequired(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("PUT /me/player/play", apiFailure(http.StatusForbidden, "Player command failed: Premium required"))
	s, _ := newTestSession(t, api)

	res := s.ControlPlayback(context.Background(), "play")
	if res.Message != "Premium account required for playback control." {
		t.Fatalf("unexpected message: %q", res.Message)
	}
}

func TestControlPlaybackUnknownAction(t *testing.T) {
	s, _ := newTestSession(t, newFakeAPI(t))

	res := s.ControlPlayback(context.Background(), "shuffle")
	if res.Status != "error" || res.Message != "Unknown action: shuffle" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestControlPlaybackNotAuthenticated(t *testing.T) {
	s := &Session{log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	res := s.ControlPlayback(context.Background(), "play")
	if res.Status != "error" || res.Message != "Spotify not authenticated. Run 'aria auth' first." {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestDevicePrefersActive(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me/player/devices", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"devices": []map[string]any{
			{"id": "idle-1", "name": "Desk", "is_active": false},
			{"id": "active-2", "name": "Phone", "is_active": true},
		}})
	})
	s, _ := newTestSession(t, api)

	id, err := s.device(context.Background())
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	if id != "active-2" {
		t.Fatalf("expected active device, got %s", id)
	}

	// Second call must hit the cache, not the API.
	if _, err := s.device(context.Background()); err != nil {
		t.Fatalf("cached device: %v", err)
	}
	if len(api.requests) != 1 {
		t.Fatalf("expected one devices request, got %v", api.requests)
	}
}

func TestDeviceFallsBackToFirst(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me/player/devices", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"devices": []map[string]any{
			{"id": "first", "name": "Desk", "is_active": false},
			{"id": "second", "name": "TV", "is_active": false},
		}})
	})
	s, _ := newTestSession(t, api)

	id, err := s.device(context.Background())
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	if id != "first" {
		t.Fatalf("expected first device, got %s", id)
	}
}

func TestSearchAndPlayTrack(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me/player/devices", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"devices": []map[string]any{
			{"id": "dev-1", "name": "Desk", "is_active": true},
		}})
	})
	api.handle("GET /search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Imagine" {
			t.Fatalf("unexpected query: %s", got)
		}
		jsonBody(w, map[string]any{"tracks": map[string]any{"items": []map[string]any{
			{"name": "Imagine", "uri": "spotify:track:1", "artists": []map[string]any{{"name": "John Lennon"}}},
		}}})
	})
	var played struct {
		URIs []string `json:"uris"`
	}
	api.handle("PUT /me/player/play", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&played)
		if r.URL.Query().Get("device_id") != "dev-1" {
			t.Fatalf("device id not forwarded: %s", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	s, _ := newTestSession(t, api)

	res := s.SearchAndPlay(context.Background(), "Imagine", "track")
	if res.Status != "success" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Message != "Playing: Imagine by John Lennon" {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if res.Track != "Imagine" || res.Artist != "John Lennon" {
		t.Fatalf("entity fields missing: %+v", res)
	}
	if len(played.URIs) != 1 || played.URIs[0] != "spotify:track:1" {
		t.Fatalf("unexpected playback body: %+v", played)
	}
}

func TestSearchAndPlayArtistTopTracks(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me/player/devices", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"devices": []map[string]any{{"id": "dev-1", "is_active": true}}})
	})
	api.handle("GET /search", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"artists": map[string]any{"items": []map[string]any{
			{"id": "art-1", "name": "Daft Punk"},
		}}})
	})
	api.handle("GET /artists/art-1/top-tracks", func(w http.ResponseWriter, r *http.Request) {
		tracks := make([]map[string]any, 12)
		for i := range tracks {
			tracks[i] = map[string]any{"name": "t", "uri": "spotify:track:x"}
		}
		jsonBody(w, map[string]any{"tracks": tracks})
	})
	var played struct {
		URIs []string `json:"uris"`
	}
	api.handle("PUT /me/player/play", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&played)
		w.WriteHeader(http.StatusNoContent)
	})
	s, _ := newTestSession(t, api)

	res := s.SearchAndPlay(context.Background(), "daft punk", "artist")
	if res.Status != "success" || res.Message != "Playing top tracks by Daft Punk" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(played.URIs) != 10 {
		t.Fatalf("expected top tracks capped at 10, got %d", len(played.URIs))
	}
}

func TestSearchAndPlayNoMatch(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me/player/devices", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"devices": []map[string]any{{"id": "dev-1", "is_active": true}}})
	})
	api.handle("GET /search", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"tracks": map[string]any{"items": []map[string]any{}}})
	})
	s, _ := newTestSession(t, api)

	res := s.SearchAndPlay(context.Background(), "Imagine", "track")
	if res.Status != "error" || res.Message != "No track found for 'Imagine'" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSearchAndPlayNoDevices(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me/player/devices", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"devices": []map[string]any{}})
	})
	s, _ := newTestSession(t, api)

	res := s.SearchAndPlay(context.Background(), "Imagine", "track")
	if res.Status != "error" || res.Message != "No Spotify device available. Please open Spotify." {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSearchAndPlayUnknownKindDefaultsToTrack(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me/player/devices", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"devices": []map[string]any{{"id": "dev-1", "is_active": true}}})
	})
	api.handle("GET /search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "track" {
			t.Fatalf("expected track type fallback, got %s", got)
		}
		jsonBody(w, map[string]any{"tracks": map[string]any{"items": []map[string]any{}}})
	})
	s, _ := newTestSession(t, api)

	res := s.SearchAndPlay(context.Background(), "x", "podcast")
	if res.Message != "No track found for 'x'" {
		t.Fatalf("unexpected message: %q", res.Message)
	}
}

func TestCurrentTrackPlaying(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me/player", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{
			"is_playing":  true,
			"progress_ms": 1234,
			"item": map[string]any{
				"name":        "Imagine",
				"duration_ms": 183000,
				"artists":     []map[string]any{{"name": "John Lennon"}},
				"album":       map[string]any{"name": "Imagine"},
			},
		})
	})
	s, _ := newTestSession(t, api)

	res := s.CurrentTrack(context.Background())
	if res.Status != "success" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Track != "Imagine" || res.Artist != "John Lennon" || res.Album != "Imagine" {
		t.Fatalf("track details missing: %+v", res)
	}
	if res.IsPlaying == nil || !*res.IsPlaying {
		t.Fatalf("is_playing missing: %+v", res)
	}
	if res.ProgressMS != 1234 || res.DurationMS != 183000 {
		t.Fatalf("progress fields wrong: %+v", res)
	}
}

func TestCurrentTrackNothingPlaying(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me/player", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s, _ := newTestSession(t, api)

	res := s.CurrentTrack(context.Background())
	if res.Status != "success" || res.Message != "No track currently playing" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestInitializeFetchesProfile(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"display_name": "Tester"})
	})
	api.handle("GET /me/player/devices", func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, map[string]any{"devices": []map[string]any{{"id": "dev-1", "is_active": true}}})
	})
	s, _ := newTestSession(t, api)
	s.ready = false

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !s.Ready() || s.User() != "Tester" {
		t.Fatalf("session not ready after initialize: ready=%v user=%q", s.Ready(), s.User())
	}
}

func TestInitializeBadToken(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET /me", apiFailure(http.StatusUnauthorized, "The access token expired"))
	s, _ := newTestSession(t, api)
	s.ready = false

	if err := s.Initialize(context.Background()); err == nil {
		t.Fatal("expected error for rejected token")
	}
	if s.Ready() {
		t.Fatal("session must not be ready after failed initialize")
	}
}
