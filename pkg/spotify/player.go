package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aria-assistant/aria/pkg/types"
)

// Playback actions accepted by ControlPlayback.
const (
	ActionPlay     = "play"
	ActionPause    = "pause"
	ActionSkip     = "skip"
	ActionNext     = "next" // synonym for skip
	ActionPrevious = "previous"
)

func (s *Session) notAuthenticated() types.ActionResult {
	return types.ErrorResult("Spotify not authenticated. Run 'aria auth' first.")
}

// ControlPlayback executes a transport command: play, pause, skip/next,
// previous. Failures come back as error envelopes, never Go errors.
func (s *Session) ControlPlayback(ctx context.Context, action string) types.ActionResult {
	if s.client == nil {
		return s.notAuthenticated()
	}

	deviceQuery := url.Values{}
	s.mu.Lock()
	if s.deviceID != "" {
		deviceQuery.Set("device_id", s.deviceID)
	}
	s.mu.Unlock()

	var err error
	var message string
	switch action {
	case ActionPlay:
		err = s.do(ctx, http.MethodPut, "/me/player/play", deviceQuery, nil, nil)
		message = "Playback resumed"
	case ActionPause:
		err = s.do(ctx, http.MethodPut, "/me/player/pause", deviceQuery, nil, nil)
		message = "Playback paused"
	case ActionSkip, ActionNext:
		err = s.do(ctx, http.MethodPost, "/me/player/next", deviceQuery, nil, nil)
		message = "Skipped to next track"
	case ActionPrevious:
		err = s.do(ctx, http.MethodPost, "/me/player/previous", deviceQuery, nil, nil)
		message = "Playing previous track"
	default:
		return types.ErrorResult(fmt.Sprintf("Unknown action: %s", action))
	}

	if err != nil {
		return s.playbackError(err)
	}
	return types.SuccessResult(message)
}

func (s *Session) playbackError(err error) types.ActionResult {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound:
			s.forgetDevice()
			return types.ErrorResult("No active device found. Please open Spotify.")
		case http.StatusForbidden:
			return types.ErrorResult("Premium account required for playback control.")
		}
		return types.ErrorResult(fmt.Sprintf("Spotify error: %s", apiErr.Error()))
	}
	s.log.Error("playback request failed", "error", err)
	return types.ErrorResult(err.Error())
}

// Search response shapes (only the fields the assistant reads).

type trackItem struct {
	Name    string `json:"name"`
	URI     string `json:"uri"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	DurationMS int `json:"duration_ms"`
	Album      struct {
		Name string `json:"name"`
	} `json:"album"`
}

type searchResponse struct {
	Tracks *struct {
		Items []trackItem `json:"items"`
	} `json:"tracks"`
	Artists *struct {
		Items []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
	} `json:"artists"`
	Playlists *struct {
		Items []struct {
			Name string `json:"name"`
			URI  string `json:"uri"`
		} `json:"items"`
	} `json:"playlists"`
	Albums *struct {
		Items []struct {
			Name string `json:"name"`
			URI  string `json:"uri"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"items"`
	} `json:"albums"`
}

type playRequest struct {
	URIs       []string `json:"uris,omitempty"`
	ContextURI string   `json:"context_uri,omitempty"`
}

// SearchAndPlay searches for content of the given kind (track, artist,
// playlist, album; anything else falls back to track) and starts playback of
// the first match: a single track, an artist's top tracks (up to 10), or the
// whole playlist/album context.
func (s *Session) SearchAndPlay(ctx context.Context, query, kind string) types.ActionResult {
	if s.client == nil {
		return s.notAuthenticated()
	}

	switch kind {
	case "track", "artist", "playlist", "album":
	default:
		kind = "track"
	}

	deviceID, err := s.device(ctx)
	if err != nil {
		return types.ErrorResult("No Spotify device available. Please open Spotify.")
	}

	s.log.Info("searching spotify", "type", kind, "query", query)

	q := url.Values{}
	q.Set("q", query)
	q.Set("type", kind)
	q.Set("limit", "10")

	var results searchResponse
	if err := s.get(ctx, "/search", q, &results); err != nil {
		return s.searchError(err)
	}

	playQuery := url.Values{}
	playQuery.Set("device_id", deviceID)

	switch {
	case kind == "track" && results.Tracks != nil && len(results.Tracks.Items) > 0:
		track := results.Tracks.Items[0]
		if err := s.do(ctx, http.MethodPut, "/me/player/play", playQuery, playRequest{URIs: []string{track.URI}}, nil); err != nil {
			return s.searchError(err)
		}
		return types.ActionResult{
			Status:  types.StatusSuccess,
			Message: fmt.Sprintf("Playing: %s by %s", track.Name, firstArtist(track)),
			Track:   track.Name,
			Artist:  firstArtist(track),
		}

	case kind == "artist" && results.Artists != nil && len(results.Artists.Items) > 0:
		artist := results.Artists.Items[0]

		var top struct {
			Tracks []trackItem `json:"tracks"`
		}
		topQuery := url.Values{}
		topQuery.Set("market", s.market)
		if err := s.get(ctx, "/artists/"+artist.ID+"/top-tracks", topQuery, &top); err != nil {
			return s.searchError(err)
		}
		if len(top.Tracks) > 0 {
			uris := make([]string, 0, 10)
			for _, t := range top.Tracks {
				uris = append(uris, t.URI)
				if len(uris) == 10 {
					break
				}
			}
			if err := s.do(ctx, http.MethodPut, "/me/player/play", playQuery, playRequest{URIs: uris}, nil); err != nil {
				return s.searchError(err)
			}
			return types.ActionResult{
				Status:  types.StatusSuccess,
				Message: fmt.Sprintf("Playing top tracks by %s", artist.Name),
				Artist:  artist.Name,
			}
		}

	case kind == "playlist" && results.Playlists != nil && len(results.Playlists.Items) > 0:
		playlist := results.Playlists.Items[0]
		if err := s.do(ctx, http.MethodPut, "/me/player/play", playQuery, playRequest{ContextURI: playlist.URI}, nil); err != nil {
			return s.searchError(err)
		}
		return types.ActionResult{
			Status:   types.StatusSuccess,
			Message:  fmt.Sprintf("Playing playlist: %s", playlist.Name),
			Playlist: playlist.Name,
		}

	case kind == "album" && results.Albums != nil && len(results.Albums.Items) > 0:
		album := results.Albums.Items[0]
		if err := s.do(ctx, http.MethodPut, "/me/player/play", playQuery, playRequest{ContextURI: album.URI}, nil); err != nil {
			return s.searchError(err)
		}
		artistName := ""
		if len(album.Artists) > 0 {
			artistName = album.Artists[0].Name
		}
		return types.ActionResult{
			Status:  types.StatusSuccess,
			Message: fmt.Sprintf("Playing album: %s by %s", album.Name, artistName),
			Album:   album.Name,
			Artist:  artistName,
		}
	}

	return types.ErrorResult(fmt.Sprintf("No %s found for '%s'", kind, query))
}

func (s *Session) searchError(err error) types.ActionResult {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound:
			s.forgetDevice()
			return types.ErrorResult("Device not found. Please open Spotify and start playing something first.")
		case http.StatusForbidden:
			return types.ErrorResult("Premium account required for playback control.")
		}
		s.log.Error("spotify api error", "error", apiErr)
		return types.ErrorResult(fmt.Sprintf("Spotify error: %s", apiErr.Error()))
	}
	s.log.Error("search request failed", "error", err)
	return types.ErrorResult(err.Error())
}

// CurrentTrack reports what is playing right now.
func (s *Session) CurrentTrack(ctx context.Context) types.ActionResult {
	if s.client == nil {
		return s.notAuthenticated()
	}

	var current struct {
		IsPlaying  bool       `json:"is_playing"`
		ProgressMS int        `json:"progress_ms"`
		Item       *trackItem `json:"item"`
	}
	if err := s.get(ctx, "/me/player", nil, &current); err != nil {
		s.log.Error("current playback request failed", "error", err)
		return types.ErrorResult(err.Error())
	}

	if current.Item == nil {
		return types.SuccessResult("No track currently playing")
	}

	isPlaying := current.IsPlaying
	return types.ActionResult{
		Status:     types.StatusSuccess,
		Track:      current.Item.Name,
		Artist:     firstArtist(*current.Item),
		Album:      current.Item.Album.Name,
		IsPlaying:  &isPlaying,
		ProgressMS: current.ProgressMS,
		DurationMS: current.Item.DurationMS,
	}
}

func firstArtist(t trackItem) string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}
