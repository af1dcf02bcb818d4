package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	spotifyPlaylistChunk = 100
	spotifySavedChunk    = 50
	spotifyMaxSearch     = 50
)

// SpotifyArtist is an artist reference in a Spotify track.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum is an album reference in a Spotify track.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack is the track object returned by the Web API.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	IsLocal    bool            `json:"is_local"`
}

// Model converts t into a [models.Track], joining artist names with ", ".
func (t SpotifyTrack) Model() models.Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return models.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artist:     strings.Join(names, ", "),
		Album:      t.Album.Name,
		Platform:   models.Spotify,
		DurationMs: t.DurationMS,
	}
}

// SpotifyPlaylistItem wraps a track in playlist and saved-track listings. Track is null for removed content.
type SpotifyPlaylistItem struct {
	Track *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks is a page of playlist or saved tracks.
type SpotifyPaginatedTracks struct {
	Items []SpotifyPlaylistItem `json:"items"`
	Total int                   `json:"total"`
	Next  *string               `json:"next"`
}

// SpotifyPlaylist is a simplified playlist object.
type SpotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// SpotifyPaginatedPlaylists is a page of the user's playlists.
type SpotifyPaginatedPlaylists struct {
	Items []SpotifyPlaylist `json:"items"`
	Total int               `json:"total"`
	Next  *string           `json:"next"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyErrorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements [Catalog] against the Spotify Web API.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewSpotifyService creates a client from stored credentials.
//
// An access token is used as-is. When a refresh token and client credentials are present,
// expired or missing access tokens are refreshed through the token endpoint.
func NewSpotifyService(ctx context.Context, creds shared.SpotifyConfig, limiter *rate.Limiter) (*SpotifyService, error) {
	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return nil, fmt.Errorf("%w: spotify access_token or refresh_token", shared.ErrMissingCredentials)
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
		Scopes: []string{
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
			"user-library-read",
			"user-library-modify",
		},
	}

	token := &oauth2.Token{AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken, TokenType: "Bearer"}

	var client *http.Client
	if creds.RefreshToken != "" && creds.ClientID != "" && creds.ClientSecret != "" {
		client = config.Client(ctx, token)
	} else {
		if creds.AccessToken == "" {
			return nil, fmt.Errorf("%w: refreshing a spotify token needs client_id and client_secret", shared.ErrMissingCredentials)
		}
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	}

	return &SpotifyService{config: config, httpClient: client, baseURL: spotifyBaseURL, limiter: limiter}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

func (s *SpotifyService) Platform() models.Platform {
	return models.Spotify
}

// doRequest performs an authenticated request. Absolute endpoints (pagination cursors) are used verbatim.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		apiURL = s.baseURL + endpoint
	}

	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: spotify request failed: %w", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp spotifyErrorResponse
		if data, err := readBody(resp.Body); err == nil {
			_ = json.Unmarshal(data, &errResp)
		}
		return statusError("spotify", resp.StatusCode, errResp.Error.Message)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// PlaylistTracks retrieves all tracks of a playlist, or the saved tracks for [LikedPlaylistID].
//
// Local files and removed tracks have no catalog id and are skipped.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=100", url.PathEscape(playlistID))
	if playlistID == LikedPlaylistID {
		endpoint = "/me/tracks?limit=50"
	}

	var tracks []models.Track
	for endpoint != "" {
		var page SpotifyPaginatedTracks
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.ID == "" || item.Track.IsLocal {
				continue
			}
			tracks = append(tracks, item.Track.Model())
		}

		endpoint = ""
		if page.Next != nil {
			endpoint = *page.Next
		}
	}

	return tracks, nil
}

// AddTracks appends tracks in chunks of 100 uris. Saving to [LikedPlaylistID] uses PUT /me/tracks, which is idempotent.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if len(trackIDs) == 0 {
		return nil
	}

	if playlistID == LikedPlaylistID {
		for _, ids := range chunk(trackIDs, spotifySavedChunk) {
			body := map[string][]string{"ids": ids}
			if err := s.doRequest(ctx, http.MethodPut, "/me/tracks", body, nil); err != nil {
				return fmt.Errorf("failed to save tracks: %w", err)
			}
		}
		return nil
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	for _, ids := range chunk(trackIDs, spotifyPlaylistChunk) {
		uris := make([]string, len(ids))
		for i, id := range ids {
			uris[i] = "spotify:track:" + id
		}
		if err := s.doRequest(ctx, http.MethodPost, endpoint, map[string][]string{"uris": uris}, nil); err != nil {
			return fmt.Errorf("failed to add tracks to playlist %s: %w", playlistID, err)
		}
	}
	return nil
}

// Search queries the track catalog. limit is clamped to [1, 50].
func (s *SpotifyService) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	limit = max(1, min(limit, spotifyMaxSearch))

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprint(limit))

	var response spotifySearchResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, t := range response.Tracks.Items {
		if t.ID == "" {
			continue
		}
		tracks = append(tracks, t.Model())
	}
	return tracks, nil
}

// Playlists retrieves all playlists for the authenticated user.
func (s *SpotifyService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	endpoint := "/me/playlists?limit=50"

	for endpoint != "" {
		var page SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			playlists = append(playlists, models.Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				TrackCount:  sp.Tracks.Total,
				Platform:    models.Spotify,
			})
		}

		endpoint = ""
		if page.Next != nil {
			endpoint = *page.Next
		}
	}

	return playlists, nil
}
