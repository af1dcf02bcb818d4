package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultNeteaseBaseURL = "http://127.0.0.1:3000"

	neteaseCodeOK             = 200
	neteaseCodeSessionExpired = 301
	neteaseCodeDuplicate      = 502

	neteasePageSize    = 500
	neteaseDetailChunk = 500
	neteaseMaxSearch   = 100
)

// NeteaseArtist is an artist reference ("ar") in a NetEase song.
type NeteaseArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NeteaseAlbum is the album reference ("al") in a NetEase song.
type NeteaseAlbum struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	PicURL string `json:"picUrl"`
}

// NeteaseTrack is a song as returned by NeteaseCloudMusicApi.
type NeteaseTrack struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Artists  []NeteaseArtist `json:"ar"`
	Album    NeteaseAlbum    `json:"al"`
	Duration int             `json:"dt"`
}

// Model converts t into a [models.Track], joining artist names with ", ".
func (t NeteaseTrack) Model() models.Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return models.Track{
		ID:         strconv.FormatInt(t.ID, 10),
		Name:       t.Name,
		Artist:     strings.Join(names, ", "),
		Album:      t.Album.Name,
		Platform:   models.Netease,
		DurationMs: t.Duration,
	}
}

// NeteasePlaylist is a playlist entry from /user/playlist.
type NeteasePlaylist struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TrackCount  int    `json:"trackCount"`
}

// neteaseEnvelope carries the status fields every proxy response shares.
//
// Write endpoints nest the real result in "body" and report the HTTP status in "status".
type neteaseEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Status  int    `json:"status"`
	Body    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"body"`
}

func (e neteaseEnvelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Msg
}

// NeteaseError is a non-success code reported inside a NetEase response body.
type NeteaseError struct {
	Code    int
	Message string
}

func (e *NeteaseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("netease API error: code %d", e.Code)
	}
	return fmt.Sprintf("netease API error (code %d): %s", e.Code, e.Message)
}

func (e *NeteaseError) Unwrap() error {
	if e.Code == neteaseCodeSessionExpired {
		return shared.ErrSessionExpired
	}
	return shared.ErrAPIRequest
}

// isDuplicate reports whether err is the "song already in playlist" rejection.
func isDuplicate(err error) bool {
	var ne *NeteaseError
	return errors.As(err, &ne) && ne.Code == neteaseCodeDuplicate && strings.Contains(ne.Message, "重复")
}

// NeteaseService implements [Catalog] through a NeteaseCloudMusicApi compatible server.
//
// Authentication is the MUSIC_U cookie, sent both as a Cookie header and as the cookie query
// parameter that the proxy forwards upstream.
type NeteaseService struct {
	baseURL    string
	cookie     string
	userID     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewNeteaseService creates a NetEase client. An empty api_url uses the local proxy default.
func NewNeteaseService(creds shared.NeteaseConfig, limiter *rate.Limiter) (*NeteaseService, error) {
	if creds.Cookie == "" {
		return nil, fmt.Errorf("%w: netease cookie", shared.ErrMissingCredentials)
	}

	baseURL := strings.TrimRight(creds.APIURL, "/")
	if baseURL == "" {
		baseURL = defaultNeteaseBaseURL
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	return &NeteaseService{
		baseURL:    baseURL,
		cookie:     creds.Cookie,
		userID:     creds.UserID,
		httpClient: http.DefaultClient,
		limiter:    limiter,
	}, nil
}

func (n *NeteaseService) Name() string {
	return "NetEase"
}

func (n *NeteaseService) Platform() models.Platform {
	return models.Netease
}

// doRequest calls a proxy endpoint and decodes the body into result.
//
// The proxy mirrors upstream codes into the HTTP status, so the body is inspected before the status.
func (n *NeteaseService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("cookie", n.cookie)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cookie", n.cookie)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: netease request failed: %w", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := readBody(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env neteaseEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return statusError("netease", resp.StatusCode, "")
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	switch {
	case env.Code == neteaseCodeSessionExpired:
		return &NeteaseError{Code: env.Code, Message: env.message()}
	case env.Body != nil && env.Body.Code != 0 && env.Body.Code != neteaseCodeOK:
		return &NeteaseError{Code: env.Body.Code, Message: env.Body.Message}
	case env.Code != 0 && env.Code != neteaseCodeOK:
		return &NeteaseError{Code: env.Code, Message: env.message()}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return statusError("netease", resp.StatusCode, env.message())
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// PlaylistTracks retrieves all songs of a playlist, or the liked songs for [LikedPlaylistID].
func (n *NeteaseService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if playlistID == LikedPlaylistID {
		return n.likedTracks(ctx)
	}

	var tracks []models.Track
	for offset := 0; ; offset += neteasePageSize {
		params := url.Values{}
		params.Set("id", playlistID)
		params.Set("limit", strconv.Itoa(neteasePageSize))
		params.Set("offset", strconv.Itoa(offset))

		var response struct {
			Songs []NeteaseTrack `json:"songs"`
		}
		if err := n.doRequest(ctx, "/playlist/track/all", params, &response); err != nil {
			return nil, err
		}

		for _, song := range response.Songs {
			tracks = append(tracks, song.Model())
		}
		if len(response.Songs) < neteasePageSize {
			break
		}
	}
	return tracks, nil
}

func (n *NeteaseService) likedTracks(ctx context.Context) ([]models.Track, error) {
	uid, err := n.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}

	var likes struct {
		IDs []int64 `json:"ids"`
	}
	if err := n.doRequest(ctx, "/likelist", url.Values{"uid": {uid}}, &likes); err != nil {
		return nil, err
	}

	ids := make([]string, len(likes.IDs))
	for i, id := range likes.IDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	var tracks []models.Track
	for _, batch := range chunk(ids, neteaseDetailChunk) {
		var detail struct {
			Songs []NeteaseTrack `json:"songs"`
		}
		if err := n.doRequest(ctx, "/song/detail", url.Values{"ids": {strings.Join(batch, ",")}}, &detail); err != nil {
			return nil, err
		}
		for _, song := range detail.Songs {
			tracks = append(tracks, song.Model())
		}
	}
	return tracks, nil
}

// AddTracks appends songs to a playlist in one call. A duplicate rejection means the songs are already there.
func (n *NeteaseService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if len(trackIDs) == 0 {
		return nil
	}

	if playlistID == LikedPlaylistID {
		for _, id := range trackIDs {
			if err := n.doRequest(ctx, "/like", url.Values{"id": {id}, "like": {"true"}}, nil); err != nil {
				return fmt.Errorf("failed to like song %s: %w", id, err)
			}
		}
		return nil
	}

	params := url.Values{}
	params.Set("op", "add")
	params.Set("pid", playlistID)
	params.Set("tracks", strings.Join(trackIDs, ","))

	err := n.doRequest(ctx, "/playlist/tracks", params, nil)
	if err != nil && !isDuplicate(err) {
		return fmt.Errorf("failed to add tracks to playlist %s: %w", playlistID, err)
	}
	return nil
}

// Search queries /cloudsearch for songs. limit is clamped to [1, 100].
func (n *NeteaseService) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	limit = max(1, min(limit, neteaseMaxSearch))

	params := url.Values{}
	params.Set("keywords", query)
	params.Set("type", "1")
	params.Set("limit", strconv.Itoa(limit))

	var response struct {
		Result struct {
			Songs []NeteaseTrack `json:"songs"`
		} `json:"result"`
	}
	if err := n.doRequest(ctx, "/cloudsearch", params, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Result.Songs))
	for _, song := range response.Result.Songs {
		tracks = append(tracks, song.Model())
	}
	return tracks, nil
}

// Playlists lists the user's playlists. The user id comes from config, falling back to /user/account.
func (n *NeteaseService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	uid, err := n.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}

	var response struct {
		Playlist []NeteasePlaylist `json:"playlist"`
		More     bool              `json:"more"`
	}
	var playlists []models.Playlist
	for offset := 0; ; offset += neteasePageSize {
		params := url.Values{}
		params.Set("uid", uid)
		params.Set("limit", strconv.Itoa(neteasePageSize))
		params.Set("offset", strconv.Itoa(offset))

		response.Playlist, response.More = nil, false
		if err := n.doRequest(ctx, "/user/playlist", params, &response); err != nil {
			return nil, err
		}

		for _, p := range response.Playlist {
			playlists = append(playlists, models.Playlist{
				ID:          strconv.FormatInt(p.ID, 10),
				Name:        p.Name,
				Description: p.Description,
				TrackCount:  p.TrackCount,
				Platform:    models.Netease,
			})
		}
		if !response.More {
			break
		}
	}
	return playlists, nil
}

func (n *NeteaseService) resolveUserID(ctx context.Context) (string, error) {
	if n.userID != "" {
		return n.userID, nil
	}

	var account struct {
		Profile *struct {
			UserID int64 `json:"userId"`
		} `json:"profile"`
	}
	if err := n.doRequest(ctx, "/user/account", nil, &account); err != nil {
		return "", err
	}
	if account.Profile == nil {
		return "", fmt.Errorf("%w: netease account has no profile", shared.ErrSessionExpired)
	}

	return strconv.FormatInt(account.Profile.UserID, 10), nil
}
