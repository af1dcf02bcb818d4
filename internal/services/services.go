package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
	"golang.org/x/time/rate"
)

// LikedPlaylistID addresses the user's liked/saved songs on either platform.
const LikedPlaylistID = "liked"

// Catalog is a music platform that can list, search and append tracks.
type Catalog interface {
	// Name returns the display name of the platform (e.g., "Spotify", "NetEase").
	Name() string

	Platform() models.Platform

	// PlaylistTracks retrieves every track in a playlist, following pagination.
	// [LikedPlaylistID] reads the user's liked songs.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// AddTracks appends tracks to a playlist. Tracks already present are not an error.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// Search returns at most limit tracks for a free-text query in the platform's own order.
	Search(ctx context.Context, query string, limit int) ([]models.Track, error)

	// Playlists lists the playlists owned or followed by the user.
	Playlists(ctx context.Context) ([]models.Playlist, error)
}

// NewLimiter builds the request pacer shared by a catalog client. Zero requests per second disables pacing.
func NewLimiter(cfg shared.RateConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

// statusError maps a non-2xx HTTP status onto the shared sentinels.
func statusError(service string, status int, detail string) error {
	var kind error
	switch {
	case status == http.StatusUnauthorized:
		kind = shared.ErrSessionExpired
	case status == http.StatusTooManyRequests || status >= 500:
		kind = shared.ErrServiceUnavailable
	default:
		kind = shared.ErrAPIRequest
	}

	if detail != "" {
		return fmt.Errorf("%w: %s API error (status %d): %s", kind, service, status, detail)
	}
	return fmt.Errorf("%w: %s API error: status %d", kind, service, status)
}

// readBody reads at most 4MiB of a response.
func readBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, 4<<20))
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
