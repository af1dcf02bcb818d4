package services

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotease/internal/cache"
	"github.com/desertthunder/spotease/internal/models"
)

// CachedCatalog is a [Catalog] whose playlist listings are served from a [cache.Cache].
//
// Writes go straight through and invalidate the playlist they touched. Cache failures are
// logged and otherwise ignored, so a broken cache degrades to direct calls.
type CachedCatalog struct {
	Catalog
	cache  cache.Cache
	userID string
	logger *log.Logger
}

// NewCachedCatalog wraps inner. userID scopes the playlist listing key.
func NewCachedCatalog(inner Catalog, c cache.Cache, userID string, logger *log.Logger) *CachedCatalog {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedCatalog{Catalog: inner, cache: c, userID: userID, logger: logger}
}

func (c *CachedCatalog) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	key := cache.TracksKey(c.Platform(), playlistID)

	var tracks []models.Track
	if ok, err := c.cache.Get(ctx, key, &tracks); err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		c.logger.Debug("cache hit", "key", key, "tracks", len(tracks))
		return tracks, nil
	}

	tracks, err := c.Catalog.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, tracks, 0); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return tracks, nil
}

func (c *CachedCatalog) Playlists(ctx context.Context) ([]models.Playlist, error) {
	key := cache.PlaylistsKey(c.Platform(), c.userID)

	var playlists []models.Playlist
	if ok, err := c.cache.Get(ctx, key, &playlists); err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		return playlists, nil
	}

	playlists, err := c.Catalog.Playlists(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, playlists, 0); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return playlists, nil
}

// AddTracks writes through and drops the cached listing of playlistID, even on failure.
func (c *CachedCatalog) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	err := c.Catalog.AddTracks(ctx, playlistID, trackIDs)

	key := cache.TracksKey(c.Platform(), playlistID)
	if ierr := c.cache.Invalidate(ctx, key); ierr != nil {
		c.logger.Warn("cache invalidation failed", "key", key, "error", ierr)
	}
	return err
}
