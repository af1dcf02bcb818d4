package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotease/internal/cache"
	"github.com/desertthunder/spotease/internal/formatter"
	"github.com/desertthunder/spotease/internal/models"
	"github.com/urfave/cli/v3"
)

// Search prints unranked candidates for a query on one platform.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	platform, err := parsePlatform(cmd.String("platform"))
	if err != nil {
		return err
	}

	tracks, err := r.engine.Search(ctx, platform, cmd.String("query"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}
	return r.writeBytes(formatter.ExportCandidates(tracks))
}

// Playlists lists the current user's playlists on one platform.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	platform, err := parsePlatform(cmd.String("platform"))
	if err != nil {
		return err
	}
	catalog, err := r.catalog(platform)
	if err != nil {
		return err
	}

	playlists, err := catalog.Playlists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s playlists (%d)", platform.Label(), len(playlists)))
	for _, p := range playlists {
		r.writePlain("%s  %s (%d tracks)\n", p.ID, p.Name, p.TrackCount)
	}
	return nil
}

// CacheClear drops cached catalog responses.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	platforms := []models.Platform{models.Spotify, models.Netease}
	if name := cmd.String("platform"); name != "" {
		p, err := parsePlatform(name)
		if err != nil {
			return err
		}
		platforms = []models.Platform{p}
	}

	for _, p := range platforms {
		if err := r.cache.InvalidatePrefix(ctx, cache.PlatformPrefix(p)); err != nil {
			return fmt.Errorf("failed to clear %s cache: %w", p.Label(), err)
		}
		r.logger.Debug("cache cleared", "platform", p.Label())
	}
	return r.writePlain("✓ Cache cleared\n")
}
