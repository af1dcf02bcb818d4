package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotease/internal/cache"
	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/services"
	"github.com/desertthunder/spotease/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	ctx := context.Background()

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			shared.NewLogger(nil).Warn("failed to load config, using defaults", "error", err)
		}
	}

	logger := shared.NewConfiguredLogger(nil, config.Log)

	c, err := cache.FromConfig(ctx, config.Cache)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it", "backend", config.Cache.Backend, "error", err)
		c = cache.Nop{}
	}

	opts := RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Cache:      c,
		Logger:     logger,
	}
	if svc := newSpotify(ctx, config, c, logger); svc != nil {
		opts.Spotify = svc
	}
	if svc := newNetease(config, c, logger); svc != nil {
		opts.Netease = svc
	}

	runner := NewRunner(opts)
	defer runner.Close()

	app := &cli.Command{
		Name:     "spotease",
		Usage:    "Keep Spotify & NetEase Cloud Music playlists in correspondence",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		runner.Close()
		if !isWarning(err) {
			logger.Fatalf("application error: %v", err)
		}
		logger.Warn(err.Error())
		os.Exit(1)
	}
}

// newSpotify returns nil when Spotify credentials are missing so commands that need it report it on use.
func newSpotify(ctx context.Context, config *shared.Config, c cache.Cache, logger *log.Logger) *services.CachedCatalog {
	svc, err := services.NewSpotifyService(ctx, config.Credentials.Spotify, services.NewLimiter(config.Rate))
	if err != nil {
		logger.Debug("spotify disabled", "error", err)
		return nil
	}
	return services.NewCachedCatalog(svc, c, "me", shared.WithLogger(logger, "catalog", models.Spotify.Label()))
}

func newNetease(config *shared.Config, c cache.Cache, logger *log.Logger) *services.CachedCatalog {
	svc, err := services.NewNeteaseService(config.Credentials.Netease, services.NewLimiter(config.Rate))
	if err != nil {
		logger.Debug("netease disabled", "error", err)
		return nil
	}
	return services.NewCachedCatalog(svc, c, config.Credentials.Netease.UserID, shared.WithLogger(logger, "catalog", models.Netease.Label()))
}
