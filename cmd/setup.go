package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotease/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadOrCreateConfig reads the config at path, writing the embedded template first when the file is missing.
//
// Any failure falls back to [shared.DefaultConfig] so that setup can still create the database.
func (r *Runner) loadOrCreateConfig(path string) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			return shared.DefaultConfig()
		}
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	return config
}

// SetupDatabase creates the pairing database and applies pending migrations, then prints the schema state.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.loadOrCreateConfig(configPath)

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenDatabase(ctx, config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	statuses, err := shared.Migrations(ctx, db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, m := range statuses {
		mark := "✗"
		if m.Applied {
			mark = "✓"
		}
		r.writePlain("%s %04d %s\n", mark, m.Version, m.Name)
	}
	r.writePlain("Database ready: %s\n", config.Database.Path)
	return nil
}

// SetupNetease extracts the MUSIC_U cookie from a browser cURL command and saves it to the config.
func (r *Runner) SetupNetease(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	cookie, err := curlHeaders.NeteaseCookie()
	if err != nil {
		return err
	}
	r.logger.Debug("extracted cookie", "length", len(cookie))

	if err := r.saveNeteaseCookie(cookie); err != nil {
		return err
	}

	r.writePlain("✓ NetEase session cookie saved\n")
	if r.configPath != "" {
		r.writePlain("Config updated: %s\n", r.configPath)
	}
	r.writePlainln("Next steps:")
	r.writePlain("1. Run 'spotease playlists --platform netease' to check the session\n")
	r.writePlain("2. Run 'spotease link create --spotify <id> --netease <id>' to link playlists\n")

	return nil
}
