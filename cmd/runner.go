package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotease/internal/cache"
	"github.com/desertthunder/spotease/internal/matching"
	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/repositories"
	"github.com/desertthunder/spotease/internal/services"
	"github.com/desertthunder/spotease/internal/shared"
	"github.com/desertthunder/spotease/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    services.Catalog
	netease    services.Catalog
	cache      cache.Cache
	pairings   models.PairingStore
	links      models.PlaylistPairingStore
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Stores left nil are opened from the configured database on first use.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.Catalog
	Netease    services.Catalog
	Cache      cache.Cache
	Pairings   models.PairingStore
	Links      models.PlaylistPairingStore
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		netease:    opts.Netease,
		cache:      opts.Cache,
		pairings:   opts.Pairings,
		links:      opts.Links,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.buildEngine()
	return r
}

func (r *Runner) buildEngine() {
	r.engine = tasks.NewPlaylistEngine(r.spotify, r.netease, r.pairings, r.links).
		WithLogger(r.logger)
	if t := r.config.Matching.Threshold; t > 0 {
		r.engine.WithMatcher(matching.NewMatcher(t))
	}
}

// openStores opens the configured database when no stores were injected and rebuilds the engine on top of it.
func (r *Runner) openStores(ctx context.Context) error {
	if r.pairings != nil && r.links != nil {
		return nil
	}

	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	if r.pairings == nil {
		r.pairings = repositories.NewPairingRepository(db)
	}
	if r.links == nil {
		r.links = repositories.NewPlaylistPairingRepository(db)
	}
	r.buildEngine()
	return nil
}

// Close releases the database opened by [Runner.openStores].
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) catalog(p models.Platform) (services.Catalog, error) {
	var c services.Catalog
	switch p {
	case models.Spotify:
		c = r.spotify
	case models.Netease:
		c = r.netease
	default:
		return nil, fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidArgument, p)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s credentials are not configured", shared.ErrServiceUnavailable, p.Label())
	}
	return c, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, linkCommand, pairsCommand, syncCommand, searchCommand, playlistsCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// progress starts printing updates from the returned channel; stop closes it and waits for the printer to drain.
func (r *Runner) progress() (chan tasks.ProgressUpdate, func()) {
	ch := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			r.writePlain("  %s\n", update.Message)
		}
	}()
	return ch, func() {
		close(ch)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// saveNeteaseCookie stores cookie in the config and persists it when a config path is set.
func (r *Runner) saveNeteaseCookie(cookie string) error {
	if r.config == nil {
		return fmt.Errorf("config is nil")
	}

	r.config.Credentials.Netease.Cookie = cookie
	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
