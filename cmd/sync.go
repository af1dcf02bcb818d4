package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/spotease/internal/formatter"
	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
	"github.com/desertthunder/spotease/internal/tasks"
	"github.com/urfave/cli/v3"
)

func parsePlatform(s string) (models.Platform, error) {
	p, err := models.ParsePlatform(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return p, nil
}

// SyncDiff reconciles one link, or every link of a user with --all, and prints a report.
func (r *Runner) SyncDiff(ctx context.Context, cmd *cli.Command) error {
	source, err := parsePlatform(cmd.String("source"))
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if !cmd.Bool("all") && cmd.String("link") == "" {
		return fmt.Errorf("%w: --link or --all is required", shared.ErrMissingArgument)
	}
	if err := r.openStores(ctx); err != nil {
		return err
	}

	if cmd.Bool("all") {
		return r.syncAll(ctx, cmd, source, format)
	}

	// Progress lines would corrupt machine-readable output on stdout.
	var progress chan tasks.ProgressUpdate
	stop := func() {}
	if format == formatter.FormatText || cmd.String("output") != "" {
		progress, stop = r.progress()
	}

	res, err := r.engine.ReconcileLink(ctx, cmd.String("link"), source, progress)
	stop()
	if err != nil {
		return err
	}

	if err := r.render(res, format, cmd.String("output"), cmd.Bool("color")); err != nil {
		return err
	}
	if cmd.Bool("confirm") {
		return r.confirm(ctx, res)
	}
	return nil
}

func (r *Runner) syncAll(ctx context.Context, cmd *cli.Command, source models.Platform, format formatter.Format) error {
	links, err := r.links.ListByUser(ctx, cmd.String("user"))
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return r.writePlain("No playlist links for %s\n", cmd.String("user"))
	}

	progress, stop := r.progress()
	result, err := r.engine.ReconcileAll(ctx, progress, links, source, tasks.BulkOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  r.config.Rate.RequestsPerSecond,
	})
	stop()
	if result == nil {
		return err
	}

	dir := cmd.String("output")
	for _, lr := range result.Results {
		if lr.Error != nil || lr.Result == nil {
			continue
		}
		out := ""
		if dir != "" {
			out = filepath.Join(dir, fmt.Sprintf("%s_report.%s", lr.Link.ID(), formatter.Extension(format)))
		}
		if err := r.render(lr.Result, format, out, cmd.Bool("color")); err != nil {
			return err
		}
		if cmd.Bool("confirm") {
			if err := r.confirm(ctx, lr.Result); err != nil {
				return err
			}
		}
	}

	r.writePlainln("Reconciled %d/%d links (%d failed)", result.Succeeded, result.TotalLinks, result.Failed)
	return err
}

func (r *Runner) render(res *tasks.ReconcileResult, format formatter.Format, output string, color bool) error {
	report := &formatter.Report{
		Title:   res.Link.ID(),
		Source:  res.Source,
		Pairs:   res.Pairs,
		Summary: res.Summary,
	}

	if output != "" {
		path, err := formatter.WriteReportFile(report, format, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Report written to %s\n", path)
	}
	return formatter.WriteReport(r.output, report, format, formatter.Options{Colorize: color})
}

func (r *Runner) confirm(ctx context.Context, res *tasks.ReconcileResult) error {
	confirmed, err := r.engine.ConfirmMatches(ctx, res.Pairs, nil)
	if confirmed != nil {
		r.writePlainln("Confirmed %d matches (%d conflicts, %d skipped)", len(confirmed.Confirmed), len(confirmed.Conflicts), confirmed.Skipped)
		for _, p := range confirmed.Conflicts {
			r.writePlain("  ! %s <-> %s: %s\n", formatter.Describe(p.Spotify), formatter.Describe(p.Netease), tasks.ConflictMessage)
		}
	}
	return err
}

// SyncResolve adds the chosen track to the linked playlist on the other platform and pairs it with the source track.
func (r *Runner) SyncResolve(ctx context.Context, cmd *cli.Command) error {
	platform, err := parsePlatform(cmd.String("source-platform"))
	if err != nil {
		return err
	}
	if err := r.openStores(ctx); err != nil {
		return err
	}

	link, err := r.links.Get(ctx, cmd.String("link"))
	if err != nil {
		return err
	}

	source := models.Track{ID: cmd.String("source-track"), Platform: platform}
	chosen := models.Track{ID: cmd.String("chosen-track"), Platform: platform.Other()}

	progress, stop := r.progress()
	res, err := r.engine.ResolveManualMatch(ctx, source, chosen, link.PlaylistID(chosen.Platform), progress)
	stop()

	if res != nil {
		mark := "✓"
		if res.Conflict || err != nil {
			mark = "!"
		}
		r.writePlain("%s %s\n", mark, res.Message)
	}
	return err
}

// SyncSuggest reconciles a link, then searches the other platform for one of its tracks.
func (r *Runner) SyncSuggest(ctx context.Context, cmd *cli.Command) error {
	platform, err := parsePlatform(cmd.String("source-platform"))
	if err != nil {
		return err
	}
	if err := r.openStores(ctx); err != nil {
		return err
	}

	res, err := r.engine.ReconcileLink(ctx, cmd.String("link"), platform, nil)
	if err != nil {
		return err
	}

	id := cmd.String("source-track")
	var track *models.Track
	var pair models.TrackPair
	for _, p := range res.Pairs {
		if t := p.Side(platform); t != nil && t.ID == id {
			track, pair = t, p
			break
		}
	}
	if track == nil {
		return fmt.Errorf("%w: %s track %s is not in link %s", shared.ErrNotFound, platform.Label(), id, res.Link.ID())
	}
	if pair.Paired() {
		r.writePlain("! %s is already %s with %s\n", formatter.Describe(track), formatter.Status(pair), formatter.Describe(pair.Side(platform.Other())))
	}

	candidates, err := r.engine.SuggestCandidates(ctx, *track)
	if err != nil {
		return err
	}
	r.writePlainHeader(fmt.Sprintf("Candidates on %s for %s", platform.Other().Label(), formatter.Describe(track)))
	return r.writeBytes(formatter.ExportCandidates(candidates))
}

// isWarning reports whether err should be shown as a warning rather than a failure.
func isWarning(err error) bool {
	return errors.Is(err, shared.ErrPartialSuccess) ||
		errors.Is(err, shared.ErrAlreadyPaired) ||
		errors.Is(err, shared.ErrAlreadyLinked) ||
		errors.Is(err, shared.ErrNotFound)
}
