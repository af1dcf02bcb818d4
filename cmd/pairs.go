package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotease/internal/formatter"
	"github.com/desertthunder/spotease/internal/shared"
	"github.com/urfave/cli/v3"
)

// PairsList prints every stored pairing as CSV, or JSON with --json.
func (r *Runner) PairsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(ctx); err != nil {
		return err
	}

	pairings, err := r.pairings.FindAll(ctx)
	if err != nil {
		return err
	}

	var data []byte
	if cmd.Bool("json") {
		data, err = formatter.PairingsToJSON(pairings)
		data = append(data, '\n')
	} else {
		data, err = formatter.ExportPairings(pairings)
	}
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// PairsCreate stores a pairing directly, without touching either playlist.
func (r *Runner) PairsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(ctx); err != nil {
		return err
	}

	pairing, err := r.pairings.Create(ctx, cmd.String("spotify"), cmd.String("netease"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Paired spotify:%s ⇄ netease:%s (%s)\n", pairing.SpotifyTrackID(), pairing.NeteaseTrackID(), pairing.ID())
}

// PairsDelete removes the pairing referencing the given track id, or the pairing joining both ids.
func (r *Runner) PairsDelete(ctx context.Context, cmd *cli.Command) error {
	spotifyID, neteaseID := cmd.String("spotify"), cmd.String("netease")
	if spotifyID == "" && neteaseID == "" {
		return fmt.Errorf("%w: --spotify or --netease is required", shared.ErrMissingArgument)
	}
	if err := r.openStores(ctx); err != nil {
		return err
	}

	if err := r.engine.Unlink(ctx, spotifyID, neteaseID); err != nil {
		return err
	}
	return r.writePlain("✓ Pairing removed\n")
}
