package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotease/internal/models"
	"github.com/urfave/cli/v3"
)

type linkView struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	SpotifyPlaylistID string `json:"spotify_playlist_id"`
	NeteasePlaylistID string `json:"netease_playlist_id"`
	CreatedAt         string `json:"created_at"`
}

func newLinkView(l *models.PlaylistPairing) linkView {
	return linkView{
		ID:                l.ID(),
		UserID:            l.UserID(),
		SpotifyPlaylistID: l.SpotifyPlaylistID(),
		NeteasePlaylistID: l.NeteasePlaylistID(),
		CreatedAt:         l.CreatedAt().UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// LinkCreate links a Spotify playlist with a NetEase playlist.
func (r *Runner) LinkCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(ctx); err != nil {
		return err
	}

	link, err := r.links.Link(ctx, cmd.String("user"), cmd.String("spotify"), cmd.String("netease"))
	if err != nil {
		return err
	}

	r.logger.Info("playlist link created", "id", link.ID())
	r.writePlain("✓ Linked spotify:%s ⇄ netease:%s\n", link.SpotifyPlaylistID(), link.NeteasePlaylistID())
	r.writePlain("Link ID: %s\n", link.ID())
	return nil
}

// LinkList prints a user's playlist links.
func (r *Runner) LinkList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(ctx); err != nil {
		return err
	}

	links, err := r.links.ListByUser(ctx, cmd.String("user"))
	if err != nil {
		return err
	}

	views := make([]linkView, len(links))
	for i, l := range links {
		views[i] = newLinkView(l)
	}
	if cmd.Bool("json") {
		return r.writeJSON(views, true)
	}

	if len(views) == 0 {
		return r.writePlain("No playlist links for %s\n", cmd.String("user"))
	}
	r.writePlainHeader(fmt.Sprintf("Playlist links (%d)", len(views)))
	for _, v := range views {
		r.writePlain("%s  spotify:%s ⇄ netease:%s\n", v.ID, v.SpotifyPlaylistID, v.NeteasePlaylistID)
	}
	return nil
}

// LinkDelete removes a playlist link. Track pairings are kept.
func (r *Runner) LinkDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(ctx); err != nil {
		return err
	}

	id := cmd.String("id")
	if err := r.links.Unlink(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Removed link %s\n", id)
}
