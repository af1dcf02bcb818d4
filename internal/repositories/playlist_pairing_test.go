package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/spotease/internal/shared"
)

func TestPlaylistPairingRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Link and Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistPairingRepository(db)
		link, err := repo.Link(ctx, "user-1", "sp-1", "ne-1")
		if err != nil {
			t.Fatalf("failed to link playlists: %v", err)
		}
		if link.ID() == "" {
			t.Fatal("link ID should be set after creation")
		}

		got, err := repo.Get(ctx, link.ID())
		if err != nil {
			t.Fatalf("failed to get link: %v", err)
		}
		if got.UserID() != "user-1" || got.SpotifyPlaylistID() != "sp-1" || got.NeteasePlaylistID() != "ne-1" {
			t.Errorf("unexpected link %+v", got)
		}
	})

	t.Run("Duplicate link", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistPairingRepository(db)
		if _, err := repo.Link(ctx, "user-1", "sp-1", "ne-1"); err != nil {
			t.Fatalf("failed to link playlists: %v", err)
		}

		if _, err := repo.Link(ctx, "user-1", "sp-1", "ne-2"); !errors.Is(err, shared.ErrAlreadyLinked) {
			t.Errorf("expected ErrAlreadyLinked for reused spotify playlist, got %v", err)
		}
		if _, err := repo.Link(ctx, "user-1", "sp-2", "ne-1"); !errors.Is(err, shared.ErrAlreadyLinked) {
			t.Errorf("expected ErrAlreadyLinked for reused netease playlist, got %v", err)
		}
		if _, err := repo.Link(ctx, "user-2", "sp-1", "ne-1"); err != nil {
			t.Errorf("another user may link the same playlists: %v", err)
		}
	})

	t.Run("Link validation", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistPairingRepository(db)
		if _, err := repo.Link(ctx, "", "sp-1", "ne-1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("ListByUser", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistPairingRepository(db)
		for _, ids := range [][3]string{{"u1", "a", "b"}, {"u2", "c", "d"}, {"u1", "e", "f"}} {
			if _, err := repo.Link(ctx, ids[0], ids[1], ids[2]); err != nil {
				t.Fatalf("failed to link playlists: %v", err)
			}
		}

		links, err := repo.ListByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("failed to list links: %v", err)
		}
		if len(links) != 2 || links[0].SpotifyPlaylistID() != "a" || links[1].SpotifyPlaylistID() != "e" {
			t.Errorf("unexpected links for u1: %d", len(links))
		}
	})

	t.Run("Unlink", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistPairingRepository(db)
		link, err := repo.Link(ctx, "u1", "a", "b")
		if err != nil {
			t.Fatalf("failed to link playlists: %v", err)
		}

		if err := repo.Unlink(ctx, link.ID()); err != nil {
			t.Fatalf("failed to unlink: %v", err)
		}
		if _, err := repo.Get(ctx, link.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after unlink, got %v", err)
		}
		if err := repo.Unlink(ctx, link.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound unlinking twice, got %v", err)
		}
	})
}
