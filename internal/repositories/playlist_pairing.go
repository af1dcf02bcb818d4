package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
)

// PlaylistPairingRepository implements [models.PlaylistPairingStore] on the playlist_pairings table.
//
// A playlist can be linked at most once per user on each platform.
type PlaylistPairingRepository struct {
	db *sql.DB
}

// NewPlaylistPairingRepository creates a new [PlaylistPairingRepository] with the given database connection
func NewPlaylistPairingRepository(db *sql.DB) *PlaylistPairingRepository {
	return &PlaylistPairingRepository{db: db}
}

// Link records that a user's Spotify and NetEase playlists should be kept in sync.
func (r *PlaylistPairingRepository) Link(ctx context.Context, userID, spotifyPlaylistID, neteasePlaylistID string) (*models.PlaylistPairing, error) {
	link := models.NewPlaylistPairing(userID, spotifyPlaylistID, neteasePlaylistID)
	if err := link.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := nextSequence(ctx, tx, "playlist_pairings")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	link.SetID(shared.GenerateID())

	query := `
		INSERT INTO playlist_pairings (id, sequence, user_id, spotify_playlist_id, netease_playlist_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query, link.ID(), sequence, userID, spotifyPlaylistID, neteasePlaylistID, link.CreatedAt())
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: spotify playlist %s or netease playlist %s is already linked", shared.ErrAlreadyLinked, spotifyPlaylistID, neteasePlaylistID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert playlist link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit playlist link: %w", err)
	}

	return link, nil
}

// Get retrieves a playlist link by ID
func (r *PlaylistPairingRepository) Get(ctx context.Context, id string) (*models.PlaylistPairing, error) {
	query := `
		SELECT id, user_id, spotify_playlist_id, netease_playlist_id, created_at
		FROM playlist_pairings
		WHERE id = ?
	`

	link, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: playlist link %s", shared.ErrNotFound, id)
	}
	return link, err
}

// ListByUser returns a user's playlist links in creation order.
func (r *PlaylistPairingRepository) ListByUser(ctx context.Context, userID string) ([]*models.PlaylistPairing, error) {
	query := `
		SELECT id, user_id, spotify_playlist_id, netease_playlist_id, created_at
		FROM playlist_pairings
		WHERE user_id = ?
		ORDER BY sequence ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist links: %w", err)
	}
	defer rows.Close()

	var links []*models.PlaylistPairing
	for rows.Next() {
		link, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating playlist links: %w", err)
	}

	return links, nil
}

// Unlink removes a playlist link. Track pairings are not affected.
func (r *PlaylistPairingRepository) Unlink(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM playlist_pairings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: playlist link %s", shared.ErrNotFound, id)
	}

	return nil
}

func (r *PlaylistPairingRepository) scanRow(row scanner) (*models.PlaylistPairing, error) {
	var (
		id, userID, spotifyID, neteaseID string
		createdAt                        time.Time
	)

	if err := row.Scan(&id, &userID, &spotifyID, &neteaseID, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan playlist link: %w", err)
	}

	link := models.NewPlaylistPairing(userID, spotifyID, neteaseID)
	link.SetID(id)
	link.SetCreatedAt(createdAt)
	return link, nil
}
