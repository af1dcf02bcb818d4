package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
)

// PairingRepository implements [models.PairingStore] on the track_pairings table.
//
// Both track id columns are UNIQUE, so concurrent Create calls for the same id are serialized by SQLite
// and exactly one of them succeeds. Deletes are hard deletes: a removed pairing frees both ids.
type PairingRepository struct {
	db *sql.DB
}

// NewPairingRepository creates a new [PairingRepository] with the given database connection
func NewPairingRepository(db *sql.DB) *PairingRepository {
	return &PairingRepository{db: db}
}

// Create inserts a pairing with a generated ID and sequence.
//
// Returns [shared.ErrAlreadyPaired] when either id already belongs to a pairing.
func (r *PairingRepository) Create(ctx context.Context, spotifyTrackID, neteaseTrackID string) (*models.Pairing, error) {
	if spotifyTrackID == "" || neteaseTrackID == "" {
		return nil, fmt.Errorf("%w: both spotify and netease track ids are required", shared.ErrInvalidArgument)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := nextSequence(ctx, tx, "track_pairings")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	pairing := models.NewPairing(sequence, spotifyTrackID, neteaseTrackID)
	pairing.SetID(shared.GenerateID())

	if err := pairing.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO track_pairings (id, sequence, spotify_track_id, netease_track_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query, pairing.ID(), sequence, spotifyTrackID, neteaseTrackID, pairing.CreatedAt())
	if isUniqueViolation(err) {
		return nil, alreadyPaired(err, spotifyTrackID, neteaseTrackID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert pairing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit pairing: %w", err)
	}

	return pairing, nil
}

// alreadyPaired names the conflicting id using the column reported by SQLite.
func alreadyPaired(err error, spotifyTrackID, neteaseTrackID string) error {
	if strings.Contains(err.Error(), "netease_track_id") {
		return fmt.Errorf("%w: netease track %s is already paired with another track", shared.ErrAlreadyPaired, neteaseTrackID)
	}
	return fmt.Errorf("%w: spotify track %s is already paired with another track", shared.ErrAlreadyPaired, spotifyTrackID)
}

// FindAll returns every pairing ordered by sequence.
func (r *PairingRepository) FindAll(ctx context.Context) ([]*models.Pairing, error) {
	query := `
		SELECT id, sequence, spotify_track_id, netease_track_id, created_at
		FROM track_pairings
		ORDER BY sequence ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairings: %w", err)
	}
	defer rows.Close()

	var pairings []*models.Pairing
	for rows.Next() {
		pairing, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		pairings = append(pairings, pairing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pairings: %w", err)
	}

	return pairings, nil
}

// FindByTrackID returns the pairing that references id on platform.
func (r *PairingRepository) FindByTrackID(ctx context.Context, platform models.Platform, id string) (*models.Pairing, error) {
	column := "spotify_track_id"
	if platform == models.Netease {
		column = "netease_track_id"
	}

	query := fmt.Sprintf(`
		SELECT id, sequence, spotify_track_id, netease_track_id, created_at
		FROM track_pairings
		WHERE %s = ?
	`, column)

	pairing, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no pairing for %s track %s", shared.ErrNotFound, platform.Label(), id)
	}
	return pairing, err
}

// DeleteByEitherID removes the pairing that references whichever id is supplied.
//
// Either id may be empty, but not both. When both are given they must name the same pairing,
// so a mismatched pair of ids never removes two pairings at once.
// Returns [shared.ErrNotFound] when nothing was removed.
func (r *PairingRepository) DeleteByEitherID(ctx context.Context, spotifyTrackID, neteaseTrackID string) error {
	var (
		conds []string
		args  []any
	)
	if spotifyTrackID != "" {
		conds = append(conds, "spotify_track_id = ?")
		args = append(args, spotifyTrackID)
	}
	if neteaseTrackID != "" {
		conds = append(conds, "netease_track_id = ?")
		args = append(args, neteaseTrackID)
	}
	if len(conds) == 0 {
		return fmt.Errorf("%w: a spotify or netease track id is required", shared.ErrInvalidArgument)
	}

	query := "DELETE FROM track_pairings WHERE " + strings.Join(conds, " AND ")

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete pairing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: no pairing references spotify=%q netease=%q", shared.ErrNotFound, spotifyTrackID, neteaseTrackID)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PairingRepository) scanRow(row scanner) (*models.Pairing, error) {
	var (
		id        string
		sequence  int
		spotifyID string
		neteaseID string
		createdAt time.Time
	)

	if err := row.Scan(&id, &sequence, &spotifyID, &neteaseID, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan pairing: %w", err)
	}

	pairing := models.NewPairing(sequence, spotifyID, neteaseID)
	pairing.SetID(id)
	pairing.SetCreatedAt(createdAt)
	return pairing, nil
}
