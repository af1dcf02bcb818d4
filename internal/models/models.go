// package models defines the data model for the playlist reconciliation service
package models

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
// Implementations include Pairing and PlaylistPairing.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Platform identifies the streaming service a track or playlist belongs to.
type Platform string

const (
	Spotify Platform = "SPOTIFY"
	Netease Platform = "NETEASE"
)

// Other returns the opposite platform.
func (p Platform) Other() Platform {
	if p == Spotify {
		return Netease
	}
	return Spotify
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == Spotify || p == Netease
}

// Label returns the human-readable service name.
func (p Platform) Label() string {
	switch p {
	case Spotify:
		return "Spotify"
	case Netease:
		return "NetEase"
	default:
		return string(p)
	}
}

// ParsePlatform parses a platform name case-insensitively ("spotify", "netease", "163").
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spotify":
		return Spotify, nil
	case "netease", "163", "ncm":
		return Netease, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// Track is a song as reported by one platform's catalog.
//
// DurationMs is zero when the platform did not report a duration.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artist     string   `json:"artist"`
	Album      string   `json:"album,omitempty"`
	Platform   Platform `json:"platform"`
	DurationMs int      `json:"duration_ms,omitempty"`
}

// Playlist represents basic playlist metadata from a catalog.
type Playlist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TrackCount  int      `json:"track_count"`
	Platform    Platform `json:"platform"`
}

// TrackPair is one row of a reconciliation result.
//
// At least one of Spotify and Netease is set. Confidence is only meaningful when both are.
// PairedElsewhere marks a heuristic match where either track already has a stored pairing
// with a track outside this pair; confirming it would conflict.
type TrackPair struct {
	Spotify         *Track  `json:"spotify,omitempty"`
	Netease         *Track  `json:"netease,omitempty"`
	Confidence      float64 `json:"confidence"`
	Persisted       bool    `json:"persisted"`
	PairedElsewhere bool    `json:"paired_elsewhere,omitempty"`
}

// Paired reports whether both sides of the pair are present.
func (tp TrackPair) Paired() bool {
	return tp.Spotify != nil && tp.Netease != nil
}

// Side returns the track for platform p, or nil.
func (tp TrackPair) Side(p Platform) *Track {
	if p == Spotify {
		return tp.Spotify
	}
	return tp.Netease
}

// Pairing is a persisted, user-confirmed equivalence between a Spotify track and a NetEase track.
type Pairing struct {
	id             string
	sequence       int
	spotifyTrackID string
	neteaseTrackID string
	createdAt      time.Time
}

// NewPairing creates a pairing with the current time as its creation timestamp.
func NewPairing(sequence int, spotifyTrackID, neteaseTrackID string) *Pairing {
	return &Pairing{
		sequence:       sequence,
		spotifyTrackID: spotifyTrackID,
		neteaseTrackID: neteaseTrackID,
		createdAt:      time.Now(),
	}
}

func (p *Pairing) ID() string { return p.id }
func (p *Pairing) Sequence() int { return p.sequence }
func (p *Pairing) SpotifyTrackID() string { return p.spotifyTrackID }
func (p *Pairing) NeteaseTrackID() string { return p.neteaseTrackID }
func (p *Pairing) CreatedAt() time.Time { return p.createdAt }
func (p *Pairing) UpdatedAt() time.Time { return p.createdAt }
func (p *Pairing) SetID(id string) { p.id = id }
func (p *Pairing) SetCreatedAt(t time.Time) { p.createdAt = t }

// TrackID returns the track id recorded for platform.
func (p *Pairing) TrackID(platform Platform) string {
	if platform == Spotify {
		return p.spotifyTrackID
	}
	return p.neteaseTrackID
}

// Validate checks that both track ids are present.
func (p *Pairing) Validate() error {
	if p.spotifyTrackID == "" {
		return fmt.Errorf("spotify track id is required")
	}
	if p.neteaseTrackID == "" {
		return fmt.Errorf("netease track id is required")
	}
	return nil
}

// PlaylistPairing links a Spotify playlist to a NetEase playlist for one user.
type PlaylistPairing struct {
	id                string
	userID            string
	spotifyPlaylistID string
	neteasePlaylistID string
	createdAt         time.Time
}

// NewPlaylistPairing creates a playlist link with the current time as its creation timestamp.
func NewPlaylistPairing(userID, spotifyPlaylistID, neteasePlaylistID string) *PlaylistPairing {
	return &PlaylistPairing{
		userID:            userID,
		spotifyPlaylistID: spotifyPlaylistID,
		neteasePlaylistID: neteasePlaylistID,
		createdAt:         time.Now(),
	}
}

func (l *PlaylistPairing) ID() string { return l.id }
func (l *PlaylistPairing) UserID() string { return l.userID }
func (l *PlaylistPairing) SpotifyPlaylistID() string { return l.spotifyPlaylistID }
func (l *PlaylistPairing) NeteasePlaylistID() string { return l.neteasePlaylistID }
func (l *PlaylistPairing) CreatedAt() time.Time { return l.createdAt }
func (l *PlaylistPairing) UpdatedAt() time.Time { return l.createdAt }
func (l *PlaylistPairing) SetID(id string) { l.id = id }
func (l *PlaylistPairing) SetCreatedAt(t time.Time) { l.createdAt = t }

// PlaylistID returns the linked playlist id on platform.
func (l *PlaylistPairing) PlaylistID(platform Platform) string {
	if platform == Spotify {
		return l.spotifyPlaylistID
	}
	return l.neteasePlaylistID
}

// Validate checks that the link names a user and both playlists.
func (l *PlaylistPairing) Validate() error {
	if l.userID == "" {
		return fmt.Errorf("user id is required")
	}
	if l.spotifyPlaylistID == "" {
		return fmt.Errorf("spotify playlist id is required")
	}
	if l.neteasePlaylistID == "" {
		return fmt.Errorf("netease playlist id is required")
	}
	return nil
}

// PairingStore defines persistence for confirmed track pairings.
//
// Implementations must enforce that each Spotify id and each NetEase id appears in at most one pairing,
// atomically with respect to concurrent Create calls.
type PairingStore interface {
	Create(ctx context.Context, spotifyTrackID, neteaseTrackID string) (*Pairing, error) // Create persists a new pairing
	FindAll(ctx context.Context) ([]*Pairing, error)                                   // FindAll returns every pairing in insertion order
	DeleteByEitherID(ctx context.Context, spotifyTrackID, neteaseTrackID string) error  // DeleteByEitherID removes the pairing referencing either id
}

// PlaylistPairingStore defines persistence for playlist links.
type PlaylistPairingStore interface {
	Link(ctx context.Context, userID, spotifyPlaylistID, neteasePlaylistID string) (*PlaylistPairing, error)
	Get(ctx context.Context, id string) (*PlaylistPairing, error)
	ListByUser(ctx context.Context, userID string) ([]*PlaylistPairing, error)
	Unlink(ctx context.Context, id string) error
}
