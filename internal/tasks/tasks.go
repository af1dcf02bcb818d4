package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotease/internal/matching"
	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/services"
	"github.com/desertthunder/spotease/internal/shared"
)

// DefaultSearchLimit is the number of candidates requested by [PlaylistEngine.Search].
const DefaultSearchLimit = 10

// ConflictMessage is reported when a resolved track could not be paired because either side already is.
const ConflictMessage = "already paired with another track"

// ReconcileResult is the outcome of reconciling one playlist link.
type ReconcileResult struct {
	Link    *models.PlaylistPairing
	Source  models.Platform
	Pairs   []models.TrackPair
	Summary matching.Summary
}

// ResolveResult reports which halves of a manual resolution succeeded.
//
// TrackAdded is true once the chosen track was added to the destination playlist; it stays true
// when pairing fails afterwards, since the addition is never rolled back.
type ResolveResult struct {
	TrackAdded bool
	Conflict   bool
	Message    string
	Pairing    *models.Pairing
}

// ConfirmResult is the outcome of persisting heuristic matches.
type ConfirmResult struct {
	Confirmed []*models.Pairing  // Newly stored pairings
	Conflicts []models.TrackPair // Pairs rejected because a track was already paired
	Skipped   int                // Pairs that were persisted already, unmatched or paired elsewhere
}

// SyncEngine defines operations for keeping linked playlists in correspondence.
type SyncEngine interface {
	// Reconcile fetches both playlists of link and pairs their tracks, reading source from the given platform.
	Reconcile(ctx context.Context, link *models.PlaylistPairing, source models.Platform, progress chan<- ProgressUpdate) (*ReconcileResult, error)

	// ResolveManualMatch adds chosen to the destination playlist, then pairs it with source.
	ResolveManualMatch(ctx context.Context, source, chosen models.Track, destinationPlaylistID string, progress chan<- ProgressUpdate) (*ResolveResult, error)

	// ConfirmMatches persists every heuristic match in pairs.
	ConfirmMatches(ctx context.Context, pairs []models.TrackPair, progress chan<- ProgressUpdate) (*ConfirmResult, error)

	// Unlink removes the pairing referencing the given track id, or joining both ids.
	Unlink(ctx context.Context, spotifyTrackID, neteaseTrackID string) error

	// Search returns candidates for a free-text query on platform, unranked.
	Search(ctx context.Context, platform models.Platform, query string) ([]models.Track, error)

	// SuggestCandidates searches the other platform for track using progressively looser queries.
	SuggestCandidates(ctx context.Context, track models.Track) ([]models.Track, error)
}

// PlaylistEngine implements SyncEngine.
//
// It holds no mutable state between calls: concurrent operations are made safe by the
// uniqueness guarantees of the [models.PairingStore].
type PlaylistEngine struct {
	catalogs map[models.Platform]services.Catalog
	pairings models.PairingStore
	links    models.PlaylistPairingStore
	matcher  matching.Matcher
	logger   *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine. links may be nil when callers always pass links directly.
func NewPlaylistEngine(spotify, netease services.Catalog, pairings models.PairingStore, links models.PlaylistPairingStore) *PlaylistEngine {
	catalogs := map[models.Platform]services.Catalog{}
	if spotify != nil {
		catalogs[models.Spotify] = spotify
	}
	if netease != nil {
		catalogs[models.Netease] = netease
	}

	return &PlaylistEngine{
		catalogs: catalogs,
		pairings: pairings,
		links:    links,
		matcher:  matching.DefaultMatcher,
		logger:   log.New(io.Discard),
	}
}

// WithMatcher replaces the default matcher.
func (e *PlaylistEngine) WithMatcher(m matching.Matcher) *PlaylistEngine {
	e.matcher = m
	return e
}

// WithLogger sets the logger used for per-track decisions (debug) and session summaries (info).
func (e *PlaylistEngine) WithLogger(l *log.Logger) *PlaylistEngine {
	if l != nil {
		e.logger = l
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *PlaylistEngine) catalog(p models.Platform) (services.Catalog, error) {
	c, ok := e.catalogs[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s catalog not configured", shared.ErrServiceUnavailable, p.Label())
	}
	return c, nil
}

// Reconcile fetches both sides of link and runs the matcher over them with the stored pairings.
func (e *PlaylistEngine) Reconcile(
	ctx context.Context,
	link *models.PlaylistPairing,
	source models.Platform,
	progress chan<- ProgressUpdate,
) (*ReconcileResult, error) {
	if link == nil {
		return nil, fmt.Errorf("%w: playlist link", shared.ErrMissingArgument)
	}
	if !source.Valid() {
		return nil, fmt.Errorf("%w: unknown source platform %q", shared.ErrInvalidArgument, source)
	}
	if e.pairings == nil {
		return nil, fmt.Errorf("%w: pairing store not initialized", shared.ErrServiceUnavailable)
	}
	dest := source.Other()

	sourceCatalog, err := e.catalog(source)
	if err != nil {
		return nil, err
	}
	destCatalog, err := e.catalog(dest)
	if err != nil {
		return nil, err
	}

	logger := shared.WithLogger(e.logger, "link", link.ID(), "source", source.Label())

	e.sendProgress(progress, fetchSourceUpdate(source, link.PlaylistID(source)))
	sourceTracks, err := sourceCatalog.PlaylistTracks(ctx, link.PlaylistID(source))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s playlist %s: %w", source.Label(), link.PlaylistID(source), err)
	}

	e.sendProgress(progress, fetchDestUpdate(dest, link.PlaylistID(dest)))
	destTracks, err := destCatalog.PlaylistTracks(ctx, link.PlaylistID(dest))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s playlist %s: %w", dest.Label(), link.PlaylistID(dest), err)
	}

	e.sendProgress(progress, loadPairingsUpdate())
	pairings, err := e.pairings.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pairings: %w", err)
	}

	e.sendProgress(progress, compareUpdate(len(sourceTracks), len(destTracks)))
	pairs := e.matcher.Reconcile(sourceTracks, destTracks, pairings)
	summary := matching.Summarize(pairs)

	for _, p := range pairs {
		if p.Paired() && !p.Persisted {
			logger.Debug("heuristic match", "spotify", p.Spotify.ID, "netease", p.Netease.ID, "confidence", p.Confidence)
		}
	}
	logger.Info("reconciled",
		"persisted", summary.Persisted,
		"matched", summary.Matched,
		"spotify_only", summary.SpotifyOnly,
		"netease_only", summary.NeteaseOnly,
	)
	e.sendProgress(progress, comparedUpdate(summary))

	return &ReconcileResult{Link: link, Source: source, Pairs: pairs, Summary: summary}, nil
}

// ReconcileLink looks up a stored link by id and reconciles it.
func (e *PlaylistEngine) ReconcileLink(
	ctx context.Context,
	linkID string,
	source models.Platform,
	progress chan<- ProgressUpdate,
) (*ReconcileResult, error) {
	if e.links == nil {
		return nil, fmt.Errorf("%w: playlist link store not initialized", shared.ErrServiceUnavailable)
	}
	link, err := e.links.Get(ctx, linkID)
	if err != nil {
		return nil, err
	}
	return e.Reconcile(ctx, link, source, progress)
}

// ResolveManualMatch adds chosen to destinationPlaylistID on chosen's platform and pairs it with source.
//
// Arguments are validated before any side effect. A failed addition is returned as is and nothing is
// paired. Once the addition succeeded, a pairing failure yields a non-nil result with TrackAdded set and
// an error matching [shared.ErrPartialSuccess]; a conflict additionally matches [shared.ErrAlreadyPaired].
// The addition is never retried or rolled back.
func (e *PlaylistEngine) ResolveManualMatch(
	ctx context.Context,
	source, chosen models.Track,
	destinationPlaylistID string,
	progress chan<- ProgressUpdate,
) (*ResolveResult, error) {
	switch {
	case destinationPlaylistID == "":
		return nil, fmt.Errorf("%w: destination playlist id is required", shared.ErrInvalidArgument)
	case source.ID == "" || chosen.ID == "":
		return nil, fmt.Errorf("%w: both tracks need an id", shared.ErrInvalidArgument)
	case !source.Platform.Valid() || !chosen.Platform.Valid():
		return nil, fmt.Errorf("%w: tracks need a known platform", shared.ErrInvalidArgument)
	case source.Platform == chosen.Platform:
		return nil, fmt.Errorf("%w: source and chosen tracks are both on %s", shared.ErrInvalidArgument, source.Platform.Label())
	}
	if e.pairings == nil {
		return nil, fmt.Errorf("%w: pairing store not initialized", shared.ErrServiceUnavailable)
	}

	catalog, err := e.catalog(chosen.Platform)
	if err != nil {
		return nil, err
	}

	spotifyID, neteaseID := source.ID, chosen.ID
	if source.Platform == models.Netease {
		spotifyID, neteaseID = chosen.ID, source.ID
	}
	logger := shared.WithLogger(e.logger, "spotify", spotifyID, "netease", neteaseID)

	e.sendProgress(progress, addTrackUpdate(chosen, destinationPlaylistID))
	if err := catalog.AddTracks(ctx, destinationPlaylistID, []string{chosen.ID}); err != nil {
		return nil, fmt.Errorf("%w: failed to add %s track %s: %w", shared.ErrAPIRequest, chosen.Platform.Label(), chosen.ID, err)
	}
	logger.Debug("track added", "playlist", destinationPlaylistID)

	result := &ResolveResult{TrackAdded: true}

	e.sendProgress(progress, savePairingUpdate(spotifyID, neteaseID))
	pairing, err := e.pairings.Create(ctx, spotifyID, neteaseID)
	if errors.Is(err, shared.ErrAlreadyPaired) {
		result.Conflict = true
		result.Message = ConflictMessage
		logger.Warn("track added but not paired", "reason", err)
		return result, errors.Join(shared.ErrPartialSuccess, err)
	}
	if err != nil {
		result.Message = "track added but the pairing could not be saved"
		return result, errors.Join(shared.ErrPartialSuccess, err)
	}

	result.Pairing = pairing
	result.Message = "track added and paired"
	logger.Info("manual match resolved", "pairing", pairing.ID())
	return result, nil
}

// ConfirmMatches persists the heuristic matches in pairs, in order.
//
// Persisted, unmatched and paired-elsewhere pairs are skipped. A pair rejected with [shared.ErrAlreadyPaired] is
// recorded as a conflict and the session continues; any other error stops it and is returned
// alongside the partial result.
func (e *PlaylistEngine) ConfirmMatches(
	ctx context.Context,
	pairs []models.TrackPair,
	progress chan<- ProgressUpdate,
) (*ConfirmResult, error) {
	if e.pairings == nil {
		return nil, fmt.Errorf("%w: pairing store not initialized", shared.ErrServiceUnavailable)
	}

	result := &ConfirmResult{}
	var pending []models.TrackPair
	for _, p := range pairs {
		if !p.Paired() || p.Persisted || p.PairedElsewhere {
			result.Skipped++
			continue
		}
		pending = append(pending, p)
	}

	for i, p := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pairing, err := e.pairings.Create(ctx, p.Spotify.ID, p.Netease.ID)
		switch {
		case errors.Is(err, shared.ErrAlreadyPaired):
			result.Conflicts = append(result.Conflicts, p)
			e.logger.Debug("confirm conflict", "spotify", p.Spotify.ID, "netease", p.Netease.ID, "reason", err)
			e.sendProgress(progress, confirmUpdate(i+1, len(pending), p, ConflictMessage))
		case err != nil:
			return result, fmt.Errorf("failed to confirm spotify:%s netease:%s: %w", p.Spotify.ID, p.Netease.ID, err)
		default:
			result.Confirmed = append(result.Confirmed, pairing)
			e.sendProgress(progress, confirmUpdate(i+1, len(pending), p, "paired"))
		}
	}

	e.logger.Info("matches confirmed", "confirmed", len(result.Confirmed), "conflicts", len(result.Conflicts), "skipped", result.Skipped)
	return result, nil
}

// Unlink removes the pairing that references the given id (or joins both ids), freeing both tracks for new pairings.
func (e *PlaylistEngine) Unlink(ctx context.Context, spotifyTrackID, neteaseTrackID string) error {
	if e.pairings == nil {
		return fmt.Errorf("%w: pairing store not initialized", shared.ErrServiceUnavailable)
	}
	if err := e.pairings.DeleteByEitherID(ctx, spotifyTrackID, neteaseTrackID); err != nil {
		return err
	}
	e.logger.Info("pairing removed", "spotify", spotifyTrackID, "netease", neteaseTrackID)
	return nil
}

// Search queries platform and returns its results in the platform's order.
func (e *PlaylistEngine) Search(ctx context.Context, platform models.Platform, query string) ([]models.Track, error) {
	catalog, err := e.catalog(platform)
	if err != nil {
		return nil, err
	}
	return catalog.Search(ctx, query, DefaultSearchLimit)
}

// SuggestCandidates searches the platform opposite to track.Platform with [services.Suggest].
func (e *PlaylistEngine) SuggestCandidates(ctx context.Context, track models.Track) ([]models.Track, error) {
	if !track.Platform.Valid() {
		return nil, fmt.Errorf("%w: track needs a known platform", shared.ErrInvalidArgument)
	}
	catalog, err := e.catalog(track.Platform.Other())
	if err != nil {
		return nil, err
	}
	return services.Suggest(ctx, catalog, track)
}
