package tasks

import (
	"fmt"

	"github.com/desertthunder/spotease/internal/matching"
	"github.com/desertthunder/spotease/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchDest
	LoadPairings
	Compare
	AddTrack
	SavePairing
	ConfirmPairs
	ReconcileLinks
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchDest:
		return "fetch_dest"
	case LoadPairings:
		return "load_pairings"
	case Compare:
		return "compare"
	case AddTrack:
		return "add_track"
	case SavePairing:
		return "save_pairing"
	case ConfirmPairs:
		return "confirm_pairs"
	case ReconcileLinks:
		return "reconcile_links"
	default:
		return ""
	}
}

func fetchSourceUpdate(platform models.Platform, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching source playlist %s from %s...", playlistID, platform.Label()),
	}
}

func fetchDestUpdate(platform models.Platform, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching destination playlist %s from %s...", playlistID, platform.Label()),
	}
}

func loadPairingsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadPairings,
		Step:    1,
		Total:   1,
		Message: "Loading confirmed pairings...",
	}
}

func compareUpdate(source, target int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    0,
		Total:   source,
		Message: fmt.Sprintf("Matching %d source tracks against %d destination tracks...", source, target),
	}
}

func comparedUpdate(summary matching.Summary) ProgressUpdate {
	return ProgressUpdate{
		Phase: Compare,
		Step:  summary.Total,
		Total: summary.Total,
		Message: fmt.Sprintf("%d persisted, %d matched, %d spotify only, %d netease only",
			summary.Persisted, summary.Matched, summary.SpotifyOnly, summary.NeteaseOnly),
		Data: summary,
	}
}

func addTrackUpdate(tr models.Track, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTrack,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Adding %s - %s to %s playlist %s...", tr.Artist, tr.Name, tr.Platform.Label(), playlistID),
	}
}

func savePairingUpdate(spotifyID, neteaseID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SavePairing,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Pairing spotify:%s with netease:%s...", spotifyID, neteaseID),
	}
}

func confirmUpdate(step, total int, pair models.TrackPair, outcome string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConfirmPairs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %s", step, total, pair.Spotify.Name, outcome),
		Data:    pair,
	}
}

func reconcileLinkUpdate(step, total int, res LinkResult) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Link.ID())
	if res.Error != nil {
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Link.ID(), res.Error)
	}
	return ProgressUpdate{
		Phase:   ReconcileLinks,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}
