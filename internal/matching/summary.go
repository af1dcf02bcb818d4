package matching

import "github.com/desertthunder/spotease/internal/models"

// Summary counts the outcome of one reconciliation.
type Summary struct {
	Persisted     int     `json:"persisted"`
	Matched       int     `json:"matched"`
	Elsewhere     int     `json:"paired_elsewhere"` // Matched pairs whose tracks are stored-paired to other tracks
	SpotifyOnly   int     `json:"spotify_only"`
	NeteaseOnly   int     `json:"netease_only"`
	Total         int     `json:"total"`
	MeanHeuristic float64 `json:"mean_heuristic_confidence"`
}

// Unmatched returns the number of tracks present on one platform only.
func (s Summary) Unmatched() int {
	return s.SpotifyOnly + s.NeteaseOnly
}

// Summarize tallies reconciliation results.
func Summarize(pairs []models.TrackPair) Summary {
	var s Summary
	var confidence float64
	for _, p := range pairs {
		s.Total++
		switch {
		case p.Paired() && p.Persisted:
			s.Persisted++
		case p.Paired():
			s.Matched++
			confidence += p.Confidence
			if p.PairedElsewhere {
				s.Elsewhere++
			}
		case p.Spotify != nil:
			s.SpotifyOnly++
		case p.Netease != nil:
			s.NeteaseOnly++
		}
	}
	if s.Matched > 0 {
		s.MeanHeuristic = confidence / float64(s.Matched)
	}
	return s
}

// Unpaired returns the tracks from pairs that have no counterpart, in order.
func Unpaired(pairs []models.TrackPair, platform models.Platform) []models.Track {
	var tracks []models.Track
	for _, p := range pairs {
		if p.Paired() {
			continue
		}
		if t := p.Side(platform); t != nil {
			tracks = append(tracks, *t)
		}
	}
	return tracks
}
