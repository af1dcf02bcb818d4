package matching

import "github.com/desertthunder/spotease/internal/models"

// ScoreFunc scores a candidate pair of tracks in [0, 1].
type ScoreFunc func(a, b models.Track) float64

// Matcher reconciles two track lists.
//
// A heuristic match is accepted only when its score is strictly greater than Threshold.
type Matcher struct {
	Threshold float64
	Scorer    ScoreFunc
}

// DefaultMatcher uses [Score] with [AcceptThreshold].
var DefaultMatcher = Matcher{Threshold: AcceptThreshold, Scorer: Score}

// NewMatcher returns a matcher with the given threshold and [Score] as its scorer.
func NewMatcher(threshold float64) Matcher {
	return Matcher{Threshold: threshold, Scorer: Score}
}

// Reconcile runs [DefaultMatcher].
func Reconcile(source, target []models.Track, pairings []*models.Pairing) []models.TrackPair {
	return DefaultMatcher.Reconcile(source, target, pairings)
}

// Reconcile pairs every source track with at most one target track.
//
// Persisted pairings are applied first and always win. Remaining source tracks then claim,
// in source order, the best-scoring unclaimed target above the threshold; ties keep the
// earlier target. Targets never claimed are appended in target order. A heuristic pair is
// flagged PairedElsewhere when either track has a stored pairing with a track outside the pair.
//
// The source list may come from either platform: pairing lookups and the placement of a track
// into the Spotify or NetEase slot of a [models.TrackPair] use [models.Track.Platform].
// Every input track appears in exactly one output pair.
func (m Matcher) Reconcile(source, target []models.Track, pairings []*models.Pairing) []models.TrackPair {
	scorer := m.Scorer
	if scorer == nil {
		scorer = Score
	}

	counterpart := pairingIndex(pairings)
	consumed := make([]bool, len(target))
	results := make([]*models.TrackPair, len(source))

	// target id -> indexes in target order, so duplicate ids are consumed one at a time
	positions := make(map[string][]int, len(target))
	for j, t := range target {
		positions[key(t.Platform, t.ID)] = append(positions[key(t.Platform, t.ID)], j)
	}

	for i, s := range source {
		other, ok := counterpart[key(s.Platform, s.ID)]
		if !ok {
			continue
		}
		for _, j := range positions[key(s.Platform.Other(), other)] {
			if consumed[j] {
				continue
			}
			consumed[j] = true
			pair := newPair(s, target[j], 1)
			pair.Persisted = true
			results[i] = &pair
			break
		}
	}

	for i, s := range source {
		if results[i] != nil {
			continue
		}

		best, bestScore := -1, 0.0
		for j, t := range target {
			if consumed[j] || t.Platform == s.Platform {
				continue
			}
			score := scorer(s, t)
			if score > m.Threshold && score > bestScore {
				best, bestScore = j, score
			}
		}

		if best < 0 {
			pair := single(s)
			results[i] = &pair
			continue
		}

		consumed[best] = true
		pair := newPair(s, target[best], bestScore)
		_, sourcePaired := counterpart[key(s.Platform, s.ID)]
		_, targetPaired := counterpart[key(target[best].Platform, target[best].ID)]
		pair.PairedElsewhere = sourcePaired || targetPaired
		results[i] = &pair
	}

	pairs := make([]models.TrackPair, 0, len(source)+len(target))
	for _, p := range results {
		pairs = append(pairs, *p)
	}
	for j, t := range target {
		if !consumed[j] {
			pairs = append(pairs, single(t))
		}
	}
	return pairs
}

// pairingIndex maps each side of every pairing to the other side's id.
func pairingIndex(pairings []*models.Pairing) map[string]string {
	idx := make(map[string]string, len(pairings)*2)
	for _, p := range pairings {
		if p == nil {
			continue
		}
		idx[key(models.Spotify, p.SpotifyTrackID())] = p.NeteaseTrackID()
		idx[key(models.Netease, p.NeteaseTrackID())] = p.SpotifyTrackID()
	}
	return idx
}

func key(p models.Platform, id string) string {
	return string(p) + ":" + id
}

func newPair(a, b models.Track, confidence float64) models.TrackPair {
	pair := models.TrackPair{Confidence: confidence}
	place(&pair, a)
	place(&pair, b)
	return pair
}

func single(t models.Track) models.TrackPair {
	var pair models.TrackPair
	place(&pair, t)
	return pair
}

func place(pair *models.TrackPair, t models.Track) {
	track := t
	if t.Platform == models.Spotify {
		pair.Spotify = &track
	} else {
		pair.Netease = &track
	}
}
