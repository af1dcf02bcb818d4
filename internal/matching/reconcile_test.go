package matching

import (
	"fmt"
	"testing"

	"github.com/desertthunder/spotease/internal/models"
)

// fixedScorer returns the score registered for a (spotify id, netease id) pair and 0 otherwise.
func fixedScorer(scores map[string]float64) ScoreFunc {
	return func(a, b models.Track) float64 {
		s, n := a, b
		if s.Platform == models.Netease {
			s, n = b, a
		}
		return scores[s.ID+"|"+n.ID]
	}
}

func pairing(spotifyID, neteaseID string) *models.Pairing {
	return models.NewPairing(0, spotifyID, neteaseID)
}

func describe(pairs []models.TrackPair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		s, n := "-", "-"
		if p.Spotify != nil {
			s = p.Spotify.ID
		}
		if p.Netease != nil {
			n = p.Netease.ID
		}
		out[i] = fmt.Sprintf("%s/%s", s, n)
		if p.Persisted {
			out[i] += "*"
		}
	}
	return out
}

func assertPairs(t *testing.T, got []models.TrackPair, want ...string) {
	t.Helper()
	desc := describe(got)
	if len(desc) != len(want) {
		t.Fatalf("expected %d pairs %v, got %d %v", len(want), want, len(desc), desc)
	}
	for i := range want {
		if desc[i] != want[i] {
			t.Fatalf("pair %d: expected %s, got %s (all: %v)", i, want[i], desc[i], desc)
		}
	}
}

// assertComplete checks that every input track appears in exactly one pair.
func assertComplete(t *testing.T, source, target []models.Track, pairs []models.TrackPair) {
	t.Helper()
	seen := map[*models.Track]bool{}
	count := map[string]int{}
	for _, p := range pairs {
		if p.Spotify == nil && p.Netease == nil {
			t.Fatal("pair with neither side present")
		}
		for _, tr := range []*models.Track{p.Spotify, p.Netease} {
			if tr == nil {
				continue
			}
			if seen[tr] {
				t.Fatal("track pointer shared between pairs")
			}
			seen[tr] = true
			count[key(tr.Platform, tr.ID)]++
		}
	}
	want := map[string]int{}
	for _, tr := range append(append([]models.Track{}, source...), target...) {
		want[key(tr.Platform, tr.ID)]++
	}
	for k, n := range want {
		if count[k] != n {
			t.Errorf("track %s appears %d times, want %d", k, count[k], n)
		}
	}
	if len(count) != len(want) {
		t.Errorf("output contains tracks not in input: %v", count)
	}
}

func TestReconcile(t *testing.T) {
	t.Run("Empty lists", func(t *testing.T) {
		if pairs := Reconcile(nil, nil, nil); len(pairs) != 0 {
			t.Errorf("expected no pairs, got %v", describe(pairs))
		}
	})

	t.Run("Only targets", func(t *testing.T) {
		target := []models.Track{neteaseTrack("n1", "A", "X"), neteaseTrack("n2", "B", "Y")}
		assertPairs(t, Reconcile(nil, target, nil), "-/n1", "-/n2")
	})

	t.Run("Only sources", func(t *testing.T) {
		source := []models.Track{spotifyTrack("s1", "A", "X")}
		pairs := Reconcile(source, nil, nil)
		assertPairs(t, pairs, "s1/-")
		if pairs[0].Confidence != 0 {
			t.Errorf("unmatched pair should carry no confidence, got %v", pairs[0].Confidence)
		}
	})

	t.Run("Heuristic scenario", func(t *testing.T) {
		source := []models.Track{
			spotifyTrack("s1", "Shape of You", "Ed Sheeran"),
			spotifyTrack("s2", "Let It Be", "The Beatles"),
		}
		target := []models.Track{
			neteaseTrack("n1", "Yesterday", "The Beatles"),
			neteaseTrack("n2", "Shape of You (Remastered)", "Ed Sheeran"),
		}

		pairs := Reconcile(source, target, nil)
		assertPairs(t, pairs, "s1/n2", "s2/-", "-/n1")
		assertComplete(t, source, target, pairs)
		if pairs[0].Confidence != 1 || pairs[0].Persisted {
			t.Errorf("expected heuristic pair with confidence 1, got %+v", pairs[0])
		}
	})

	t.Run("Persisted precedence", func(t *testing.T) {
		source := []models.Track{spotifyTrack("s1", "Hello", "Adele")}
		target := []models.Track{
			neteaseTrack("n1", "Hello (Live at the BBC)", "Adele Adkins"),
			neteaseTrack("n2", "Hello", "Adele"),
		}

		pairs := Reconcile(source, target, []*models.Pairing{pairing("s1", "n1")})
		assertPairs(t, pairs, "s1/n1*", "-/n2")
		if pairs[0].Confidence != 1 {
			t.Errorf("persisted pair confidence = %v, want 1", pairs[0].Confidence)
		}
	})

	t.Run("Persisted pairing claims target before earlier source", func(t *testing.T) {
		source := []models.Track{
			spotifyTrack("s1", "Hello", "Adele"),
			spotifyTrack("s2", "Hello", "Adele"),
		}
		target := []models.Track{neteaseTrack("n1", "Hello", "Adele")}

		pairs := Reconcile(source, target, []*models.Pairing{pairing("s2", "n1")})
		assertPairs(t, pairs, "s1/-", "s2/n1*")
	})

	t.Run("Persisted counterpart missing from target", func(t *testing.T) {
		source := []models.Track{spotifyTrack("s1", "Hello", "Adele")}
		target := []models.Track{neteaseTrack("n2", "Hello", "Adele")}

		pairs := Reconcile(source, target, []*models.Pairing{pairing("s1", "n-elsewhere")})
		assertPairs(t, pairs, "s1/n2")
		if !pairs[0].PairedElsewhere || pairs[0].Persisted {
			t.Errorf("expected heuristic pair flagged as paired elsewhere, got %+v", pairs[0])
		}
	})

	t.Run("Target stored-paired outside the source list", func(t *testing.T) {
		source := []models.Track{spotifyTrack("s1", "Hello", "Adele"), spotifyTrack("s2", "Skyfall", "Adele")}
		target := []models.Track{neteaseTrack("n1", "Hello", "Adele"), neteaseTrack("n2", "Skyfall", "Adele")}

		pairs := Reconcile(source, target, []*models.Pairing{pairing("s-other", "n1")})
		assertPairs(t, pairs, "s1/n1", "s2/n2")
		if !pairs[0].PairedElsewhere {
			t.Errorf("expected s1/n1 flagged, got %+v", pairs[0])
		}
		if pairs[1].PairedElsewhere {
			t.Errorf("s2/n2 has no stored pairing, got %+v", pairs[1])
		}
		if s := Summarize(pairs); s.Matched != 2 || s.Elsewhere != 1 {
			t.Errorf("unexpected summary %+v", s)
		}
	})

	t.Run("Threshold is exclusive", func(t *testing.T) {
		source := []models.Track{spotifyTrack("s1", "a", "a"), spotifyTrack("s2", "b", "b")}
		target := []models.Track{neteaseTrack("n1", "c", "c"), neteaseTrack("n2", "d", "d")}
		m := Matcher{Threshold: AcceptThreshold, Scorer: fixedScorer(map[string]float64{
			"s1|n1": 0.8,
			"s2|n2": 0.80000001,
		})}

		pairs := m.Reconcile(source, target, nil)
		assertPairs(t, pairs, "s1/-", "s2/n2", "-/n1")
		if pairs[1].Confidence != 0.80000001 {
			t.Errorf("expected confidence 0.80000001, got %v", pairs[1].Confidence)
		}
	})

	t.Run("Greedy is first come first served", func(t *testing.T) {
		source := []models.Track{spotifyTrack("s1", "a", "a"), spotifyTrack("s2", "b", "b")}
		target := []models.Track{neteaseTrack("n1", "c", "c")}
		m := Matcher{Threshold: AcceptThreshold, Scorer: fixedScorer(map[string]float64{
			"s1|n1": 0.85,
			"s2|n1": 0.99,
		})}

		assertPairs(t, m.Reconcile(source, target, nil), "s1/n1", "s2/-")
	})

	t.Run("Best target wins and ties keep the first", func(t *testing.T) {
		source := []models.Track{spotifyTrack("s1", "a", "a")}
		target := []models.Track{neteaseTrack("n1", "c", "c"), neteaseTrack("n2", "d", "d"), neteaseTrack("n3", "e", "e")}

		m := Matcher{Threshold: AcceptThreshold, Scorer: fixedScorer(map[string]float64{
			"s1|n1": 0.9, "s1|n2": 0.95, "s1|n3": 0.95,
		})}
		assertPairs(t, m.Reconcile(source, target, nil), "s1/n2", "-/n1", "-/n3")
	})

	t.Run("NetEase as source", func(t *testing.T) {
		source := []models.Track{neteaseTrack("n1", "Hello", "Adele"), neteaseTrack("n2", "Rolling in the Deep", "Adele")}
		target := []models.Track{spotifyTrack("s1", "Rolling in the Deep", "Adele"), spotifyTrack("s2", "Skyfall", "Adele")}

		pairs := Reconcile(source, target, []*models.Pairing{pairing("s9", "n1")})
		assertPairs(t, pairs, "-/n1", "s1/n2", "s2/-")
		assertComplete(t, source, target, pairs)
	})

	t.Run("Duplicate target ids are consumed one at a time", func(t *testing.T) {
		source := []models.Track{spotifyTrack("s1", "Hello", "Adele"), spotifyTrack("s1", "Hello", "Adele")}
		target := []models.Track{neteaseTrack("n1", "Hello", "Adele"), neteaseTrack("n1", "Hello", "Adele")}

		pairs := Reconcile(source, target, []*models.Pairing{pairing("s1", "n1")})
		assertPairs(t, pairs, "s1/n1*", "s1/n1*")
		assertComplete(t, source, target, pairs)
	})

	t.Run("Deterministic", func(t *testing.T) {
		source := []models.Track{
			spotifyTrack("s1", "Hello", "Adele"),
			spotifyTrack("s2", "Hello", "Adele"),
			spotifyTrack("s3", "Skyfall", "Adele"),
		}
		target := []models.Track{
			neteaseTrack("n1", "Hello", "Adele"),
			neteaseTrack("n2", "Hello (Live)", "Adele"),
			neteaseTrack("n3", "Someone Like You", "Adele"),
		}

		first := describe(Reconcile(source, target, nil))
		for range 20 {
			next := describe(Reconcile(source, target, nil))
			for i := range first {
				if first[i] != next[i] {
					t.Fatalf("non-deterministic output: %v vs %v", first, next)
				}
			}
		}
	})

	t.Run("Completeness", func(t *testing.T) {
		var source, target []models.Track
		for i, s := range trickyStrings {
			source = append(source, spotifyTrack(fmt.Sprintf("s%d", i), s, "Artist"))
			if i%2 == 0 {
				target = append(target, neteaseTrack(fmt.Sprintf("n%d", i), s+" (Live)", "Artist"))
			}
		}
		pairings := []*models.Pairing{pairing("s3", "n4"), pairing("s100", "n100")}

		pairs := Reconcile(source, target, pairings)
		assertComplete(t, source, target, pairs)

		for i, p := range pairs[:len(source)] {
			if p.Spotify == nil || p.Spotify.ID != source[i].ID {
				t.Fatalf("pair %d is not anchored on source track %s", i, source[i].ID)
			}
		}
	})
}

func TestSummarize(t *testing.T) {
	s1, s2 := spotifyTrack("s1", "A", "X"), spotifyTrack("s2", "B", "X")
	n1, n2 := neteaseTrack("n1", "A", "X"), neteaseTrack("n2", "C", "X")
	pairs := []models.TrackPair{
		{Spotify: &s1, Netease: &n1, Confidence: 1, Persisted: true},
		{Spotify: &s2, Netease: &n2, Confidence: 0.9},
		{Spotify: &s2},
		{Netease: &n2},
		{Netease: &n1},
	}

	got := Summarize(pairs)
	if got.Persisted != 1 || got.Matched != 1 || got.SpotifyOnly != 1 || got.NeteaseOnly != 2 || got.Total != 5 {
		t.Errorf("unexpected summary %+v", got)
	}
	if got.Unmatched() != 3 {
		t.Errorf("Unmatched() = %d, want 3", got.Unmatched())
	}
	if got.MeanHeuristic != 0.9 {
		t.Errorf("MeanHeuristic = %v, want 0.9", got.MeanHeuristic)
	}

	unpaired := Unpaired(pairs, models.Netease)
	if len(unpaired) != 2 || unpaired[0].ID != "n2" || unpaired[1].ID != "n1" {
		t.Errorf("unexpected unpaired netease tracks %+v", unpaired)
	}
}
