package matching

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/desertthunder/spotease/internal/models"
)

// Scoring constants. They are kept for compatibility with existing pairings and have not been calibrated.
const (
	NameWeight      = 0.6
	ArtistWeight    = 0.4
	ExactMatchBonus = 0.2
	AcceptThreshold = 0.8
)

// Similarity returns 1 - d/max(len(a), len(b), 1) where d is the Levenshtein distance between
// the normalized forms of a and b. Lengths are counted in runes.
func Similarity(a, b string) float64 {
	return similarity(Normalize(a), Normalize(b))
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b), 1)
	return 1 - float64(d)/float64(longest)
}

// Score returns the confidence in [0, 1] that a and b are the same recording.
//
// Names contribute 60% and artists 40% of the edit-distance similarity, and each exact
// normalized match adds [ExactMatchBonus]. Score is symmetric in its arguments.
func Score(a, b models.Track) float64 {
	nameA, nameB := Normalize(a.Name), Normalize(b.Name)
	artistA, artistB := Normalize(a.Artist), Normalize(b.Artist)

	score := similarity(nameA, nameB)*NameWeight + similarity(artistA, artistB)*ArtistWeight
	if nameA == nameB {
		score += ExactMatchBonus
	}
	if artistA == artistB {
		score += ExactMatchBonus
	}

	return math.Max(0, math.Min(score, 1))
}
