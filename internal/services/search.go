package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotease/internal/models"
)

// MaxSuggestions caps the candidates returned by [Suggest].
const MaxSuggestions = 5

// SuggestQueries returns the search queries tried for track, most specific first:
// the quoted name with the first artist, the bare name with the first artist, then the name alone.
func SuggestQueries(track models.Track) []string {
	name := strings.TrimSpace(track.Name)
	artist := FirstArtist(track.Artist)
	if artist == "" {
		return []string{fmt.Sprintf("%q", name), name}
	}
	return []string{
		fmt.Sprintf("%q %s", name, artist),
		fmt.Sprintf("%s %s", name, artist),
		name,
	}
}

// FirstArtist returns the first name of a ", " joined artist list.
func FirstArtist(artist string) string {
	first, _, _ := strings.Cut(artist, ", ")
	return strings.TrimSpace(first)
}

// Suggest searches catalog for track, falling back through [SuggestQueries] until a query returns results.
//
// Results are returned in the catalog's order, capped at [MaxSuggestions]; they are not ranked or filtered.
func Suggest(ctx context.Context, catalog Catalog, track models.Track) ([]models.Track, error) {
	if strings.TrimSpace(track.Name) == "" {
		return nil, nil
	}

	var results []models.Track
	for _, query := range SuggestQueries(track) {
		var err error
		results, err = catalog.Search(ctx, query, MaxSuggestions)
		if err != nil {
			return nil, fmt.Errorf("search %q on %s: %w", query, catalog.Name(), err)
		}
		if len(results) > 0 {
			break
		}
	}

	if len(results) > MaxSuggestions {
		results = results[:MaxSuggestions]
	}
	return results, nil
}
