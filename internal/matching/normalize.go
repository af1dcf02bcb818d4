package matching

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	featRegex    = regexp.MustCompile(`\(?\b(?:feat|ft|featuring)\b\.?\s+[^)]+\)?`)
	parenRegex   = regexp.MustCompile(`\([^)]+\)`)
	nonWordRegex = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\p{Z}]`)
	spaceRegex   = regexp.MustCompile(`[\s\p{Z}]+`)
)

// maxPasses bounds the fixpoint loop in [Normalize]. Every pass after the first only removes text.
const maxPasses = 8

// Normalize canonicalizes a track name or artist string for comparison.
//
// The input is folded with NFKC and lowercased, then featured-artist segments and any other
// parenthesized segments are removed, punctuation is stripped and whitespace is collapsed.
// Letters and digits from every script are kept.
//
// Normalize is idempotent: removing one segment can expose another ("feat(x) y" becomes "feat y"),
// so the steps are repeated until the output stops changing.
func Normalize(s string) string {
	for range maxPasses {
		next := normalizeOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func normalizeOnce(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	s = featRegex.ReplaceAllString(s, "")
	s = parenRegex.ReplaceAllString(s, "")
	s = nonWordRegex.ReplaceAllString(s, "")
	s = spaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
