// Package collation implements the locale-aware folding used for
// duplicate-title detection. Two titles collide when their folded
// forms are equal, matching a strength-2 collation: case differences
// and diacritics are ignored, base letters are not.
package collation

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldChain = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// TitleKey returns the canonical comparison key for a title. The key is
// what gets persisted in title_key and covered by the unique index.
func TitleKey(title string) string {
	trimmed := strings.TrimSpace(title)
	stripped, _, err := transform.String(foldChain, trimmed)
	if err != nil {
		// Transform only fails on malformed input; fall back to the
		// untouched string so comparison still sees something stable.
		stripped = trimmed
	}
	return cases.Fold().String(stripped)
}

// TitlesEqual reports whether two titles collide under the folding rules.
func TitlesEqual(a, b string) bool {
	return TitleKey(a) == TitleKey(b)
}
