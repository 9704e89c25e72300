// Package textnorm cleans raw extracted text before chunking and embedding.
// PDF extraction output is noisy: accented glyphs, decorative characters and
// ragged whitespace all degrade embedding quality, so everything is folded to
// a compact ASCII form first.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// asciiFold decomposes characters (NFD), drops the combining marks and
	// then drops anything left without an ASCII representation. "café"
	// becomes "cafe", "日本" is discarded entirely.
	asciiFold = transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)

	disallowed    = regexp.MustCompile(`[^\w\s.,;:\-\[\]]`)
	dotRuns       = regexp.MustCompile(`\.{2,}`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Clean normalizes raw document text. Steps, in order: fold accented
// characters to ASCII, strip characters outside the allowed set, erase runs
// of two or more dots, collapse whitespace runs to a single space, trim.
// Clean is idempotent: Clean(Clean(s)) == Clean(s).
func Clean(raw string) string {
	folded, _, err := transform.String(asciiFold, raw)
	if err != nil {
		// NFD cannot fail on valid UTF-8; fall back to the raw input so a
		// malformed page still gets the regex cleanup below.
		folded = raw
	}

	s := disallowed.ReplaceAllString(folded, "")
	s = dotRuns.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
