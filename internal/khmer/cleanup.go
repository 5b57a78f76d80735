package khmer

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankLineRun    = regexp.MustCompile(`\n{3,}`)
)

// invisibles are dropped from every input: zero-width space, LRM, RLM,
// word joiner and the byte-order mark.
var invisibles = runes.Predicate(func(r rune) bool {
	switch r {
	case '\u200B', '\u200E', '\u200F', '\u2060', '\uFEFF':
		return true
	}
	return false
})

// Cleanup canonicalizes s to NFC, strips invisible control codepoints and
// normalizes whitespace. Letters, punctuation and emoji in any script are
// left untouched. Corrected is true when the output differs from s.
func Cleanup(s string) Result {
	text := collapseWhitespace(canonicalize(s))
	return Result{Text: text, Corrected: text != s}
}

// canonicalize composes s and removes invisibles. NFC runs again after the
// removal because a dropped zero-width space may have been the only thing
// keeping a base letter and its combining mark apart.
func canonicalize(s string) string {
	chain := transform.Chain(norm.NFC, runes.Remove(invisibles), norm.NFC)
	out, _, err := transform.String(chain, s)
	if err != nil {
		out = norm.NFC.String(strings.Map(func(r rune) rune {
			if invisibles.Contains(r) {
				return -1
			}
			return r
		}, norm.NFC.String(s)))
	}
	return out
}

func collapseWhitespace(s string) string {
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")

	s = blankLineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
