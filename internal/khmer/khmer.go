// Package khmer cleans and repairs Khmer text copied from mixed sources.
//
// Normalization is deliberately conservative. [Cleanup] only touches
// canonical equivalence, invisible control codepoints and whitespace, and
// [FixPreVowelBeforeCoeng] rewrites one known mis-encoding. No general
// combining-mark reordering is attempted, since that would corrupt text that
// is already correct.
//
// All functions are pure and safe for concurrent use.
package khmer

const (
	// coeng marks the following consonant as a subscript of the previous one.
	coeng = '\u17D2'

	consonantFirst = '\u1780'
	consonantLast  = '\u17A2'

	blockFirst        = '\u1780'
	blockLast         = '\u17FF'
	symbolsBlockFirst = '\u19E0'
	symbolsBlockLast  = '\u19FF'
)

// isPreVowel reports whether r is a vowel sign stored after its base
// consonant but displayed before it (េ ែ ៃ ោ ៅ).
func isPreVowel(r rune) bool {
	return r >= '\u17C1' && r <= '\u17C5'
}

func isConsonant(r rune) bool {
	return r >= consonantFirst && r <= consonantLast
}

func isKhmer(r rune) bool {
	return (r >= blockFirst && r <= blockLast) || (r >= symbolsBlockFirst && r <= symbolsBlockLast)
}

// ContainsKhmer reports whether s has at least one codepoint from the Khmer
// or Khmer Symbols blocks. Callers use it to skip work on strings that
// clearly need no Khmer-specific handling; [Normalize] is safe either way.
func ContainsKhmer(s string) bool {
	for _, r := range s {
		if isKhmer(r) {
			return true
		}
	}
	return false
}
