package khmer

// span is a half-open range of rune offsets into a normalized text.
type span struct {
	start, end int
}

// FixPreVowelBeforeCoeng repairs syllables where a pre-vowel sign was stored
// ahead of a subscript cluster:
//
//	consonant + pre-vowel + coeng + consonant
//	=> consonant + coeng + consonant + pre-vowel
//
// e.g. ខ ែ ្ ម រ becomes ខ ្ ម ែ រ. Any other sequence is left as is.
func FixPreVowelBeforeCoeng(s string) Result {
	text, fixes := reorder(s)
	return Result{Text: text, Corrected: len(fixes) > 0, fixes: fixes}
}

// reorder scans with a four-rune window. After a rewrite the scan stays on
// the same index so overlapping windows in the mutated text are still seen.
// Rewritten windows that overlap are merged in the returned spans.
func reorder(s string) (string, []span) {
	chars := []rune(s)
	var fixes []span

	for i := 0; i+3 < len(chars); {
		if !isConsonant(chars[i]) || !isPreVowel(chars[i+1]) ||
			chars[i+2] != coeng || !isConsonant(chars[i+3]) {
			i++
			continue
		}

		pre := chars[i+1]
		chars[i+1] = chars[i+2]
		chars[i+2] = chars[i+3]
		chars[i+3] = pre

		if n := len(fixes); n > 0 && i < fixes[n-1].end {
			fixes[n-1].end = max(fixes[n-1].end, i+4)
		} else {
			fixes = append(fixes, span{start: i, end: i + 4})
		}
	}

	if len(fixes) == 0 {
		return s, nil
	}
	return string(chars), fixes
}
