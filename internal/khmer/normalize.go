package khmer

// Result is the outcome of a normalization step.
type Result struct {
	Text      string `json:"text"`
	Corrected bool   `json:"corrected"`

	fixes []span
}

// Normalize runs [Cleanup] followed by [FixPreVowelBeforeCoeng]. The result
// is corrected when either step changed the text. Normalize is idempotent
// and may be called on any string, including ones without Khmer content.
func Normalize(s string) Result {
	cleaned := Cleanup(s)
	fixed := FixPreVowelBeforeCoeng(cleaned.Text)
	return Result{
		Text:      fixed.Text,
		Corrected: cleaned.Corrected || fixed.Corrected,
		fixes:     fixed.fixes,
	}
}

// Segments returns a scanner over r.Text split at every rewritten syllable,
// for highlighting what was reordered.
func (r Result) Segments() *SegmentScanner {
	return &SegmentScanner{chars: []rune(r.Text), fixes: r.fixes}
}
