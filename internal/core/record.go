package core

import (
	"strings"

	"github.com/JonMunkholm/textnorm/internal/khmer"
)

// PrepareRecord turns client input into a storable Record.
//
// The four text fields are normalized independently, tags are trimmed with
// blanks dropped, and the span is cleared when span raw text is blank.
// When a span is present its types mirror the sentence types. The result
// must pass the same acceptance rules as bulk rows, otherwise a
// *RecordValidationError is returned.
func PrepareRecord(in RecordInput) (Record, map[string]bool, error) {
	raw := khmer.Normalize(in.RawText)
	norm := khmer.Normalize(in.NormalizedText)
	spanRaw := khmer.Normalize(in.SpanRawText)
	spanNorm := khmer.Normalize(in.SpanNormalizedText)

	corrected := map[string]bool{
		FieldRawText:            raw.Corrected,
		FieldNormalizedText:     norm.Corrected,
		FieldSpanRawText:        spanRaw.Corrected,
		FieldSpanNormalizedText: spanNorm.Corrected,
	}

	rec := Record{
		RawText:        raw.Text,
		NormalizedText: norm.Text,
		Types:          cleanTags(in.Types),
	}
	if strings.TrimSpace(spanRaw.Text) != "" {
		rec.SpanRawText = spanRaw.Text
		rec.SpanNormalizedText = spanNorm.Text
		rec.SpanTypes = append([]string(nil), rec.Types...)
	}

	outcome := ValidateRow(NormalizedRow{
		RawText:   rec.RawText,
		Types:     rec.Types,
		NormText:  rec.NormalizedText,
		SpanRaw:   rec.SpanRawText,
		SpanTypes: rec.SpanTypes,
		SpanNorm:  rec.SpanNormalizedText,
	})
	if !outcome.Accepted {
		return Record{}, corrected, &RecordValidationError{Reason: outcome.Reason}
	}

	return rec, corrected, nil
}

// cleanTags trims tags and drops blank ones, keeping order and duplicates.
// Tags containing the separator are split so a stored list always
// round-trips through a pipe-joined cell.
func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		out = append(out, ParseTypes(t)...)
	}
	return out
}
