package core

// validation.go turns raw dataset rows into normalized rows and decides
// which of them are fit for the corpus.
//
// Every free-text field goes through khmer.Normalize. Type cells are split
// into tag lists. A row is accepted when:
//
//   - raw_text and normtext are non-blank
//   - it carries at least one type tag
//   - if span_raw is non-blank, span_norm is non-blank and span_type has
//     at least one tag
//
// Span columns are not inspected at all when span_raw is blank.

import (
	"strings"

	"github.com/JonMunkholm/textnorm/internal/khmer"
)

// Rejection reasons reported by ValidateRow.
const (
	ReasonMissingText     = "missing raw_text or normtext"
	ReasonMissingType     = "missing type"
	ReasonMissingSpanNorm = "span_norm required when span_raw provided"
	ReasonMissingSpanType = "span_type required when span_raw provided"
)

// ParseTypes splits a pipe-separated tag cell. Tags are trimmed and blank
// ones dropped; order and duplicates are kept.
func ParseTypes(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, TypeSeparator) {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTypes is the inverse of ParseTypes for already clean tag lists.
func JoinTypes(tags []string) string {
	return strings.Join(tags, TypeSeparator)
}

// NormalizeRow normalizes the four text fields of r independently and
// parses both tag cells.
func NormalizeRow(r RawRow) NormalizedRow {
	raw := khmer.Normalize(r.RawText)
	norm := khmer.Normalize(r.NormText)
	spanRaw := khmer.Normalize(r.SpanRaw)
	spanNorm := khmer.Normalize(r.SpanNorm)

	return NormalizedRow{
		RawText:   raw.Text,
		Types:     ParseTypes(r.Type),
		NormText:  norm.Text,
		SpanRaw:   spanRaw.Text,
		SpanTypes: ParseTypes(r.SpanType),
		SpanNorm:  spanNorm.Text,
		Corrected: raw.Corrected || norm.Corrected || spanRaw.Corrected || spanNorm.Corrected,
	}
}

// ValidateRow applies the acceptance rules in order; the first failure wins.
func ValidateRow(r NormalizedRow) ValidationOutcome {
	if isBlank(r.RawText) || isBlank(r.NormText) {
		return reject(ReasonMissingText)
	}
	if len(r.Types) == 0 {
		return reject(ReasonMissingType)
	}
	if !isBlank(r.SpanRaw) {
		if isBlank(r.SpanNorm) {
			return reject(ReasonMissingSpanNorm)
		}
		if len(r.SpanTypes) == 0 {
			return reject(ReasonMissingSpanType)
		}
	}
	return ValidationOutcome{Accepted: true}
}

// Canonical rewrites an accepted row into its wire form.
func (r NormalizedRow) Canonical() Row {
	return Row{
		RawText:  r.RawText,
		Type:     JoinTypes(r.Types),
		NormText: r.NormText,
		SpanRaw:  r.SpanRaw,
		SpanType: JoinTypes(r.SpanTypes),
		SpanNorm: r.SpanNorm,
	}
}

func reject(reason string) ValidationOutcome {
	return ValidationOutcome{Accepted: false, Reason: reason}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
