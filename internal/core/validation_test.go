package core

import (
	"reflect"
	"testing"
)

func TestParseTypes(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"noun", []string{"noun"}},
		{" noun | verb ", []string{"noun", "verb"}},
		{"a||b|", []string{"a", "b"}},
		{"|", nil},
		{"x|x", []string{"x", "x"}},
	}

	for _, tt := range tests {
		got := ParseTypes(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTypes(%q) = %q, want %q", tt.in, got, tt.want)
		}
		for _, tag := range got {
			if tag == "" {
				t.Errorf("ParseTypes(%q) produced a blank tag", tt.in)
			}
		}
	}
}

func TestNormalizeRow(t *testing.T) {
	raw := RawRow{
		RawText:  broken,
		Type:     "noun | verb",
		NormText: "  clean  ",
		SpanRaw:  "",
		SpanType: "",
		SpanNorm: "",
	}

	got := NormalizeRow(raw)

	if got.RawText != fixed {
		t.Errorf("RawText = %q", got.RawText)
	}
	if got.NormText != "clean" {
		t.Errorf("NormText = %q, want clean", got.NormText)
	}
	if !reflect.DeepEqual(got.Types, []string{"noun", "verb"}) {
		t.Errorf("Types = %q", got.Types)
	}
	if got.SpanTypes != nil {
		t.Errorf("SpanTypes = %q, want nil", got.SpanTypes)
	}
	if !got.Corrected {
		t.Error("Corrected = false, want true")
	}

	clean := NormalizeRow(RawRow{RawText: "a", Type: "t", NormText: "b"})
	if clean.Corrected {
		t.Error("Corrected = true for already clean row")
	}
}

func TestValidateRow(t *testing.T) {
	valid := NormalizedRow{RawText: "r", Types: []string{"t"}, NormText: "n"}

	tests := []struct {
		name   string
		mutate func(*NormalizedRow)
		want   ValidationOutcome
	}{
		{"valid without span", func(*NormalizedRow) {}, ValidationOutcome{Accepted: true}},
		{"blank raw_text", func(r *NormalizedRow) { r.RawText = "  " }, ValidationOutcome{Reason: ReasonMissingText}},
		{"blank normtext", func(r *NormalizedRow) { r.NormText = "" }, ValidationOutcome{Reason: ReasonMissingText}},
		{"no types", func(r *NormalizedRow) { r.Types = nil }, ValidationOutcome{Reason: ReasonMissingType}},
		{"text checked before type", func(r *NormalizedRow) { r.RawText, r.Types = "", nil }, ValidationOutcome{Reason: ReasonMissingText}},
		{
			"span without span_norm",
			func(r *NormalizedRow) { r.SpanRaw, r.SpanTypes = "x", []string{"t"} },
			ValidationOutcome{Reason: ReasonMissingSpanNorm},
		},
		{
			"span without span_type",
			func(r *NormalizedRow) { r.SpanRaw, r.SpanNorm = "x", "y" },
			ValidationOutcome{Reason: ReasonMissingSpanType},
		},
		{
			"span_norm checked before span_type",
			func(r *NormalizedRow) { r.SpanRaw = "x" },
			ValidationOutcome{Reason: ReasonMissingSpanNorm},
		},
		{
			"complete span",
			func(r *NormalizedRow) { r.SpanRaw, r.SpanNorm, r.SpanTypes = "x", "y", []string{"t"} },
			ValidationOutcome{Accepted: true},
		},
		{
			"span columns ignored when span_raw blank",
			func(r *NormalizedRow) { r.SpanRaw, r.SpanNorm = " ", "" },
			ValidationOutcome{Accepted: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := valid
			tt.mutate(&row)
			if got := ValidateRow(row); got != tt.want {
				t.Errorf("ValidateRow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	row := NormalizedRow{
		RawText:   "r",
		Types:     []string{"a", "b"},
		NormText:  "n",
		SpanRaw:   "sr",
		SpanTypes: []string{"c"},
		SpanNorm:  "sn",
	}
	want := Row{RawText: "r", Type: "a|b", NormText: "n", SpanRaw: "sr", SpanType: "c", SpanNorm: "sn"}
	if got := row.Canonical(); got != want {
		t.Errorf("Canonical() = %+v, want %+v", got, want)
	}
}
