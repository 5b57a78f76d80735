package khmer

import (
	"reflect"
	"testing"
	"unicode/utf8"
)

const (
	kho   = "\u1781" // ខ
	mo    = "\u1798" // ម
	ro    = "\u179A" // រ
	ae    = "\u17C2" // ែ
	e     = "\u17C1" // េ
	sub   = "\u17D2" // coeng
	ka    = "\u1780" // ក
	ko    = "\u1782" // គ
	khmer = kho + sub + mo + ae + ro
)

func TestCleanup(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		corrected bool
	}{
		{name: "empty", input: "", want: "", corrected: false},
		{name: "tabs and spaces collapse", input: "a\t\tb   c", want: "a b c", corrected: true},
		{name: "form feed and vertical tab", input: "a\f\vb", want: "a b", corrected: true},
		{name: "four blank lines become one", input: "a\n\n\n\n\nb", want: "a\n\nb", corrected: true},
		{name: "single blank line kept", input: "a\n\nb", want: "a\n\nb", corrected: false},
		{name: "crlf and cr", input: "a\r\nb\rc", want: "a\nb\nc", corrected: true},
		{name: "lines trimmed", input: "  a  \n  b ", want: "a\nb", corrected: true},
		{name: "invisibles removed", input: "a\u200Bb\u200E\u200F\u2060c\uFEFF", want: "abc", corrected: true},
		{name: "decomposed composes", input: "e\u0301", want: "\u00E9", corrected: true},
		{name: "zero width between base and mark", input: "e\u200B\u0301", want: "\u00E9", corrected: true},
		{name: "emoji untouched", input: "hi \U0001F44B\U0001F3FD!", want: "hi \U0001F44B\U0001F3FD!", corrected: false},
		{name: "correct khmer untouched", input: khmer, want: khmer, corrected: false},
		{name: "no reordering in cleanup", input: kho + ae + sub + mo + ro, want: kho + ae + sub + mo + ro, corrected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cleanup(tt.input)
			if got.Text != tt.want {
				t.Errorf("Cleanup(%q).Text = %q, want %q", tt.input, got.Text, tt.want)
			}
			if got.Corrected != tt.corrected {
				t.Errorf("Cleanup(%q).Corrected = %v, want %v", tt.input, got.Corrected, tt.corrected)
			}
		})
	}
}

func TestFixPreVowelBeforeCoeng(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		corrected bool
	}{
		{name: "misplaced pre-vowel", input: kho + ae + sub + mo + ro, want: kho + sub + mo + ae + ro, corrected: true},
		{name: "already correct", input: khmer, want: khmer, corrected: false},
		{name: "too short", input: kho + ae + sub, want: kho + ae + sub, corrected: false},
		{name: "non consonant base", input: "a" + ae + sub + mo, want: "a" + ae + sub + mo, corrected: false},
		{name: "overlapping windows", input: ka + e + sub + kho + sub + ko, want: ka + sub + kho + sub + ko + e, corrected: true},
		{name: "latin only", input: "hello", want: "hello", corrected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixPreVowelBeforeCoeng(tt.input)
			if got.Text != tt.want {
				t.Errorf("got %q, want %q", got.Text, tt.want)
			}
			if got.Corrected != tt.corrected {
				t.Errorf("Corrected = %v, want %v", got.Corrected, tt.corrected)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("")
	if got.Text != "" || got.Corrected {
		t.Errorf("Normalize(\"\") = %+v, want empty and uncorrected", got)
	}

	got = Normalize("  " + kho + ae + sub + mo + ro + "\u200B  ")
	if got.Text != khmer {
		t.Errorf("got %q, want %q", got.Text, khmer)
	}
	if !got.Corrected {
		t.Error("expected Corrected = true")
	}

	got = Normalize(khmer)
	if got.Corrected {
		t.Error("correct text should not be reported as corrected")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"a\t\tb   c",
		"a\n\n\n\n\nb",
		" \r\n x \r\n\r\n\r\n y ",
		"e\u200B\u0301",
		kho + ae + sub + mo + ro,
		ka + e + sub + kho + sub + ko,
		kho + ae + sub + mo + ro + " " + kho + ae + sub + mo + ro,
		"\uFEFF" + khmer + "\u200B,\u2060x",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once.Text)
		if twice.Text != once.Text {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once.Text, twice.Text)
		}
		if twice.Corrected {
			t.Errorf("second Normalize of %q reported a correction", in)
		}
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{name: "empty", input: "", want: nil},
		{name: "nothing fixed", input: "abc", want: []Segment{{Text: "abc"}}},
		{
			name:  "single fix",
			input: kho + ae + sub + mo + ro,
			want: []Segment{
				{Text: kho + sub + mo + ae, Corrected: true},
				{Text: ro},
			},
		},
		{
			name:  "two fixes with gap",
			input: "x " + kho + ae + sub + mo + ro + " " + kho + ae + sub + mo,
			want: []Segment{
				{Text: "x "},
				{Text: kho + sub + mo + ae, Corrected: true},
				{Text: ro + " "},
				{Text: kho + sub + mo + ae, Corrected: true},
			},
		},
		{
			name:  "overlapping fixes merge",
			input: ka + e + sub + kho + sub + ko,
			want: []Segment{
				{Text: ka + sub + kho + sub + ko + e, Corrected: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectSegments(Normalize(tt.input).Segments())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("segments = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSegmentScanner_SingleUse(t *testing.T) {
	sc := Normalize(kho + ae + sub + mo + ro).Segments()
	if n := len(CollectSegments(sc)); n != 2 {
		t.Fatalf("first pass: got %d segments, want 2", n)
	}
	if sc.Scan() {
		t.Error("drained scanner should not yield again")
	}
}

func TestContainsKhmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"hello", false},
		{"hello " + kho, true},
		{"\u19E0", true},
		{"\u0E01", false},
	}

	for _, tt := range tests {
		if got := ContainsKhmer(tt.input); got != tt.want {
			t.Errorf("ContainsKhmer(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func FuzzNormalizeIdempotent(f *testing.F) {
	seeds := []string{"", "a\t\tb", khmer, kho + ae + sub + mo + ro, "x\r\n\r\n\r\n\r\ny", "e\u200B\u0301"}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip()
		}
		once := Normalize(input)
		twice := Normalize(once.Text)
		if twice.Text != once.Text {
			t.Fatalf("not idempotent: %q -> %q -> %q", input, once.Text, twice.Text)
		}
	})
}
