package core

import (
	"reflect"
	"testing"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty line", "", []string{""}},
		{"single field", "abc", []string{"abc"}},
		{"simple", "a,b,c", []string{"a", "b", "c"}},
		{"trailing comma", "a,b,", []string{"a", "b", ""}},
		{"leading comma", ",a", []string{"", "a"}},
		{"only commas", ",,", []string{"", "", ""}},
		{"quoted comma", `"a,b",c`, []string{"a,b", "c"}},
		{"escaped quote", `"say ""hi""",x`, []string{`say "hi"`, "x"}},
		{"quoted empty", `"",x`, []string{"", "x"}},
		{"single quote char", `""""`, []string{`"`}},
		{"quote mid field toggles", `ab"c,d"e,f`, []string{"abc,de", "f"}},
		{"unterminated quote", `"a,b`, []string{"a,b"}},
		{"spaces kept", " a , b ", []string{" a ", " b "}},
		{"khmer text", fixed + ",noun", []string{fixed, "noun"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLine(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
