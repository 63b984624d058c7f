package common

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	CodeReg string  `json:"code_reg"`
	NameReg string  `json:"name_reg"`
	ChoiceA int64   `json:"choice_a"`
	Ratio   float64 `json:"ratio"`
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty selects all", in: "", want: nil},
		{name: "json names", in: "code_reg,ratio", want: []string{"code_reg", "ratio"}},
		{name: "table labels", in: "Region, Choice A", want: []string{"name_reg", "choice_a"}},
		{name: "skips blanks", in: "ratio,,", want: []string{"ratio"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseFields(tt.in)); diff != "" {
				t.Errorf("ParseFields(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestFilterResultFields(t *testing.T) {
	s := sample{CodeReg: "28", NameReg: "Normandie", ChoiceA: 300, Ratio: 0.5}

	got := FilterResultFields(s, []string{"name_reg", "ratio", "unknown"})
	want := map[string]interface{}{"name_reg": "Normandie", "ratio": 0.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FilterResultFields() mismatch (-want +got):\n%s", diff)
	}

	counts := FilterResultFields(s, []string{"choice_a"})
	if v, ok := counts["choice_a"].(int64); !ok || v != 300 {
		t.Errorf("choice_a = %#v, want int64 300", counts["choice_a"])
	}

	all := FilterResultFields(s, nil)
	if len(all) != 4 {
		t.Errorf("FilterResultFields(nil) kept %d fields, want 4", len(all))
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(43262592); got != "43,262,592" {
		t.Errorf("FormatCount() = %q, want %q", got, "43,262,592")
	}
	if got := FormatRatio(0.427467); got != "42.75%" {
		t.Errorf("FormatRatio() = %q, want %q", got, "42.75%")
	}
}
