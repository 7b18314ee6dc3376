package dates

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"slash", "1990/07/12", "1990/07/12"},
		{"slash unpadded", "1990/7/12", "1990/07/12"},
		{"dash", "1990-07-12", "1990/07/12"},
		{"dot", "1990.07.12", "1990/07/12"},
		{"cjk labeled", "1990年7月12日", "1990/07/12"},
		{"cjk labeled spaced", "1990 年 7 月 12 日", "1990/07/12"},
		{"roc era", "民國79年7月12日", "1990/07/12"},
		{"roc simplified", "民国79年7月12日", "1990/07/12"},
		{"roc positional", "79/7/12", "1990/07/12"},
		{"bare digits", "19900712", "1990/07/12"},
		{"surrounding text", "生日是1985年3月25日喔", "1985/03/25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	// All three spellings of the same day must map to one canonical value.
	inputs := []string{"1990年7月12日", "1990/07/12", "民國79年7月12日"}
	const want = "1990/07/12"
	for _, in := range inputs {
		got, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeRejects(t *testing.T) {
	for _, in := range []string{"", "not a date", "1990/13/01", "1990/02/30", "12/34"} {
		if _, err := Normalize(in); err == nil {
			t.Errorf("Normalize(%q) succeeded, want error", in)
		}
	}
}

func TestParseLabeledWinsOverPositional(t *testing.T) {
	// When both a labeled date and stray digits appear, the labeled
	// components decide the reading.
	d, err := Parse("2 人 1990年7月12日")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if d.Year != 1990 || d.Month != 7 || d.Day != 12 {
		t.Errorf("got %+v, want 1990/7/12", d)
	}
}
