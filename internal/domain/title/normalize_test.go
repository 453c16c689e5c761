package title

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Morning Star", "morning star"},
		{"trims whitespace", "  Morning Star  ", "morning star"},
		{"strips punctuation", "The Daily-Herald!", "the dailyherald"},
		{"keeps digits", "24x7 Bulletin", "24x7 bulletin"},
		{"drops non-ascii", "Café拉 Gazette", "caf gazette"},
		{"empty", "", ""},
		{"only punctuation", "!!??", ""},
		{"punctuation before word", "#' hello", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "Morning Star", "  !weird--input??  ", "ALL CAPS 123", "#' hello", "a  b   c",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
