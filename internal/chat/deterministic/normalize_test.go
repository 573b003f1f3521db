package deterministic

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases and trims", "  Hello There  ", "hello there"},
		{"strips spanish punctuation", "¿Dónde está la oficina?", "donde esta la oficina"},
		{"strips english punctuation", "hours?!", "hours"},
		{"folds accents", "información médica", "informacion medica"},
		{"collapses whitespace", "what   are\tyour    hours", "what are your hours"},
		{"empty", "", ""},
		{"punctuation only", "¿?¡!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"¿Dónde está?", "  HELLO  ", "qué   servicios ofrece", "plain text",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio("hello", "hello"); got != 1 {
		t.Errorf("identical strings: got %v, want 1", got)
	}
	if got := Ratio("abc", "xyz"); got != 0 {
		t.Errorf("disjoint strings: got %v, want 0", got)
	}
	// Matching blocks "bcd" (3) over total length 8.
	if got := Ratio("abcd", "bcde"); got != 0.75 {
		t.Errorf("Ratio(abcd, bcde) = %v, want 0.75", got)
	}
	if got := Ratio("", ""); got != 1 {
		t.Errorf("empty strings: got %v, want 1", got)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		phrase    string
		threshold float64
		want      bool
	}{
		{"containment", "what are your hours today", "hours", DefaultThreshold, true},
		{"word subset", "is the office open now", "open now", DefaultThreshold, true},
		{"keyword coverage with typo", "wher is the nearst pharmacy", "where", DefaultThreshold, true},
		{"similarity fallback", "telefono", "telefon", DefaultThreshold, true},
		{"no match", "tell me about payment fees", "hours", DefaultThreshold, false},
		{"below threshold", "completely unrelated", "greeting", DefaultThreshold, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(Normalize(tt.query), Normalize(tt.phrase), tt.threshold); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.query, tt.phrase, got, tt.want)
			}
		})
	}
}
