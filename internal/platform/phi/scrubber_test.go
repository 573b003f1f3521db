package phi

import (
	"strings"
	"testing"
)

func TestScrubText_Categories(t *testing.T) {
	s := NewScrubber()

	tests := []struct {
		name     string
		input    string
		contains string
		absent   string
	}{
		{
			name:     "ssn dashed",
			input:    "my ssn is 123-45-6789 thanks",
			contains: "[SSN-[REDACTED]]",
			absent:   "123-45-6789",
		},
		{
			name:     "email",
			input:    "reach me at jane.doe@example.com",
			contains: "[EMAIL-[REDACTED]]",
			absent:   "jane.doe@example.com",
		},
		{
			name:     "mrn",
			input:    "chart MRN: 99887766 updated",
			contains: "[MRN-[REDACTED]]",
			absent:   "99887766",
		},
		{
			name:     "patient name with honorific",
			input:    "Dr. John Smith will see you",
			contains: "[PATIENT_NAME-[REDACTED]]",
			absent:   "John Smith",
		},
		{
			name:     "patient name lowercased",
			input:    "note for mr. john doe about follow-up",
			contains: "[PATIENT_NAME-[REDACTED]]",
			absent:   "john doe",
		},
		{
			name:     "street address",
			input:    "send it to 123 Main Street please",
			contains: "[ADDRESS-[REDACTED]]",
			absent:   "Main Street",
		},
		{
			name:     "prescription number",
			input:    "refill RX 1234567 today",
			contains: "[PRESCRIPTION-[REDACTED]]",
			absent:   "1234567",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ScrubText(tt.input)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("ScrubText(%q) = %q, want marker %q", tt.input, got, tt.contains)
			}
			if strings.Contains(got, tt.absent) {
				t.Errorf("ScrubText(%q) = %q, still contains %q", tt.input, got, tt.absent)
			}
		})
	}
}

func TestScrubText_MultipleCategoriesInOneString(t *testing.T) {
	s := NewScrubber()

	got := s.ScrubText("SSN 123-45-6789, email bob@clinic.org")
	if !strings.Contains(got, "[SSN-[REDACTED]]") {
		t.Errorf("missing ssn marker in %q", got)
	}
	if !strings.Contains(got, "[EMAIL-[REDACTED]]") {
		t.Errorf("missing email marker in %q", got)
	}
}

func TestScrubText_CleanTextUnchanged(t *testing.T) {
	s := NewScrubber()

	in := "what are your office hours?"
	if got := s.ScrubText(in); got != in {
		t.Errorf("clean text modified: %q -> %q", in, got)
	}
	if got := s.ScrubText(""); got != "" {
		t.Errorf("empty input modified: %q", got)
	}
}

func TestScrubTextWith_CustomReplacement(t *testing.T) {
	s := NewScrubber()

	got := s.ScrubTextWith("call 555-123-4567", "***")
	if !strings.Contains(got, "***") {
		t.Errorf("expected literal replacement in %q", got)
	}
	if strings.Contains(got, "[PHONE-") {
		t.Errorf("custom replacement must not be category-tagged: %q", got)
	}
}

func TestScrubValue_SensitiveKeys(t *testing.T) {
	s := NewScrubber()

	in := map[string]any{
		"ssn":     "123-45-6789",
		"count":   3,
		"message": "email me at a@b.io",
		"nested": map[string]any{
			"phone_number": "555-123-4567",
			"note":         "all clear",
		},
		"tags": []any{"contact: x@y.com", 7},
	}

	out, ok := s.ScrubValue(in).(map[string]any)
	if !ok {
		t.Fatalf("expected map result, got %T", s.ScrubValue(in))
	}

	if out["ssn"] != RedactedField {
		t.Errorf("ssn key not field-redacted: %v", out["ssn"])
	}
	if out["count"] != 3 {
		t.Errorf("non-string scalar changed: %v", out["count"])
	}
	if msg := out["message"].(string); !strings.Contains(msg, "[EMAIL-[REDACTED]]") {
		t.Errorf("string value not scrubbed: %q", msg)
	}

	nested := out["nested"].(map[string]any)
	if nested["phone_number"] != RedactedField {
		t.Errorf("nested sensitive key not field-redacted: %v", nested["phone_number"])
	}
	if nested["note"] != "all clear" {
		t.Errorf("nested clean value changed: %v", nested["note"])
	}

	tags := out["tags"].([]any)
	if tag := tags[0].(string); !strings.Contains(tag, "[EMAIL-[REDACTED]]") {
		t.Errorf("slice element not scrubbed: %q", tag)
	}
	if tags[1] != 7 {
		t.Errorf("slice scalar changed: %v", tags[1])
	}

	// Input must not be mutated.
	if in["ssn"] != "123-45-6789" {
		t.Errorf("input map mutated: %v", in["ssn"])
	}
}

func TestScrubJSON(t *testing.T) {
	s := NewScrubber()

	out := s.ScrubJSON(`{"email":"x@y.io","body":"ssn 123-45-6789"}`)
	if strings.Contains(out, "x@y.io") {
		t.Errorf("sensitive key value survived: %q", out)
	}
	if strings.Contains(out, "123-45-6789") {
		t.Errorf("pattern match survived: %q", out)
	}

	// Invalid JSON falls back to plain text scrubbing.
	out = s.ScrubJSON(`not json, call 555-123-4567`)
	if strings.Contains(out, "555-123-4567") {
		t.Errorf("fallback text scrub missed phone: %q", out)
	}
}

func TestHasPHI(t *testing.T) {
	s := NewScrubber()

	if !s.HasPHI("my ssn is 123-45-6789") {
		t.Error("pattern match should report PHI")
	}
	if !s.HasPHI("the patient saw the doctor about a new medication") {
		t.Error("three context keywords should report PHI")
	}
	if s.HasPHI("the patient has an appointment") {
		t.Error("two keywords should not report PHI")
	}
	if s.HasPHI("what time do you open on weekends") {
		t.Error("clean text should not report PHI")
	}
	if s.HasPHI("") {
		t.Error("empty text should not report PHI")
	}
}

func TestSummary(t *testing.T) {
	s := NewScrubber()

	sum := s.Summary("SSN 123-45-6789 and email a@b.io and another c@d.org")
	if sum["ssn"] < 1 {
		t.Errorf("expected ssn count >= 1, got %d", sum["ssn"])
	}
	if sum["email"] != 2 {
		t.Errorf("expected 2 email matches, got %d", sum["email"])
	}
	if _, ok := sum["prescription"]; ok {
		t.Error("zero-match category must be omitted")
	}
}

func TestNewScrubber_CustomCategory(t *testing.T) {
	s := NewScrubber(NewCategory("badge", `\bBADGE-\d{4}\b`))

	got := s.ScrubText("entry with BADGE-1234 logged")
	if !strings.Contains(got, "[BADGE-[REDACTED]]") {
		t.Errorf("custom category not applied: %q", got)
	}
}
