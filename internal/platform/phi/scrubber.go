// Package phi scrubs Protected Health Information from text and structured
// data before it reaches any log sink or outbound payload. Every logging
// helper in the service must route dynamic strings through ScrubText and
// structured payloads through ScrubValue; nothing user-supplied may be
// written raw.
//
// Detection is regex-based and intentionally approximate: a 9-digit order
// number will be redacted as an SSN. Over-matching is accepted; the
// category-tagged markers let audits see which rule fired.
package phi

import (
	"encoding/json"
	"regexp"
	"strings"
)

// DefaultReplacement is the token that triggers category-tagged markers,
// e.g. "[SSN-[REDACTED]]". Any other replacement is substituted literally.
const DefaultReplacement = "[REDACTED]"

// RedactedField replaces the whole value of a sensitive key during
// structure scrubbing, regardless of the value's type.
const RedactedField = "[REDACTED-FIELD]"

// Category is a named PHI class owning an ordered list of patterns.
// Categories are evaluated independently and in order; a single input may
// match several categories, each redacted in place.
type Category struct {
	Name     string
	patterns []*regexp.Regexp
}

// defaultCategories returns the built-in PHI pattern table. The table is
// constructed fresh per scrubber so custom categories never leak between
// instances.
func defaultCategories() []Category {
	compile := func(exprs ...string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, 0, len(exprs))
		for _, e := range exprs {
			out = append(out, regexp.MustCompile(`(?i)`+e))
		}
		return out
	}
	return []Category{
		{Name: "ssn", patterns: compile(
			`\b\d{3}-\d{2}-\d{4}\b`,
			`\b\d{9}\b`,
			`\b\d{3}\s\d{2}\s\d{4}\b`,
		)},
		{Name: "mrn", patterns: compile(
			`\bMRN[\s:#]*[\w\d]{6,12}\b`,
			`\bMR[\s:#]*[\w\d]{6,12}\b`,
			`\bRecord[\s:#]*[\w\d]{6,12}\b`,
		)},
		{Name: "dob", patterns: compile(
			`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`,
			`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`,
			`\b(?:DOB|Date of Birth)[\s:]*\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`,
		)},
		{Name: "phone", patterns: compile(
			`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`,
			`\(\d{3}\)\s?\d{3}[-.\s]?\d{4}\b`,
			`\+1\s?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`,
			`Phone:\s*\(\d{3}\)\s?\d{3}[-.\s]?\d{4}`,
			`Mobile:\s*\+?\d{1,3}\s?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`,
		)},
		{Name: "email", patterns: compile(
			`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
		)},
		{Name: "credit_card", patterns: compile(
			`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`,
		)},
		{Name: "drivers_license", patterns: compile(
			`\bDL[\s:#]*[\w\d]{6,12}\b`,
			`\bLicense[\s:#]*[\w\d]{6,12}\b`,
		)},
		{Name: "patient_name", patterns: compile(
			`\b(?:Patient|Member|Client)[\s:]+[A-Z][a-z]+\s+[A-Z][a-z]+\b`,
			`\b(?:Mr\.|Mrs\.|Ms\.|Dr\.)\s+[A-Z][a-z]+\s+[A-Z][a-z]+\b`,
		)},
		{Name: "address", patterns: compile(
			`\b\d{1,5}\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct)\b`,
			`\b(?:Apt|Suite|Unit)[\s#]*\d+\b`,
		)},
		{Name: "insurance", patterns: compile(
			`\b(?:Member ID|Insurance ID|Policy)[\s:#]*[\w\d]{8,15}\b`,
			`\b(?:Group)[\s:#]*[\w\d]{5,10}\b`,
		)},
		{Name: "prescription", patterns: compile(
			`\bRX[\s:#]*\d{6,12}\b`,
			`\bPrescription[\s:#]*\d{6,12}\b`,
		)},
	}
}

// sensitiveKeys are substrings that mark a map key as fully redactable.
// Matching is case-insensitive substring containment on the key.
var sensitiveKeys = []string{
	"ssn", "social_security", "mrn", "medical_record",
	"dob", "date_of_birth", "birth_date",
	"phone", "mobile", "cell", "fax",
	"email", "email_address",
	"address", "street", "city", "zip", "postal",
	"patient_name", "member_name", "name",
	"credit_card", "card_number",
	"insurance_id", "member_id", "policy_number",
}

// contextKeywords indicate a PHI-bearing narrative even when no strict
// pattern matches. Three or more distinct hits flip HasPHI to true.
var contextKeywords = []string{
	"patient", "member", "client", "diagnosis", "medication", "prescription",
	"treatment", "medical", "health", "insurance", "claim", "provider",
	"doctor", "physician", "nurse", "hospital", "clinic", "appointment",
	"symptom", "condition", "disease", "allergy", "vaccine", "dose",
}

// Scrubber redacts PHI from strings and nested structures. The pattern table
// is fixed at construction; a Scrubber is safe for concurrent use.
type Scrubber struct {
	categories []Category
}

// NewScrubber builds a scrubber with the default category table. Custom
// categories are appended in the order given and evaluated after the
// defaults; a custom category with a default name replaces that default.
func NewScrubber(custom ...Category) *Scrubber {
	cats := defaultCategories()
	for _, c := range custom {
		replaced := false
		for i := range cats {
			if cats[i].Name == c.Name {
				cats[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			cats = append(cats, c)
		}
	}
	return &Scrubber{categories: cats}
}

// NewCategory compiles a custom category from raw expressions. The
// expressions are made case-insensitive. Panics on an invalid expression,
// matching how the default table is built at process start.
func NewCategory(name string, exprs ...string) Category {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+e))
	}
	return Category{Name: name, patterns: patterns}
}

// ScrubText redacts PHI using the default replacement token, producing
// category-tagged markers like "[PHONE-[REDACTED]]".
func (s *Scrubber) ScrubText(text string) string {
	return s.ScrubTextWith(text, DefaultReplacement)
}

// ScrubTextWith redacts PHI with the given replacement. Every category is
// always applied in order; there is no early exit, so overlapping spans may
// be touched by several categories.
func (s *Scrubber) ScrubTextWith(text, replacement string) string {
	if text == "" {
		return text
	}
	scrubbed := text
	for _, cat := range s.categories {
		marker := replacement
		if replacement == DefaultReplacement {
			marker = "[" + strings.ToUpper(cat.Name) + "-" + replacement + "]"
		}
		for _, p := range cat.patterns {
			scrubbed = p.ReplaceAllString(scrubbed, marker)
		}
	}
	return scrubbed
}

// ScrubValue recursively scrubs a decoded JSON-like structure. Map entries
// whose key contains a sensitive substring are replaced wholesale with
// RedactedField; string values go through ScrubText; nested maps and slices
// recurse; other scalars pass through unchanged. The input is not mutated.
func (s *Scrubber) ScrubValue(v any) any {
	switch val := v.(type) {
	case string:
		return s.ScrubText(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if isSensitiveKey(k) {
				out[k] = RedactedField
				continue
			}
			out[k] = s.ScrubValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = s.ScrubValue(inner)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = s.ScrubText(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if isSensitiveKey(k) {
				out[k] = RedactedField
				continue
			}
			out[k] = s.ScrubText(inner)
		}
		return out
	default:
		return v
	}
}

// ScrubJSON scrubs a serialized JSON payload. Payloads that fail to parse
// are treated as opaque text and scrubbed as such; this function never
// returns an error.
func (s *Scrubber) ScrubJSON(raw string) string {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return s.ScrubText(raw)
	}
	scrubbed := s.ScrubValue(decoded)
	out, err := json.Marshal(scrubbed)
	if err != nil {
		return s.ScrubText(raw)
	}
	return string(out)
}

// HasPHI reports whether text likely contains PHI: either a category
// pattern matches, or at least three distinct context keywords appear in
// the lowercased text (a heuristic for narrative PHI with no strict
// pattern hit).
func (s *Scrubber) HasPHI(text string) bool {
	if text == "" {
		return false
	}
	for _, cat := range s.categories {
		for _, p := range cat.patterns {
			if p.MatchString(text) {
				return true
			}
		}
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range contextKeywords {
		if strings.Contains(lower, kw) {
			hits++
			if hits >= 3 {
				return true
			}
		}
	}
	return false
}

// Summary counts pattern matches per category, for debugging and audit
// trails. Categories with zero matches are omitted.
func (s *Scrubber) Summary(text string) map[string]int {
	summary := make(map[string]int)
	for _, cat := range s.categories {
		count := 0
		for _, p := range cat.patterns {
			count += len(p.FindAllStringIndex(text, -1))
		}
		if count > 0 {
			summary[cat.Name] = count
		}
	}
	return summary
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sk := range sensitiveKeys {
		if strings.Contains(lower, sk) {
			return true
		}
	}
	return false
}
