// Package deterministic answers common front-desk queries (greetings, hours,
// locations, contact details) from static bilingual tables, so they never
// cost a model call. Anything it declines to answer falls through to
// retrieval.
package deterministic

import "strings"

// accentFolds maps the Spanish accented characters that appear in user
// queries to their ASCII base. Applied after lowercasing, so only lowercase
// forms are listed.
var accentFolds = strings.NewReplacer(
	"á", "a",
	"é", "e",
	"í", "i",
	"ó", "o",
	"ú", "u",
	"ñ", "n",
	"ü", "u",
)

// edgePunct is trimmed from both ends of the query. Includes the Spanish
// inverted marks so "¿donde esta?" and "donde esta" normalize identically.
const edgePunct = "¿?¡!.,;:"

// Normalize lowercases text, trims surrounding whitespace and punctuation,
// folds accented characters, and collapses internal whitespace runs to
// single spaces. Empty input stays empty. Normalize is idempotent.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.Trim(text, edgePunct)
	text = accentFolds.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}
