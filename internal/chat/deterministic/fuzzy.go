package deterministic

import "strings"

// DefaultThreshold is the similarity floor used by most intent checks.
const DefaultThreshold = 0.75

// Matches reports whether a normalized query matches a normalized trigger
// phrase. Checks run cheapest first and short-circuit on the first hit:
//
//  1. phrase is a substring of the query
//  2. the phrase's word set is a subset of the query's word set
//  3. every phrase word longer than 3 characters appears as a substring of
//     some query word
//  4. character-level similarity Ratio >= threshold
//
// The layering trades precision for recall on short colloquial queries and
// tolerates typos without a language model.
func Matches(query, phrase string, threshold float64) bool {
	if strings.Contains(query, phrase) {
		return true
	}

	queryWords := strings.Fields(query)
	phraseWords := strings.Fields(phrase)

	if isWordSubset(phraseWords, queryWords) {
		return true
	}

	if keyWordsCovered(phraseWords, queryWords) {
		return true
	}

	return Ratio(query, phrase) >= threshold
}

func isWordSubset(sub, super []string) bool {
	superset := make(map[string]struct{}, len(super))
	for _, w := range super {
		superset[w] = struct{}{}
	}
	for _, w := range sub {
		if _, ok := superset[w]; !ok {
			return false
		}
	}
	return true
}

// keyWordsCovered checks that every phrase word longer than 3 characters
// overlaps some query word: either the phrase word appears inside a query
// word, or a truncated-typo query word (itself longer than 3 characters)
// appears inside the phrase word, so "wher" still covers "where". Phrases
// with no long words never match through this path.
func keyWordsCovered(phraseWords, queryWords []string) bool {
	covered := false
	for _, pw := range phraseWords {
		if len(pw) <= 3 {
			continue
		}
		covered = true
		found := false
		for _, qw := range queryWords {
			if strings.Contains(qw, pw) || (len(qw) > 3 && strings.Contains(pw, qw)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return covered
}

// Ratio computes the Ratcliff/Obershelp similarity between two strings:
// twice the total length of matching blocks divided by the combined length,
// in [0, 1]. Operates on runes so multibyte characters compare correctly.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}

	// Positions of each rune in b, for the longest-match scan.
	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	matched := 0
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(ra), 0, len(rb)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		besti, bestj, bestk := longestMatch(ra, rb, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if bestk == 0 {
			continue
		}
		matched += bestk
		queue = append(queue,
			span{s.alo, besti, s.blo, bestj},
			span{besti + bestk, s.ahi, bestj + bestk, s.bhi},
		)
	}

	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// longestMatch finds the longest block of runes common to a[alo:ahi] and
// b[blo:bhi], preferring the earliest in a, then the earliest in b.
func longestMatch(a, b []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo

	// j2len[j] = length of the longest match ending at a[i], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	return besti, bestj, bestk
}
