package symbolindex

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// scoreSymbolName implements the skim-style scorer spec.md §4.3 describes:
// ok is false when pattern is not a subsequence of name (no match at all).
// Otherwise the base score is Jaro-Winkler similarity (teacher's own
// fuzzy-match signal, internal/semantic/fuzzy_matcher.go), boosted for a
// contiguous substring match and boosted further for a prefix match, which
// is how spec.md ranks "contiguous matches and prefix-of-identifier
// matches" above a merely-scattered subsequence hit.
func scoreSymbolName(pattern, name string) (float64, bool) {
	if pattern == "" {
		return 0, true
	}
	if !isSubsequence(pattern, name) {
		return 0, false
	}

	var score float64
	if similarity, err := edlib.StringsSimilarity(name, pattern, edlib.JaroWinkler); err == nil {
		score = float64(similarity)
	}
	if containsFold(name, pattern) {
		score += 2.0
	}
	if hasPrefixFold(name, pattern) {
		score += 1.0
	}
	return score, true
}

// isSubsequence reports whether every rune of pattern appears in name, in
// order, case-insensitively.
func isSubsequence(pattern, name string) bool {
	pattern, name = strings.ToLower(pattern), strings.ToLower(name)
	pr := []rune(pattern)
	if len(pr) == 0 {
		return true
	}
	idx := 0
	for _, r := range name {
		if r == pr[idx] {
			idx++
			if idx == len(pr) {
				return true
			}
		}
	}
	return false
}

func containsFold(name, pattern string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

func hasPrefixFold(name, pattern string) bool {
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(pattern))
}
