package pathsearch

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// scorePath implements the same skim-style scorer internal/symbolindex uses
// for identifiers (spec.md §4.3), generalized to a relative filesystem path:
// ok is false when pattern is not a subsequence of path at all. Contiguous
// substring and basename-prefix matches are boosted above a merely
// scattered subsequence hit, matching spec.md §4.5's ranking intent.
func scorePath(pattern, path string) (float64, bool) {
	if pattern == "" {
		return 0, true
	}
	if !isSubsequence(pattern, path) {
		return 0, false
	}

	var score float64
	if similarity, err := edlib.StringsSimilarity(path, pattern, edlib.JaroWinkler); err == nil {
		score = float64(similarity)
	}
	if containsFold(path, pattern) {
		score += 2.0
	}
	if hasPrefixFold(basename(path), pattern) {
		score += 1.5
	} else if hasPrefixFold(path, pattern) {
		score += 1.0
	}
	return score, true
}

func basename(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

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
