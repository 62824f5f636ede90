package matching

import (
	"sort"
	"strings"
)

// levenshteinDistance computes the edit distance between two strings: the
// minimum number of single-character insertions, deletions, or substitutions
// required to transform a into b.
func levenshteinDistance(a, b string) int {
	aRunes := []rune(a)
	bRunes := []rune(b)
	aLen := len(aRunes)
	bLen := len(bRunes)

	if aLen == 0 {
		return bLen
	}
	if bLen == 0 {
		return aLen
	}

	// Two rows instead of a full matrix; iterate the shorter string in the
	// inner loop for O(min(m,n)) space.
	if aLen > bLen {
		aRunes, bRunes = bRunes, aRunes
		aLen, bLen = bLen, aLen
	}

	prevRow := make([]int, aLen+1)
	currRow := make([]int, aLen+1)
	for i := 0; i <= aLen; i++ {
		prevRow[i] = i
	}

	for j := 1; j <= bLen; j++ {
		currRow[0] = j
		for i := 1; i <= aLen; i++ {
			cost := 1
			if aRunes[i-1] == bRunes[j-1] {
				cost = 0
			}
			deletion := prevRow[i] + 1
			insertion := currRow[i-1] + 1
			substitution := prevRow[i-1] + cost
			currRow[i] = min3(deletion, insertion, substitution)
		}
		prevRow, currRow = currRow, prevRow
	}

	return prevRow[aLen]
}

// ratio is the normalized similarity between two strings on a 0-100 scale:
// 100 * (1 - distance / max(len(a), len(b))).
func ratio(a, b string) float64 {
	if a == b {
		return 100.0
	}
	aLen := len([]rune(a))
	bLen := len([]rune(b))
	maxLen := aLen
	if bLen > maxLen {
		maxLen = bLen
	}
	if maxLen == 0 {
		return 100.0
	}
	dist := levenshteinDistance(a, b)
	return 100.0 * (1.0 - float64(dist)/float64(maxLen))
}

// tokenSet splits s on whitespace into a set of unique tokens.
func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func sortedJoin(set map[string]struct{}) string {
	toks := make([]string, 0, len(set))
	for tok := range set {
		toks = append(toks, tok)
	}
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

// TokenSetRatio scores the similarity of two names on a 0-100 scale in a
// token-order-independent way. Both names are split into unique word sets;
// the score is the best pairwise ratio among the sorted intersection and the
// two sorted unions (intersection + per-side remainder). Names containing the
// same words in any order score 100, and a name fully contained in a longer
// one still scores high.
func TokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		if len(setA) == 0 && len(setB) == 0 {
			return 100.0
		}
		return 0.0
	}

	inter := make(map[string]struct{})
	diffA := make(map[string]struct{})
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter[tok] = struct{}{}
		} else {
			diffA[tok] = struct{}{}
		}
	}
	diffB := make(map[string]struct{})
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			diffB[tok] = struct{}{}
		}
	}

	base := sortedJoin(inter)
	combinedA := base
	if rest := sortedJoin(diffA); rest != "" {
		combinedA = strings.TrimSpace(base + " " + rest)
	}
	combinedB := base
	if rest := sortedJoin(diffB); rest != "" {
		combinedB = strings.TrimSpace(base + " " + rest)
	}

	best := ratio(combinedA, combinedB)
	if base != "" {
		if s := ratio(base, combinedA); s > best {
			best = s
		}
		if s := ratio(base, combinedB); s > best {
			best = s
		}
	}
	return best
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
