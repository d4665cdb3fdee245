package xcrawler

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// ratio is the normalized edit similarity of a and b in [0, 100].
func ratio(a, b string) int {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 && lb == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(100*(1-float64(d)/float64(max(la, lb))) + 0.5)
}

// tokenSetRatio compares two strings as sets of whitespace-separated tokens.
// It scores 100 when one token set contains the other, otherwise the best ratio
// among the shared tokens and each side's shared+remaining tokens.
func tokenSetRatio(a, b string) int {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var sect, onlyA, onlyB []string
	for t := range ta {
		if tb[t] {
			sect = append(sect, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if !ta[t] {
			onlyB = append(onlyB, t)
		}
	}
	if len(sect) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	s := joinSorted(sect)
	combinedA := strings.TrimSpace(s + " " + joinSorted(onlyA))
	combinedB := strings.TrimSpace(s + " " + joinSorted(onlyB))

	best := ratio(combinedA, combinedB)
	if s != "" {
		best = max(best, ratio(s, combinedA), ratio(s, combinedB))
	}
	return best
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(s) {
		set[f] = true
	}
	return set
}

func joinSorted(tokens []string) string {
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}
