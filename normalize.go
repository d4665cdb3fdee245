package xcrawler

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeName returns the canonical key of an organization name: trimmed,
// every whitespace run (full-width spaces included) collapsed to one space, upper-cased.
// It is idempotent.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, "\u3000", " ")
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// maxUsernameLen is the longest username the API accepts.
const maxUsernameLen = 15

var titleCaser = cases.Title(language.Und)

// CandidateUsername derives the username guessed for a normalized name: words
// title-cased and joined, characters a username cannot hold dropped.
// It returns "" when no valid username remains.
func CandidateUsername(normalized string) string {
	titled := titleCaser.String(strings.ToLower(normalized))
	var b strings.Builder
	for _, r := range titled {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	u := b.String()
	if len(u) > maxUsernameLen {
		return ""
	}
	return u
}

// BuildNameMapping maps each original name to its normalized form and returns
// the distinct normalized names in first-seen order. Blank names are skipped.
func BuildNameMapping(originals []string) (map[string]string, []string) {
	mapping := make(map[string]string, len(originals))
	seen := make(map[string]bool, len(originals))
	var unique []string
	for _, orig := range originals {
		norm := NormalizeName(orig)
		if norm == "" {
			continue
		}
		mapping[orig] = norm
		if !seen[norm] {
			seen[norm] = true
			unique = append(unique, norm)
		}
	}
	return mapping, unique
}
