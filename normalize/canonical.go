package normalize

import (
	"strings"
	"unicode"
)

// CanonicalRootName joins tokens into a canonical root-name string:
// TitleCase per token, with acronym runs (all-uppercase, length >= 2)
// preserved unchanged.
func CanonicalRootName(tokens []string) string {
	var b strings.Builder
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if len(t) >= 2 && isAcronymCasing(t) {
			b.WriteString(t)
			continue
		}
		r := []rune(t)
		b.WriteString(strings.ToUpper(string(r[0])))
		b.WriteString(strings.ToLower(string(r[1:])))
	}
	return b.String()
}

// isAcronymCasing reports whether a token has at least one uppercase letter
// and no lowercase letters (digits are ignored).
func isAcronymCasing(t string) bool {
	hasUpper := false
	for _, r := range t {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}
