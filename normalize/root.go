package normalize

import (
	"github.com/viant/globalns/sanitize"
	"github.com/viant/globalns/token"
)

// root is a transient object representing one candidate folder during the
// normalization pass (spec.md's "Normalization Root").
type root struct {
	canonicalName     string
	sourceClusterKey  string
	items             []string // item UIDs assigned to this root before merging
	sanitizedName     string
	tokenBoundaries   map[int]bool
	boundariesUnknown bool
	preMergeSize      int
	scopeToken        string
}

// computeMetadata fills in the derived fields (sanitized name and projected
// token boundaries) once all of a root's initial items are known.
func (r *root) computeMetadata(sanitizer *sanitize.Sanitizer, tokenizer *token.Tokenizer, itemNames func(uid string) string) {
	r.preMergeSize = len(r.items)
	r.sanitizedName = sanitizer.Normalize(r.canonicalName)

	tokens := tokenizer.Tokenize(r.sourceClusterKey)
	normBoundaries := map[int]bool{0: true}
	curr := 0
	for _, t := range tokens {
		curr += len([]rune(t))
		normBoundaries[curr] = true
	}

	bounds, ok := ProjectBoundaries(r.canonicalName, r.sanitizedName, normBoundaries)
	if ok {
		r.tokenBoundaries = bounds
		r.boundariesUnknown = false
		return
	}

	// Escape hatch: projection failed. If every member item tokenizes to the
	// same token list, boundaries could in principle be recovered, but we
	// still can't safely project them into sanitized space, so we mark the
	// root unknown rather than guess — never merge opportunistically.
	r.boundariesUnknown = true
	if len(r.items) == 0 {
		return
	}
	first := tokenizer.Tokenize(itemNames(r.items[0]))
	for _, uid := range r.items[1:] {
		if !equalTokens(first, tokenizer.Tokenize(itemNames(uid))) {
			return
		}
	}
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
