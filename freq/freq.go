// Package freq computes, over the set of global items, the prefix/suffix and
// base-class/interface frequency counts the Rule Engine consults.
package freq

import (
	"sort"

	"github.com/viant/globalns/info"
	"github.com/viant/globalns/metaindex"
	"github.com/viant/globalns/sanitize"
	"github.com/viant/globalns/token"
)

// Analyzer accumulates frequency counts over the global item set.
type Analyzer struct {
	tokenizer  *token.Tokenizer
	sanitizer  *sanitize.Sanitizer
	metaIndex  *metaindex.Index
	stopTokens map[string]bool

	PrefixCounts    map[string]int
	SuffixCounts    map[string]int
	BaseClassCounts map[string]int
}

// New creates an Analyzer. stopTokens are raw (pre-sanitization) tokens
// excluded from prefix/suffix candidacy.
func New(tokenizer *token.Tokenizer, sanitizer *sanitize.Sanitizer, metaIndex *metaindex.Index, stopTokens []string) *Analyzer {
	a := &Analyzer{
		tokenizer:       tokenizer,
		sanitizer:       sanitizer,
		metaIndex:       metaIndex,
		stopTokens:      map[string]bool{},
		PrefixCounts:    map[string]int{},
		SuffixCounts:    map[string]int{},
		BaseClassCounts: map[string]int{},
	}
	for _, t := range stopTokens {
		a.stopTokens[sanitizer.Normalize(t)] = true
	}
	return a
}

// Analyze processes every global item in idx, in UID order, updating the
// frequency counts.
func (a *Analyzer) Analyze(idx info.Index) {
	for _, uid := range idx.Global() {
		a.process(uid, idx[uid])
	}
}

func (a *Analyzer) process(uid string, it info.Item) {
	tokens := a.tokenizer.Tokenize(it.Name)
	if len(tokens) == 0 {
		return
	}

	prefix := a.sanitizer.Normalize(tokens[0])
	a.PrefixCounts[prefix]++

	suffix := a.sanitizer.Normalize(tokens[len(tokens)-1])
	a.SuffixCounts[suffix]++

	if base := a.metaIndex.BaseClass(uid); base != "" {
		a.BaseClassCounts[base]++
	}
	for _, iface := range a.metaIndex.Interfaces(uid) {
		a.BaseClassCounts[iface]++
	}
}

// TopPrefixes returns the top k prefixes with count >= minSize, excluding
// stop tokens, ordered by count descending then token ascending.
func (a *Analyzer) TopPrefixes(k, minSize int) []string {
	type candidate struct {
		token string
		count int
	}
	var candidates []candidate
	for tok, count := range a.PrefixCounts {
		if count >= minSize && !a.stopTokens[tok] {
			candidates = append(candidates, candidate{tok, count})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].token < candidates[j].token
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.token
	}
	return out
}

// StrongSuffixes returns the set of suffixes with count >= minSize,
// excluding stop tokens.
func (a *Analyzer) StrongSuffixes(minSize int) map[string]bool {
	out := map[string]bool{}
	for tok, count := range a.SuffixCounts {
		if count >= minSize && !a.stopTokens[tok] {
			out[tok] = true
		}
	}
	return out
}
