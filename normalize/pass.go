// Package normalize implements the concept-first normalization pass: merging
// near-duplicate cluster roots, capping the top-level folder count,
// rerouting orphaned items, and subdividing oversized folders.
package normalize

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/viant/globalns/info"
	"github.com/viant/globalns/rules"
	"github.com/viant/globalns/sanitize"
	"github.com/viant/globalns/token"
)

const (
	minPrefixLen            = 5
	similarityThreshold     = 0.7
	highConfidencePrefixLen = 7
	smallClusterSize        = 20
	maxSubfolderTokens      = 50

	// capPressureRelaxedPrefixLen is this implementation's resolution of the
	// open question in spec.md §9 on the utility guard's cap-pressure
	// branch: under cap pressure, merges with at least one large side (>=
	// smallClusterSize, already guaranteed once the "both small" guard above
	// has failed) are permitted down to a shorter shared-prefix length.
	capPressureRelaxedPrefixLen = 6
)

// Options configures a Pass.
type Options struct {
	MinClusterSize       int
	MaxTopLevelFolders   int
	MaxFolderSize        int
	PinnedRoots          []string
	PinnedAllowSingleton bool
	StopTokens           []string
}

// MergeNote records one evaluated merge candidate pair for diagnostics. The
// edit-distance similarity score is informational only: the merge decision
// itself always follows the deterministic longest-common-prefix arithmetic
// below (see false-friends guard), never the fuzzy score, to preserve
// run-to-run determinism.
type MergeNote struct {
	RootA, RootB string
	PrefixLen    int
	Similarity   float32
	Merged       bool
}

// Pass orchestrates one run of the normalization algorithm over a full set
// of initial rule-engine assignments.
type Pass struct {
	tokenizer *token.Tokenizer
	sanitizer *sanitize.Sanitizer

	minClusterSize       int
	maxTopLevel          int
	maxFolderSize        int
	pinnedRoots          map[string]bool
	pinnedAllowSingleton bool
	stopTokens           map[string]bool

	roots map[string]*root
	uf    *unionFind

	Notes []MergeNote
}

// New creates a Pass.
func New(tokenizer *token.Tokenizer, sanitizer *sanitize.Sanitizer, opts Options) *Pass {
	p := &Pass{
		tokenizer:            tokenizer,
		sanitizer:            sanitizer,
		minClusterSize:       opts.MinClusterSize,
		maxTopLevel:          opts.MaxTopLevelFolders,
		maxFolderSize:        opts.MaxFolderSize,
		pinnedRoots:          map[string]bool{},
		pinnedAllowSingleton: opts.PinnedAllowSingleton,
		stopTokens:           map[string]bool{},
		roots:                map[string]*root{},
	}
	for _, r := range opts.PinnedRoots {
		p.pinnedRoots[r] = true
	}
	for _, t := range opts.StopTokens {
		p.stopTokens[strings.ToLower(sanitizer.Normalize(t))] = true
	}
	p.uf = newUnionFind(p.pinnedRoots)
	return p
}

// Run executes the full normalization algorithm.
//
// initial maps item UID to its pre-normalization (rule, cluster key) pair.
// items is the full item index (for name lookups during the token split
// safety valve). signals maps item UID to its complete ranked candidate
// list from the Rule Engine, used to reroute orphans.
//
// It returns the final cluster key per item UID (relative to Global/, not
// including item filename) and, for diagnostics, each item's
// pre-normalization root.
func (p *Pass) Run(initial map[string]rules.Candidate, items info.Index, signals map[string][]rules.Candidate) (final map[string]string, initialRoot map[string]string) {
	itemName := func(uid string) string { return items[uid].Name }

	p.initializeRoots(initial, itemName)
	p.mergeMicroVariants()

	initialRoot = map[string]string{}
	assignments := map[string]string{}
	for uid, cand := range initial {
		tokens := p.tokenizer.Tokenize(cand.Key)
		name := CanonicalRootName(tokens)
		initialRoot[uid] = name
		assignments[uid] = p.uf.find(name)
	}

	kept := p.determineKeptSet()
	assignments = p.rerouteOrphans(assignments, kept, signals)
	final = p.applySafetyValve(assignments, items)
	return final, initialRoot
}

func (p *Pass) initializeRoots(initial map[string]rules.Candidate, itemName func(string) string) {
	for uid, cand := range initial {
		tokens := p.tokenizer.Tokenize(cand.Key)
		name := CanonicalRootName(tokens)
		r, ok := p.roots[name]
		if !ok {
			scope := ""
			if len(tokens) > 0 {
				scope = tokens[0]
			}
			r = &root{canonicalName: name, sourceClusterKey: cand.Key, scopeToken: scope}
			p.roots[name] = r
			p.uf.add(name)
		}
		r.items = append(r.items, uid)
	}
	// Deterministic item ordering within each root for downstream stability.
	for _, r := range p.roots {
		sort.Strings(r.items)
		r.computeMetadata(p.sanitizer, p.tokenizer, itemName)
	}
}

func (p *Pass) checkCapPressure() bool {
	count := 0
	for name, r := range p.roots {
		if r.preMergeSize >= p.minClusterSize || (p.pinnedRoots[name] && r.preMergeSize >= 1) {
			count++
		}
	}
	return count > p.maxTopLevel
}

type pairCandidate struct {
	scopeToken    string
	prefixLen     int
	mergedSize    int
	winner, loser string
}

func (p *Pass) mergeMicroVariants() {
	capPressure := p.checkCapPressure()

	buckets := map[[2]string][]string{}
	for name, r := range p.roots {
		prefix5 := name
		if len(prefix5) > 5 {
			prefix5 = prefix5[:5]
		}
		key := [2]string{r.scopeToken, prefix5}
		buckets[key] = append(buckets[key], name)
	}

	var pairs []pairCandidate
	for _, names := range buckets {
		sort.Strings(names)
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				if c, ok := p.scorePair(names[i], names[j]); ok {
					pairs = append(pairs, c)
				}
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.scopeToken != b.scopeToken {
			return a.scopeToken < b.scopeToken
		}
		if a.prefixLen != b.prefixLen {
			return a.prefixLen > b.prefixLen
		}
		if a.mergedSize != b.mergedSize {
			return a.mergedSize > b.mergedSize
		}
		if a.winner != b.winner {
			return a.winner < b.winner
		}
		return a.loser < b.loser
	})

	p.executeMerges(pairs, capPressure)
}

func (p *Pass) scorePair(a, b string) (pairCandidate, bool) {
	if p.pinnedRoots[a] && p.pinnedRoots[b] {
		return pairCandidate{}, false
	}
	prefixLen := commonPrefixLen(a, b)
	if prefixLen < minPrefixLen {
		return pairCandidate{}, false
	}
	winner, loser := a, b
	if b < a {
		winner, loser = b, a
	}
	return pairCandidate{
		scopeToken: p.roots[a].scopeToken,
		prefixLen:  prefixLen,
		mergedSize: p.roots[a].preMergeSize + p.roots[b].preMergeSize,
		winner:     winner,
		loser:      loser,
	}, true
}

func commonPrefixLen(a, b string) int {
	ar, br := []rune(a), []rune(b)
	n := len(ar)
	if len(br) < n {
		n = len(br)
	}
	i := 0
	for i < n && ar[i] == br[i] {
		i++
	}
	return i
}

func (p *Pass) executeMerges(pairs []pairCandidate, capPressure bool) {
	for _, pair := range pairs {
		a, b := pair.winner, pair.loser
		if p.uf.find(a) == p.uf.find(b) {
			continue
		}
		rootA, rootB := p.roots[a], p.roots[b]

		merged := p.checkFalseFriends(rootA, rootB, pair.prefixLen) &&
			p.checkUtility(rootA, rootB, pair.prefixLen, capPressure) &&
			p.shouldMergeDensity(a, b)

		p.Notes = append(p.Notes, MergeNote{
			RootA: a, RootB: b, PrefixLen: pair.prefixLen,
			Similarity: similarityScore(a, b),
			Merged:     merged,
		})

		if merged {
			p.uf.union(a, b)
		}
	}
}

// similarityScore computes an edit-distance-based similarity in [0,1] for
// diagnostics only; see MergeNote.
func similarityScore(a, b string) float32 {
	score, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return score
}

func (p *Pass) shouldMergeDensity(a, b string) bool {
	rootA, rootB := p.roots[a], p.roots[b]
	keptA := rootA.preMergeSize >= p.minClusterSize || p.pinnedRoots[a]
	keptB := rootB.preMergeSize >= p.minClusterSize || p.pinnedRoots[b]
	return rootA.preMergeSize+rootB.preMergeSize >= p.minClusterSize || keptA || keptB
}

func (p *Pass) checkFalseFriends(a, b *root, prefixLenNorm int) bool {
	lenA := ProjectLength(a.canonicalName, a.sanitizedName, prefixLenNorm)
	lenB := ProjectLength(b.canonicalName, b.sanitizedName, prefixLenNorm)

	hasBoundary := (!a.boundariesUnknown && a.tokenBoundaries[lenA]) ||
		(!b.boundariesUnknown && b.tokenBoundaries[lenB])

	minLen := len([]rune(a.canonicalName))
	if bl := len([]rune(b.canonicalName)); bl < minLen {
		minLen = bl
	}
	ratio := float64(prefixLenNorm) / float64(minLen)

	if a.boundariesUnknown && b.boundariesUnknown {
		return ratio >= similarityThreshold && prefixLenNorm >= highConfidencePrefixLen
	}
	if hasBoundary {
		return true
	}
	return ratio >= similarityThreshold
}

func (p *Pass) checkUtility(a, b *root, prefixLen int, capPressure bool) bool {
	if a.preMergeSize < smallClusterSize && b.preMergeSize < smallClusterSize {
		return true
	}
	if prefixLen >= highConfidencePrefixLen {
		return true
	}
	if capPressure {
		return prefixLen >= capPressureRelaxedPrefixLen
	}
	return false
}

func (p *Pass) determineKeptSet() map[string]bool {
	finalSizes := map[string]int{}
	for name, r := range p.roots {
		rep := p.uf.find(name)
		finalSizes[rep] += r.preMergeSize
	}

	type cand struct {
		name string
		size int
	}
	var candidates []cand
	for name, size := range finalSizes {
		if p.pinnedRoots[name] {
			continue
		}
		if size >= p.minClusterSize {
			candidates = append(candidates, cand{name, size})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].size != candidates[j].size {
			return candidates[i].size > candidates[j].size
		}
		return candidates[i].name < candidates[j].name
	})
	if len(candidates) > p.maxTopLevel {
		candidates = candidates[:p.maxTopLevel]
	}

	kept := map[string]bool{}
	for _, c := range candidates {
		kept[c.name] = true
	}
	for name := range p.pinnedRoots {
		size, ok := finalSizes[name]
		if !ok || size <= 0 {
			continue
		}
		if size >= p.minClusterSize || p.pinnedAllowSingleton {
			kept[name] = true
		}
	}
	return kept
}

var reroutePrecedence = []rules.ID{
	rules.MetadataHub,
	rules.PrioritySfx,
	rules.StrongSuffix,
	rules.StrongPrefix,
	rules.Keyword,
}

func (p *Pass) rerouteOrphans(assignments map[string]string, kept map[string]bool, signals map[string][]rules.Candidate) map[string]string {
	final := map[string]string{}
	for uid, current := range assignments {
		if kept[current] {
			final[uid] = current
			continue
		}

		tiers := map[rules.ID][]string{}
		for _, c := range signals[uid] {
			if !isReroutableRule(c.Rule) {
				continue
			}
			tokens := p.tokenizer.Tokenize(c.Key)
			name := CanonicalRootName(tokens)
			if _, known := p.roots[name]; !known {
				continue
			}
			rep := p.uf.find(name)
			if kept[rep] {
				tiers[c.Rule] = append(tiers[c.Rule], rep)
			}
		}

		best := ""
		for _, tier := range reroutePrecedence {
			candidates := tiers[tier]
			if len(candidates) == 0 {
				continue
			}
			sort.Strings(candidates)
			best = candidates[0]
			break
		}
		if best == "" {
			best = "Misc"
		}
		final[uid] = best
	}
	return final
}

func isReroutableRule(id rules.ID) bool {
	switch id {
	case rules.MetadataHub, rules.PrioritySfx, rules.StrongSuffix, rules.StrongPrefix, rules.Keyword:
		return true
	default:
		return false
	}
}

func (p *Pass) applySafetyValve(assignments map[string]string, items info.Index) map[string]string {
	counts := map[string]int{}
	for _, root := range assignments {
		counts[root]++
	}

	oversized := map[string]bool{}
	for root, count := range counts {
		if count > p.maxFolderSize && root != "Misc" {
			oversized[root] = true
		}
	}
	if len(oversized) == 0 {
		return assignments
	}

	splitKeys := map[string]map[string]string{}
	for root := range oversized {
		splitKeys[root] = p.determineSplitStrategy(root, assignments, items)
	}

	final := map[string]string{}
	for uid, root := range assignments {
		if !oversized[root] {
			final[uid] = root
			continue
		}
		if key, ok := splitKeys[root][uid]; ok && key != "" {
			final[uid] = root + "/" + key
		} else {
			final[uid] = root + "/_"
		}
	}
	return final
}

func (p *Pass) determineSplitStrategy(root string, assignments map[string]string, items info.Index) map[string]string {
	observed := map[string]bool{}
	uidToToken := map[string]string{}

	for uid, r := range assignments {
		if r != root {
			continue
		}
		tokens := p.tokenizer.Tokenize(items[uid].Name)
		var splitToken string
		for _, t := range tokens {
			normT := p.sanitizer.Normalize(t)
			if normT != root && !p.stopTokens[strings.ToLower(normT)] {
				splitToken = normT
				break
			}
		}
		if splitToken != "" {
			observed[splitToken] = true
			uidToToken[uid] = splitToken
		}
	}

	if len(observed) > 0 && len(observed) <= maxSubfolderTokens {
		return uidToToken
	}

	uidToLetter := map[string]string{}
	for uid, r := range assignments {
		if r != root {
			continue
		}
		name := items[uid].Name
		letter := "_"
		if name != "" {
			c := strings.ToUpper(name[:1])
			if c >= "A" && c <= "Z" {
				letter = c
			}
		}
		uidToLetter[uid] = letter
	}
	return uidToLetter
}
