// Package rules evaluates the ordered naming-rule list against a single item
// and returns its candidate cluster keys in precedence order.
package rules

import (
	"sort"
	"strings"

	"github.com/viant/globalns/freq"
	"github.com/viant/globalns/info"
	"github.com/viant/globalns/metaindex"
	"github.com/viant/globalns/sanitize"
	"github.com/viant/globalns/token"
)

// ID names a rule that can produce a candidate, in its fixed precedence
// order. The zero value is never produced by Evaluate.
type ID string

const (
	MetadataHub   ID = "metadata_hub"
	PrioritySfx   ID = "priority_suffix"
	StrongPrefix  ID = "strong_prefix"
	StrongSuffix  ID = "strong_suffix"
	Keyword       ID = "keyword"
	TypeFamily    ID = "type_family"
	Misc          ID = "misc"
	Cache         ID = "cache"
	OverrideUID   ID = "override_uid"
	OverrideName  ID = "override_name"
	Normalized    ID = "normalized"
)

// Candidate is one (rule, cluster key, score) triple.
type Candidate struct {
	Rule  ID
	Key   string
	Score float64
}

// KeywordCluster is one named bucket of keywords the "keyword" rule matches
// against an item's tokens. Buckets are evaluated in slice order, i.e. the
// configuration document's own order.
type KeywordCluster struct {
	Bucket   string
	Keywords []string
}

// Options configures an Engine. All fields are read-only after construction.
type Options struct {
	PrioritySuffixes  []string
	KeywordClusters   []KeywordCluster
	MetadataDenylist  []string
	HubTypes          map[string]string
	MinFamilySize     int
}

// Engine evaluates naming rules for one item at a time.
type Engine struct {
	tokenizer *token.Tokenizer
	sanitizer *sanitize.Sanitizer
	metaIndex *metaindex.Index
	analyzer  *freq.Analyzer

	topPrefixes      map[string]bool
	strongSuffixes   map[string]bool
	prioritySuffixes map[string]bool
	keywordClusters  []KeywordCluster
	metadataDenylist map[string]bool
	hubTypes         map[string]string
	minFamilySize    int
}

// New creates a rule Engine. topPrefixes and strongSuffixes are the
// analyzer-derived candidate sets (already bounded by top_k/min_cluster_size).
func New(tokenizer *token.Tokenizer, sanitizer *sanitize.Sanitizer, metaIndex *metaindex.Index, analyzer *freq.Analyzer, topPrefixes []string, strongSuffixes map[string]bool, opts Options) *Engine {
	e := &Engine{
		tokenizer:        tokenizer,
		sanitizer:        sanitizer,
		metaIndex:        metaIndex,
		analyzer:         analyzer,
		topPrefixes:      map[string]bool{},
		strongSuffixes:   strongSuffixes,
		prioritySuffixes: map[string]bool{},
		keywordClusters:  opts.KeywordClusters,
		metadataDenylist: map[string]bool{},
		hubTypes:         opts.HubTypes,
		minFamilySize:    opts.MinFamilySize,
	}
	for _, p := range topPrefixes {
		e.topPrefixes[p] = true
	}
	for _, s := range opts.PrioritySuffixes {
		e.prioritySuffixes[sanitizer.Normalize(s)] = true
	}
	for _, d := range opts.MetadataDenylist {
		e.metadataDenylist[d] = true
	}
	if e.hubTypes == nil {
		e.hubTypes = map[string]string{}
	}
	return e
}

// Evaluate returns the item's candidates in rule precedence order. An empty
// result means the caller should fall back to the Misc candidate.
func (e *Engine) Evaluate(it info.Item) []Candidate {
	tokens := e.tokenizer.Tokenize(it.Name)
	if len(tokens) == 0 {
		return nil
	}
	normTokens := make([]string, len(tokens))
	for i, t := range tokens {
		normTokens[i] = e.sanitizer.Normalize(t)
	}

	var candidates []Candidate

	if c, ok := e.metadataHub(it); ok {
		candidates = append(candidates, c)
	}

	last := normTokens[len(normTokens)-1]
	if e.prioritySuffixes[last] {
		candidates = append(candidates, Candidate{PrioritySfx, last, 0.9})
	}

	first := normTokens[0]
	if e.topPrefixes[first] {
		candidates = append(candidates, Candidate{StrongPrefix, first, 0.8})
	}

	if e.strongSuffixes[last] {
		candidates = append(candidates, Candidate{StrongSuffix, last, 0.7})
	}

	if bucket, ok := e.matchKeyword(normTokens); ok {
		candidates = append(candidates, Candidate{Keyword, bucket, 0.6})
	}

	if len(first) >= 4 && e.analyzer.PrefixCounts[first] >= e.minFamilySize {
		candidates = append(candidates, Candidate{TypeFamily, first, 0.5})
	}

	return candidates
}

// matchKeyword returns the first configured bucket containing a keyword
// that, once sanitized, equals one of the item's sanitized tokens.
func (e *Engine) matchKeyword(normTokens []string) (string, bool) {
	tokenSet := map[string]bool{}
	for _, t := range normTokens {
		tokenSet[t] = true
	}
	for _, bucket := range e.keywordClusters {
		for _, kw := range bucket.Keywords {
			if tokenSet[e.sanitizer.Normalize(kw)] {
				return bucket.Bucket, true
			}
		}
	}
	return "", false
}

// metadataHub implements the "metadata_hub" rule: prefer the immediate base
// class if it is a valid hub, else the lexicographically-smallest valid
// implemented interface.
func (e *Engine) metadataHub(it info.Item) (Candidate, bool) {
	base := e.metaIndex.BaseClass(it.UID)
	hub := ""
	if base != "" && e.isValidHub(base) {
		hub = base
	}
	if hub == "" {
		var valid []string
		for _, iface := range e.metaIndex.Interfaces(it.UID) {
			if e.isValidHub(iface) {
				valid = append(valid, iface)
			}
		}
		if len(valid) > 0 {
			sort.Strings(valid)
			hub = valid[0]
		}
	}
	if hub == "" {
		return Candidate{}, false
	}
	return Candidate{MetadataHub, e.hubName(hub), 0.95}, true
}

func (e *Engine) isValidHub(uid string) bool {
	name := shortName(uid)
	if e.metadataDenylist[name] || e.metadataDenylist[uid] {
		return false
	}
	if len(name) < 4 {
		return false
	}
	if strings.HasSuffix(name, "Base") {
		return false
	}
	return true
}

func (e *Engine) hubName(uid string) string {
	if name, ok := e.hubTypes[uid]; ok {
		return name
	}
	return e.sanitizer.Normalize(shortName(uid))
}

// shortName returns the last dot-separated component of a UID/full name.
func shortName(uid string) string {
	if i := strings.LastIndex(uid, "."); i >= 0 {
		return uid[i+1:]
	}
	return uid
}
