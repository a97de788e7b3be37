package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/globalns/freq"
	"github.com/viant/globalns/info"
	"github.com/viant/globalns/metaindex"
	"github.com/viant/globalns/rules"
	"github.com/viant/globalns/sanitize"
	"github.com/viant/globalns/token"
)

func newEngine(items info.Index, opts rules.Options) (*rules.Engine, *freq.Analyzer) {
	tok := token.New(nil)
	san := sanitize.New(nil)
	idx := metaindex.New(items)
	analyzer := freq.New(tok, san, idx, nil)
	analyzer.Analyze(items)

	top := analyzer.TopPrefixes(20, 2)
	strong := analyzer.StrongSuffixes(2)

	return rules.New(tok, san, idx, analyzer, top, strong, opts), analyzer
}

// Scenario 2: priority suffix outranks strong prefix.
func TestEngine_PrioritySuffixOutranksStrongPrefix(t *testing.T) {
	items := info.Index{
		"u1": {UID: "u1", Name: "InventoryUI", Kind: info.KindClass},
		"u2": {UID: "u2", Name: "InventoryItem", Kind: info.KindClass},
	}
	engine, _ := newEngine(items, rules.Options{PrioritySuffixes: []string{"UI", "Editor"}})

	candidates := engine.Evaluate(items["u1"])
	if assert.NotEmpty(t, candidates) {
		assert.Equal(t, rules.PrioritySfx, candidates[0].Rule)
		assert.Equal(t, "UI", candidates[0].Key)
	}
}

// Scenario 3: metadata hub beats strong suffix.
func TestEngine_MetadataHubBeatsStrongSuffix(t *testing.T) {
	items := info.Index{
		"zombie": {UID: "zombie", Name: "ZombieCreature", Kind: info.KindClass, Inheritance: []string{"Game.Creature"}},
		"other1": {UID: "other1", Name: "SkeletonCreature", Kind: info.KindClass},
		"other2": {UID: "other2", Name: "GhostCreature", Kind: info.KindClass},
	}
	engine, _ := newEngine(items, rules.Options{})

	candidates := engine.Evaluate(items["zombie"])
	if assert.NotEmpty(t, candidates) {
		assert.Equal(t, rules.MetadataHub, candidates[0].Rule)
		assert.Equal(t, "Creature", candidates[0].Key)
	}
}

func TestEngine_MetadataHub_DenylistedBaseFallsThroughToInterface(t *testing.T) {
	items := info.Index{
		"u1": {
			UID: "u1", Name: "MyBehaviour", Kind: info.KindClass,
			Inheritance: []string{"MonoBehaviour"},
			Implements:  []string{"Game.IWidget"},
		},
	}
	engine, _ := newEngine(items, rules.Options{MetadataDenylist: []string{"MonoBehaviour"}})

	candidates := engine.Evaluate(items["u1"])
	if assert.NotEmpty(t, candidates) {
		assert.Equal(t, rules.MetadataHub, candidates[0].Rule)
		assert.Equal(t, "IWidget", candidates[0].Key)
	}
}

func TestEngine_KeywordRule_WholeTokenEqualityOnly(t *testing.T) {
	items := info.Index{
		"u1": {UID: "u1", Name: "QuestLog", Kind: info.KindClass},
	}
	engine, _ := newEngine(items, rules.Options{
		KeywordClusters: []rules.KeywordCluster{{Bucket: "Quests", Keywords: []string{"Quest"}}},
	})
	candidates := engine.Evaluate(items["u1"])
	var found bool
	for _, c := range candidates {
		if c.Rule == rules.Keyword {
			found = true
			assert.Equal(t, "Quests", c.Key)
		}
	}
	assert.True(t, found)
}

func TestEngine_NoMatch_ReturnsEmptyForMiscFallback(t *testing.T) {
	items := info.Index{
		"u1": {UID: "u1", Name: "Zzz", Kind: info.KindClass},
	}
	engine, _ := newEngine(items, rules.Options{})
	candidates := engine.Evaluate(items["u1"])
	assert.Empty(t, candidates)
}
