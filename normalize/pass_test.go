package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/globalns/info"
	"github.com/viant/globalns/normalize"
	"github.com/viant/globalns/rules"
	"github.com/viant/globalns/sanitize"
	"github.com/viant/globalns/token"
)

func newPass(opts normalize.Options) *normalize.Pass {
	tok := token.New(nil)
	san := sanitize.New(nil)
	return normalize.New(tok, san, opts)
}

// Two small roots sharing both a scope token (§4.6 step 1 buckets pairs by
// (scope_token, first_5_chars_of_name), where scope_token is the cluster
// key's own first token) and a length-7 canonical prefix merge under
// min_cluster_size=3, each being too small to survive alone. "AbilityManager"
// and "AbilitySystem" both tokenize with "Ability" as their first token
// (same bucket) and share the 7-character prefix "Ability" with a token
// boundary exactly there, so the false-friends guard passes unconditionally
// and the merged size (4) clears min_cluster_size. The lexicographically
// smaller name, "AbilityManager", wins the union per spec.md's pinned-bias
// union-find rule (and original_source/src/normalization_pass.py's
// identical `root_a < root_b` tie-break).
func TestPass_MicroVariantMerge(t *testing.T) {
	items := info.Index{
		"a1": {UID: "a1", Name: "FireAbilityManager"},
		"a2": {UID: "a2", Name: "IceAbilityManager"},
		"b1": {UID: "b1", Name: "FireAbilitySystem"},
		"b2": {UID: "b2", Name: "IceAbilitySystem"},
	}
	initial := map[string]rules.Candidate{
		"a1": {Rule: rules.StrongPrefix, Key: "AbilityManager", Score: 0.8},
		"a2": {Rule: rules.StrongPrefix, Key: "AbilityManager", Score: 0.8},
		"b1": {Rule: rules.StrongPrefix, Key: "AbilitySystem", Score: 0.8},
		"b2": {Rule: rules.StrongPrefix, Key: "AbilitySystem", Score: 0.8},
	}
	signals := map[string][]rules.Candidate{
		"a1": {initial["a1"]}, "a2": {initial["a2"]},
		"b1": {initial["b1"]}, "b2": {initial["b2"]},
	}

	pass := newPass(normalize.Options{MinClusterSize: 3, MaxTopLevelFolders: 40, MaxFolderSize: 250})
	final, _ := pass.Run(initial, items, signals)

	want := final["a1"]
	assert.Equal(t, "AbilityManager", want)
	for _, uid := range []string{"a1", "a2", "b1", "b2"} {
		assert.Equal(t, want, final[uid], "uid %s should share the merged root", uid)
	}
}

// Scenario 6: reroute on suppression. Two kept roots (Big, Pinned) survive
// under a cap of 2; an item whose initial root (Small) is dropped reroutes
// to its next-best surviving signal (Big).
func TestPass_RerouteOrphanOnSuppression(t *testing.T) {
	initial := map[string]rules.Candidate{}
	signals := map[string][]rules.Candidate{}
	items := info.Index{}

	for i := 0; i < 5; i++ {
		uid := bigUID(i)
		items[uid] = info.Item{UID: uid, Name: "BigThing" + string(rune('A'+i))}
		initial[uid] = rules.Candidate{Rule: rules.StrongPrefix, Key: "Big", Score: 0.8}
		signals[uid] = []rules.Candidate{initial[uid]}
	}
	for i := 0; i < 5; i++ {
		uid := pinnedUID(i)
		items[uid] = info.Item{UID: uid, Name: "PinnedThing" + string(rune('A'+i))}
		initial[uid] = rules.Candidate{Rule: rules.StrongPrefix, Key: "Pinned", Score: 0.8}
		signals[uid] = []rules.Candidate{initial[uid]}
	}

	items["s1"] = info.Item{UID: "s1", Name: "SmallThing"}
	initial["s1"] = rules.Candidate{Rule: rules.StrongPrefix, Key: "Small", Score: 0.8}
	signals["s1"] = []rules.Candidate{
		{Rule: rules.StrongPrefix, Key: "Small", Score: 0.8},
		{Rule: rules.StrongPrefix, Key: "Big", Score: 0.7},
	}

	pass := newPass(normalize.Options{
		MinClusterSize:     3,
		MaxTopLevelFolders: 2,
		MaxFolderSize:      250,
		PinnedRoots:        []string{"Pinned"},
	})
	final, initialRoot := pass.Run(initial, items, signals)

	assert.Equal(t, "Big", final["s1"])
	assert.Equal(t, "Small", initialRoot["s1"])
	assert.Equal(t, "Big", final[bigUID(0)])
	assert.Equal(t, "Pinned", final[pinnedUID(0)])
}

func bigUID(i int) string    { return "big" + string(rune('0'+i)) }
func pinnedUID(i int) string { return "pin" + string(rune('0'+i)) }
