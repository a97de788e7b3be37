// Package config loads, merges, validates, and hashes the engine's typed
// configuration, following viant-linager's DefaultConfig() pattern
// (inspector/info/config.go) rather than threading an untyped map through
// the pipeline.
package config

// Thresholds holds the numeric knobs in spec.md §6.
type Thresholds struct {
	MinClusterSize      int `yaml:"min_cluster_size" json:"min_cluster_size"`
	TopK                int `yaml:"top_k" json:"top_k"`
	MaxTopLevelFolders  int `yaml:"max_top_level_folders" json:"max_top_level_folders"`
	MaxFolderSize       int `yaml:"max_folder_size" json:"max_folder_size"`
	MinFamilySize       int `yaml:"min_family_size" json:"min_family_size"`
	StalePruneAfterRuns int `yaml:"stale_prune_after_runs" json:"stale_prune_after_runs"`
}

// KeywordCluster is one bucket→keyword-list entry, kept as an ordered slice
// (not a map) so the "keyword" rule's bucket-iteration order is the
// configuration's own order, per spec.md §4.4.
type KeywordCluster struct {
	Bucket   string   `yaml:"bucket" json:"bucket"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Rules holds the rule-tuning knobs in spec.md §6.
type Rules struct {
	PrioritySuffixes    []string         `yaml:"priority_suffixes" json:"priority_suffixes"`
	StopTokens          []string         `yaml:"stop_tokens" json:"stop_tokens"`
	MetadataDenylist    []string         `yaml:"metadata_denylist" json:"metadata_denylist"`
	KeywordClusters     []KeywordCluster `yaml:"keyword_clusters" json:"keyword_clusters"`
	PinnedRoots         []string         `yaml:"pinned_roots" json:"pinned_roots"`
	PinnedAllowSingleton bool            `yaml:"pinned_allow_singleton" json:"pinned_allow_singleton"`
}

// Config is the engine's full typed configuration, round-tripped through
// YAML documents.
type Config struct {
	Thresholds    Thresholds        `yaml:"thresholds" json:"thresholds"`
	Rules         Rules             `yaml:"rules" json:"rules"`
	Acronyms      []string          `yaml:"acronyms" json:"acronyms"`
	PathOverrides map[string]string `yaml:"path_overrides" json:"path_overrides"`
	HubTypes      map[string]string `yaml:"hub_types" json:"hub_types"`
	ForceRebuild  bool              `yaml:"force_rebuild" json:"force_rebuild"`
}

// Default stop tokens, metadata denylist, and acronyms follow
// original_source/src/load_config.py's DEFAULT_CONFIG — spec.md §6 leaves
// these three entries as "see default" without spelling out the list.
var defaultStopTokens = []string{
	"Manager", "Controller", "System", "Data", "Helper", "Util", "Base", "Common",
}

var defaultMetadataDenylist = []string{
	"MonoBehaviour", "ScriptableObject", "Component", "Object",
	"Exception", "IEnumerator", "ValueType", "Enum", "Attribute",
}

var defaultAcronyms = []string{
	"UI", "XML", "JSON", "API", "URL", "HTTP", "HTTPS", "FTP", "SSH", "GUI", "HUD",
}

// Default returns the configuration described by spec.md §6's default
// column.
func Default() *Config {
	return &Config{
		Thresholds: Thresholds{
			MinClusterSize:      3,
			TopK:                20,
			MaxTopLevelFolders:  40,
			MaxFolderSize:       250,
			MinFamilySize:       3,
			StalePruneAfterRuns: 5,
		},
		Rules: Rules{
			PrioritySuffixes:     []string{"UI", "Editor"},
			StopTokens:           append([]string(nil), defaultStopTokens...),
			MetadataDenylist:     append([]string(nil), defaultMetadataDenylist...),
			KeywordClusters:      nil,
			PinnedRoots:          nil,
			PinnedAllowSingleton: false,
		},
		Acronyms:      append([]string(nil), defaultAcronyms...),
		PathOverrides: map[string]string{},
		HubTypes:      map[string]string{},
		ForceRebuild:  false,
	}
}
