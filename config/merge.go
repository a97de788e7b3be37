package config

import "sort"

// Merge deep-merges an override document onto base and returns the result,
// following original_source/src/deep_merge.py's semantics: nested objects
// merge field-by-field, arrays replace wholesale, except Acronyms, which is
// additive (set-union then sorted). base is not mutated.
func Merge(base, override *Config) *Config {
	merged := *base

	merged.Thresholds = mergeThresholds(base.Thresholds, override.Thresholds)
	merged.Rules = mergeRules(base.Rules, override.Rules)

	if override.Acronyms != nil {
		merged.Acronyms = unionSorted(base.Acronyms, override.Acronyms)
	}
	if override.PathOverrides != nil {
		merged.PathOverrides = mergeStringMap(base.PathOverrides, override.PathOverrides)
	}
	if override.HubTypes != nil {
		merged.HubTypes = mergeStringMap(base.HubTypes, override.HubTypes)
	}
	if override.ForceRebuild {
		merged.ForceRebuild = true
	}
	return &merged
}

// mergeThresholds replaces any override field left at its Go zero value
// with the base value (a YAML document that omits a key decodes to zero,
// which for every Thresholds field means "inherit the default").
func mergeThresholds(base, override Thresholds) Thresholds {
	if override.MinClusterSize == 0 {
		override.MinClusterSize = base.MinClusterSize
	}
	if override.TopK == 0 {
		override.TopK = base.TopK
	}
	if override.MaxTopLevelFolders == 0 {
		override.MaxTopLevelFolders = base.MaxTopLevelFolders
	}
	if override.MaxFolderSize == 0 {
		override.MaxFolderSize = base.MaxFolderSize
	}
	if override.MinFamilySize == 0 {
		override.MinFamilySize = base.MinFamilySize
	}
	if override.StalePruneAfterRuns == 0 {
		override.StalePruneAfterRuns = base.StalePruneAfterRuns
	}
	return override
}

func mergeRules(base, override Rules) Rules {
	merged := base
	if override.PrioritySuffixes != nil {
		merged.PrioritySuffixes = override.PrioritySuffixes
	}
	if override.StopTokens != nil {
		merged.StopTokens = override.StopTokens
	}
	if override.MetadataDenylist != nil {
		merged.MetadataDenylist = override.MetadataDenylist
	}
	if override.KeywordClusters != nil {
		merged.KeywordClusters = override.KeywordClusters
	}
	if override.PinnedRoots != nil {
		merged.PinnedRoots = override.PinnedRoots
	}
	if override.PinnedAllowSingleton {
		merged.PinnedAllowSingleton = true
	}
	return merged
}

func unionSorted(base, update []string) []string {
	set := map[string]bool{}
	for _, v := range base {
		set[v] = true
	}
	for _, v := range update {
		set[v] = true
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func mergeStringMap(base, update map[string]string) map[string]string {
	merged := map[string]string{}
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}
	return merged
}
