// Package report accumulates per-item resolution records and computes the
// summary statistics spec.md §4.9 describes, grounded on
// original_source/src/cluster_report.py.
package report

import (
	"sort"
	"strings"
)

// Result is one item's resolution record.
type Result struct {
	UID          string   `json:"uid"`
	Path         string   `json:"path"`
	WinningRule  string   `json:"winning_rule"`
	Score        float64  `json:"score"`
	ClusterKey   string   `json:"cluster_key"`
	InitialRoot  string   `json:"initial_root"`
	RunnersUp    []string `json:"runners_up,omitempty"`
}

// Meta is the report's metadata block.
type Meta struct {
	Duration      float64 `json:"duration_seconds"`
	ConfigHash    string  `json:"config_hash"`
	SchemaVersion int     `json:"schema_version"`
	TotalItems    int     `json:"total_items"`
}

// Metrics holds the aggregated health statistics.
type Metrics struct {
	TotalFolders         int     `json:"total_folders"`
	SingletonRate        float64 `json:"singleton_rate"`
	MiscShare            float64 `json:"misc_share"`
	RerouteShare         float64 `json:"reroute_share"`
	Fragmentation        float64 `json:"fragmentation"`
	MedianFilesPerFolder float64 `json:"median_files_per_folder"`
	CapacityConstraintOK bool    `json:"capacity_constraint_ok"`
	LargestFolderSize    int     `json:"largest_folder_size"`
}

// Stats is the report's computed summary block.
type Stats struct {
	RuleCounts   map[string]int `json:"rule_counts"`
	FolderCounts map[string]int `json:"folder_counts"`
	Metrics      Metrics        `json:"metrics"`
}

// Document is the full emitted report.
type Document struct {
	Meta    Meta     `json:"meta"`
	Results []Result `json:"results"`
	Stats   Stats    `json:"stats"`
}

// Report accumulates results across one run.
type Report struct {
	configHash    string
	schemaVersion int
	results       []Result
}

// New creates a Report for one run.
func New(configHash string, schemaVersion int) *Report {
	return &Report{configHash: configHash, schemaVersion: schemaVersion}
}

// Add records one item's resolution result.
func (r *Report) Add(res Result) {
	r.results = append(r.results, res)
}

// Build computes the final Document, including summary statistics, given
// the elapsed duration of the run and the configured folder-size cap used
// for the capacity-constraint check.
func (r *Report) Build(durationSeconds float64, maxFolderSize int) Document {
	ruleCounts := map[string]int{}
	folderCounts := map[string]int{}

	rerouted := 0
	ruleResolved := 0

	for _, res := range r.results {
		ruleCounts[res.WinningRule]++

		root := topLevelFolder(res.Path)
		if root != "" {
			folderCounts[root]++
		}

		if res.WinningRule != "cache" && res.WinningRule != "override_uid" && res.WinningRule != "override_name" {
			ruleResolved++
			if res.InitialRoot != "" && root != "" && res.InitialRoot != root {
				rerouted++
			}
		}
	}

	total := len(r.results)
	numFolders := len(folderCounts)

	singletons := 0
	for _, c := range folderCounts {
		if c == 1 {
			singletons++
		}
	}

	miscShare := 0.0
	if total > 0 {
		miscShare = float64(folderCounts["Misc"]) / float64(total)
	}
	singletonRate := 0.0
	if numFolders > 0 {
		singletonRate = float64(singletons) / float64(numFolders)
	}
	rerouteShare := 0.0
	if ruleResolved > 0 {
		rerouteShare = float64(rerouted) / float64(ruleResolved)
	}

	_, hasMisc := folderCounts["Misc"]
	miscAdjust := 0
	if hasMisc {
		miscAdjust = 1
	}
	smallFolders := 0
	for f, c := range folderCounts {
		if f != "Misc" && c < 3 {
			smallFolders++
		}
	}
	fragmentation := 0.0
	if numFolders > miscAdjust {
		fragmentation = float64(smallFolders) / float64(numFolders-miscAdjust)
	}

	var counts []int
	for _, c := range folderCounts {
		counts = append(counts, c)
	}
	sort.Ints(counts)
	median := 0.0
	if n := len(counts); n > 0 {
		mid := n / 2
		if n%2 == 0 {
			median = float64(counts[mid-1]+counts[mid]) / 2
		} else {
			median = float64(counts[mid])
		}
	}

	capacityOK := true
	largest := 0
	for f, c := range folderCounts {
		if c > largest {
			largest = c
		}
		if f != "Misc" && c > maxFolderSize {
			capacityOK = false
		}
	}

	return Document{
		Meta: Meta{
			Duration:      durationSeconds,
			ConfigHash:    r.configHash,
			SchemaVersion: r.schemaVersion,
			TotalItems:    total,
		},
		Results: r.results,
		Stats: Stats{
			RuleCounts:   ruleCounts,
			FolderCounts: folderCounts,
			Metrics: Metrics{
				TotalFolders:         numFolders,
				SingletonRate:        singletonRate,
				MiscShare:            miscShare,
				RerouteShare:         rerouteShare,
				Fragmentation:        fragmentation,
				MedianFilesPerFolder: median,
				CapacityConstraintOK: capacityOK,
				LargestFolderSize:    largest,
			},
		},
	}
}

// topLevelFolder extracts the first path component after "Global/" — the
// root folder name a given resolved path landed in.
func topLevelFolder(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}
