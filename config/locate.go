package config

import (
	"os"
	"path/filepath"
)

// markerFiles are the filenames that signal a corpus checkout root, walked
// for exactly as viant-linager's repository.Detector walks for go.mod,
// pom.xml, etc. (inspector/repository/detector.go's findProjectRoot), but
// repurposed to this engine's own config file and the generic ".git"
// fallback instead of language build markers.
var markerFiles = []string{"globalns.yaml", ".git"}

// LocateCorpusRoot walks upward from startDir looking for a corpus marker
// file, returning the first directory that contains one. If none is found
// by the filesystem root, it returns startDir unchanged so the CLI still
// has somewhere to look for a configuration file.
func LocateCorpusRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return startDir
	}

	for {
		for _, marker := range markerFiles {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return startDir
}
