// Package stub writes forwarding documents at an item's previous path when
// its path has changed, grounded on original_source/src/stub_generator.py,
// backed by afs like the rest of the engine's external-facing I/O.
package stub

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
)

// Generator writes stub documents under a fixed output root.
type Generator struct {
	fs      afs.Service
	baseDir string
}

// New creates a Generator rooted at baseDir.
func New(fs afs.Service, baseDir string) *Generator {
	return &Generator{fs: fs, baseDir: strings.TrimRight(baseDir, "/")}
}

// Generate writes a forwarding stub at oldPath (relative to the output
// root) pointing at newPath, for the item identified by uid. It refuses to
// write if oldPath already exists, or if oldPath would resolve outside the
// output root, returning (false, nil) in either case — both are silent
// skips per spec.md §7, not errors.
func (g *Generator) Generate(ctx context.Context, oldPath, newPath, uid string) (bool, error) {
	if !g.withinRoot(oldPath) {
		return false, nil
	}

	target := path.Join(g.baseDir, oldPath)

	exists, err := g.fs.Exists(ctx, target)
	if err != nil {
		return false, fmt.Errorf("stub: checking %s: %w", target, err)
	}
	if exists {
		return false, nil
	}

	content := stubContent(oldPath, newPath, uid)
	if err := g.fs.Upload(ctx, target, 0644, strings.NewReader(content)); err != nil {
		return false, fmt.Errorf("stub: writing %s: %w", target, err)
	}
	return true, nil
}

// escapeSentinel roots both the output directory and the candidate target
// under the same synthetic absolute prefix before comparing them. Cleaning
// relPath against a fresh "/" (as a first attempt did) is not equivalent:
// path.Clean drops unresolvable leading ".." segments for a rooted path, so
// that check always passes no matter how many ".." segments relPath has.
// Rooting baseDir itself under the same prefix keeps the comparison honest
// for any baseDir, including the CLI's default "." or a deeper subdirectory.
const escapeSentinel = "/__globalns_output_root__"

// withinRoot reports whether relPath, once joined onto the output root,
// still resolves inside it — the escape check from spec.md §4.8.
func (g *Generator) withinRoot(relPath string) bool {
	base := path.Clean(path.Join(escapeSentinel, g.baseDir))
	target := path.Clean(path.Join(escapeSentinel, g.baseDir, relPath))
	return target == base || strings.HasPrefix(target, base+"/")
}

func stubContent(oldPath, newPath, uid string) string {
	title := strings.TrimSuffix(path.Base(oldPath), path.Ext(oldPath))
	return fmt.Sprintf(`---
uid: %s
obsolete: true
old_path: %s
new_path: %s
---

# %s

This page has moved. Please verify your reference.

[Go to new location](%s)
`, uid, oldPath, newPath, title, newPath)
}
