// Package resolve composes final relative paths for global items and
// enforces the engine's collision discipline (spec.md §4.5), mirroring the
// original GlobalPathResolver's collision walk but exposing it through a
// single Registry aggregate (spec.md §9 Design Note "Mutable graph of path
// assignments"): no caller ever reaches into the path map or folder set
// directly.
package resolve

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/minio/highwayhash"
)

// ErrCollisionUnresolved is returned when a file-vs-file collision still
// collides after the bounded hash-suffix retry — spec.md §7's one fatal
// condition.
var ErrCollisionUnresolved = errors.New("resolve: collision unresolved after bounded retry")

const maxSuffixAttempts = 8

// Registry owns the per-identifier path assignment map and the folder set
// together, so a rename (the "file-eats-folder" case) can never update one
// without the other.
type Registry struct {
	assignedPaths map[string]string // uid -> final path
	pathRegistry  map[string]string // canonical lower path -> uid
	folders       map[string]bool   // canonical lower folder path
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		assignedPaths: map[string]string{},
		pathRegistry:  map[string]string{},
		folders:       map[string]bool{},
	}
}

// Lookup returns the currently assigned path for uid, if any.
func (r *Registry) Lookup(uid string) (string, bool) {
	p, ok := r.assignedPaths[uid]
	return p, ok
}

// Resolve composes the final path for uid given a desired
// "Global/<clusterKey>/<safeName>.md" path, applying the collision
// discipline, and records the result in the registry. It returns
// ErrCollisionUnresolved if the bounded file-vs-file retry is exhausted.
func (r *Registry) Resolve(uid, clusterKey, safeName string) (string, error) {
	return r.ResolvePath(uid, fmt.Sprintf("Global/%s/%s.md", clusterKey, safeName))
}

// ResolvePath applies the collision discipline to an already-composed
// desired path (used both by Resolve and for configured override paths).
// Cache hits do not go through here; see RegisterVerbatim.
func (r *Registry) ResolvePath(uid, desired string) (string, error) {
	final, err := r.resolveCollisions(uid, desired)
	if err != nil {
		return "", err
	}
	r.insert(uid, final)
	return final, nil
}

// RegisterVerbatim records path for uid exactly as given, with no collision
// resolution. spec.md §4.4's cache hit returns "(cache, cached_path, 1.0)
// verbatim" — unlike the legacy original_source resolver, which re-ran its
// full collision walk even on a cache hit, the registry here trusts a cached
// path outright and only updates its bookkeeping (path/folder sets) so
// later items still collide against it correctly.
func (r *Registry) RegisterVerbatim(uid, path string) {
	r.insert(uid, path)
}

func canonicalPath(p string) string {
	return strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
}

// parentChain returns every parent directory of p, nearest first, stopping
// before the root.
func parentChain(p string) []string {
	var parents []string
	dir := path.Dir(p)
	for dir != "." && dir != "/" {
		parents = append(parents, dir)
		next := path.Dir(dir)
		if next == dir {
			break
		}
		dir = next
	}
	return parents
}

func withoutExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

func (r *Registry) resolveCollisions(uid, desired string) (string, error) {
	// 1. Folder-eats-file: the desired path (sans extension) is already a
	// registered folder.
	baseNoExt := withoutExt(desired)
	if r.folders[canonicalPath(baseNoExt)] {
		desired = baseNoExt + "_Page.md"
		baseNoExt = withoutExt(desired)
	}

	// 2. File-eats-folder: an existing file occupies a path that is now one
	// of our parent directories; rename that file out of the way.
	for _, parent := range parentChain(desired) {
		fileKey := canonicalPath(parent + ".md")
		if existingUID, ok := r.pathRegistry[fileKey]; ok {
			renamed := parent + "_Page.md"
			delete(r.pathRegistry, fileKey)
			r.assignedPaths[existingUID] = renamed
			r.pathRegistry[canonicalPath(renamed)] = existingUID
		}
	}

	// 3. File-vs-file: bounded hash-suffix retry.
	lower := canonicalPath(desired)
	attempts := 0
	for {
		if _, taken := r.pathRegistry[lower]; !taken {
			break
		}
		attempts++
		if attempts > maxSuffixAttempts {
			return "", fmt.Errorf("%w: %s", ErrCollisionUnresolved, uid)
		}
		h := suffixHash(uid, attempts)
		dir := path.Dir(desired)
		ext := path.Ext(desired)
		stem := strings.TrimSuffix(path.Base(desired), ext)
		desired = fmt.Sprintf("%s/%s_%s%s", dir, stem, h, ext)
		lower = canonicalPath(desired)
	}

	return desired, nil
}

// suffixHashKey is a fixed 32-byte key, matching sanitize.hashKey's
// constant-key pattern: the engine centralizes on highwayhash for every
// non-cryptographic digest it needs rather than mixing hash functions.
var suffixHashKey = []byte("GLOBALNS-RESOLVE-SUFFIXHASH-KEY1")

// suffixHash returns the first 4 hex characters of a highwayhash digest of
// the item identifier, salted by the attempt number so repeated collisions
// produce a different suffix each retry.
func suffixHash(uid string, attempt int) string {
	h, err := highwayhash.New64(suffixHashKey)
	if err != nil {
		panic(fmt.Sprintf("resolve: invalid hash key: %v", err))
	}
	_, _ = fmt.Fprintf(h, "%s#%d", uid, attempt)
	return fmt.Sprintf("%016x", h.Sum64())[:4]
}

func (r *Registry) insert(uid, finalPath string) {
	r.assignedPaths[uid] = finalPath
	r.pathRegistry[canonicalPath(finalPath)] = uid
	for _, parent := range parentChain(finalPath) {
		r.folders[canonicalPath(parent)] = true
	}
}
