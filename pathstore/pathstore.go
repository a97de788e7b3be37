// Package pathstore implements the Persistent Path Map (spec.md §4.7): a
// small JSON document, loaded at the start of a run and saved at the end,
// that lets item paths stay stable across runs. Grounded on the original
// GlobalNamespaceMap (original_source/src/global_namespace_map.py) and
// stored through afs (github.com/viant/afs), the same load/save-document
// abstraction used elsewhere in this codebase.
package pathstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/viant/afs"
)

// CurrentSchemaVersion is the schema version this implementation writes and
// expects on load.
const CurrentSchemaVersion = 1

// Entry is one identifier's cached decision.
type Entry struct {
	Path     string `json:"path"`
	LastSeen int    `json:"last_seen"`
}

// Envelope is the persistent map's metadata block.
type Envelope struct {
	SchemaVersion int    `json:"schema_version"`
	ConfigHash    string `json:"config_hash"`
	RunID         int    `json:"run_id"`
}

// document is the on-disk shape.
type document struct {
	Meta    Envelope            `json:"meta"`
	Mapping map[string]rawEntry `json:"mapping"`
}

// rawEntry supports the legacy shape (a bare path string) alongside the
// current {path, last_seen} shape, mirroring the Python loader's
// "isinstance(val, str)" migration check.
type rawEntry struct {
	asEntry *Entry
	asPath  *string
}

func (r *rawEntry) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.asPath = &s
		return nil
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return err
	}
	r.asEntry = &e
	return nil
}

// Map is an in-memory, mutable view of the persistent path map for one run.
type Map struct {
	currentConfigHash string
	meta              Envelope
	mapping           map[string]Entry
	accessed          map[string]bool
}

// New creates an empty Map bound to the configuration hash of the current
// run. Save writes that hash into the envelope; Load does not compare it
// against the stored hash, so a configuration change alone does not discard
// the cache.
func New(currentConfigHash string) *Map {
	return &Map{
		currentConfigHash: currentConfigHash,
		meta:              Envelope{SchemaVersion: CurrentSchemaVersion, ConfigHash: currentConfigHash, RunID: 0},
		mapping:           map[string]Entry{},
		accessed:          map[string]bool{},
	}
}

// Load reads the map from loc via afs. A missing file is not an error (an
// empty map is used). A schema mismatch discards the cache unless
// acceptLegacy is set, in which case legacy bare-string entries are migrated
// to the current shape using the loaded run_id as their last_seen.
func Load(ctx context.Context, fs afs.Service, loc string, currentConfigHash string, acceptLegacy bool) *Map {
	m := New(currentConfigHash)

	exists, err := fs.Exists(ctx, loc)
	if err != nil || !exists {
		return m
	}

	data, err := fs.DownloadWithURL(ctx, loc)
	if err != nil {
		log.Printf("pathstore: error reading %s: %v", loc, err)
		return m
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("pathstore: error parsing %s: %v", loc, err)
		return m
	}

	if doc.Meta.SchemaVersion != CurrentSchemaVersion {
		if !acceptLegacy {
			log.Printf("pathstore: schema version mismatch (%d != %d); ignoring cache", doc.Meta.SchemaVersion, CurrentSchemaVersion)
			return m
		}
		log.Printf("pathstore: accepting legacy cache at schema version %d; will be migrated", doc.Meta.SchemaVersion)
	}

	m.meta = doc.Meta
	for uid, raw := range doc.Mapping {
		switch {
		case raw.asEntry != nil:
			m.mapping[uid] = *raw.asEntry
		case raw.asPath != nil:
			m.mapping[uid] = Entry{Path: *raw.asPath, LastSeen: m.meta.RunID}
		}
	}
	return m
}

// Lookup returns the cached path for uid, marking it accessed for the
// coming save's last_seen update.
func (m *Map) Lookup(uid string) (string, bool) {
	e, ok := m.mapping[uid]
	if !ok {
		return "", false
	}
	m.accessed[uid] = true
	return e.Path, true
}

// Update records or updates uid's cached path.
func (m *Map) Update(uid, path string) {
	m.mapping[uid] = Entry{Path: path, LastSeen: m.mapping[uid].LastSeen}
	m.accessed[uid] = true
}

// Save increments the run counter, stamps last_seen for every accessed
// identifier, prunes stale entries when stalePruneAfterRuns > 0, and writes
// the document atomically (write-to-temp, rename) via afs.
func (m *Map) Save(ctx context.Context, fs afs.Service, loc string, stalePruneAfterRuns int) error {
	m.meta.RunID++
	m.meta.ConfigHash = m.currentConfigHash
	m.meta.SchemaVersion = CurrentSchemaVersion

	for uid := range m.accessed {
		if e, ok := m.mapping[uid]; ok {
			e.LastSeen = m.meta.RunID
			m.mapping[uid] = e
		}
	}

	if stalePruneAfterRuns > 0 {
		for uid, e := range m.mapping {
			if m.meta.RunID-e.LastSeen > stalePruneAfterRuns {
				delete(m.mapping, uid)
				log.Printf("pathstore: pruned stale uid %s", uid)
			}
		}
	}

	payload, err := json.MarshalIndent(struct {
		Meta    Envelope         `json:"meta"`
		Mapping map[string]Entry `json:"mapping"`
	}{Meta: m.meta, Mapping: m.mapping}, "", "  ")
	if err != nil {
		return fmt.Errorf("pathstore: marshal: %w", err)
	}

	tmp := loc + ".tmp"
	if err := fs.Upload(ctx, tmp, 0644, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("pathstore: write temp %s: %w", tmp, err)
	}
	if err := fs.Move(ctx, tmp, loc); err != nil {
		return fmt.Errorf("pathstore: rename %s -> %s: %w", tmp, loc, err)
	}
	return nil
}

// RunID returns the current run counter: the value loaded, or, once Save
// has run, the value that Save wrote.
func (m *Map) RunID() int { return m.meta.RunID }
