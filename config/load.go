package config

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML configuration document from loc via afs, validates it
// against the engine's JSON Schema, and deep-merges it onto Default(). A
// missing file yields Default() unchanged, matching
// original_source/src/load_config.py's "if path and Path(path).exists()"
// guard.
func Load(ctx context.Context, fs afs.Service, loc string) (*Config, error) {
	base := Default()
	if loc == "" {
		return base, nil
	}

	exists, err := fs.Exists(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("config: checking %s: %w", loc, err)
	}
	if !exists {
		return base, nil
	}

	data, err := fs.DownloadWithURL(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", loc, err)
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("config: %s failed schema validation: %w", loc, err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", loc, err)
	}

	return Merge(base, &override), nil
}
