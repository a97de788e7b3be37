package config

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"
)

// documentSchema describes the shape a configuration document must have.
// It is intentionally permissive (additional properties allowed) since the
// engine's own deep-merge already tolerates a partial document; the schema
// exists to catch the malformed-document case spec.md §7 calls out ("a
// malformed document aborts before any work"), not to pin every field.
var documentSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"thresholds": {Type: "object"},
		"rules":      {Type: "object"},
		"acronyms":   {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		"path_overrides": {Type: "object"},
		"hub_types":      {Type: "object"},
		"force_rebuild":  {Type: "boolean"},
	},
}

// Validate parses raw (a YAML document) and checks it against
// documentSchema. A document that doesn't even parse as a mapping, or whose
// top-level fields have the wrong JSON type, is rejected here before the
// deep-merge and rule evaluation ever see it.
func Validate(raw []byte) error {
	var generic map[string]interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("not a valid YAML mapping: %w", err)
	}
	if generic == nil {
		return nil
	}

	// jsonschema-go validates JSON values; round-trip through encoding/json
	// to normalize YAML's decoded types (e.g. map[interface{}]interface{} in
	// older decoders, or int vs float64) into the form it expects.
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("re-encoding document: %w", err)
	}
	var instance interface{}
	if err := json.Unmarshal(asJSON, &instance); err != nil {
		return fmt.Errorf("re-decoding document: %w", err)
	}

	resolved, err := documentSchema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolving schema: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
