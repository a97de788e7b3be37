package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash computes a stable hex digest of the configuration, used by the
// persistent path map to detect configuration drift between runs.
// Grounded on original_source/src/compute_config_hash.py's
// canonical-JSON-then-sha256 recipe; Go's json.Marshal of a struct already
// serializes fields in a fixed declaration order (unlike Python dicts, which
// need an explicit sort_keys=True), so marshaling Config directly is
// already canonical without an extra key-sorting pass.
func Hash(c *Config) string {
	payload, err := json.Marshal(c)
	if err != nil {
		// Config contains only marshalable fields (strings, ints, bools,
		// maps/slices of strings); this cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
