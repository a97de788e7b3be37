// Package sanitize converts raw tokens into filesystem-safe, canonically
// cased forms, the basis for every folder and file name the engine emits.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/minio/highwayhash"
)

// hashKey is a fixed 32-byte key so the placeholder hash is stable across
// runs and processes, rather than generating one per process.
var hashKey = []byte("GLOBALNS-SANITIZE-PLACEHOLDER-K1")

var illegalChars = regexp.MustCompile(`[^A-Za-z0-9-]`)

// reserved holds the Windows device names that can never be used as a file
// stem, case-insensitively.
var reserved = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// Sanitizer normalizes tokens into filesystem-safe forms, preserving
// configured acronym casing.
type Sanitizer struct {
	acronyms map[string]bool
}

// New creates a Sanitizer with the given set of acronyms (case-insensitive;
// stored upper-cased).
func New(acronyms []string) *Sanitizer {
	s := &Sanitizer{acronyms: map[string]bool{}}
	for _, a := range acronyms {
		s.acronyms[strings.ToUpper(a)] = true
	}
	return s
}

// Normalize sanitizes a single token per the engine's §4.2 rules.
func (s *Sanitizer) Normalize(token string) string {
	clean := illegalChars.ReplaceAllString(token, "")
	if clean == "" {
		return placeholder(token)
	}

	upper := strings.ToUpper(clean)
	var final string
	switch {
	case s.acronyms[upper]:
		final = upper
	case clean == upper && len(clean) > 1:
		// All-uppercase and longer than one character: treat as an acronym.
		final = clean
	default:
		final = strings.ToUpper(clean[:1]) + clean[1:]
	}

	final = strings.TrimRight(final, ". ")

	if final == "" || reserved[strings.ToUpper(final)] {
		return placeholder(token)
	}
	return final
}

// placeholder returns a deterministic, filesystem-safe stand-in for a token
// that sanitized down to nothing (or a reserved device name), derived from a
// hash of the original input.
func placeholder(token string) string {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// hashKey is a fixed, valid 32-byte key; this cannot fail in practice.
		panic(fmt.Sprintf("sanitize: invalid hash key: %v", err))
	}
	_, _ = h.Write([]byte(token))
	return fmt.Sprintf("_%x", h.Sum64()&0xFFFFFFFF)
}
