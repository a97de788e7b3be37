// Package token splits documented identifier strings into ordered semantic
// tokens, the basis for sanitization, clustering, and folder naming.
package token

import "regexp"

// genericArity strips a trailing backtick-arity marker, e.g. "List`1".
var genericArity = regexp.MustCompile("`[0-9]+$")

// Tokenizer splits identifiers into ordered tokens. It carries no state
// beyond configuration and is safe for concurrent read-only use.
type Tokenizer struct {
	acronyms map[string]bool
}

// New creates a Tokenizer. acronyms is informational only for the tokenizer
// itself (acronym casing is the Sanitizer's job) but is accepted so callers
// can construct both from the same configuration value.
func New(acronyms []string) *Tokenizer {
	t := &Tokenizer{acronyms: map[string]bool{}}
	for _, a := range acronyms {
		t.acronyms[a] = true
	}
	return t
}

// Tokenize splits text into an ordered list of tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	text = genericArity.ReplaceAllString(text, "")

	var tokens []string
	part := make([]byte, 0, len(text))
	flush := func() {
		if len(part) > 0 {
			tokens = append(tokens, t.splitCamelCase(string(part))...)
			part = part[:0]
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '+' || c == '_' {
			flush()
			continue
		}
		part = append(part, c)
	}
	flush()
	return tokens
}

// splitCamelCase splits a single "+"/"_"-free run into tokens by trying the
// match* helpers below in precedence order, plus a one-character skip
// fallback for characters matched by nothing (e.g. stray punctuation).
func (t *Tokenizer) splitCamelCase(text string) []string {
	var out []string
	runes := []rune(text)
	n := len(runes)
	for i := 0; i < n; {
		if tok, adv := matchAcronymRun(runes, i); adv > 0 {
			out = append(out, tok)
			i += adv
			continue
		}
		if tok, adv := matchTitleCaseWord(runes, i); adv > 0 {
			out = append(out, tok)
			i += adv
			continue
		}
		if tok, adv := matchDigitLedAcronym(runes, i); adv > 0 {
			out = append(out, tok)
			i += adv
			continue
		}
		if tok, adv := matchDigitLedMixed(runes, i); adv > 0 {
			out = append(out, tok)
			i += adv
			continue
		}
		if tok, adv := matchUpperDigitRun(runes, i); adv > 0 {
			out = append(out, tok)
			i += adv
			continue
		}
		if tok, adv := matchLowerRun(runes, i); adv > 0 {
			out = append(out, tok)
			i += adv
			continue
		}
		// Fallback: skip one character, it belongs to no recognized token.
		i++
	}
	return out
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

// matchAcronymRun matches two-or-more consecutive uppercase letters,
// optionally followed by digits, that are not followed by a lowercase
// letter (in which case the last uppercase belongs to the following word).
func matchAcronymRun(r []rune, i int) (string, int) {
	n := len(r)
	j := i
	for j < n && isUpper(r[j]) {
		j++
	}
	run := j - i
	if run < 2 {
		return "", 0
	}
	// If followed by a lowercase letter, the last uppercase starts the next
	// TitleCase word.
	if j < n && isLower(r[j]) {
		j--
		run--
		if run < 2 {
			return "", 0
		}
	}
	end := j
	// Optional trailing digits belong to the acronym.
	for end < n && isDigit(r[end]) {
		end++
	}
	return string(r[i:end]), end - i
}

// matchTitleCaseWord matches one uppercase letter, one-or-more
// lowercase/digit letters, optionally followed by digits — unless those
// trailing digits are themselves followed by an uppercase letter, in which
// case the digits belong to the next token.
func matchTitleCaseWord(r []rune, i int) (string, int) {
	n := len(r)
	if i >= n || !isUpper(r[i]) {
		return "", 0
	}
	j := i + 1
	start := j
	for j < n && (isLower(r[j]) || isDigit(r[j])) {
		j++
	}
	if j == start {
		return "", 0
	}
	// Re-walk to separate the core lower/digit run from optional trailing
	// digits that may need to be excluded.
	core := start
	for core < n && isLower(r[core]) {
		core++
	}
	if core == start {
		return "", 0
	}
	end := core
	digitsEnd := core
	for digitsEnd < n && isDigit(r[digitsEnd]) {
		digitsEnd++
	}
	if digitsEnd > core {
		// Digits present: keep them only if NOT followed by an uppercase letter.
		if digitsEnd < n && isUpper(r[digitsEnd]) {
			end = core
		} else {
			end = digitsEnd
		}
	}
	return string(r[i:end]), end - i
}

// matchDigitLedAcronym matches one-or-more digits followed by one-or-more
// uppercase letters not followed by a lowercase letter, e.g. "2D".
func matchDigitLedAcronym(r []rune, i int) (string, int) {
	n := len(r)
	j := i
	for j < n && isDigit(r[j]) {
		j++
	}
	if j == i {
		return "", 0
	}
	k := j
	for k < n && isUpper(r[k]) {
		k++
	}
	if k == j {
		return "", 0
	}
	if k < n && isLower(r[k]) {
		return "", 0
	}
	return string(r[i:k]), k - i
}

// matchDigitLedMixed matches digits followed by letters, stopping before the
// next TitleCase boundary (an uppercase letter followed by a lowercase
// letter), e.g. "2dxFX" stays one token.
func matchDigitLedMixed(r []rune, i int) (string, int) {
	n := len(r)
	j := i
	for j < n && isDigit(r[j]) {
		j++
	}
	if j == i {
		return "", 0
	}
	k := j
	for k < n && isLetter(r[k]) {
		if isUpper(r[k]) && k+1 < n && isLower(r[k+1]) && k > j {
			break
		}
		k++
	}
	if k == j {
		return string(r[i:j]), j - i
	}
	return string(r[i:k]), k - i
}

// matchUpperDigitRun matches a standalone run of uppercase letters and/or
// digits with no lowercase letters anywhere in it.
func matchUpperDigitRun(r []rune, i int) (string, int) {
	n := len(r)
	j := i
	for j < n && (isUpper(r[j]) || isDigit(r[j])) {
		j++
	}
	if j == i {
		return "", 0
	}
	return string(r[i:j]), j - i
}

// matchLowerRun matches a run of lowercase letters.
func matchLowerRun(r []rune, i int) (string, int) {
	n := len(r)
	j := i
	for j < n && isLower(r[j]) {
		j++
	}
	if j == i {
		return "", 0
	}
	return string(r[i:j]), j - i
}
