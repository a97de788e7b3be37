package sanitize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/globalns/sanitize"
)

func TestSanitizer_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		acronym []string
		want    string
	}{
		{name: "plain word capitalized", token: "story", want: "Story"},
		{name: "already capitalized preserved", token: "Story", want: "Story"},
		{name: "configured acronym upper-cased", token: "ui", acronym: []string{"UI"}, want: "UI"},
		{name: "all-caps longer than one char preserved as acronym", token: "XML", want: "XML"},
		{name: "single uppercase letter capitalized normally", token: "A", want: "A"},
		{name: "illegal characters stripped", token: "Story!!Event", want: "StoryEvent"},
		{name: "reserved device name substituted", token: "CON", want: ""}, // checked separately below
		{name: "trailing dots and spaces trimmed", token: "Story. ", want: "Story"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := sanitize.New(tc.acronym)
			got := s.Normalize(tc.token)
			if tc.name == "reserved device name substituted" {
				assert.NotEqual(t, "CON", got)
				assert.NotEmpty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSanitizer_Normalize_Deterministic(t *testing.T) {
	s := sanitize.New(nil)
	first := s.Normalize("!!!")
	second := s.Normalize("!!!")
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestSanitizer_Normalize_EmptyAfterCleanSubstitutesPlaceholder(t *testing.T) {
	s := sanitize.New(nil)
	got := s.Normalize("#$%")
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, "#")
}
