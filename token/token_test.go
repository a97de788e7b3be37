package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/globalns/token"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "simple titlecase pair", text: "StoryEvent", want: []string{"Story", "Event"}},
		{name: "acronym then word", text: "HTTP2Server", want: []string{"HTTP2", "Server"}},
		{name: "digit-led acronym splits from trailing uppercase word", text: "Item2D", want: []string{"Item", "2D"}},
		{name: "digit suffix stays attached", text: "Vector3", want: []string{"Vector3"}},
		{name: "digit-led mixed run stays one token", text: "2dxFX", want: []string{"2dxFX"}},
		{name: "generic arity marker stripped", text: "List`1", want: []string{"List"}},
		{name: "nested type separator splits", text: "Outer+Inner", want: []string{"Outer", "Inner"}},
		{name: "underscore splits", text: "My_Type", want: []string{"My", "Type"}},
		{name: "lone acronym", text: "UI", want: []string{"UI"}},
		{name: "acronym followed by lowercase word splits last letter off", text: "XMLParser", want: []string{"XML", "Parser"}},
		{name: "empty input", text: "", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tok := token.New(nil)
			got := tok.Tokenize(tc.text)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTokenizer_Idempotence(t *testing.T) {
	tok := token.New(nil)
	inputs := []string{"StoryEvent", "HTTP2Server", "InventoryUI", "ZombieCreature"}
	for _, in := range inputs {
		first := tok.Tokenize(in)
		rejoined := ""
		for _, part := range first {
			rejoined += part
		}
		second := tok.Tokenize(rejoined)
		assert.Equal(t, first, second, "re-tokenizing the rejoined form should be stable for %q", in)
	}
}
