package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoutesTokens(t *testing.T) {
	plan := Parse("  cat c-t at  jolly ---  ", 3)

	require.Len(t, plan.Tokens, 5)
	assert.Equal(t, CommandNone, plan.Command)

	want := []Token{
		{Text: "cat", Kind: KindWord, Position: 0},
		{Text: "c-t", Kind: KindBlank, Position: 1},
		{Text: "at", Kind: KindSkipped, Position: 2},
		{Text: "jolly", Kind: KindWord, Position: 3},
		{Text: "---", Kind: KindBlank, Position: 4},
	}
	assert.Equal(t, want, plan.Tokens)

	routed := plan.Routed()
	require.Len(t, routed, 4)
	assert.Equal(t, "cat", routed[0].Text)
	assert.Equal(t, "---", routed[3].Text)
}

func TestParseEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		plan := Parse(q, 3)
		assert.Empty(t, plan.Tokens, q)
		assert.Equal(t, CommandNone, plan.Command)
	}
}

func TestParseMinLength(t *testing.T) {
	plan := Parse("a -", 1)
	require.Len(t, plan.Tokens, 2)
	assert.Equal(t, KindWord, plan.Tokens[0].Kind)
	assert.Equal(t, KindBlank, plan.Tokens[1].Kind)

	plan = Parse("a -", 2)
	assert.Empty(t, plan.Routed())
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		query string
		want  Command
	}{
		{"!random", CommandRandom},
		{"  !RANDOM ", CommandRandom},
		{"!benchmark", CommandBenchmark},
		{"!bigbenchmark", CommandBenchmark},
		{"!colorful", CommandUnknown},
		{"!", CommandUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			plan := Parse(tt.query, 3)
			assert.Equal(t, tt.want, plan.Command)
			assert.Empty(t, plan.Tokens)
		})
	}
}

func TestTokenKindJSON(t *testing.T) {
	data, err := json.Marshal(Token{Text: "c-t", Kind: KindBlank, Position: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"c-t","kind":"blank","position":2}`, string(data))

	var tok Token
	require.NoError(t, json.Unmarshal(data, &tok))
	assert.Equal(t, KindBlank, tok.Kind)
}

// BenchmarkParse measures query routing for queries of varying size.
func BenchmarkParse(b *testing.B) {
	queries := []struct {
		name  string
		query string
	}{
		{"single", "listen"},
		{"mixed", "listen c-t at -a-e notes"},
		{"command", "!benchmark"},
		{"long", "the quick brown fox jumps over the lazy dog while s--ne and --ne wait silently"},
	}
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Parse(q.query, 3)
			}
		})
	}
}
