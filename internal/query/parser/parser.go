// Package parser turns raw query text into a plan: the whitespace-separated
// tokens of the query, each tagged with the matcher it is routed to, or a
// bang command such as "!random".
package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/alphabet"
)

// TokenKind says which matchers a token is routed to.
type TokenKind int

const (
	// KindWord tokens go to anagram and Caesar matching.
	KindWord TokenKind = iota
	// KindBlank tokens contain a blank and go to fill-in-the-blank matching.
	KindBlank
	// KindSkipped tokens are too short to be worth matching.
	KindSkipped
)

func (k TokenKind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindBlank:
		return "blank"
	case KindSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name in JSON responses and cache entries.
func (k TokenKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *TokenKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "word":
		*k = KindWord
	case "blank":
		*k = KindBlank
	default:
		*k = KindSkipped
	}
	return nil
}

// Command is a bang command that replaces token matching for the whole query.
type Command int

const (
	CommandNone Command = iota
	CommandRandom
	CommandBenchmark
	CommandUnknown
)

var commandNames = map[string]Command{
	"random":       CommandRandom,
	"benchmark":    CommandBenchmark,
	"bigbenchmark": CommandBenchmark,
}

func (c Command) String() string {
	switch c {
	case CommandNone:
		return ""
	case CommandRandom:
		return "random"
	case CommandBenchmark:
		return "benchmark"
	default:
		return "unknown"
	}
}

// Token is one whitespace-separated piece of a query.
type Token struct {
	Text     string    `json:"text"`
	Kind     TokenKind `json:"kind"`
	Position int       `json:"position"`
}

// QueryPlan is the parsed form of a query.
type QueryPlan struct {
	Tokens   []Token
	Command  Command
	RawQuery string
}

// Routed returns the tokens that reach at least one matcher.
func (p *QueryPlan) Routed() []Token {
	out := make([]Token, 0, len(p.Tokens))
	for _, t := range p.Tokens {
		if t.Kind != KindSkipped {
			out = append(out, t)
		}
	}
	return out
}

// Parse splits query on whitespace and routes each token. A token holding
// the blank symbol is a KindBlank; any other token is a KindWord. Tokens
// shorter than minLen runes are KindSkipped. A query starting with '!' is
// a command and carries no tokens.
func Parse(query string, minLen int) *QueryPlan {
	plan := &QueryPlan{
		Tokens:   make([]Token, 0),
		RawQuery: query,
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return plan
	}
	if name, ok := strings.CutPrefix(trimmed, "!"); ok {
		plan.Command = ParseCommand(name)
		return plan
	}
	for i, field := range strings.Fields(trimmed) {
		plan.Tokens = append(plan.Tokens, Token{
			Text:     field,
			Kind:     classify(field, minLen),
			Position: i,
		})
	}
	return plan
}

// ParseCommand maps a command name (without the '!') to a Command.
func ParseCommand(name string) Command {
	if c, ok := commandNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return CommandUnknown
}

func classify(token string, minLen int) TokenKind {
	if utf8.RuneCountInString(token) < minLen {
		return KindSkipped
	}
	if strings.ContainsRune(token, alphabet.Blank) {
		return KindBlank
	}
	return KindWord
}
