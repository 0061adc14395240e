// Package executor runs parsed word queries against the matching engine.
// Routed tokens of a solve query are matched concurrently and reported in
// input order; the open-ended searches run under a deadline.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/matcher"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/query/parser"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/tracing"
)

// Engine is the part of *matcher.Engine the executor needs.
type Engine interface {
	Anagram(word string) (matcher.AnagramResult, error)
	FillInTheBlanks(pattern string) ([]string, error)
	CaesarSearch(word string) ([]matcher.ShiftMatch, error)
	PhraseAnagrams(ctx context.Context, phrase string, limit int) ([][]string, error)
	Substitution(ctx context.Context, tokens []string) (*matcher.SubstitutionResult, error)
}

// TokenResult is what the matchers found for one query token. Skipped
// tokens carry only the token. Error holds a token-local failure such as an
// unsupported symbol; it does not fail the query.
type TokenResult struct {
	Token    parser.Token         `json:"token"`
	IsWord   bool                 `json:"is_word"`
	Anagrams []string             `json:"anagrams,omitempty"`
	Shifts   []matcher.ShiftMatch `json:"shifts,omitempty"`
	Fills    []string             `json:"fills,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// Matches counts every result found for the token.
func (r TokenResult) Matches() int {
	return len(r.Anagrams) + len(r.Shifts) + len(r.Fills)
}

// Stats summarises a solve query.
type Stats struct {
	Tokens  int `json:"tokens"`
	Routed  int `json:"routed"`
	Letters int `json:"letters"`
	Vowels  int `json:"vowels"`
	Matches int `json:"matches"`
}

// SolveResult is the answer to a solve query, one TokenResult per token.
type SolveResult struct {
	Query  string        `json:"query"`
	Tokens []TokenResult `json:"tokens"`
	Stats  Stats         `json:"stats"`
}

// PhraseResult lists multi-word anagrams of a phrase.
type PhraseResult struct {
	Phrase    string     `json:"phrase"`
	Limit     int        `json:"limit"`
	Solutions [][]string `json:"solutions"`
}

// Executor dispatches queries to an Engine.
type Executor struct {
	engine  Engine
	cfg     config.EngineConfig
	workers int
	logger  *slog.Logger
}

// New creates an Executor.
func New(engine Engine, cfg config.EngineConfig) *Executor {
	return &Executor{
		engine:  engine,
		cfg:     cfg,
		workers: runtime.GOMAXPROCS(0),
		logger:  logger.WithComponent("query-executor"),
	}
}

// Solve matches every routed token of plan. Word tokens get anagram and
// Caesar matching, blank tokens get fill-in-the-blank matching. Tokens run
// concurrently; results keep the order of plan.Tokens.
func (x *Executor) Solve(ctx context.Context, plan *parser.QueryPlan) (*SolveResult, error) {
	if plan.Command != parser.CommandNone {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "command %q cannot be solved", plan.RawQuery)
	}
	results := make([]TokenResult, len(plan.Tokens))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.workers)
	for i, tok := range plan.Tokens {
		results[i].Token = tok
		if tok.Kind == parser.KindSkipped {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, span := tracing.StartChildSpan(gctx, "token")
			defer span.End()
			span.SetAttr("token", tok.Text)
			span.SetAttr("kind", tok.Kind.String())
			results[i] = x.solveToken(tok)
			span.SetAttr("matches", results[i].Matches())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("solving %q: %w: %w", plan.RawQuery, apperrors.ErrTimeout, err)
	}

	res := &SolveResult{Query: plan.RawQuery, Tokens: results, Stats: summarize(results)}
	x.logger.Debug("query solved",
		"query", plan.RawQuery,
		"tokens", res.Stats.Tokens,
		"routed", res.Stats.Routed,
		"matches", res.Stats.Matches,
	)
	return res, nil
}

func (x *Executor) solveToken(tok parser.Token) TokenResult {
	res := TokenResult{Token: tok}
	switch tok.Kind {
	case parser.KindBlank:
		fills, err := x.engine.FillInTheBlanks(tok.Text)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Fills = fills
	case parser.KindWord:
		ana, err := x.engine.Anagram(tok.Text)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.IsWord = ana.IsWord
		res.Anagrams = ana.Anagrams

		shifts, err := x.engine.CaesarSearch(tok.Text)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Shifts = shifts
	}
	return res
}

func summarize(results []TokenResult) Stats {
	st := Stats{Tokens: len(results)}
	for _, r := range results {
		if r.Token.Kind != parser.KindSkipped {
			st.Routed++
		}
		st.Matches += r.Matches()
		for _, c := range strings.ToLower(r.Token.Text) {
			if c < 'a' || c > 'z' {
				continue
			}
			st.Letters++
			if strings.ContainsRune("aeiou", c) {
				st.Vowels++
			}
		}
	}
	return st
}

// Phrase finds multi-word anagrams of phrase. A non-positive limit means
// the configured default; limits above the configured maximum are clamped.
// The search is bounded by the engine's query timeout.
func (x *Executor) Phrase(ctx context.Context, phrase string, limit int) (*PhraseResult, error) {
	if limit <= 0 {
		limit = x.cfg.PhraseLimit
	}
	if x.cfg.MaxPhraseLimit > 0 && limit > x.cfg.MaxPhraseLimit {
		limit = x.cfg.MaxPhraseLimit
	}
	solutions, err := resilience.Call(ctx, x.cfg.QueryTimeout, "phrase anagrams", func(ctx context.Context) ([][]string, error) {
		return x.engine.PhraseAnagrams(ctx, phrase, limit)
	})
	if err != nil {
		return nil, err
	}
	return &PhraseResult{Phrase: phrase, Limit: limit, Solutions: solutions}, nil
}

// Symbolic fingerprints the whitespace-separated tokens of text.
func (x *Executor) Symbolic(text string) (*matcher.Analysis, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "cipher text is empty")
	}
	return matcher.SymbolicAnalysis(tokens), nil
}

// Substitution collects per-token candidates for the cipher text, giving
// up with apperrors.ErrTimeout once the substitution timeout passes.
func (x *Executor) Substitution(ctx context.Context, text string) (*matcher.SubstitutionResult, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "cipher text is empty")
	}
	res, err := resilience.Call(ctx, x.cfg.SubstitutionTimeout, "substitution", func(ctx context.Context) (*matcher.SubstitutionResult, error) {
		return x.engine.Substitution(ctx, tokens)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			x.logger.Warn("substitution gave up", "tokens", len(tokens), "error", err)
		}
		return nil, err
	}
	return res, nil
}
