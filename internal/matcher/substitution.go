package matcher

import (
	"context"
	"fmt"
	"slices"
	"unicode/utf8"

	apperrors "github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/errors"
)

// ctxCheckEvery is how many candidates are scanned between context checks.
const ctxCheckEvery = 512

// TokenCandidates are the dictionary words whose per-position frequency
// profile matches one cipher token.
type TokenCandidates struct {
	Token      string   `json:"token"`
	Candidates []string `json:"candidates"`
}

// SubstitutionResult holds per-token candidates for a substitution cipher.
//
// Resolved is always false: candidates are checked one token at a time and
// no single symbol -> letter key consistent across all tokens is derived.
// Callers must not treat the candidates as a solved cipher.
type SubstitutionResult struct {
	Analysis *Analysis        `json:"analysis"`
	Tokens   []TokenCandidates `json:"tokens"`
	Resolved bool             `json:"resolved"`
}

// Substitution collects, for each cipher token, the dictionary words of the
// same length whose single-word symbolic analysis gives the same frequency
// at every position as the token does. The scan is
// O(dictionary bucket x tokens) and stops early when ctx is done.
func (e *Engine) Substitution(ctx context.Context, tokens []string) (*SubstitutionResult, error) {
	analysis := SymbolicAnalysis(tokens)
	res := &SubstitutionResult{
		Analysis: analysis,
		Tokens:   make([]TokenCandidates, len(tokens)),
	}
	scanned := 0
	for i, token := range tokens {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("substitution scan: %w: %w", apperrors.ErrTimeout, err)
		}
		want := analysis.Profile(i)
		tc := TokenCandidates{Token: token, Candidates: []string{}}
		for _, candidate := range e.idx.Lengths.Bucket(utf8.RuneCountInString(token)) {
			scanned++
			if scanned%ctxCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return nil, fmt.Errorf("substitution scan: %w: %w", apperrors.ErrTimeout, err)
				}
			}
			if slices.Equal(SymbolicAnalysis([]string{candidate}).Profile(0), want) {
				tc.Candidates = append(tc.Candidates, candidate)
			}
		}
		res.Tokens[i] = tc
	}
	e.logger.Debug("substitution candidates", "tokens", len(tokens), "scanned", scanned)
	return res, nil
}
