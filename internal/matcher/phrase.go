package matcher

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/alphabet"
	apperrors "github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/errors"
)

// shortWordLen is the longest word counted as "short" when filtering
// phrase anagrams.
const shortWordLen = 3

type phraseCandidate struct {
	word   string
	counts alphabet.Counts
}

type phraseFrame struct {
	remaining alphabet.Counts
	words     []string
	next      int
}

// PhraseAnagrams finds up to limit multi-word anagrams of phrase. Only the
// letters of phrase count; spaces and punctuation are ignored. Candidate
// words are tried longest first, then alphabetically, and each solution
// lists its words in that order, so no solution is a reordering of
// another. Solutions of more than three words may be at most half short
// words.
func (e *Engine) PhraseAnagrams(ctx context.Context, phrase string, limit int) ([][]string, error) {
	target := alphabet.CountLetters(strings.ToLower(phrase))
	if target.Empty() {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "phrase %q has no letters", phrase)
	}
	if limit <= 0 {
		return [][]string{}, nil
	}
	candidates := e.phraseCandidates(target)

	solutions := [][]string{}
	stack := []phraseFrame{{remaining: target}}
	steps := 0
	for len(stack) > 0 {
		steps++
		if steps%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return solutions, fmt.Errorf("phrase anagram search: %w: %w", apperrors.ErrTimeout, err)
			}
		}
		top := &stack[len(stack)-1]
		if top.remaining.Empty() {
			if acceptablePhrase(top.words) {
				solutions = append(solutions, top.words)
				if len(solutions) >= limit {
					break
				}
			}
			stack = stack[:len(stack)-1]
			continue
		}
		if top.next >= len(candidates) {
			stack = stack[:len(stack)-1]
			continue
		}
		idx := top.next
		top.next++
		c := candidates[idx]
		rest, ok := top.remaining.Subtract(c.counts)
		if !ok {
			continue
		}
		words := make([]string, len(top.words), len(top.words)+1)
		copy(words, top.words)
		stack = append(stack, phraseFrame{
			remaining: rest,
			words:     append(words, c.word),
			next:      idx,
		})
	}
	e.logger.Debug("phrase anagrams", "phrase", phrase, "candidates", len(candidates), "solutions", len(solutions))
	return solutions, nil
}

func (e *Engine) phraseCandidates(target alphabet.Counts) []phraseCandidate {
	dict := e.idx.Dictionary
	seen := make(map[string]struct{})
	out := make([]phraseCandidate, 0)
	for i := 0; i < dict.Len(); i++ {
		w := dict.Word(i)
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		counts := alphabet.CountLetters(w)
		if _, ok := target.Subtract(counts); ok {
			out = append(out, phraseCandidate{word: w, counts: counts})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].word) != len(out[j].word) {
			return len(out[i].word) > len(out[j].word)
		}
		return out[i].word < out[j].word
	})
	return out
}

func acceptablePhrase(words []string) bool {
	if len(words) <= 3 {
		return true
	}
	short := 0
	for _, w := range words {
		if len(w) <= shortWordLen {
			short++
		}
	}
	return short <= len(words)/2
}
