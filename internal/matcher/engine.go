// Package matcher answers word-puzzle queries over a built index: anagrams,
// fill-in-the-blank patterns, Caesar shifts, phrase anagrams, and the
// symbolic analysis behind the substitution-cipher candidate search.
//
// An Engine holds nothing but a read-only *index.Index, so one Engine may
// serve any number of goroutines. Queries never mutate it; "no match" is an
// empty result, and only malformed input returns an error.
package matcher

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/alphabet"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/logger"
)

// MinUsefulLength is the shortest token worth querying. One- and
// two-letter tokens match almost anything, so collaborators skip them.
const MinUsefulLength = 3

// Engine answers queries against one immutable index.
type Engine struct {
	idx    *index.Index
	logger *slog.Logger
}

// New wraps an already built index.
func New(idx *index.Index) *Engine {
	return &Engine{
		idx:    idx,
		logger: logger.WithComponent("matcher"),
	}
}

// NewFromWords builds the index and wraps it in an Engine.
func NewFromWords(words []string) (*Engine, error) {
	idx, err := index.Build(words)
	if err != nil {
		return nil, err
	}
	e := New(idx)
	st := idx.Stats()
	e.logger.Debug("index built",
		"words", st.Words,
		"lengths", st.Lengths,
		"signatures", st.Signatures,
	)
	return e, nil
}

// Index exposes the underlying read-only index.
func (e *Engine) Index() *index.Index {
	return e.idx
}

// IsAWord reports whether word is in the dictionary, ignoring case. The
// check scans the bucket of words with the same length.
func (e *Engine) IsAWord(word string) bool {
	w, err := alphabet.Normalize(word)
	if err != nil {
		return false
	}
	for _, candidate := range e.idx.Lengths.Bucket(len(w)) {
		if candidate == w {
			return true
		}
	}
	return false
}

// Numerical maps word to its 1-based alphabet positions.
func (e *Engine) Numerical(word string) ([]int, error) {
	return alphabet.Numerical(word)
}

// FromNumerical maps alphabet positions back to letters, wrapping mod 26.
func (e *Engine) FromNumerical(nums []int) string {
	return alphabet.FromNumerical(nums)
}
