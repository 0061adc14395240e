package matcher

import (
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/alphabet"
)

// FillInTheBlanks returns the dictionary words that agree with pattern at
// every position not holding alphabet.Blank, in dictionary order.
func (e *Engine) FillInTheBlanks(pattern string) ([]string, error) {
	p, err := alphabet.NormalizePattern(pattern)
	if err != nil {
		return nil, err
	}
	matches := []string{}
	for _, candidate := range e.idx.Lengths.Bucket(len(p)) {
		if fits(p, candidate) {
			matches = append(matches, candidate)
		}
	}
	e.logger.Debug("fill in the blanks", "pattern", p, "matches", len(matches))
	return matches, nil
}

func fits(pattern, word string) bool {
	if len(pattern) != len(word) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != alphabet.Blank && pattern[i] != word[i] {
			return false
		}
	}
	return true
}
