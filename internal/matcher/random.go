package matcher

import (
	"math/rand/v2"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/alphabet"
)

// Scramble returns a random permutation of word's letters.
func (e *Engine) Scramble(word string, rng *rand.Rand) (string, error) {
	w, err := alphabet.Normalize(word)
	if err != nil {
		return "", err
	}
	b := []byte(w)
	rng.Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })
	return string(b), nil
}

// Random picks n dictionary words with replacement.
func (e *Engine) Random(n int, rng *rand.Rand) []string {
	dict := e.idx.Dictionary
	if dict.Len() == 0 || n <= 0 {
		return []string{}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = dict.Word(rng.IntN(dict.Len()))
	}
	return out
}
