package matcher

import (
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/alphabet"
)

// AnagramResult lists the dictionary anagrams of Word. IsWord is set when
// Word itself is in the dictionary; it never appears in Anagrams.
type AnagramResult struct {
	Word     string   `json:"word"`
	Anagrams []string `json:"anagrams"`
	IsWord   bool     `json:"is_word"`
}

// Anagram looks up every dictionary word with the same sorted-letter
// signature as word. Results are distinct and in dictionary order.
func (e *Engine) Anagram(word string) (AnagramResult, error) {
	w, err := alphabet.Normalize(word)
	if err != nil {
		return AnagramResult{}, err
	}
	res := AnagramResult{Word: w, Anagrams: []string{}}
	seen := make(map[string]struct{})
	for _, entry := range e.idx.Signatures.Lookup(len(w), alphabet.Signature(w)) {
		candidate := e.idx.Dictionary.Word(entry.Position)
		if candidate == w {
			res.IsWord = true
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		res.Anagrams = append(res.Anagrams, candidate)
	}
	e.logger.Debug("anagram", "word", w, "matches", len(res.Anagrams), "is_word", res.IsWord)
	return res, nil
}

// MostAnagrams finds the first dictionary word with the largest number of
// anagrams and returns it together with its anagram list.
func (e *Engine) MostAnagrams() (AnagramResult, bool) {
	dict := e.idx.Dictionary
	distinct := make(map[string]int)
	best, bestCount := -1, 0
	for i := 0; i < dict.Len(); i++ {
		w := dict.Word(i)
		sig := alphabet.Signature(w)
		n, ok := distinct[sig]
		if !ok {
			uniq := make(map[string]struct{})
			for _, entry := range e.idx.Signatures.Lookup(len(w), sig) {
				uniq[dict.Word(entry.Position)] = struct{}{}
			}
			n = len(uniq)
			distinct[sig] = n
		}
		if n-1 > bestCount {
			best, bestCount = i, n-1
		}
	}
	if best < 0 {
		return AnagramResult{}, false
	}
	res, err := e.Anagram(dict.Word(best))
	if err != nil {
		return AnagramResult{}, false
	}
	return res, true
}
