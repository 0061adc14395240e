// Package index holds the dictionary and the two indices built over it:
// words grouped by length and words grouped by sorted-letter signature.
// Everything here is immutable once Build returns, so an *Index can be
// shared by any number of concurrent readers.
package index

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/alphabet"
	apperrors "github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/errors"
)

// Dictionary is the word list in insertion order. Duplicates are kept.
type Dictionary struct {
	words []string
}

// Len returns the number of words, duplicates included.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Word returns the word at position i.
func (d *Dictionary) Word(i int) string {
	return d.words[i]
}

// Words returns a copy of the word list.
func (d *Dictionary) Words() []string {
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}

// LengthIndex maps a word length to the words of that length in
// dictionary order.
type LengthIndex struct {
	buckets map[int][]string
}

// Bucket returns the words of length n. The slice is shared; callers must
// not modify it.
func (l *LengthIndex) Bucket(n int) []string {
	return l.buckets[n]
}

// Lengths returns every populated length in ascending order.
func (l *LengthIndex) Lengths() []int {
	lengths := make([]int, 0, len(l.buckets))
	for n := range l.buckets {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)
	return lengths
}

// SignatureIndex maps (length, signature) to every dictionary entry with
// that signature, in dictionary order.
type SignatureIndex struct {
	buckets map[SignatureKey][]Entry
}

// Lookup returns the entries sharing signature. The slice is shared.
func (s *SignatureIndex) Lookup(length int, signature string) []Entry {
	return s.buckets[SignatureKey{Length: length, Signature: signature}]
}

// Len returns the number of distinct signatures.
func (s *SignatureIndex) Len() int {
	return len(s.buckets)
}

// Index bundles the dictionary with its indices.
type Index struct {
	Dictionary *Dictionary
	Lengths    *LengthIndex
	Signatures *SignatureIndex
}

// Build indexes words. A nil slice is rejected with ErrNoDictionary; an
// empty one yields empty indices. Words are lowercased; any word that is
// empty or holds a symbol outside a-z fails the whole build.
func Build(words []string) (*Index, error) {
	if words == nil {
		return nil, apperrors.New(apperrors.ErrNoDictionary, http.StatusServiceUnavailable, "word list is absent")
	}

	dict := &Dictionary{words: make([]string, 0, len(words))}
	lengths := &LengthIndex{buckets: make(map[int][]string)}
	sigs := &SignatureIndex{buckets: make(map[SignatureKey][]Entry)}

	for i, raw := range words {
		word, err := alphabet.Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("indexing word %d: %w", i, err)
		}
		dict.words = append(dict.words, word)
		n := len(word)
		lengths.buckets[n] = append(lengths.buckets[n], word)

		sig := alphabet.Signature(word)
		key := SignatureKey{Length: n, Signature: sig}
		sigs.buckets[key] = append(sigs.buckets[key], Entry{Position: i, Signature: sig})
	}

	return &Index{
		Dictionary: dict,
		Lengths:    lengths,
		Signatures: sigs,
	}, nil
}

// Stats reports the index dimensions.
func (x *Index) Stats() Stats {
	st := Stats{
		Words:      x.Dictionary.Len(),
		Lengths:    len(x.Lengths.buckets),
		Signatures: x.Signatures.Len(),
	}
	for n := range x.Lengths.buckets {
		if n > st.LongestLen {
			st.LongestLen = n
		}
	}
	return st
}
