// Package alphabet defines the fixed 26-letter alphabet the engine works
// over: input normalisation, sorted-letter signatures, and the
// letter <-> position mapping used by Caesar shifts.
package alphabet

import (
	"net/http"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/errors"
)

// Size is the number of letters in the alphabet.
const Size = 26

// Blank marks "any letter" in a fill-in-the-blank pattern.
const Blank = '-'

// Counts holds the multiplicity of each letter in a word.
type Counts [Size]int

// Normalize lowercases word and rejects anything that is not a non-empty
// run of letters a-z.
func Normalize(word string) (string, error) {
	return normalize(word, false)
}

// NormalizePattern is Normalize with Blank also accepted.
func NormalizePattern(pattern string) (string, error) {
	return normalize(pattern, true)
}

func normalize(s string, allowBlank bool) (string, error) {
	if s == "" {
		return "", apperrors.New(apperrors.ErrUnsupportedSymbol, http.StatusUnprocessableEntity, "empty word")
	}
	lower := strings.ToLower(s)
	for _, r := range lower {
		if IsLetter(r) {
			continue
		}
		if allowBlank && r == Blank {
			continue
		}
		return "", apperrors.Unsupported(s, r)
	}
	return lower, nil
}

// IsLetter reports whether r is a lowercase alphabet letter.
func IsLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// CountLetters tallies a normalised word. Non-letters are ignored.
func CountLetters(word string) Counts {
	var c Counts
	for _, r := range word {
		if IsLetter(r) {
			c[r-'a']++
		}
	}
	return c
}

// Signature returns the letters of a normalised word in alphabet order,
// multiplicity preserved: "tame" -> "aemt".
func Signature(word string) string {
	return CountLetters(word).String()
}

// String expands the counts back into a sorted-letter signature.
func (c Counts) String() string {
	var b strings.Builder
	for i, n := range c {
		for range n {
			b.WriteByte(byte('a' + i))
		}
	}
	return b.String()
}

// Empty reports whether no letters remain.
func (c Counts) Empty() bool {
	return c == Counts{}
}

// Subtract removes other from c. ok is false when other needs a letter c
// does not have enough of.
func (c Counts) Subtract(other Counts) (Counts, bool) {
	var out Counts
	for i := range c {
		if c[i] < other[i] {
			return Counts{}, false
		}
		out[i] = c[i] - other[i]
	}
	return out, true
}

// Numerical maps each letter of word to its 1-based alphabet position.
func Numerical(word string) ([]int, error) {
	w, err := Normalize(word)
	if err != nil {
		return nil, err
	}
	nums := make([]int, len(w))
	for i := 0; i < len(w); i++ {
		nums[i] = int(w[i]-'a') + 1
	}
	return nums, nil
}

// FromNumerical is the inverse of Numerical. Positions wrap modulo 26 in
// both directions, so 0 is 'z', -1 is 'y' and 27 is 'a'.
func FromNumerical(nums []int) string {
	b := make([]byte, len(nums))
	for i, n := range nums {
		b[i] = letterAt(n)
	}
	return string(b)
}

func letterAt(position int) byte {
	idx := (position - 1) % Size
	if idx < 0 {
		idx += Size
	}
	return byte('a' + idx)
}

// Shift moves every letter of word by shift positions, wrapping at the
// ends of the alphabet.
func Shift(word string, shift int) (string, error) {
	nums, err := Numerical(word)
	if err != nil {
		return "", err
	}
	for i := range nums {
		nums[i] += shift
	}
	return FromNumerical(nums), nil
}
