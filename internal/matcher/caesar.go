package matcher

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/alphabet"
)

// MaxShift bounds the Caesar search: every shift in [-MaxShift, MaxShift]
// is tried, so a rot13 hit is reported twice, as -13 and +13.
const MaxShift = 13

// ShiftMatch is a dictionary word reached by shifting the query.
type ShiftMatch struct {
	Word  string `json:"word"`
	Shift int    `json:"shift"`
}

func (m ShiftMatch) String() string {
	return fmt.Sprintf("%s %+d", m.Word, m.Shift)
}

// CaesarShift moves every letter of word by shift positions. It is a pure
// transform and does not consult the dictionary.
func (e *Engine) CaesarShift(word string, shift int) (string, error) {
	return alphabet.Shift(word, shift)
}

// CaesarSearch tries every shift in [-MaxShift, MaxShift] in increasing
// order and keeps those producing a dictionary word other than word itself.
func (e *Engine) CaesarSearch(word string) ([]ShiftMatch, error) {
	return e.shiftRange(word, -MaxShift, MaxShift)
}

// Rot reports every forward rotation 1..25 that lands on a dictionary word.
func (e *Engine) Rot(word string) ([]ShiftMatch, error) {
	return e.shiftRange(word, 1, alphabet.Size-1)
}

func (e *Engine) shiftRange(word string, from, to int) ([]ShiftMatch, error) {
	w, err := alphabet.Normalize(word)
	if err != nil {
		return nil, err
	}
	matches := []ShiftMatch{}
	for shift := from; shift <= to; shift++ {
		shifted, err := alphabet.Shift(w, shift)
		if err != nil {
			return nil, err
		}
		if shifted == w {
			continue
		}
		if e.IsAWord(shifted) {
			matches = append(matches, ShiftMatch{Word: shifted, Shift: shift})
		}
	}
	e.logger.Debug("caesar shift search", "word", w, "from", from, "to", to, "matches", len(matches))
	return matches, nil
}
