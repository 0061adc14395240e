package matcher

// Letter is one distinct symbol found by SymbolicAnalysis.
type Letter struct {
	Symbol    rune `json:"symbol"`
	Ordinal   int  `json:"ordinal"`
	Frequency int  `json:"frequency"`
	// ByToken[i] counts the symbol's occurrences in token i.
	ByToken []int `json:"by_token"`
}

// Analysis is the structural fingerprint of a list of tokens: the symbols in
// order of first appearance, and each token rewritten as letter ordinals.
type Analysis struct {
	Alphabet []Letter `json:"alphabet"`
	Tokens   [][]int  `json:"tokens"`
}

// SymbolicAnalysis fingerprints tokens by which positions share a symbol,
// independent of what the symbols are. Symbols are compared exactly, so
// cipher text may use any runes.
//
// Counts live in a symbol x token table. Each row is allocated zeroed at
// full width when its symbol first appears and is only written at the
// current token's column.
func SymbolicAnalysis(tokens []string) *Analysis {
	a := &Analysis{
		Alphabet: []Letter{},
		Tokens:   make([][]int, len(tokens)),
	}
	ordinals := make(map[rune]int)
	var table [][]int

	for col, token := range tokens {
		word := make([]int, 0, len(token))
		for _, sym := range token {
			ord, ok := ordinals[sym]
			if !ok {
				ord = len(a.Alphabet)
				ordinals[sym] = ord
				table = append(table, make([]int, len(tokens)))
				a.Alphabet = append(a.Alphabet, Letter{Symbol: sym, Ordinal: ord})
			}
			table[ord][col]++
			a.Alphabet[ord].Frequency++
			word = append(word, ord)
		}
		a.Tokens[col] = word
	}
	for ord := range a.Alphabet {
		a.Alphabet[ord].ByToken = table[ord]
	}
	return a
}

// Profile returns, for each position of token i, how often that position's
// symbol occurs within token i. Tokens with the same repeat structure
// ("abcb", "wxyx") have equal profiles.
func (a *Analysis) Profile(i int) []int {
	word := a.Tokens[i]
	profile := make([]int, len(word))
	for pos, ord := range word {
		profile[pos] = a.Alphabet[ord].ByToken[i]
	}
	return profile
}

// Pattern renders token i with each symbol replaced by its ordinal within
// the token, e.g. "hello" -> [0 1 2 2 3].
func (a *Analysis) Pattern(i int) []int {
	local := make(map[int]int)
	pattern := make([]int, len(a.Tokens[i]))
	for pos, ord := range a.Tokens[i] {
		n, ok := local[ord]
		if !ok {
			n = len(local)
			local[ord] = n
		}
		pattern[pos] = n
	}
	return pattern
}
