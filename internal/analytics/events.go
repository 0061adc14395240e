package analytics

import "time"

// Query kinds carried on QueryEvent.Kind.
const (
	KindSolve        = "solve"
	KindAnagram      = "anagram"
	KindBlanks       = "blanks"
	KindCaesar       = "caesar"
	KindRot          = "rot"
	KindPhrase       = "phrase"
	KindSymbolic     = "symbolic"
	KindSubstitution = "substitution"
	KindRandom       = "random"
	KindScramble     = "scramble"
)

// QueryEvent records one answered word query. Query holds the raw query
// text; events never carry the results themselves.
type QueryEvent struct {
	Kind      string    `json:"kind"`
	Query     string    `json:"query"`
	Matches   int       `json:"matches"`
	LatencyUs int64     `json:"latency_us"`
	CacheHit  bool      `json:"cache_hit"`
	Failed    bool      `json:"failed"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
