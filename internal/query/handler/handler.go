// Package handler exposes the word engine over HTTP. Every endpoint answers
// JSON; errors carry the status code of their apperrors sentinel.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/matcher"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/query/cache"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/query/executor"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/query/parser"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/tracing"
)

const defaultRandomWords = 5

// WordEngine is the part of *matcher.Engine served directly.
type WordEngine interface {
	Anagram(word string) (matcher.AnagramResult, error)
	FillInTheBlanks(pattern string) ([]string, error)
	CaesarShift(word string, shift int) (string, error)
	CaesarSearch(word string) ([]matcher.ShiftMatch, error)
	Rot(word string) ([]matcher.ShiftMatch, error)
	IsAWord(word string) bool
	Scramble(word string, rng *rand.Rand) (string, error)
	Random(n int, rng *rand.Rand) []string
	MostAnagrams() (matcher.AnagramResult, bool)
}

// Tracker receives one event per answered query.
type Tracker interface {
	Track(event analytics.QueryEvent)
}

// BlanksResult answers a fill-in-the-blank query.
type BlanksResult struct {
	Pattern string   `json:"pattern"`
	Words   []string `json:"words"`
}

// ShiftResult answers a Caesar query with an explicit shift.
type ShiftResult struct {
	Word    string `json:"word"`
	Shift   int    `json:"shift"`
	Shifted string `json:"shifted"`
	IsWord  bool   `json:"is_word"`
}

// ShiftSearchResult answers a Caesar or rot search.
type ShiftSearchResult struct {
	Word      string               `json:"word"`
	Matches   []matcher.ShiftMatch `json:"matches"`
	Formatted []string             `json:"formatted"`
}

// WordsResult answers random-word queries.
type WordsResult struct {
	Words []string `json:"words"`
}

// ScrambleResult answers a scramble query.
type ScrambleResult struct {
	Word      string `json:"word"`
	Scrambled string `json:"scrambled"`
}

type Handler struct {
	engine   WordEngine
	executor *executor.Executor
	cache    *cache.QueryCache
	tracker  Tracker
	metrics  *metrics.Metrics
	cfg      config.EngineConfig
	newRand  func() *rand.Rand
	logger   *slog.Logger
}

// New creates a Handler. queryCache, tracker and m may be nil.
func New(engine WordEngine, exec *executor.Executor, queryCache *cache.QueryCache, tracker Tracker, m *metrics.Metrics, cfg config.EngineConfig) *Handler {
	return &Handler{
		engine:   engine,
		executor: exec,
		cache:    queryCache,
		tracker:  tracker,
		metrics:  m,
		cfg:      cfg,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		logger: logger.WithComponent("word-handler"),
	}
}

// Register mounts every endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/anagram", h.Anagram)
	mux.HandleFunc("GET /api/v1/blanks", h.Blanks)
	mux.HandleFunc("GET /api/v1/caesar", h.Caesar)
	mux.HandleFunc("GET /api/v1/rot", h.Rot)
	mux.HandleFunc("GET /api/v1/phrase", h.Phrase)
	mux.HandleFunc("GET /api/v1/solve", h.Solve)
	mux.HandleFunc("GET /api/v1/symbolic", h.Symbolic)
	mux.HandleFunc("GET /api/v1/substitution", h.Substitution)
	mux.HandleFunc("GET /api/v1/random", h.Random)
	mux.HandleFunc("GET /api/v1/scramble", h.Scramble)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

// op describes one query for serve.
type op[T any] struct {
	kind    string
	query   string
	params  string
	cached  bool
	run     func(ctx context.Context) (T, error)
	matches func(T) int
}

func serve[T any](h *Handler, w http.ResponseWriter, r *http.Request, o op[T]) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var (
		res T
		hit bool
		err error
	)
	if o.cached {
		res, hit, err = cache.GetOrCompute(ctx, h.cache, cache.Key(o.kind, o.query, o.params), func() (T, error) {
			return o.run(ctx)
		})
	} else {
		res, err = o.run(ctx)
	}
	elapsed := time.Since(start)
	matches := 0
	if err == nil && o.matches != nil {
		matches = o.matches(res)
	}
	h.metrics.ObserveQuery(o.kind, matches, err, elapsed)
	h.track(ctx, o.kind, o.query, matches, hit, err, elapsed)

	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("query failed", "kind", o.kind, "query", o.query, "status", status, "error", err)
		} else {
			log.Info("query rejected", "kind", o.kind, "query", o.query, "status", status, "error", err)
		}
		h.writeError(w, status, errorMessage(err, status))
		return
	}
	log.Info("query answered",
		"kind", o.kind,
		"query", o.query,
		"matches", matches,
		"cache_hit", hit,
		"latency_ms", elapsed.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) track(ctx context.Context, kind, query string, matches int, hit bool, err error, elapsed time.Duration) {
	if h.tracker == nil {
		return
	}
	h.tracker.Track(analytics.QueryEvent{
		Kind:      kind,
		Query:     query,
		Matches:   matches,
		LatencyUs: elapsed.Microseconds(),
		CacheHit:  hit,
		Failed:    err != nil,
		RequestID: middleware.GetRequestID(ctx),
		Timestamp: time.Now().UTC(),
	})
}

// Anagram serves GET /api/v1/anagram?word=.
func (h *Handler) Anagram(w http.ResponseWriter, r *http.Request) {
	word, ok := h.requireParam(w, r, "word")
	if !ok {
		return
	}
	serve(h, w, r, op[matcher.AnagramResult]{
		kind:    analytics.KindAnagram,
		query:   strings.ToLower(word),
		cached:  true,
		run:     func(context.Context) (matcher.AnagramResult, error) { return h.engine.Anagram(word) },
		matches: func(res matcher.AnagramResult) int { return len(res.Anagrams) },
	})
}

// Blanks serves GET /api/v1/blanks?pattern=.
func (h *Handler) Blanks(w http.ResponseWriter, r *http.Request) {
	pattern, ok := h.requireParam(w, r, "pattern")
	if !ok {
		return
	}
	serve(h, w, r, op[BlanksResult]{
		kind:   analytics.KindBlanks,
		query:  strings.ToLower(pattern),
		cached: true,
		run: func(context.Context) (BlanksResult, error) {
			words, err := h.engine.FillInTheBlanks(pattern)
			return BlanksResult{Pattern: strings.ToLower(pattern), Words: words}, err
		},
		matches: func(res BlanksResult) int { return len(res.Words) },
	})
}

// Caesar serves GET /api/v1/caesar?word=[&shift=]. Without a shift every
// shift in [-13, 13] is searched; with one the word is only shifted.
func (h *Handler) Caesar(w http.ResponseWriter, r *http.Request) {
	word, ok := h.requireParam(w, r, "word")
	if !ok {
		return
	}
	if s := r.URL.Query().Get("shift"); s != "" {
		shift, err := strconv.Atoi(s)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "shift must be an integer")
			return
		}
		serve(h, w, r, op[ShiftResult]{
			kind:  analytics.KindCaesar,
			query: strings.ToLower(word),
			run: func(context.Context) (ShiftResult, error) {
				shifted, err := h.engine.CaesarShift(word, shift)
				if err != nil {
					return ShiftResult{}, err
				}
				return ShiftResult{Word: strings.ToLower(word), Shift: shift, Shifted: shifted, IsWord: h.engine.IsAWord(shifted)}, nil
			},
			matches: func(res ShiftResult) int {
				if res.IsWord {
					return 1
				}
				return 0
			},
		})
		return
	}
	h.serveShiftSearch(w, r, analytics.KindCaesar, word, h.engine.CaesarSearch)
}

// Rot serves GET /api/v1/rot?word=, trying forward shifts 1..25.
func (h *Handler) Rot(w http.ResponseWriter, r *http.Request) {
	word, ok := h.requireParam(w, r, "word")
	if !ok {
		return
	}
	h.serveShiftSearch(w, r, analytics.KindRot, word, h.engine.Rot)
}

func (h *Handler) serveShiftSearch(w http.ResponseWriter, r *http.Request, kind, word string, search func(string) ([]matcher.ShiftMatch, error)) {
	serve(h, w, r, op[ShiftSearchResult]{
		kind:   kind,
		query:  strings.ToLower(word),
		cached: true,
		run: func(context.Context) (ShiftSearchResult, error) {
			matches, err := search(word)
			if err != nil {
				return ShiftSearchResult{}, err
			}
			formatted := make([]string, len(matches))
			for i, m := range matches {
				formatted[i] = m.String()
			}
			return ShiftSearchResult{Word: strings.ToLower(word), Matches: matches, Formatted: formatted}, nil
		},
		matches: func(res ShiftSearchResult) int { return len(res.Matches) },
	})
}

// Phrase serves GET /api/v1/phrase?q=[&limit=].
func (h *Handler) Phrase(w http.ResponseWriter, r *http.Request) {
	phrase, ok := h.requireParam(w, r, "q")
	if !ok {
		return
	}
	limit, ok := h.intParam(w, r, "limit", 0)
	if !ok {
		return
	}
	serve(h, w, r, op[*executor.PhraseResult]{
		kind:   analytics.KindPhrase,
		query:  strings.ToLower(phrase),
		params: fmt.Sprintf("limit=%d", limit),
		cached: true,
		run: func(ctx context.Context) (*executor.PhraseResult, error) {
			return h.executor.Phrase(ctx, phrase, limit)
		},
		matches: func(res *executor.PhraseResult) int { return len(res.Solutions) },
	})
}

// Solve serves GET /api/v1/solve?q=. Each token is routed by the parser;
// a query starting with '!' runs a command instead.
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requireParam(w, r, "q")
	if !ok {
		return
	}
	plan := parser.Parse(q, h.cfg.MinTokenLength)
	switch plan.Command {
	case parser.CommandNone:
	case parser.CommandRandom:
		h.serveRandom(w, r, defaultRandomWords)
		return
	case parser.CommandBenchmark:
		serve(h, w, r, op[matcher.AnagramResult]{
			kind:   analytics.KindSolve,
			query:  q,
			cached: true,
			run: func(context.Context) (matcher.AnagramResult, error) {
				res, _ := h.engine.MostAnagrams()
				return res, nil
			},
			matches: func(res matcher.AnagramResult) int { return len(res.Anagrams) },
		})
		return
	default:
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown command %q", strings.TrimSpace(q)))
		return
	}

	serve(h, w, r, op[*executor.SolveResult]{
		kind:   analytics.KindSolve,
		query:  q,
		params: fmt.Sprintf("min=%d", h.cfg.MinTokenLength),
		cached: true,
		run: func(ctx context.Context) (*executor.SolveResult, error) {
			ctx, span := tracing.StartSpan(ctx, "solve", middleware.GetRequestID(ctx))
			defer func() {
				span.End()
				span.Log(logger.FromContext(ctx))
			}()
			return h.executor.Solve(ctx, plan)
		},
		matches: func(res *executor.SolveResult) int { return res.Stats.Matches },
	})
}

// Symbolic serves GET /api/v1/symbolic?q=.
func (h *Handler) Symbolic(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requireParam(w, r, "q")
	if !ok {
		return
	}
	serve(h, w, r, op[*matcher.Analysis]{
		kind:    analytics.KindSymbolic,
		query:   q,
		run:     func(context.Context) (*matcher.Analysis, error) { return h.executor.Symbolic(q) },
		matches: func(a *matcher.Analysis) int { return len(a.Alphabet) },
	})
}

// Substitution serves GET /api/v1/substitution?q=.
func (h *Handler) Substitution(w http.ResponseWriter, r *http.Request) {
	q, ok := h.requireParam(w, r, "q")
	if !ok {
		return
	}
	serve(h, w, r, op[*matcher.SubstitutionResult]{
		kind:   analytics.KindSubstitution,
		query:  q,
		cached: true,
		run: func(ctx context.Context) (*matcher.SubstitutionResult, error) {
			return h.executor.Substitution(ctx, q)
		},
		matches: func(res *matcher.SubstitutionResult) int {
			n := 0
			for _, tc := range res.Tokens {
				n += len(tc.Candidates)
			}
			return n
		},
	})
}

// Random serves GET /api/v1/random?n=.
func (h *Handler) Random(w http.ResponseWriter, r *http.Request) {
	n, ok := h.intParam(w, r, "n", 1)
	if !ok {
		return
	}
	h.serveRandom(w, r, n)
}

func (h *Handler) serveRandom(w http.ResponseWriter, r *http.Request, n int) {
	if n < 1 {
		n = 1
	}
	if h.cfg.MaxRandomWords > 0 && n > h.cfg.MaxRandomWords {
		n = h.cfg.MaxRandomWords
	}
	serve(h, w, r, op[WordsResult]{
		kind:    analytics.KindRandom,
		query:   strconv.Itoa(n),
		run:     func(context.Context) (WordsResult, error) { return WordsResult{Words: h.engine.Random(n, h.newRand())}, nil },
		matches: func(res WordsResult) int { return len(res.Words) },
	})
}

// Scramble serves GET /api/v1/scramble?word=.
func (h *Handler) Scramble(w http.ResponseWriter, r *http.Request) {
	word, ok := h.requireParam(w, r, "word")
	if !ok {
		return
	}
	serve(h, w, r, op[ScrambleResult]{
		kind:  analytics.KindScramble,
		query: strings.ToLower(word),
		run: func(context.Context) (ScrambleResult, error) {
			s, err := h.engine.Scramble(word, h.newRand())
			return ScrambleResult{Word: strings.ToLower(word), Scrambled: s}, err
		},
		matches: func(ScrambleResult) int { return 1 },
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	st := h.cache.Stats()
	total := st.Hits + st.Misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(st.Hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     st.Hits,
		"misses":   st.Misses,
		"errors":   st.Errors,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		"breaker":  st.Breaker,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, status, errorMessage(err, status))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) requireParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if strings.TrimSpace(v) == "" {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("query parameter '%s' is required", name))
		return "", false
	}
	return v, true
}

func (h *Handler) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a positive integer", name))
		return 0, false
	}
	return n, true
}

func errorMessage(err error, status int) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
