package executor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/matcher"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/query/parser"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/tracing"
)

var sampleWords = []string{"cat", "act", "tac", "dog", "god", "tame", "mate", "meat", "cheer", "jolly"}

func testConfig() config.EngineConfig {
	return config.Default().Engine
}

func newExecutor(t *testing.T) *Executor {
	t.Helper()
	e, err := matcher.NewFromWords(sampleWords)
	require.NoError(t, err)
	return New(e, testConfig())
}

func TestSolveRoutesTokensInOrder(t *testing.T) {
	x := newExecutor(t)
	res, err := x.Solve(context.Background(), parser.Parse("cat at c-t cheer -a-e", 3))
	require.NoError(t, err)
	require.Len(t, res.Tokens, 5)

	cat := res.Tokens[0]
	assert.True(t, cat.IsWord)
	assert.Equal(t, []string{"act", "tac"}, cat.Anagrams)

	assert.Equal(t, parser.KindSkipped, res.Tokens[1].Token.Kind)
	assert.Zero(t, res.Tokens[1].Matches())

	assert.Equal(t, []string{"cat"}, res.Tokens[2].Fills)

	cheer := res.Tokens[3]
	assert.Contains(t, cheer.Shifts, matcher.ShiftMatch{Word: "jolly", Shift: 7})

	assert.Equal(t, []string{"tame", "mate"}, res.Tokens[4].Fills)

	assert.Equal(t, 5, res.Stats.Tokens)
	assert.Equal(t, 4, res.Stats.Routed)
	assert.Equal(t, res.Tokens[0].Matches()+res.Tokens[2].Matches()+res.Tokens[3].Matches()+res.Tokens[4].Matches(), res.Stats.Matches)
}

func TestSolveRecordsTokenErrors(t *testing.T) {
	x := newExecutor(t)
	res, err := x.Solve(context.Background(), parser.Parse("c4t dog", 3))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens[0].Error)
	assert.Equal(t, []string{"god"}, res.Tokens[1].Anagrams)
}

func TestSolveRejectsCommands(t *testing.T) {
	x := newExecutor(t)
	_, err := x.Solve(context.Background(), parser.Parse("!random", 3))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSolveCancelled(t *testing.T) {
	x := newExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := x.Solve(ctx, parser.Parse("cat dog", 3))
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolveAddsTokenSpans(t *testing.T) {
	x := newExecutor(t)
	ctx, root := tracing.StartSpan(context.Background(), "solve", "req")
	_, err := x.Solve(ctx, parser.Parse("cat dog at", 3))
	require.NoError(t, err)
	root.End()
	assert.Len(t, root.Summary().Children, 2)
}

func TestPhraseClampsLimit(t *testing.T) {
	x := newExecutor(t)
	res, err := x.Phrase(context.Background(), "cat dog", 0)
	require.NoError(t, err)
	assert.Equal(t, testConfig().PhraseLimit, res.Limit)
	assert.NotEmpty(t, res.Solutions)

	res, err = x.Phrase(context.Background(), "cat dog", 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, testConfig().MaxPhraseLimit, res.Limit)
}

func TestSymbolicRejectsEmpty(t *testing.T) {
	x := newExecutor(t)
	_, err := x.Symbolic("   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	a, err := x.Symbolic("XYYZ QRSQ")
	require.NoError(t, err)
	assert.Len(t, a.Alphabet, 6)
}

func TestSubstitution(t *testing.T) {
	x := newExecutor(t)
	res, err := x.Substitution(context.Background(), "QRS")
	require.NoError(t, err)
	assert.False(t, res.Resolved)
	assert.ElementsMatch(t, []string{"cat", "act", "tac", "dog", "god"}, res.Tokens[0].Candidates)

	_, err = x.Substitution(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

type slowEngine struct {
	Engine
}

func (slowEngine) Substitution(ctx context.Context, tokens []string) (*matcher.SubstitutionResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSubstitutionTimesOut(t *testing.T) {
	cfg := testConfig()
	cfg.SubstitutionTimeout = 10 * time.Millisecond
	x := New(slowEngine{}, cfg)
	_, err := x.Substitution(context.Background(), "XYZ")
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.Equal(t, 504, apperrors.HTTPStatusCode(err))
}

// BenchmarkSolve measures a full solve query with a growing number of
// routed tokens.
func BenchmarkSolve(b *testing.B) {
	e, err := matcher.NewFromWords(sampleWords)
	if err != nil {
		b.Fatal(err)
	}
	x := New(e, testConfig())
	for _, n := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("tokens_%d", n), func(b *testing.B) {
			query := ""
			for i := 0; i < n; i++ {
				if i%2 == 0 {
					query += "meat "
				} else {
					query += "c-t "
				}
			}
			plan := parser.Parse(query, 3)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := x.Solve(context.Background(), plan); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkSolveParallel measures concurrent solve throughput.
func BenchmarkSolveParallel(b *testing.B) {
	e, err := matcher.NewFromWords(sampleWords)
	if err != nil {
		b.Fatal(err)
	}
	x := New(e, testConfig())
	plan := parser.Parse("cheer c-t tame", 3)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := x.Solve(context.Background(), plan); err != nil {
				b.Fatal(err)
			}
		}
	})
}
