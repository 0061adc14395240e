package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/errors"
)

var sampleWords = []string{"cat", "act", "tac", "dog", "god", "tame", "mate", "meat"}

func TestBuildNilIsError(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, apperrors.ErrNoDictionary)
}

func TestBuildEmpty(t *testing.T) {
	idx, err := Build([]string{})
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Dictionary.Len())
	assert.Empty(t, idx.Lengths.Lengths())
	assert.Nil(t, idx.Lengths.Bucket(3))
	assert.Nil(t, idx.Signatures.Lookup(3, "act"))
}

func TestBuildRejectsUnsupportedSymbols(t *testing.T) {
	_, err := Build([]string{"cat", "don't"})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedSymbol)
}

func TestLengthIndexPartitionsDictionary(t *testing.T) {
	words := append([]string{"Cat"}, sampleWords...)
	idx, err := Build(words)
	require.NoError(t, err)

	var union []string
	for _, n := range idx.Lengths.Lengths() {
		for _, w := range idx.Lengths.Bucket(n) {
			assert.Len(t, w, n)
			union = append(union, w)
		}
	}
	assert.ElementsMatch(t, idx.Dictionary.Words(), union)
	// duplicates survive, lowercased
	assert.Equal(t, []string{"cat", "cat", "act", "tac", "dog", "god"}, idx.Lengths.Bucket(3))
}

func TestSignatureIndex(t *testing.T) {
	idx, err := Build(sampleWords)
	require.NoError(t, err)

	entries := idx.Signatures.Lookup(4, "aemt")
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, "aemt", e.Signature)
		assert.Equal(t, 5+i, e.Position)
	}
	assert.Equal(t, "tame", idx.Dictionary.Word(entries[0].Position))

	assert.Len(t, idx.Signatures.Lookup(3, "dgo"), 2)
	assert.Nil(t, idx.Signatures.Lookup(4, "dgo"))
}

func TestBuildIsDeterministic(t *testing.T) {
	a, err := Build(sampleWords)
	require.NoError(t, err)
	b, err := Build(sampleWords)
	require.NoError(t, err)

	assert.Equal(t, a.Lengths.Lengths(), b.Lengths.Lengths())
	for _, n := range a.Lengths.Lengths() {
		assert.Equal(t, a.Lengths.Bucket(n), b.Lengths.Bucket(n))
	}
	assert.Equal(t, a.Signatures.buckets, b.Signatures.buckets)
}

func TestStats(t *testing.T) {
	idx, err := Build(sampleWords)
	require.NoError(t, err)
	assert.Equal(t, Stats{Words: 8, Lengths: 2, Signatures: 3, LongestLen: 4}, idx.Stats())
}

func syntheticWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		b := []byte(fmt.Sprintf("%06d", i))
		for j := range b {
			b[j] = 'a' + (b[j]-'0')*2
		}
		words[i] = string(b)
	}
	return words
}

// BenchmarkBuild measures index construction for dictionaries of
// different sizes.
func BenchmarkBuild(b *testing.B) {
	for _, n := range []int{1000, 10000, 100000} {
		words := syntheticWords(n)
		b.Run(fmt.Sprintf("words_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Build(words); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkLookupParallel measures concurrent signature lookups.
func BenchmarkLookupParallel(b *testing.B) {
	idx, err := Build(syntheticWords(10000))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = idx.Signatures.Lookup(6, "aacegi")
		}
	})
}
