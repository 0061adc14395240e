package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWordlist(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	words := "cat\nact\ntac\ndog\ngod\ntame\nmate\nmeat\ncheer\njolly\ngreen\nterra\nc4t\n"
	require.NoError(t, os.WriteFile(path, []byte(words), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--wordlist", writeWordlist(t)}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestAnagramCommand(t *testing.T) {
	out, err := runCLI(t, "-c", "anagram", "cat", "DOG")
	require.NoError(t, err)
	assert.Equal(t, "cat *: act tac\ndog *: god\n", out)
}

func TestBlanksCommand(t *testing.T) {
	out, err := runCLI(t, "-c", "blanks", "--", "-a-e")
	require.NoError(t, err)
	assert.Equal(t, "-a-e: tame mate\n", out)
}

func TestCaesarCommands(t *testing.T) {
	out, err := runCLI(t, "-c", "caesar", "cheer")
	require.NoError(t, err)
	assert.Contains(t, out, "jolly +7")

	out, err = runCLI(t, "-c", "caesar", "--shift", "7", "cheer")
	require.NoError(t, err)
	assert.Equal(t, "cheer +7: jolly\n", out)

	out, err = runCLI(t, "-c", "rot13", "green")
	require.NoError(t, err)
	assert.Equal(t, "green: terra +13\n", out)
}

func TestPhraseCommand(t *testing.T) {
	out, err := runCLI(t, "-c", "phrase", "--limit", "2", "cat", "dog")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
}

func TestCipherCommands(t *testing.T) {
	out, err := runCLI(t, "-c", "symbolic", "XYYZ", "QRSQ")
	require.NoError(t, err)
	assert.Contains(t, out, "token 0: [0 1 1 2] pattern [0 1 1 2]")
	assert.Contains(t, out, "token 1: [3 4 5 3] pattern [0 1 2 0]")

	out, err = runCLI(t, "-c", "substitution", "QRS")
	require.NoError(t, err)
	assert.Contains(t, out, "dog")
}

func TestRandomAndScrambleCommands(t *testing.T) {
	out, err := runCLI(t, "-c", "random", "--limit", "3")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 3)

	out, err = runCLI(t, "-c", "scramble", "cheer")
	require.NoError(t, err)
	assert.ElementsMatch(t, []rune("cheer"), []rune(strings.TrimSpace(out)))
}

func TestBenchmarkCommand(t *testing.T) {
	out, err := runCLI(t, "-c", "benchmark")
	require.NoError(t, err)
	assert.Contains(t, out, "words: 12\n")
	assert.Contains(t, out, "most anagrams: cat (2): act tac")
}

func TestUsageErrors(t *testing.T) {
	_, err := runCLI(t, "-c", "colorful")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "-c", "anagram")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "-c", "anagram", "c4t")
	assert.Error(t, err)
}
