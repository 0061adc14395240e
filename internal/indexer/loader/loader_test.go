package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	input := "Cat\n  act \n\nit's\ndog\nox\ncafé\ncat\n"
	res, err := Read(strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"cat", "act", "dog", "ox", "cat"}, res.Words)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 8, res.LinesParsed)
}

func TestReadMinLength(t *testing.T) {
	res, err := Read(strings.NewReader("a\nox\ncat\ntame\n"), Options{MinLength: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "tame"}, res.Words)
	assert.Equal(t, 2, res.TooShort)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("god\ndog\n"), 0o644))

	res, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"god", "dog"}, res.Words)

	_, err = Load(filepath.Join(t.TempDir(), "nope.txt"), Options{})
	assert.Error(t, err)
}
