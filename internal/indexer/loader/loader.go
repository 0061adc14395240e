// Package loader reads a plain-text word list (one word per line) into the
// slice index.Build expects.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/alphabet"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/logger"
)

// Options filters the lines kept from a word list.
type Options struct {
	MinLength int
}

// Result is a loaded word list and what was dropped on the way.
type Result struct {
	Words       []string
	Skipped     int
	TooShort    int
	LinesParsed int
}

// Load opens path and reads it with Read.
func Load(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word list %s: %w", path, err)
	}
	defer f.Close()
	res, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("reading word list %s: %w", path, err)
	}
	return res, nil
}

// Read trims each line and drops blanks, words shorter than MinLength, and
// words with symbols outside a-z. Order and duplicates are kept.
func Read(r io.Reader, opts Options) (*Result, error) {
	log := logger.WithComponent("word-loader")
	res := &Result{Words: make([]string, 0, 1024)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		res.LinesParsed++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		word, err := alphabet.Normalize(line)
		if err != nil {
			res.Skipped++
			log.Debug("skipping word", "line", res.LinesParsed, "error", err)
			continue
		}
		if len(word) < opts.MinLength {
			res.TooShort++
			continue
		}
		res.Words = append(res.Words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if res.Skipped > 0 {
		log.Warn("word list contained unsupported entries", "skipped", res.Skipped)
	}
	return res, nil
}
