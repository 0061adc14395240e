// Command wordcli runs word-puzzle queries from the command line.
//
// Usage:
//
//	wordcli -c anagram [--wordlist data/wordlist.txt] [--min 3] WORD...
//	wordcli -c phrase [--limit 20] PHRASE...
//	wordcli -c blanks -- PATTERN...       ('-' marks a blank)
//	wordcli -c caesar [--shift N] WORD...
//	wordcli -c rot13 WORD...
//	wordcli -c symbolic TOKEN...
//	wordcli -c substitution TOKEN...
//	wordcli -c random [--limit N]
//	wordcli -c scramble WORD...
//	wordcli -c benchmark
//
// Results go to stdout, logs to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/loader"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/matcher"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/query/executor"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/logger"
)

var errUsage = errors.New("usage")

type options struct {
	command  string
	wordlist string
	minLen   int
	shift    int
	shiftSet bool
	limit    int
	logLevel string
	args     []string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "wordcli [flags] ARG...",
		Short:         "Solve anagrams, blanks and ciphers against a word list",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.shiftSet = cmd.Flags().Changed("shift")
			opts.args = args
			return run(cmd.Context(), opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&opts.command, "command", "c", "anagram",
		"anagram|phrase|blanks|caesar|rot13|symbolic|substitution|benchmark|random|scramble")
	f.StringVar(&opts.wordlist, "wordlist", "data/wordlist.txt", "path to the word list")
	f.IntVar(&opts.minLen, "min", 1, "minimum word length kept from the word list")
	f.IntVar(&opts.shift, "shift", 0, "caesar: apply this shift instead of searching")
	f.IntVar(&opts.limit, "limit", 0, "phrase: maximum solutions; random: number of words")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "wordcli: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	slog.SetDefault(logger.New(stderr, opts.logLevel, "text"))

	loaded, err := loader.Load(opts.wordlist, loader.Options{MinLength: opts.minLen})
	if err != nil {
		return err
	}
	engine, err := matcher.NewFromWords(loaded.Words)
	if err != nil {
		return err
	}
	slog.Info("dictionary loaded", "words", len(loaded.Words), "skipped", loaded.Skipped)

	cfg := config.Default().Engine
	if opts.limit > cfg.MaxPhraseLimit {
		cfg.MaxPhraseLimit = opts.limit
	}
	c := &cli{
		engine: engine,
		exec:   executor.New(engine, cfg),
		out:    stdout,
		errOut: stderr,
		opts:   opts,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	return c.dispatch(ctx)
}

type cli struct {
	engine *matcher.Engine
	exec   *executor.Executor
	out    io.Writer
	errOut io.Writer
	opts   *options
	rng    *rand.Rand
}

func (c *cli) dispatch(ctx context.Context) error {
	switch c.opts.command {
	case "anagram":
		return c.eachArg(c.anagram)
	case "phrase":
		return c.phrase(ctx)
	case "blanks":
		return c.eachArg(c.blanks)
	case "caesar":
		return c.eachArg(c.caesar)
	case "rot13":
		return c.eachArg(c.rot)
	case "symbolic":
		return c.symbolic()
	case "substitution":
		return c.substitution(ctx)
	case "random":
		return c.random()
	case "scramble":
		return c.eachArg(c.scramble)
	case "benchmark":
		return c.benchmark()
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, c.opts.command)
	}
}

func (c *cli) eachArg(fn func(string) error) error {
	if len(c.opts.args) == 0 {
		return fmt.Errorf("%w: %s needs at least one argument", errUsage, c.opts.command)
	}
	for _, arg := range c.opts.args {
		if err := fn(arg); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) anagram(word string) error {
	res, err := c.engine.Anagram(word)
	if err != nil {
		return err
	}
	marker := ""
	if res.IsWord {
		marker = " *"
	}
	fmt.Fprintf(c.out, "%s%s: %s\n", res.Word, marker, strings.Join(res.Anagrams, " "))
	return nil
}

func (c *cli) blanks(pattern string) error {
	words, err := c.engine.FillInTheBlanks(pattern)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: %s\n", pattern, strings.Join(words, " "))
	return nil
}

func (c *cli) caesar(word string) error {
	if c.opts.shiftSet {
		shifted, err := c.engine.CaesarShift(word, c.opts.shift)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s %+d: %s\n", word, c.opts.shift, shifted)
		return nil
	}
	matches, err := c.engine.CaesarSearch(word)
	if err != nil {
		return err
	}
	return c.printShifts(word, matches)
}

func (c *cli) rot(word string) error {
	matches, err := c.engine.Rot(word)
	if err != nil {
		return err
	}
	return c.printShifts(word, matches)
}

func (c *cli) printShifts(word string, matches []matcher.ShiftMatch) error {
	formatted := make([]string, len(matches))
	for i, m := range matches {
		formatted[i] = m.String()
	}
	fmt.Fprintf(c.out, "%s: %s\n", word, strings.Join(formatted, ", "))
	return nil
}

func (c *cli) phrase(ctx context.Context) error {
	if len(c.opts.args) == 0 {
		return fmt.Errorf("%w: phrase needs a phrase", errUsage)
	}
	res, err := c.exec.Phrase(ctx, strings.Join(c.opts.args, " "), c.opts.limit)
	if err != nil {
		return err
	}
	for _, words := range res.Solutions {
		fmt.Fprintln(c.out, strings.Join(words, " "))
	}
	return nil
}

func (c *cli) symbolic() error {
	a, err := c.exec.Symbolic(strings.Join(c.opts.args, " "))
	if err != nil {
		return err
	}
	for _, l := range a.Alphabet {
		fmt.Fprintf(c.out, "%c #%d x%d %v\n", l.Symbol, l.Ordinal, l.Frequency, l.ByToken)
	}
	for i := range a.Tokens {
		fmt.Fprintf(c.out, "token %d: %v pattern %v\n", i, a.Tokens[i], a.Pattern(i))
	}
	return nil
}

func (c *cli) substitution(ctx context.Context) error {
	res, err := c.exec.Substitution(ctx, strings.Join(c.opts.args, " "))
	if err != nil {
		return err
	}
	for _, tc := range res.Tokens {
		fmt.Fprintf(c.out, "%s: %s\n", tc.Token, strings.Join(tc.Candidates, " "))
	}
	return nil
}

func (c *cli) random() error {
	n := c.opts.limit
	if n <= 0 {
		n = 5
	}
	for _, w := range c.engine.Random(n, c.rng) {
		fmt.Fprintln(c.out, w)
	}
	return nil
}

func (c *cli) scramble(word string) error {
	s, err := c.engine.Scramble(word, c.rng)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, s)
	return nil
}

// benchmark runs an anagram lookup for every dictionary word and reports
// the word with the most anagrams.
func (c *cli) benchmark() error {
	words := c.engine.Index().Dictionary.Words()
	bar := progressbar.NewOptions(len(words),
		progressbar.OptionSetWriter(c.errOut),
		progressbar.OptionSetDescription("anagram lookups"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	start := time.Now()
	found := 0
	for _, w := range words {
		res, err := c.engine.Anagram(w)
		if err != nil {
			return err
		}
		found += len(res.Anagrams)
		if err := bar.Add(1); err != nil {
			return fmt.Errorf("progress: %w", err)
		}
	}
	if err := bar.Finish(); err != nil {
		return fmt.Errorf("progress: %w", err)
	}
	elapsed := time.Since(start)

	fmt.Fprintf(c.out, "words: %d\n", len(words))
	fmt.Fprintf(c.out, "anagrams found: %d\n", found)
	fmt.Fprintf(c.out, "elapsed: %s\n", elapsed)
	if len(words) > 0 {
		fmt.Fprintf(c.out, "per word: %s\n", elapsed/time.Duration(len(words)))
	}
	if most, ok := c.engine.MostAnagrams(); ok {
		fmt.Fprintf(c.out, "most anagrams: %s (%d): %s\n", most.Word, len(most.Anagrams), strings.Join(most.Anagrams, " "))
	}
	return nil
}
