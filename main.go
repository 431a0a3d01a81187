package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Command names.
const (
	cmdInitConfig = "init-config"
	cmdHelp       = "help"
	appName       = "semantle-solver"
)

// errUsage marks bad command-line arguments.
var errUsage = errors.New("usage error")

func main() {
	_ = godotenv.Load()
	log := newLogger()
	if err := run(context.Background(), log, os.Args[1:], os.Stdout); err != nil {
		log.err(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger, args []string, stdout io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case cmdHelp, "-h", "--help":
			printUsage(stdout)
			return nil
		case cmdInitConfig:
			return runInitConfig(log, configPath())
		}
	}
	return runSolve(ctx, log, args, stdout)
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "semantle-solver: automatic Semantle solver")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  semantle-solver [puzzle_number [tries [seed_words_comma_separated]]]")
	_, _ = fmt.Fprintln(w, "  semantle-solver init-config")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Defaults: puzzle_number=1, tries from config (250), random seed words")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Environment:")
	_, _ = fmt.Fprintln(w, "  SEMANTLE_SOLVER_CONFIG  Path to config.json (default ./config.json)")
	_, _ = fmt.Fprintln(w, "  OPENAI_API_KEY          Key for the openai embeddings source")
	_, _ = fmt.Fprintln(w, "  LOG_LEVEL               debug, info, warn, error")
	_, _ = fmt.Fprintln(w, "  NO_COLOR                Disable colored output")
}

func runInitConfig(log *logger, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := saveConfig(path, defaultConfig()); err != nil {
		return err
	}
	log.okf("%s written with defaults", path)
	return nil
}

// cliArgs holds the parsed positional arguments.
type cliArgs struct {
	Puzzle int
	Tries  int
	Seeds  []string
}

// parseArgs parses `puzzle_number [tries [seed_words]]`.
func parseArgs(args []string, defaultTries int) (cliArgs, error) {
	out := cliArgs{Puzzle: 1, Tries: defaultTries}

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return cliArgs{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	pos := fs.Args()
	if len(pos) > 3 {
		return cliArgs{}, fmt.Errorf("%w: too many arguments", errUsage)
	}

	if len(pos) >= 1 {
		n, err := strconv.Atoi(pos[0])
		if err != nil || n <= 0 {
			return cliArgs{}, fmt.Errorf("%w: puzzle_number must be a positive integer, got %q", errUsage, pos[0])
		}
		out.Puzzle = n
	}
	if len(pos) >= 2 {
		n, err := strconv.Atoi(pos[1])
		if err != nil || n <= 0 {
			return cliArgs{}, fmt.Errorf("%w: tries must be a positive integer, got %q", errUsage, pos[1])
		}
		out.Tries = n
	}
	if len(pos) == 3 {
		out.Seeds = parseSeedWords(pos[2])
	}
	return out, nil
}

func runSolve(ctx context.Context, log *logger, args []string, stdout io.Writer) error {
	path := configPath()
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	a, err := parseArgs(args, cfg.Tries)
	if err != nil {
		printUsage(os.Stderr)
		return err
	}

	words, err := loadCorpus(cfg.WordsPath)
	if err != nil {
		return err
	}
	secrets, err := loadSecrets(cfg.SecretsPath)
	if err != nil {
		return err
	}
	secret, err := resolveSecret(secrets, a.Puzzle)
	if err != nil {
		return err
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}
	sc, err := newSemantleScorer(ctx, client, secret)
	if err != nil {
		return err
	}

	oracle, err := buildOracle(ctx, cfg, words, log)
	if err != nil {
		return err
	}

	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sel, err := newGuessSelector(sc, oracle, words,
		withRand(rand.New(rand.NewSource(seed))),
		withSeedCount(cfg.SeedCount),
		withLogger(log),
		withProgress(newProgress(cfg.Progress, a.Tries, "guesses")),
	)
	if err != nil {
		return err
	}

	log.infof("attempting puzzle number %d in %d tries", a.Puzzle, a.Tries)
	start := time.Now()
	rep := sel.solve(ctx, a.Tries, a.Seeds)
	rep.write(stdout)
	log.infof("done: won=%v guesses=%d elapsed=%s", rep.Won, rep.Guesses, time.Since(start).Round(100*time.Millisecond))
	return nil
}

// buildOracle loads the configured embedding source.
func buildOracle(ctx context.Context, cfg appConfig, words []string, log *logger) (neighborOracle, error) {
	start := time.Now()
	switch cfg.Embeddings.Source {
	case sourceGloVe, "":
		log.infof("loading embeddings: %s", cfg.Embeddings.Path)
		idx, err := loadGloVe(ctx, cfg.Embeddings.Path, cfg.Embeddings.MaxWords, log)
		if err != nil {
			return nil, err
		}
		log.okf("loaded %d embeddings (elapsed %s)", idx.Len(), time.Since(start).Round(10*time.Millisecond))
		return &indexOracle{index: idx}, nil
	case sourceOpenAI:
		log.infof("embedding %d corpus words with %s", len(words), cfg.Embeddings.Model)
		prog := newProgress(cfg.Progress, len(words), "embedding vocabulary")
		return newOpenAIOracle(ctx, cfg.Embeddings, words, log, prog)
	default:
		return nil, fmt.Errorf("unknown embeddings source: %s", cfg.Embeddings.Source)
	}
}
