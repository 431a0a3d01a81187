package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
)

// fakeScorer scores words from a table; unlisted words are cold with a score
// derived from their length.
type fakeScorer struct {
	results map[string]guessResult
	calls   map[string]int
	order   []string
}

func newFakeScorer(results ...guessResult) *fakeScorer {
	s := &fakeScorer{results: make(map[string]guessResult), calls: make(map[string]int)}
	for _, r := range results {
		s.results[r.Word] = r
	}
	return s
}

func (s *fakeScorer) guess(_ context.Context, word string) guessResult {
	s.calls[word]++
	s.order = append(s.order, word)
	if r, ok := s.results[word]; ok {
		return r
	}
	return guessResult{Word: word, Score: float64(len(word)), Percentile: coldPercentile}
}

// fakeOracle returns generated neighbors "<word>-nNNNN" unless fixed lists a
// word, and records requests.
type fakeOracle struct {
	requests []oracleRequest
	missing  map[string]bool
	fixed    map[string][]neighbor
}

type oracleRequest struct {
	word string
	topN int
}

func (o *fakeOracle) nearestNeighbors(_ context.Context, word string, topN int) ([]neighbor, error) {
	o.requests = append(o.requests, oracleRequest{word: word, topN: topN})
	if o.missing[word] {
		return nil, fmt.Errorf("%q: %w", word, errNotInVocabulary)
	}
	if nbrs, ok := o.fixed[word]; ok {
		return nbrs, nil
	}
	out := make([]neighbor, topN)
	for i := range out {
		out[i] = neighbor{Word: fmt.Sprintf("%s-n%04d", word, i), Similarity: 1 - float32(i)/float32(topN+1)}
	}
	return out, nil
}

func (o *fakeOracle) expanded(word string) bool {
	for _, r := range o.requests {
		if r.word == word {
			return true
		}
	}
	return false
}

var testCorpus = []string{"time", "year", "people", "way", "day", "man", "thing", "woman", "life", "child", "world", "school"}

func newTestSelector(t *testing.T, sc scorer, oracle neighborOracle, opts ...selectorOption) *guessSelector {
	t.Helper()
	opts = append([]selectorOption{
		withRand(rand.New(rand.NewSource(42))),
		withLogger(newLoggerTo(io.Discard)),
	}, opts...)
	sel, err := newGuessSelector(sc, oracle, testCorpus, opts...)
	if err != nil {
		t.Fatalf("newGuessSelector: %v", err)
	}
	return sel
}

func TestSolveWinsOnSeedWord(t *testing.T) {
	sc := newFakeScorer(
		guessResult{Word: "hello", Score: 12.1, Percentile: coldPercentile},
		guessResult{Word: "first", Score: 30.4, Percentile: 512},
		guessResult{Word: "forever", Score: 100, Percentile: winPercentile},
	)
	oracle := &fakeOracle{}
	sel := newTestSelector(t, sc, oracle)

	rep := sel.solve(context.Background(), 10, []string{"hello", "first", "forever"})
	if !rep.Won {
		t.Fatalf("expected win")
	}
	if rep.Guesses != 3 {
		t.Fatalf("guesses = %d, want 3", rep.Guesses)
	}
	if rep.Winner.Word != "forever" {
		t.Fatalf("winner = %s, want forever", rep.Winner.Word)
	}
	if len(oracle.requests) != 0 {
		t.Fatalf("oracle consulted %d times before refinement", len(oracle.requests))
	}

	var buf bytes.Buffer
	rep.write(&buf)
	if got := buf.String(); !strings.Contains(got, "forever") || !strings.Contains(got, "3 guesses") {
		t.Fatalf("unexpected report: %q", got)
	}
}

func TestSolveAllColdExhaustsBudget(t *testing.T) {
	sc := newFakeScorer()
	oracle := &fakeOracle{}
	sel := newTestSelector(t, sc, oracle)

	rep := sel.solve(context.Background(), 10, []string{"hello", "world", "forever"})
	if rep.Won {
		t.Fatalf("expected loss")
	}
	if rep.Guesses != 10 {
		t.Fatalf("guesses = %d, want 10", rep.Guesses)
	}
	if len(rep.Best) != reportTopN {
		t.Fatalf("best = %d entries, want %d", len(rep.Best), reportTopN)
	}
	for i := 1; i < len(rep.Best); i++ {
		if rep.Best[i-1].less(rep.Best[i]) {
			t.Fatalf("best not sorted descending at %d: %+v", i, rep.Best)
		}
	}
	// every guessed word scores at most the best one
	for _, w := range sc.order {
		if float64(len(w)) > rep.Best[0].Score {
			t.Fatalf("%s scores above reported best %v", w, rep.Best[0])
		}
	}

	// first expansion is of the best cold seed with the full cold pool
	if len(oracle.requests) == 0 {
		t.Fatalf("oracle never consulted")
	}
	first := oracle.requests[0]
	if first.word != "forever" || first.topN != coldNeighborPool {
		t.Fatalf("first expansion = %+v, want forever/%d", first, coldNeighborPool)
	}
	for _, w := range sc.order {
		if strings.HasPrefix(w, "forever-n") {
			var n int
			if _, err := fmt.Sscanf(strings.TrimPrefix(w, "forever-n"), "%d", &n); err != nil {
				t.Fatalf("parse neighbor %s: %v", w, err)
			}
			if n < coldNeighborSkip {
				t.Fatalf("cold pick %s came from the closest %d neighbors", w, coldNeighborSkip)
			}
		}
	}
}

func TestSolveNetworkFailureOnSeedContinues(t *testing.T) {
	sc := newFakeScorer(
		failedGuess("hello", errNetwork, errors.New("connection refused")),
		guessResult{Word: "first", Score: 20, Percentile: coldPercentile},
		guessResult{Word: "second", Score: 25, Percentile: coldPercentile},
	)
	oracle := &fakeOracle{}
	sel := newTestSelector(t, sc, oracle)

	rep := sel.solve(context.Background(), 6, []string{"hello", "first", "second"})
	if rep.Won {
		t.Fatalf("expected loss")
	}
	if sc.order[0] != "hello" || sc.order[1] != "first" || sc.order[2] != "second" {
		t.Fatalf("seed order = %v", sc.order[:3])
	}
	if oracle.expanded("hello") {
		t.Fatalf("failed guess was expanded")
	}

	var failed *guessResult
	for i := range rep.Best {
		if rep.Best[i].Word == "hello" {
			failed = &rep.Best[i]
		}
	}
	if failed != nil && (failed.Score != failedScore || !errors.Is(failed.Err, errNetwork)) {
		t.Fatalf("failed guess reported as %+v", *failed)
	}
}

func TestSolveNeverGuessesTwiceOrOverBudget(t *testing.T) {
	sc := newFakeScorer(
		guessResult{Word: "time", Score: 35, Percentile: 700},
		guessResult{Word: "year", Score: 5, Percentile: coldPercentile},
	)
	oracle := &fakeOracle{}
	sel := newTestSelector(t, sc, oracle)

	const tries = 60
	rep := sel.solve(context.Background(), tries, []string{"time", "year", "TIME", " year "})
	if rep.Guesses > tries {
		t.Fatalf("guesses = %d exceeds budget %d", rep.Guesses, tries)
	}
	for w, n := range sc.calls {
		if n != 1 {
			t.Fatalf("%s guessed %d times", w, n)
		}
	}

	// hot seed expands first with a radius-limited neighborhood
	first := oracle.requests[0]
	wantTopN := min(hotNeighborCap, winPercentile-700+hotRadiusPad)
	if first.word != "time" || first.topN != wantTopN {
		t.Fatalf("first expansion = %+v, want time/%d", first, wantTopN)
	}
}

func TestSolveHotRadiusNarrowsNearWin(t *testing.T) {
	sc := newFakeScorer(guessResult{Word: "close", Score: 80, Percentile: 999})
	oracle := &fakeOracle{}
	sel := newTestSelector(t, sc, oracle)

	sel.solve(context.Background(), 4, []string{"close"})
	if len(oracle.requests) == 0 {
		t.Fatalf("oracle never consulted")
	}
	if got, want := oracle.requests[0].topN, winPercentile-999+hotRadiusPad; got != want {
		t.Fatalf("topN = %d, want %d", got, want)
	}
}

func TestSolveStopsOnWinBeforeQueueing(t *testing.T) {
	sc := newFakeScorer(
		guessResult{Word: "seed", Score: 40, Percentile: 950},
		guessResult{Word: "target", Score: 100, Percentile: winPercentile},
	)
	oracle := &fakeOracle{fixed: map[string][]neighbor{
		"seed": {{Word: "target", Similarity: 0.9}},
	}}
	sel := newTestSelector(t, sc, oracle)

	rep := sel.solve(context.Background(), 100, []string{"seed"})
	if !rep.Won || rep.Winner.Word != "target" {
		t.Fatalf("expected win on target, got %+v", rep)
	}
	if rep.Guesses != 2 || len(sc.order) != 2 {
		t.Fatalf("guesses = %d, scorer saw %v; want seed then target", rep.Guesses, sc.order)
	}
	if oracle.expanded("target") {
		t.Fatalf("winning word was queued and expanded")
	}
}

func TestSolveEmptySeedsDrawFromCorpus(t *testing.T) {
	sc := newFakeScorer()
	oracle := &fakeOracle{}
	sel := newTestSelector(t, sc, oracle, withSeedCount(4))

	sel.solve(context.Background(), 1, nil)
	if len(sc.order) != 1 {
		t.Fatalf("guesses = %v, want exactly one", sc.order)
	}
	inCorpus := make(map[string]bool)
	for _, w := range testCorpus {
		inCorpus[w] = true
	}
	for _, w := range sc.order {
		if !inCorpus[w] {
			t.Fatalf("seed %s not drawn from corpus", w)
		}
	}
}

func TestSolveUnknownToOracleStillDiversifies(t *testing.T) {
	sc := newFakeScorer(guessResult{Word: "zzyzx", Score: 3, Percentile: coldPercentile})
	oracle := &fakeOracle{missing: map[string]bool{"zzyzx": true}}
	sel := newTestSelector(t, sc, oracle)

	rep := sel.solve(context.Background(), 3, []string{"zzyzx"})
	if rep.Guesses < 2 {
		t.Fatalf("guesses = %d, expected corpus picks after oracle miss", rep.Guesses)
	}
}

func TestSolveStopsWhenNothingLeft(t *testing.T) {
	sc := newFakeScorer()
	for _, w := range testCorpus {
		sc.results[w] = failedGuess(w, errUnknownWord, nil)
	}
	oracle := &fakeOracle{}
	sel := newTestSelector(t, sc, oracle)

	rep := sel.solve(context.Background(), 1000, []string{"time"})
	if rep.Won {
		t.Fatalf("expected loss")
	}
	if rep.Guesses != len(testCorpus) {
		t.Fatalf("guesses = %d, want every corpus word once (%d)", rep.Guesses, len(testCorpus))
	}
	if len(oracle.requests) != 0 {
		t.Fatalf("failed guesses were expanded: %+v", oracle.requests)
	}
}

func TestNewGuessSelectorSetupErrors(t *testing.T) {
	if _, err := newGuessSelector(newFakeScorer(), &fakeOracle{}, nil); !errors.Is(err, errEmptyCorpus) {
		t.Fatalf("empty corpus: got %v", err)
	}
	if _, err := newGuessSelector(nil, &fakeOracle{}, testCorpus); err == nil {
		t.Fatalf("nil scorer accepted")
	}
	if _, err := newGuessSelector(newFakeScorer(), nil, testCorpus); err == nil {
		t.Fatalf("nil oracle accepted")
	}
}
