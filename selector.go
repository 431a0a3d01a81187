package main

import (
	"context"
	"errors"
	"math/rand"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Neighbor-expansion parameters.
const (
	coldNeighborPool  = 1500 // neighbors fetched for a cold candidate
	coldNeighborSkip  = 750  // closest cold neighbors skipped to diversify
	coldNeighborPicks = 7
	coldCorpusPicks   = 3
	hotNeighborCap    = 50
	hotNeighborPicks  = 10
	hotRadiusPad      = 15
)

// guessSelector drives the guess/response loop.
type guessSelector struct {
	scorer    scorer
	oracle    neighborOracle
	words     []string
	rng       *rand.Rand
	seedCount int
	log       *logger
	progress  progressReporter
}

// selectorOption configures a guessSelector.
type selectorOption func(*guessSelector)

// withRand sets the random source used for all picks.
func withRand(rng *rand.Rand) selectorOption {
	return func(s *guessSelector) { s.rng = rng }
}

// withSeedCount sets how many corpus words are drawn when no seeds are given.
func withSeedCount(n int) selectorOption {
	return func(s *guessSelector) {
		if n > 0 {
			s.seedCount = n
		}
	}
}

// withLogger sets the logger.
func withLogger(l *logger) selectorOption {
	return func(s *guessSelector) { s.log = l }
}

// withProgress reports each issued guess to p.
func withProgress(p progressReporter) selectorOption {
	return func(s *guessSelector) {
		if p != nil {
			s.progress = p
		}
	}
}

func newGuessSelector(sc scorer, oracle neighborOracle, words []string, opts ...selectorOption) (*guessSelector, error) {
	if sc == nil {
		return nil, errors.New("scorer is required")
	}
	if oracle == nil {
		return nil, errors.New("neighbor oracle is required")
	}
	if len(words) == 0 {
		return nil, errEmptyCorpus
	}
	s := &guessSelector{
		scorer:    sc,
		oracle:    oracle,
		words:     words,
		seedCount: defaultSeedCount,
		progress:  nopProgress{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = newLogger()
	}
	return s, nil
}

// solveState is the per-run state. Nothing outlives a single solve call.
type solveState struct {
	tries   int
	queue   *candidateQueue
	visited mapset.Set[string]
	guesses []guessResult
}

func (st *solveState) budgetLeft() bool { return len(st.guesses) < st.tries }

// visit marks word as visited and reports whether it was new.
func (st *solveState) visit(word string) bool { return st.visited.Add(word) }

func (st *solveState) won() bool {
	return len(st.guesses) > 0 && st.guesses[len(st.guesses)-1].Won()
}

// solve plays until the secret is found or tries guesses have been issued.
// Empty seeds fall back to random corpus words.
func (s *guessSelector) solve(ctx context.Context, tries int, seeds []string) runReport {
	st := &solveState{
		tries:   tries,
		queue:   newCandidateQueue(),
		visited: mapset.NewThreadUnsafeSet[string](),
	}
	defer s.progress.finish()

	var normalized []string
	for _, w := range seeds {
		if w = normalizeWord(w); w != "" {
			normalized = append(normalized, w)
		}
	}
	if len(normalized) == 0 {
		normalized = s.randomWords(s.seedCount)
		s.log.infof("no seed words given, drew %d from the corpus", len(normalized))
	}

	if s.guessAll(ctx, st, s.unvisited(st, normalized)) {
		return buildReport(st.guesses)
	}

	for st.budgetLeft() {
		picks, ok := s.nextPicks(ctx, st)
		if !ok {
			s.log.warn("stopping: no candidates or unvisited corpus words left")
			break
		}
		if s.guessAll(ctx, st, picks) {
			break
		}
	}
	return buildReport(st.guesses)
}

// guessAll guesses each word while budget remains and reports whether the
// last guess won.
func (s *guessSelector) guessAll(ctx context.Context, st *solveState, words []string) bool {
	for _, w := range words {
		if !st.budgetLeft() {
			return false
		}
		r := s.scorer.guess(ctx, w)
		st.guesses = append(st.guesses, r)
		s.progress.advance(1)
		logGuess(s.log, r)
		if st.won() {
			return true
		}
		st.queue.add(r)
	}
	return false
}

// nextPicks pops the best candidate and chooses unvisited words around it.
// It reports false when there is nothing left to explore.
func (s *guessSelector) nextPicks(ctx context.Context, st *solveState) ([]string, bool) {
	cand, ok := st.queue.pop()
	if !ok {
		picks := s.sampleUnvisited(st, s.seedCount)
		if len(picks) == 0 {
			return nil, false
		}
		s.log.infof("candidate queue empty, drawing %d fresh corpus words", len(picks))
		return picks, true
	}

	s.log.infof("looking for neighbours of (%s, %.2f)", cand.Word, cand.Score)
	s.log.debugf("queue: %d candidates, %d pending pops", st.queue.Len(), st.queue.pending())
	if cand.Cold() {
		return s.coldPicks(ctx, st, cand), true
	}
	return s.hotPicks(ctx, st, cand), true
}

// coldPicks samples moderately similar neighbors plus random corpus words.
func (s *guessSelector) coldPicks(ctx context.Context, st *solveState, cand guessResult) []string {
	nbrs, err := s.oracle.nearestNeighbors(ctx, cand.Word, coldNeighborPool)
	if err != nil {
		s.log.warnf("neighbours of %s: %v", cand.Word, err)
	}
	pool := nbrs
	if len(nbrs) > coldNeighborSkip {
		pool = nbrs[coldNeighborSkip:]
	}
	picks := s.pickNeighbors(st, pool, coldNeighborPicks)
	for range coldCorpusPicks {
		if w := s.words[s.rng.Intn(len(s.words))]; st.visit(w) {
			picks = append(picks, w)
		}
	}
	return picks
}

// hotPicks samples from a neighborhood that narrows as the percentile rises.
func (s *guessSelector) hotPicks(ctx context.Context, st *solveState, cand guessResult) []string {
	radius := winPercentile - cand.Percentile + hotRadiusPad
	nbrs, err := s.oracle.nearestNeighbors(ctx, cand.Word, min(hotNeighborCap, radius))
	if err != nil {
		s.log.warnf("neighbours of %s: %v", cand.Word, err)
		return nil
	}
	return s.pickNeighbors(st, nbrs, hotNeighborPicks)
}

// pickNeighbors draws n random neighbors with replacement, keeping the
// unvisited ones.
func (s *guessSelector) pickNeighbors(st *solveState, pool []neighbor, n int) []string {
	if len(pool) == 0 {
		return nil
	}
	var picks []string
	for range n {
		w := normalizeWord(pool[s.rng.Intn(len(pool))].Word)
		if w != "" && st.visit(w) {
			picks = append(picks, w)
		}
	}
	return picks
}

// unvisited filters words down to the ones not seen before, marking them.
func (s *guessSelector) unvisited(st *solveState, words []string) []string {
	var out []string
	for _, w := range words {
		if st.visit(w) {
			out = append(out, w)
		}
	}
	return out
}

// randomWords draws n corpus words with replacement.
func (s *guessSelector) randomWords(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s.words[s.rng.Intn(len(s.words))]
	}
	return out
}

// sampleUnvisited draws up to n distinct unvisited corpus words, marking them.
func (s *guessSelector) sampleUnvisited(st *solveState, n int) []string {
	var pool []string
	for _, w := range s.words {
		if !st.visited.Contains(w) {
			pool = append(pool, w)
		}
	}
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return s.unvisited(st, pool[:min(n, len(pool))])
}
