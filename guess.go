package main

import (
	"errors"
	"fmt"
	"math"
)

// Scoring constants shared by the scorer and the selector.
const (
	failedScore    = -100.0
	coldPercentile = -1
	winPercentile  = 1000
)

// Guess failure kinds. Failed results wrap exactly one of these.
var (
	errUnknownWord = errors.New("word not found")
	errNetwork     = errors.New("network unreachable")
	errMalformed   = errors.New("malformed response")
)

// guessResult is the outcome of one guess. A failed guess carries Err and the
// sentinel score.
type guessResult struct {
	Word       string
	Score      float64
	Percentile int
	Err        error
}

// failedGuess builds the sentinel result for a guess that could not be scored.
func failedGuess(word string, kind, cause error) guessResult {
	err := fmt.Errorf("guess %q: %w", word, kind)
	if cause != nil {
		err = fmt.Errorf("guess %q: %w: %w", word, kind, cause)
	}
	return guessResult{Word: word, Score: failedScore, Percentile: coldPercentile, Err: err}
}

func (r guessResult) Failed() bool { return r.Err != nil }

func (r guessResult) Cold() bool { return r.Percentile == coldPercentile }

func (r guessResult) Won() bool { return !r.Failed() && r.Percentile == winPercentile }

// less orders results by score, then percentile, then word.
func (r guessResult) less(o guessResult) bool {
	if r.Score != o.Score {
		return r.Score < o.Score
	}
	if r.Percentile != o.Percentile {
		return r.Percentile < o.Percentile
	}
	return r.Word < o.Word
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is zero or their lengths differ.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
