package main

import (
	"fmt"
	"io"
	"slices"
)

// reportTopN is how many guesses a lost run lists.
const reportTopN = 5

// runReport summarizes a finished solve.
type runReport struct {
	Won     bool
	Guesses int
	Winner  guessResult
	Best    []guessResult
}

// buildReport summarizes the guess log. Best holds the top guesses ordered
// from best to worst.
func buildReport(guesses []guessResult) runReport {
	rep := runReport{Guesses: len(guesses)}
	if n := len(guesses); n > 0 && guesses[n-1].Won() {
		rep.Won = true
		rep.Winner = guesses[n-1]
		return rep
	}

	sorted := slices.Clone(guesses)
	slices.SortFunc(sorted, func(a, b guessResult) int {
		switch {
		case b.less(a):
			return -1
		case a.less(b):
			return 1
		}
		return 0
	})
	rep.Best = sorted[:min(reportTopN, len(sorted))]
	return rep
}

// write prints the end-of-run report.
func (r runReport) write(w io.Writer) {
	if r.Won {
		_, _ = fmt.Fprintf(w, "The word was %s. You win after %d guesses!\n", r.Winner.Word, r.Guesses)
		return
	}
	_, _ = fmt.Fprintf(w, "Fail! Best %d guesses (out of %d) were -\n", len(r.Best), r.Guesses)
	for _, g := range r.Best {
		_, _ = fmt.Fprintf(w, "  %-20s %7.2f  %s\n", g.Word, g.Score, describePercentile(g))
	}
}

func describePercentile(r guessResult) string {
	switch {
	case r.Failed():
		return "(failed)"
	case r.Cold():
		return "(cold)"
	}
	return fmt.Sprintf("(%d/1000)", r.Percentile)
}

// logGuess logs one guess as it happens.
func logGuess(log *logger, r guessResult) {
	switch {
	case r.Failed():
		log.warnf("%s: %v", r.Word, r.Err)
	case r.Won():
		log.okf("you win! the word is %s", r.Word)
	case r.Cold():
		log.infof("%s %.2f | (cold)", r.Word, r.Score)
	default:
		log.infof("%s %.2f | (getting close - %d/1000)", r.Word, r.Score, r.Percentile)
	}
}
