package main

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// progressReporter tracks work against a known total.
type progressReporter interface {
	advance(n int)
	finish()
}

type nopProgress struct{}

func (nopProgress) advance(int) {}
func (nopProgress) finish()     {}

// barProgress renders a progress bar.
type barProgress struct {
	bar *progressbar.ProgressBar
}

func (p *barProgress) advance(n int) { _ = p.bar.Add(n) }
func (p *barProgress) finish()       { _ = p.bar.Finish() }

// newProgress returns a bar on stderr when enabled and stderr is a terminal.
func newProgress(enabled bool, total int, desc string) progressReporter {
	if !enabled || total <= 0 {
		return nopProgress{}
	}
	if fi, err := os.Stderr.Stat(); err != nil || (fi.Mode()&os.ModeCharDevice) == 0 {
		return nopProgress{}
	}
	return newProgressTo(os.Stderr, total, desc)
}

func newProgressTo(w io.Writer, total int, desc string) progressReporter {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return &barProgress{bar: bar}
}
