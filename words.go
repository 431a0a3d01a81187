package main

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// errEmptyCorpus is returned when the common-word list has no usable words.
var errEmptyCorpus = errors.New("common-word corpus is empty")

// normalizeWord lowercases, trims and NFC-normalizes a word.
func normalizeWord(w string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(w)))
}

// readWords reads one word per line. Blank lines and # comments are skipped.
func readWords(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, normalizeWord(s))
	}
	return out, sc.Err()
}

// loadCorpus loads the common-word list used for seeding and diversification.
func loadCorpus(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	words, err := readWords(f)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%s: %w", path, errEmptyCorpus)
	}
	return words, nil
}

// loadSecrets loads the base64-encoded secret list, one puzzle per line.
func loadSecrets(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open secrets: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read secrets: %w", err)
	}
	return out, nil
}

// resolveSecret decodes the secret for a 1-based puzzle number.
func resolveSecret(secrets []string, puzzle int) (string, error) {
	if puzzle < 1 || puzzle > len(secrets) {
		return "", fmt.Errorf("puzzle %d out of range (1-%d)", puzzle, len(secrets))
	}
	enc := secrets[puzzle-1]
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode secret for puzzle %d: %w", puzzle, err)
	}
	word := strings.TrimSpace(string(b))
	if word == "" {
		return "", fmt.Errorf("secret for puzzle %d is empty", puzzle)
	}
	return word, nil
}

// parseSeedWords splits a comma-separated seed list, dropping blanks.
func parseSeedWords(s string) []string {
	var out []string
	for _, w := range strings.Split(s, ",") {
		if w = normalizeWord(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}
