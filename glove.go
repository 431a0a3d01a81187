package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/mmap"
)

// loadGloVe memory-maps a GloVe or word2vec text file and builds an index.
// Lines are "word v1 ... vD"; a leading "count dim" header line is skipped.
// maxWords caps the vocabulary (0 loads everything).
func loadGloVe(ctx context.Context, path string, maxWords int, log *logger) (*vectorIndex, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap embeddings: %w", err)
	}
	defer r.Close()

	idx, err := readGloVe(ctx, io.NewSectionReader(r, 0, int64(r.Len())), maxWords, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// readGloVe parses GloVe text from rd.
func readGloVe(ctx context.Context, rd io.Reader, maxWords int, log *logger) (*vectorIndex, error) {
	idx := newVectorIndex(0)
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	const logEvery = 100_000
	var vec []float32
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%logEvery == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			if log != nil {
				log.debugf("embeddings: %d words loaded", idx.Len())
			}
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[1]); err == nil {
				continue
			}
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: no vector components", lineNo)
		}

		vec = vec[:0]
		for _, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse component: %w", lineNo, err)
			}
			vec = append(vec, float32(v))
		}
		if err := idx.add(normalizeWord(fields[0]), vec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if maxWords > 0 && idx.Len() >= maxWords {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read embeddings: %w", err)
	}
	if idx.Len() == 0 {
		return nil, fmt.Errorf("no embeddings found")
	}
	return idx, nil
}
