package main

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
)

// errNotInVocabulary is returned for query words the embedding model lacks.
var errNotInVocabulary = errors.New("word not in vocabulary")

// neighbor is one nearest-neighbor match.
type neighbor struct {
	Word       string
	Similarity float32
}

// neighborOracle answers nearest-neighbor queries over an embedding model.
// Results are ordered by descending similarity and exclude the query word.
type neighborOracle interface {
	nearestNeighbors(ctx context.Context, word string, topN int) ([]neighbor, error)
}

// vectorIndex is a brute-force cosine index over L2-normalized vectors stored
// row-major in a flat slice.
type vectorIndex struct {
	dim   int
	words []string
	ids   map[string]int
	data  []float32
}

func newVectorIndex(dim int) *vectorIndex {
	return &vectorIndex{dim: dim, ids: make(map[string]int)}
}

// add stores a copy of vec under word. Duplicate words keep the first vector.
func (x *vectorIndex) add(word string, vec []float32) error {
	if x.dim == 0 {
		x.dim = len(vec)
	}
	if len(vec) != x.dim {
		return fmt.Errorf("vector dimension mismatch for %q: got %d want %d", word, len(vec), x.dim)
	}
	if _, ok := x.ids[word]; ok {
		return nil
	}
	start := len(x.data)
	x.data = append(x.data, vec...)
	normalize(x.data[start:])
	x.ids[word] = len(x.words)
	x.words = append(x.words, word)
	return nil
}

func (x *vectorIndex) Len() int { return len(x.words) }

func (x *vectorIndex) row(i int) []float32 {
	return x.data[i*x.dim : (i+1)*x.dim]
}

// vector returns the stored (normalized) vector for word.
func (x *vectorIndex) vector(word string) ([]float32, bool) {
	i, ok := x.ids[word]
	if !ok {
		return nil, false
	}
	return x.row(i), true
}

// search returns the topN rows most similar to the normalized query, skipping
// the word named by exclude.
func (x *vectorIndex) search(ctx context.Context, query []float32, topN int, exclude string) ([]neighbor, error) {
	if topN <= 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("query dimension mismatch: got %d want %d", len(query), x.dim)
	}

	const checkEvery = 50_000
	h := make(neighborHeap, 0, topN+1)
	for i, w := range x.words {
		if i%checkEvery == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		if w == exclude {
			continue
		}
		sim := dot(x.row(i), query)
		if len(h) < topN {
			heap.Push(&h, neighbor{Word: w, Similarity: sim})
			continue
		}
		if sim > h[0].Similarity {
			h[0] = neighbor{Word: w, Similarity: sim}
			heap.Fix(&h, 0)
		}
	}

	out := make([]neighbor, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(neighbor)
	}
	return out, nil
}

// neighborHeap is a min-heap on similarity holding the best matches so far.
type neighborHeap []neighbor

func (h neighborHeap) Len() int { return len(h) }
func (h neighborHeap) Less(i, j int) bool {
	if h[i].Similarity != h[j].Similarity {
		return h[i].Similarity < h[j].Similarity
	}
	return h[i].Word > h[j].Word
}
func (h neighborHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x any)   { *h = append(*h, x.(neighbor)) }
func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v * v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// indexOracle serves neighbor queries for words already in the index.
type indexOracle struct {
	index *vectorIndex
}

func (o *indexOracle) nearestNeighbors(ctx context.Context, word string, topN int) ([]neighbor, error) {
	q, ok := o.index.vector(word)
	if !ok {
		return nil, fmt.Errorf("%q: %w", word, errNotInVocabulary)
	}
	return o.index.search(ctx, q, topN, word)
}
