package main

import "container/heap"

// boostCopies returns how many extra pops a result earns on top of its base
// weight of one. Cold results earn none.
func boostCopies(percentile int) int {
	if percentile <= coldPercentile {
		return 0
	}
	return percentile/200 + 1
}

// candidate is a queued result together with the number of pops it has left.
type candidate struct {
	result guessResult
	weight int
}

// candidateHeap is a max-heap on guessResult.less.
type candidateHeap []*candidate

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return h[j].result.less(h[i].result) }
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(*candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return c
}

// candidateQueue hands out the best-scoring result first. A result with weight
// w is handed out w times in a row before the next one.
type candidateQueue struct {
	h     candidateHeap
	total int
}

func newCandidateQueue() *candidateQueue {
	return &candidateQueue{}
}

// add queues a result with weight 1 + boostCopies. Failed results are
// ignored; add reports whether r was queued.
func (q *candidateQueue) add(r guessResult) bool {
	if r.Failed() || r.Score <= failedScore {
		return false
	}
	w := 1 + boostCopies(r.Percentile)
	heap.Push(&q.h, &candidate{result: r, weight: w})
	q.total += w
	return true
}

// pop returns the top result and consumes one unit of its weight.
func (q *candidateQueue) pop() (guessResult, bool) {
	if len(q.h) == 0 {
		return guessResult{}, false
	}
	top := q.h[0]
	top.weight--
	q.total--
	if top.weight == 0 {
		heap.Pop(&q.h)
	}
	return top.result, true
}

// Len reports the number of distinct queued results.
func (q *candidateQueue) Len() int { return len(q.h) }

// pending reports the total remaining pops over all results.
func (q *candidateQueue) pending() int { return q.total }
