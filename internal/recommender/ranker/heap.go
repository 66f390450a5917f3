package ranker

import (
	"container/heap"
	"sort"
)

// Scored is a catalog row and its similarity to the query.
type Scored struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Better reports whether a ranks ahead of b: higher score first, then
// lower catalog index.
func Better(a, b Scored) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}

// topK keeps the k best entries seen. The root is the worst kept entry.
type topK struct {
	limit int
	items scoredHeap
}

func newTopK(limit int) *topK {
	return &topK{limit: limit, items: make(scoredHeap, 0, limit)}
}

func (t *topK) offer(s Scored) {
	if len(t.items) < t.limit {
		heap.Push(&t.items, s)
		return
	}
	if Better(s, t.items[0]) {
		t.items[0] = s
		heap.Fix(&t.items, 0)
	}
}

// Merge combines partial results into the k best overall, best first.
func Merge(parts [][]Scored, limit int) []Scored {
	t := newTopK(limit)
	for _, part := range parts {
		for _, s := range part {
			t.offer(s)
		}
	}
	return t.sorted()
}

func (t *topK) sorted() []Scored {
	out := make([]Scored, len(t.items))
	copy(out, t.items)
	sort.Slice(out, func(i, j int) bool { return Better(out[i], out[j]) })
	return out
}

type scoredHeap []Scored

func (h scoredHeap) Len() int { return len(h) }

func (h scoredHeap) Less(i, j int) bool { return Better(h[j], h[i]) }

func (h scoredHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredHeap) Push(x interface{}) {
	*h = append(*h, x.(Scored))
}

func (h *scoredHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
