// Package ranker scores every catalog row against a query row by cosine
// similarity and returns the K most similar rows.
package ranker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
)

// minChunk is the smallest slice of rows worth a goroutine of its own.
const minChunk = 2048

// Engine runs the full similarity sweep, split across up to workers
// goroutines.
type Engine struct {
	workers int
	logger  *slog.Logger
}

// NewEngine creates an Engine that scores with up to workers goroutines.
func NewEngine(workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		workers: workers,
		logger:  slog.Default().With("component", "ranker"),
	}
}

// TopK returns up to k rows most similar to row query, best first, ties
// broken by ascending index. The query row itself is never included.
func (e *Engine) TopK(ctx context.Context, snap *catalog.Snapshot, query int, k int) ([]Scored, error) {
	if k < 1 {
		return nil, apperrors.InvalidParameter("k must be at least 1, got %d", k)
	}
	qv, err := snap.Vector(query)
	if err != nil {
		return nil, err
	}
	n := snap.Size()
	chunks := e.chunks(n)

	parts := make([][]Scored, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for ci, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			best := newTopK(k)
			for i := c[0]; i < c[1]; i++ {
				if i == query {
					continue
				}
				v, _ := snap.Vector(i)
				best.offer(Scored{Index: i, Score: qv.Cosine(v)})
			}
			parts[ci] = best.items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result := Merge(parts, k)
	e.logger.Debug("ranked catalog",
		"query", query,
		"k", k,
		"chunks", len(chunks),
		"returned", len(result),
	)
	return result, nil
}

// chunks splits [0, n) into contiguous half-open ranges.
func (e *Engine) chunks(n int) [][2]int {
	workers := e.workers
	if limit := (n + minChunk - 1) / minChunk; workers > limit {
		workers = limit
	}
	if workers < 1 {
		workers = 1
	}
	size := (n + workers - 1) / workers
	out := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		out = append(out, [2]int{lo, hi})
	}
	if len(out) == 0 {
		out = append(out, [2]int{0, 0})
	}
	return out
}
