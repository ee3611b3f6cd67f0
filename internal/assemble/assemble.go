// Package assemble runs a kernel over every query and merges the capped
// per-query matches into one flat edge list.
//
// Assembly is two-pass. Collect evaluates queries in parallel, each worker
// keeping its query's capped matches private. Write then computes a prefix sum of
// the per-query counts and copies every query's matches into a disjoint
// region of a pre-sized output, again in parallel. No lock is taken in
// either pass.
package assemble

import (
	"context"

	"github.com/hupe1980/edgequery/internal/batch"
	"github.com/hupe1980/edgequery/internal/kernel"
	"github.com/hupe1980/edgequery/internal/sampler"
	"golang.org/x/sync/errgroup"
)

// chunksPerWorker controls how finely queries are split between workers.
const chunksPerWorker = 4

// Config configures a run.
type Config struct {
	// MaxMatches caps the number of edges per query.
	MaxMatches int
	// Workers is the number of goroutines evaluating queries. Values < 1 mean 1.
	Workers int
	// Source provides the per-query random streams used when capping.
	Source sampler.Source
}

// Stats summarizes a run.
type Stats struct {
	// Queries is the number of queries evaluated.
	Queries int
	// Matches is the number of matches before capping.
	Matches int
	// Edges is the number of edges after capping.
	Edges int
	// Capped is the number of queries whose matches were subsampled.
	Capped int
}

// Pending holds the private per-query results of the first pass.
type Pending struct {
	results [][]int
	offsets []int
	workers int
	stats   Stats
}

// Collect evaluates k for every query against its candidate span and caps
// the matches. spans[q] is the candidate range of query q.
func Collect(ctx context.Context, k kernel.Kernel, spans []batch.Span, cfg Config) (*Pending, error) {
	m := k.NumQueries()
	workers := max(cfg.Workers, 1)

	results := make([][]int, m)
	raw := make([]int, m)

	err := forChunks(ctx, m, workers, func(lo, hi int) {
		// Matches are scanned into a chunk-local buffer; only the capped
		// result is retained, sized exactly.
		var scratch []int
		for q := lo; q < hi; q++ {
			s := spans[q]
			scratch = kernel.Scan(k, q, s.Lo, s.Hi, scratch[:0])
			raw[q] = len(scratch)

			matches := scratch
			if len(matches) > cfg.MaxMatches {
				matches = sampler.Cap(matches, cfg.MaxMatches, cfg.Source.ForQuery(q))
			}
			if len(matches) > 0 {
				results[q] = make([]int, len(matches))
				copy(results[q], matches)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	p := &Pending{
		results: results,
		offsets: make([]int, m+1),
		workers: workers,
	}
	p.stats.Queries = m
	for q, r := range results {
		p.offsets[q+1] = p.offsets[q] + len(r)
		p.stats.Matches += raw[q]
		if raw[q] > len(r) {
			p.stats.Capped++
		}
	}
	p.stats.Edges = p.offsets[m]

	return p, nil
}

// Len returns the number of edges Write will produce.
func (p *Pending) Len() int {
	return p.offsets[len(p.offsets)-1]
}

// Stats returns the run statistics.
func (p *Pending) Stats() Stats {
	return p.stats
}

// Write copies all per-query results into freshly allocated query and
// candidate index slices.
func (p *Pending) Write(ctx context.Context) (query, candidate []int, err error) {
	total := p.Len()
	query = make([]int, total)
	candidate = make([]int, total)

	err = forChunks(ctx, len(p.results), p.workers, func(lo, hi int) {
		for q := lo; q < hi; q++ {
			off := p.offsets[q]
			n := copy(candidate[off:], p.results[q])
			for i := off; i < off+n; i++ {
				query[i] = q
			}
		}
	})
	if err != nil {
		return nil, nil, err
	}

	return query, candidate, nil
}

// Run is Collect followed by Write.
func Run(ctx context.Context, k kernel.Kernel, spans []batch.Span, cfg Config) (query, candidate []int, stats Stats, err error) {
	p, err := Collect(ctx, k, spans, cfg)
	if err != nil {
		return nil, nil, Stats{}, err
	}
	query, candidate, err = p.Write(ctx)
	if err != nil {
		return nil, nil, Stats{}, err
	}
	return query, candidate, p.Stats(), nil
}

// forChunks splits [0, n) into contiguous chunks and runs fn on them using
// at most workers goroutines. The context is checked before each chunk.
func forChunks(ctx context.Context, n, workers int, fn func(lo, hi int)) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(0, n)
		return nil
	}

	chunk := max((n+workers*chunksPerWorker-1)/(workers*chunksPerWorker), 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(lo, hi)
			return nil
		})
	}

	return g.Wait()
}
