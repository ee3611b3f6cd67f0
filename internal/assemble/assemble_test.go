package assemble

import (
	"context"
	"testing"

	"github.com/hupe1980/edgequery/internal/batch"
	"github.com/hupe1980/edgequery/internal/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modKernel matches candidate c to query q when c is a multiple of q+1.
type modKernel struct {
	queries, candidates int
}

func (k modKernel) Name() string        { return "mod" }
func (k modKernel) NumQueries() int     { return k.queries }
func (k modKernel) NumCandidates() int  { return k.candidates }
func (k modKernel) Match(q, c int) bool { return c%(q+1) == 0 }

func universal(m, n int) []batch.Span {
	var table *batch.Table
	return table.Spans(m, n)
}

func pairs(query, candidate []int) map[[2]int]int {
	out := make(map[[2]int]int, len(query))
	for i := range query {
		out[[2]int{query[i], candidate[i]}]++
	}
	return out
}

func TestRunUncapped(t *testing.T) {
	k := modKernel{queries: 4, candidates: 12}
	cfg := Config{MaxMatches: 100, Workers: 1, Source: sampler.NewSource(1)}

	query, candidate, stats, err := Run(context.Background(), k, universal(4, 12), cfg)
	require.NoError(t, err)
	require.Len(t, candidate, len(query))

	expected := make(map[[2]int]int)
	for q := range 4 {
		for c := range 12 {
			if c%(q+1) == 0 {
				expected[[2]int{q, c}] = 1
			}
		}
	}
	assert.Equal(t, expected, pairs(query, candidate))
	assert.Equal(t, Stats{Queries: 4, Matches: len(expected), Edges: len(expected), Capped: 0}, stats)
}

func TestRunCapped(t *testing.T) {
	k := modKernel{queries: 3, candidates: 30}
	cfg := Config{MaxMatches: 5, Workers: 2, Source: sampler.NewSource(9)}

	query, candidate, stats, err := Run(context.Background(), k, universal(3, 30), cfg)
	require.NoError(t, err)

	perQuery := make(map[int]int)
	for i, q := range query {
		perQuery[q]++
		assert.True(t, k.Match(q, candidate[i]))
	}
	// 30, 15 and 10 raw matches, all above the cap.
	assert.Equal(t, map[int]int{0: 5, 1: 5, 2: 5}, perQuery)
	assert.Equal(t, 55, stats.Matches)
	assert.Equal(t, 15, stats.Edges)
	assert.Equal(t, 3, stats.Capped)
}

func TestRunZeroCap(t *testing.T) {
	k := modKernel{queries: 3, candidates: 10}
	cfg := Config{MaxMatches: 0, Source: sampler.NewSource(1)}

	query, candidate, stats, err := Run(context.Background(), k, universal(3, 10), cfg)
	require.NoError(t, err)
	assert.Empty(t, query)
	assert.Empty(t, candidate)
	assert.Equal(t, 3, stats.Capped)
}

func TestRunSpans(t *testing.T) {
	k := modKernel{queries: 4, candidates: 8}
	table, err := batch.Build([]int64{0, 0, 0, 0, 2, 2, 2, 2}, []int64{0, 0, 2, 2})
	require.NoError(t, err)

	query, candidate, _, err := Run(context.Background(), k, table.Spans(4, 8), Config{MaxMatches: 32, Source: sampler.NewSource(1)})
	require.NoError(t, err)

	for i, q := range query {
		c := candidate[i]
		if q < 2 {
			assert.Less(t, c, 4)
		} else {
			assert.GreaterOrEqual(t, c, 4)
		}
	}
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	k := modKernel{queries: 50, candidates: 400}
	spans := universal(50, 400)

	var want map[[2]int]int
	for _, workers := range []int{1, 2, 3, 8} {
		cfg := Config{MaxMatches: 7, Workers: workers, Source: sampler.NewSource(1234)}
		query, candidate, _, err := Run(context.Background(), k, spans, cfg)
		require.NoError(t, err)

		got := pairs(query, candidate)
		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestCollectRetainsOnlyCappedMatches(t *testing.T) {
	const (
		queries    = 6
		candidates = 5000
		maxMatches = 4
	)
	k := modKernel{queries: queries, candidates: candidates}

	for _, workers := range []int{1, 3} {
		cfg := Config{MaxMatches: maxMatches, Workers: workers, Source: sampler.NewSource(3)}
		p, err := Collect(context.Background(), k, universal(queries, candidates), cfg)
		require.NoError(t, err)

		for q, r := range p.results {
			assert.Len(t, r, maxMatches, "query %d", q)
			assert.LessOrEqual(t, cap(r), maxMatches, "query %d", q)
		}
		assert.Equal(t, queries*maxMatches, p.Len())
		assert.Equal(t, queries, p.Stats().Capped)
	}
}

func TestCollectThenWrite(t *testing.T) {
	k := modKernel{queries: 2, candidates: 4}
	p, err := Collect(context.Background(), k, universal(2, 4), Config{MaxMatches: 32, Source: sampler.NewSource(1)})
	require.NoError(t, err)

	// Query 0 matches 0..3, query 1 matches 0 and 2.
	assert.Equal(t, 6, p.Len())

	query, candidate, err := p.Write(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1}, query)
	assert.Equal(t, []int{0, 1, 2, 3, 0, 2}, candidate)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	k := modKernel{queries: 100, candidates: 10}
	for _, workers := range []int{1, 4} {
		_, _, _, err := Run(ctx, k, universal(100, 10), Config{MaxMatches: 32, Workers: workers, Source: sampler.NewSource(1)})
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestRunEmpty(t *testing.T) {
	k := modKernel{queries: 0, candidates: 10}
	query, candidate, stats, err := Run(context.Background(), k, nil, Config{MaxMatches: 32, Workers: 4})
	require.NoError(t, err)
	assert.Empty(t, query)
	assert.Empty(t, candidate)
	assert.Zero(t, stats.Edges)
}
