package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/edgequery/distance"
)

// Edge is a (query, candidate) pair.
type Edge [2]int

// EdgeSet is an unordered set of edges.
type EdgeSet map[Edge]struct{}

// NewEdgeSet builds a set from parallel query and candidate slices.
func NewEdgeSet(query, candidate []int) EdgeSet {
	s := make(EdgeSet, len(query))
	for i := range query {
		s[Edge{query[i], candidate[i]}] = struct{}{}
	}
	return s
}

// Of builds a set from literal pairs.
func Of(pairs ...Edge) EdgeSet {
	s := make(EdgeSet, len(pairs))
	for _, p := range pairs {
		s[p] = struct{}{}
	}
	return s
}

// Degrees returns the number of edges per query.
func (s EdgeSet) Degrees() map[int]int {
	out := make(map[int]int)
	for e := range s {
		out[e[0]]++
	}
	return out
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// UniformRange returns num*dim values in range [minVal, maxVal) as a flat slice.
func (r *RNG) UniformRange(num, dim int, minVal, maxVal float32) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	span := maxVal - minVal
	for i := range data {
		data[i] = minVal + r.rand.Float32()*span
	}
	return data
}

// Segments returns num segments of dimension dim as a flat num×2dim slice.
// Roughly one in degenerateEvery segments has coinciding endpoints
// (0 disables degenerate segments).
func (r *RNG) Segments(num, dim int, minVal, maxVal float32, degenerateEvery int) []float32 {
	data := r.UniformRange(num, 2*dim, minVal, maxVal)
	if degenerateEvery <= 0 {
		return data
	}
	for q := 0; q < num; q += degenerateEvery {
		row := data[q*2*dim : (q+1)*2*dim]
		copy(row[dim:], row[:dim])
	}
	return data
}

// BatchIDs returns n sorted batch ids drawn from [0, batches).
func (r *RNG) BatchIDs(n, batches int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(r.rand.Intn(batches))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Nodes returns n node ids in [0, width).
func (r *RNG) Nodes(n, width int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	nodes := make([]int, n)
	for i := range nodes {
		nodes[i] = r.rand.Intn(width)
	}
	return nodes
}

// AdjacencyRows returns a flat rows×width matrix where each entry is
// non-zero with probability density.
func (r *RNG) AdjacencyRows(rows, width int, density float64) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, rows*width)
	for i := range data {
		if r.rand.Float64() < density {
			data[i] = 1
		}
	}
	return data
}

// sameBatch reports whether query q may pair with candidate c.
func sameBatch(candidateIDs, queryIDs []int64, q, c int) bool {
	if candidateIDs == nil || queryIDs == nil {
		return true
	}
	return candidateIDs[c] == queryIDs[q]
}

// BruteForceSegmentRadius returns every (segment, point) pair within radius,
// restricted to equal batch ids when both id slices are given.
func BruteForceSegmentRadius(points, segments []float32, dim int, radius float32, candidateIDs, queryIDs []int64) EdgeSet {
	out := make(EdgeSet)
	n := len(points) / dim
	m := len(segments) / (2 * dim)
	for q := range m {
		a, b, _ := distance.SplitSegment(segments[q*2*dim : (q+1)*2*dim])
		for c := range n {
			if !sameBatch(candidateIDs, queryIDs, q, c) {
				continue
			}
			if distance.WithinRadius(points[c*dim:(c+1)*dim], a, b, radius) {
				out[Edge{q, c}] = struct{}{}
			}
		}
	}
	return out
}

// BruteForceAdjacency returns every (row, candidate) pair whose node is
// flagged in the row, restricted to equal batch ids when both id slices are given.
func BruteForceAdjacency(nodes []int, rows []float32, width int, candidateIDs, queryIDs []int64) EdgeSet {
	out := make(EdgeSet)
	m := len(rows) / width
	for q := range m {
		for c, v := range nodes {
			if !sameBatch(candidateIDs, queryIDs, q, c) {
				continue
			}
			if rows[q*width+v] != 0 {
				out[Edge{q, c}] = struct{}{}
			}
		}
	}
	return out
}
