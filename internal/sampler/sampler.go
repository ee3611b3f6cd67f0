// Package sampler caps per-query match lists by uniform random subsampling.
//
// Each query draws from its own stream derived from the call seed and the
// query index, so a seeded call yields the same edges no matter how queries
// are scheduled across workers.
package sampler

import (
	"math/rand/v2"
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// defaultBits is the initial capacity of pooled selection sets.
const defaultBits = 1024

var selectionPool = sync.Pool{
	New: func() any {
		return bitset.New(defaultBits)
	},
}

// Source derives independent per-query random streams from one seed.
type Source struct {
	seed uint64
}

// NewSource creates a Source for the given seed.
func NewSource(seed uint64) Source {
	return Source{seed: seed}
}

// Seed returns the seed of the source.
func (s Source) Seed() uint64 {
	return s.seed
}

// ForQuery returns the random stream of query q.
func (s Source) ForQuery(q int) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, splitmix64(uint64(q))))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Cap limits matches to at most k elements.
//
// If len(matches) <= k, matches is returned unchanged. Otherwise a uniform
// random subset of exactly k elements is selected without replacement
// (Floyd's algorithm) and compacted in place, preserving the original
// relative order. k <= 0 yields an empty result.
func Cap(matches []int, k int, rng *rand.Rand) []int {
	n := len(matches)
	if n <= k {
		return matches
	}
	if k <= 0 {
		return matches[:0]
	}

	selected := selectionPool.Get().(*bitset.BitSet)
	defer func() {
		// Oversized sets are dropped instead of pinning their memory in the pool.
		if selected.Len() > defaultBits*64 {
			return
		}
		selected.ClearAll()
		selectionPool.Put(selected)
	}()

	for j := n - k; j < n; j++ {
		t := uint(rng.IntN(j + 1))
		if selected.Test(t) {
			selected.Set(uint(j))
		} else {
			selected.Set(t)
		}
	}

	out := matches[:0]
	for i, ok := selected.NextSet(0); ok && int(i) < n; i, ok = selected.NextSet(i + 1) {
		out = append(out, matches[i])
	}
	return out
}
