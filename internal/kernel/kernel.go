package kernel

import "errors"

// ErrShape is returned when a kernel's inputs have inconsistent dimensions.
var ErrShape = errors.New("kernel: inconsistent input shape")

// Kernel is a neighbor predicate between queries and candidates.
// Implementations must be safe for concurrent use by multiple goroutines.
type Kernel interface {
	// Name identifies the kernel in logs and metrics.
	Name() string
	// NumQueries returns the number of queries.
	NumQueries() int
	// NumCandidates returns the number of candidates.
	NumCandidates() int
	// Match reports whether candidate c is a neighbor of query q.
	Match(q, c int) bool
}

// Collector is implemented by kernels that can enumerate all matches of a
// query within the candidate range [lo, hi) without testing every pair.
type Collector interface {
	// Collect appends the matching candidate indices of query q in [lo, hi)
	// to dst in ascending order and returns the extended slice.
	Collect(q, lo, hi int, dst []int) []int
}

// Scan appends all candidates in [lo, hi) that match query q to dst, in
// ascending order.
func Scan(k Kernel, q, lo, hi int, dst []int) []int {
	if lo >= hi {
		return dst
	}
	if c, ok := k.(Collector); ok {
		return c.Collect(q, lo, hi, dst)
	}
	for c := lo; c < hi; c++ {
		if k.Match(q, c) {
			dst = append(dst, c)
		}
	}
	return dst
}
