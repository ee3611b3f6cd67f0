package distance

import (
	"github.com/hupe1980/edgequery/internal/simd"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	return simd.Dot(a, b)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	return simd.SquaredL2(a, b)
}

// SegmentSquaredL2 returns the squared L2 distance between point p and the
// segment from a to b.
//
// The closest point is a + t*(b-a) with t = dot(p-a, b-a) / |b-a|² clamped
// to [0, 1]. The result is computed in float64. When a == b the segment
// collapses to a point and the result is the squared distance from p to a.
func SegmentSquaredL2(p, a, b []float32) float64 {
	return simd.SegmentSquaredL2(p, a, b)
}

// SplitSegment splits a 2F-dimensional segment row into its start and end
// points. Returns false if the row has an odd length.
func SplitSegment(row []float32) (start, end []float32, ok bool) {
	if len(row)%2 != 0 {
		return nil, nil, false
	}
	half := len(row) / 2
	return row[:half:half], row[half:], true
}

// WithinRadius reports whether p lies within radius r of the segment from a to b.
func WithinRadius(p, a, b []float32, r float32) bool {
	return simd.SegmentSquaredL2(p, a, b) <= float64(r)*float64(r)
}
