package kernel

import (
	"fmt"
	"sync"

	"github.com/hupe1980/edgequery/internal/simd"
)

// SegmentRadius matches candidate points that lie within a radius of a
// query line segment.
//
// Points are a flattened N×dim matrix; segments a flattened M×(2·dim)
// matrix whose rows hold the start point followed by the end point.
type SegmentRadius struct {
	points   []float32
	segments []float32
	dim      int
	radius2  float64

	bufPool sync.Pool
}

// NewSegmentRadius creates a segment radius kernel.
func NewSegmentRadius(points, segments []float32, dim int, radius float32) (*SegmentRadius, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrShape, dim)
	}
	if len(points)%dim != 0 {
		return nil, fmt.Errorf("%w: %d point values are not a multiple of dimension %d", ErrShape, len(points), dim)
	}
	if len(segments)%(2*dim) != 0 {
		return nil, fmt.Errorf("%w: %d segment values are not a multiple of %d", ErrShape, len(segments), 2*dim)
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: negative radius %v", ErrShape, radius)
	}

	return &SegmentRadius{
		points:   points,
		segments: segments,
		dim:      dim,
		radius2:  float64(radius) * float64(radius),
	}, nil
}

// Name implements Kernel.
func (k *SegmentRadius) Name() string { return "segment_radius" }

// NumQueries implements Kernel.
func (k *SegmentRadius) NumQueries() int { return len(k.segments) / (2 * k.dim) }

// NumCandidates implements Kernel.
func (k *SegmentRadius) NumCandidates() int { return len(k.points) / k.dim }

// Match implements Kernel.
func (k *SegmentRadius) Match(q, c int) bool {
	a, b := k.segment(q)
	p := k.points[c*k.dim : (c+1)*k.dim]
	return simd.SegmentSquaredL2(p, a, b) <= k.radius2
}

// Collect implements Collector. Distances for the whole range are computed
// with the batch kernel and thresholded afterwards.
func (k *SegmentRadius) Collect(q, lo, hi int, dst []int) []int {
	n := hi - lo
	buf := k.getBuf(n)
	defer k.bufPool.Put(buf)

	a, b := k.segment(q)
	out := (*buf)[:n]
	simd.SegmentSquaredL2Batch(a, b, k.points[lo*k.dim:hi*k.dim], k.dim, out)

	for i, d := range out {
		if d <= k.radius2 {
			dst = append(dst, lo+i)
		}
	}
	return dst
}

func (k *SegmentRadius) segment(q int) (a, b []float32) {
	row := k.segments[q*2*k.dim : (q+1)*2*k.dim]
	return row[:k.dim], row[k.dim:]
}

func (k *SegmentRadius) getBuf(n int) *[]float64 {
	if v := k.bufPool.Get(); v != nil {
		buf := v.(*[]float64)
		if cap(*buf) >= n {
			return buf
		}
	}
	buf := make([]float64, n)
	return &buf
}
