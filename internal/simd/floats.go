package simd

var (
	kernelDot                   = dotGeneric
	kernelSquaredL2             = squaredL2Generic
	kernelSquaredL2Wide         = squaredL2WideGeneric
	kernelSegmentSquaredL2      = segmentSquaredL2Generic
	kernelSegmentSquaredL2Batch = segmentSquaredL2BatchGeneric
)

// Dot calculates the dot product of two vectors.
//
// SAFETY: Assumes len(a) == len(b). Caller MUST ensure lengths match.
func Dot(a, b []float32) float32 {
	return kernelDot(a, b)
}

// SquaredL2 calculates the squared L2 distance.
//
// SAFETY: Assumes len(a) == len(b). Caller MUST ensure lengths match.
func SquaredL2(a, b []float32) float32 {
	return kernelSquaredL2(a, b)
}

// SquaredL2Wide calculates the squared L2 distance, accumulating in float64
// so that squares of large coordinates do not overflow.
//
// SAFETY: Assumes len(a) == len(b). Caller MUST ensure lengths match.
func SquaredL2Wide(a, b []float32) float64 {
	return kernelSquaredL2Wide(a, b)
}

// SegmentSquaredL2 returns the squared distance between p and the closest
// point of the segment from a to b. The computation runs in float64: any
// float32 input yields a finite result.
//
// SAFETY: Assumes len(p) == len(a) == len(b).
func SegmentSquaredL2(p, a, b []float32) float64 {
	return kernelSegmentSquaredL2(p, a, b)
}

// SegmentSquaredL2Batch computes SegmentSquaredL2 for a batch of points.
// points is a flattened array of N points, each of dimension dim.
// out must have length N (len(points) / dim).
func SegmentSquaredL2Batch(a, b []float32, points []float32, dim int, out []float64) {
	kernelSegmentSquaredL2Batch(a, b, points, dim, out)
}

func dotGeneric(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}

	return ret
}

func squaredL2Generic(a, b []float32) float32 {
	var distance float32
	for i := range a {
		distance += (a[i] - b[i]) * (a[i] - b[i])
	}

	return distance
}

func squaredL2WideGeneric(a, b []float32) float64 {
	var distance float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		distance += d * d
	}

	return distance
}

func segmentSquaredL2Generic(p, a, b []float32) float64 {
	var abab, apab float64
	for i := range a {
		ab := float64(b[i]) - float64(a[i])
		abab += ab * ab
		apab += (float64(p[i]) - float64(a[i])) * ab
	}

	// A collapsed segment is a point: the closest point is a itself.
	if abab == 0 {
		return kernelSquaredL2Wide(p, a)
	}

	t := apab / abab
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	var distance float64
	for i := range a {
		ai := float64(a[i])
		d := float64(p[i]) - (ai + t*(float64(b[i])-ai))
		distance += d * d
	}

	return distance
}

func segmentSquaredL2BatchGeneric(a, b []float32, points []float32, dim int, out []float64) {
	if dim <= 0 || len(out) == 0 {
		return
	}
	if len(a) < dim || len(b) < dim {
		return
	}

	sa, sb := a[:dim], b[:dim]
	maxVal := len(points) / dim
	n := len(out)
	if maxVal < n {
		n = maxVal
	}

	for i := 0; i < n; i++ {
		offset := i * dim
		out[i] = kernelSegmentSquaredL2(points[offset:offset+dim], sa, sb)
	}
}
