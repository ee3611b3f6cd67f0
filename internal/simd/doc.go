// Package simd provides the float32 kernels used by the distance package.
//
// Kernels are dispatched through package-level function pointers. The
// generic Go implementations are the default; a platform-specific init may
// swap in an accelerated version with identical results.
//
// # Operations
//
//   - Distance: Dot, SquaredL2, SquaredL2Wide
//   - Segment: SegmentSquaredL2, SegmentSquaredL2Batch
package simd
