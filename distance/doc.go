// Package distance provides public API for the distance calculations used by
// the neighbor queries.
//
// All functions operate on float32 slices and delegate to internal/simd.
package distance
