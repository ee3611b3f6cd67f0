package kernel

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// NodeRangeError reports a candidate whose assigned node id does not index
// into the adjacency rows.
type NodeRangeError struct {
	Candidate int
	Node      int
	Width     int
}

func (e *NodeRangeError) Error() string {
	return fmt.Sprintf("kernel: candidate %d is assigned node %d, adjacency rows have width %d", e.Candidate, e.Node, e.Width)
}

// AdjacencyGroup matches candidates whose assigned node is flagged (non-zero)
// in the query's adjacency row.
//
// Candidates are indexed by node: one roaring bitmap per node id holds the
// candidates assigned to it. A query's matches are the union of the bitmaps
// of its flagged nodes, cut to the candidate range.
type AdjacencyGroup struct {
	nodes []int
	rows  []float32
	width int
	index []*roaring.Bitmap
}

// NewAdjacencyGroup creates an adjacency group kernel. nodes assigns each
// candidate a node id in [0, width); rows is a flattened M×width matrix.
func NewAdjacencyGroup(nodes []int, rows []float32, width int) (*AdjacencyGroup, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: row width %d", ErrShape, width)
	}
	if len(rows)%width != 0 {
		return nil, fmt.Errorf("%w: %d row values are not a multiple of width %d", ErrShape, len(rows), width)
	}
	if uint64(len(nodes)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d candidates exceed the uint32 index space", ErrShape, len(nodes))
	}

	index := make([]*roaring.Bitmap, width)
	for c, v := range nodes {
		if v < 0 || v >= width {
			return nil, &NodeRangeError{Candidate: c, Node: v, Width: width}
		}
		if index[v] == nil {
			index[v] = roaring.New()
		}
		index[v].Add(uint32(c))
	}
	for _, bm := range index {
		if bm != nil {
			bm.RunOptimize()
		}
	}

	return &AdjacencyGroup{
		nodes: nodes,
		rows:  rows,
		width: width,
		index: index,
	}, nil
}

// Name implements Kernel.
func (k *AdjacencyGroup) Name() string { return "adjacency_group" }

// NumQueries implements Kernel.
func (k *AdjacencyGroup) NumQueries() int { return len(k.rows) / k.width }

// NumCandidates implements Kernel.
func (k *AdjacencyGroup) NumCandidates() int { return len(k.nodes) }

// Match implements Kernel.
func (k *AdjacencyGroup) Match(q, c int) bool {
	return k.rows[q*k.width+k.nodes[c]] != 0
}

// Collect implements Collector.
func (k *AdjacencyGroup) Collect(q, lo, hi int, dst []int) []int {
	row := k.rows[q*k.width : (q+1)*k.width]

	flagged := make([]*roaring.Bitmap, 0, len(row))
	for v, flag := range row {
		if flag != 0 && k.index[v] != nil {
			flagged = append(flagged, k.index[v])
		}
	}
	if len(flagged) == 0 {
		return dst
	}

	// FastOr only reads its inputs, so the shared index stays untouched.
	union := roaring.FastOr(flagged...)
	if lo > 0 {
		union.RemoveRange(0, uint64(lo))
	}
	union.RemoveRange(uint64(hi), uint64(len(k.nodes)))

	it := union.Iterator()
	for it.HasNext() {
		dst = append(dst, int(it.Next()))
	}
	return dst
}

// Nodes returns the number of distinct node ids that have candidates.
func (k *AdjacencyGroup) Nodes() int {
	n := 0
	for _, bm := range k.index {
		if bm != nil {
			n++
		}
	}
	return n
}
