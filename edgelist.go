package edgequery

import (
	"bytes"
	"cmp"
	"io"
	"slices"
	"sort"

	"github.com/hupe1980/edgequery/codec"
)

// EdgeList is a sparse list of (query, candidate) pairs.
//
// Query[i] indexes the query collection and Candidate[i] the candidate
// collection. The order of edges carries no meaning.
type EdgeList struct {
	Query     []int `json:"query"`
	Candidate []int `json:"candidate"`
}

// Len returns the number of edges.
func (e *EdgeList) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Query)
}

// Matrix returns the edge list as a 2×E matrix: row 0 holds query indices and
// row 1 candidate indices. The rows alias the edge list.
func (e *EdgeList) Matrix() [2][]int {
	return [2][]int{e.Query, e.Candidate}
}

// Pairs returns the edges as (query, candidate) pairs.
func (e *EdgeList) Pairs() [][2]int {
	out := make([][2]int, e.Len())
	for i := range out {
		out[i] = [2]int{e.Query[i], e.Candidate[i]}
	}
	return out
}

// Sort orders the edges by query and then by candidate index.
func (e *EdgeList) Sort() {
	sort.Sort(byQueryCandidate{e})
}

// Neighbors returns the candidates paired with query q, in ascending order.
func (e *EdgeList) Neighbors(q int) []int {
	var out []int
	for i, qi := range e.Query {
		if qi == q {
			out = append(out, e.Candidate[i])
		}
	}
	slices.Sort(out)
	return out
}

// Degrees returns the number of edges of each of the numQueries queries.
func (e *EdgeList) Degrees(numQueries int) []int {
	out := make([]int, numQueries)
	for _, q := range e.Query {
		if q >= 0 && q < numQueries {
			out[q]++
		}
	}
	return out
}

// Encode writes the edge list as a binary frame with the given compression.
func (e *EdgeList) Encode(w io.Writer, c codec.Compression) error {
	if e == nil {
		return codec.Encode(w, nil, nil, c)
	}
	return codec.Encode(w, e.Query, e.Candidate, c)
}

// DecodeEdgeList reads an edge list written by EdgeList.Encode.
func DecodeEdgeList(r io.Reader) (*EdgeList, error) {
	q, c, err := codec.Decode(r)
	if err != nil {
		return nil, err
	}
	return &EdgeList{Query: q, Candidate: c}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler using zstd frames.
func (e *EdgeList) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Encode(&buf, codec.CompressionZstd); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *EdgeList) UnmarshalBinary(data []byte) error {
	q, c, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	e.Query, e.Candidate = q, c
	return nil
}

type byQueryCandidate struct{ e *EdgeList }

func (s byQueryCandidate) Len() int { return s.e.Len() }

func (s byQueryCandidate) Less(i, j int) bool {
	if c := cmp.Compare(s.e.Query[i], s.e.Query[j]); c != 0 {
		return c < 0
	}
	return s.e.Candidate[i] < s.e.Candidate[j]
}

func (s byQueryCandidate) Swap(i, j int) {
	s.e.Query[i], s.e.Query[j] = s.e.Query[j], s.e.Query[i]
	s.e.Candidate[i], s.e.Candidate[j] = s.e.Candidate[j], s.e.Candidate[i]
}
