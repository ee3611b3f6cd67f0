package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/edgequery"
	"github.com/hupe1980/edgequery/codec"
)

// input is the JSON document read by the command. Points and segments feed
// the segment kernel; nodes and rows feed the adjacency kernel.
type input struct {
	Points          [][]float32 `json:"points"`
	Segments        [][]float32 `json:"segments"`
	Nodes           []int       `json:"nodes"`
	Rows            [][]float32 `json:"rows"`
	BatchCandidates []int64     `json:"batch_candidates"`
	BatchQueries    []int64     `json:"batch_queries"`
}

func readInput(path string, stdin io.Reader) (*input, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var in input
	if err := codec.Default.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return &in, nil
}

// matrix converts rows to a Matrix. An empty row set becomes a 0×cols matrix.
func matrix(rows [][]float32, cols int) (edgequery.Matrix, error) {
	if len(rows) == 0 {
		return edgequery.Matrix{Cols: cols}, nil
	}
	return edgequery.FromRows(rows)
}
