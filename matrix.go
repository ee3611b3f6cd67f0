package edgequery

import "fmt"

// Matrix is a dense row-major float32 matrix.
type Matrix struct {
	Data []float32
	Rows int
	Cols int
}

// NewMatrix wraps data as a matrix with cols columns. The row count is
// derived from the data length, which must be a multiple of cols.
func NewMatrix(data []float32, cols int) (Matrix, error) {
	if cols < 1 {
		return Matrix{}, fmt.Errorf("%w: matrix must have at least one column, got %d", ErrInvalidArgument, cols)
	}
	if len(data)%cols != 0 {
		return Matrix{}, fmt.Errorf("%w: %d values do not fill rows of %d columns", ErrInvalidArgument, len(data), cols)
	}
	return Matrix{Data: data, Rows: len(data) / cols, Cols: cols}, nil
}

// NewVector reinterprets a one-dimensional sequence as an N×1 matrix.
func NewVector(data []float32) Matrix {
	return Matrix{Data: data, Rows: len(data), Cols: 1}
}

// FromRows copies rows into a new contiguous matrix. All rows must have the
// same non-zero length.
func FromRows(rows [][]float32) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, fmt.Errorf("%w: no rows", ErrInvalidArgument)
	}
	cols := len(rows[0])
	if cols == 0 {
		return Matrix{}, fmt.Errorf("%w: empty row", ErrInvalidArgument)
	}

	data := make([]float32, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return Matrix{}, &ErrShapeMismatch{What: fmt.Sprintf("row %d length", i), Expected: cols, Actual: len(r)}
		}
		data = append(data, r...)
	}
	return Matrix{Data: data, Rows: len(rows), Cols: cols}, nil
}

// Row returns row i. The returned slice aliases the matrix data.
func (m Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

func (m Matrix) validate(what string) error {
	if m.Cols < 1 {
		return fmt.Errorf("%w: %s must have at least one column", ErrInvalidArgument, what)
	}
	if m.Rows < 0 || len(m.Data) != m.Rows*m.Cols {
		return &ErrShapeMismatch{What: what + " values", Expected: m.Rows * m.Cols, Actual: len(m.Data)}
	}
	return nil
}
