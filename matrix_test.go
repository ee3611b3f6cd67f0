package edgequery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrix(t *testing.T) {
	m, err := NewMatrix([]float32{1, 2, 3, 4, 5, 6}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows)
	assert.Equal(t, []float32{4, 5, 6}, m.Row(1))

	_, err = NewMatrix([]float32{1, 2, 3}, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewMatrix(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewVector(t *testing.T) {
	v := NewVector([]float32{1, 2, 3})
	assert.Equal(t, 3, v.Rows)
	assert.Equal(t, 1, v.Cols)
	assert.NoError(t, v.validate("vector"))
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, m.Data)

	_, err = FromRows([][]float32{{1, 2}, {3}})
	var sm *ErrShapeMismatch
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, 2, sm.Expected)
	assert.Equal(t, 1, sm.Actual)

	_, err = FromRows(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMatrixValidate(t *testing.T) {
	assert.NoError(t, Matrix{Cols: 2}.validate("empty"))
	assert.ErrorIs(t, Matrix{}.validate("zero"), ErrInvalidArgument)

	var sm *ErrShapeMismatch
	assert.ErrorAs(t, Matrix{Data: make([]float32, 5), Rows: 2, Cols: 2}.validate("m"), &sm)
}
