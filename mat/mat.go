package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch    = errors.New("column size mismatch")
	ErrNoRows         = errors.New("no rows")
	ErrRowOutOfBounds = errors.New("row is out of bounds")
)

// NewDenseFromArray creates a dense matrix from a slice of rows. Every row must have the same
// number of columns and there must be at least one row and one column.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if m == 0 || n <= 0 {
		return nil, fmt.Errorf("got %d rows and %d columns, %w", m, max(n, 0), ErrNoRows)
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// NewColumn creates a single column matrix from a slice of values
func NewColumn(y []float64) (*mat.Dense, error) {
	if len(y) == 0 {
		return nil, ErrNoRows
	}
	data := make([]float64, len(y))
	copy(data, y)
	return mat.NewDense(len(y), 1, data), nil
}

// SelectRows copies the given rows of x, in the given order, into a new dense matrix
func SelectRows(x mat.Matrix, rows []int) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	m, n := x.Dims()
	out := mat.NewDense(len(rows), n, nil)
	for i, r := range rows {
		if r < 0 || r >= m {
			return nil, fmt.Errorf("row %d with %d rows, %w", r, m, ErrRowOutOfBounds)
		}
		for j := 0; j < n; j++ {
			out.Set(i, j, x.At(r, j))
		}
	}
	return out, nil
}

// Take returns the values at the given rows, in the given order. Rows must be in range.
func Take(values []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = values[r]
	}
	return out
}

// TakeStrings returns the strings at the given rows, in the given order. Rows must be in range.
func TakeStrings(values []string, rows []int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = values[r]
	}
	return out
}
