package encode

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"

	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
)

// Matrix is a document-by-term matrix in compressed sparse row form. Row i
// holds columns Indices[Indptr[i]:Indptr[i+1]] (ascending) with values in
// the same range of Data.
type Matrix struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Indptr  []int     `json:"indptr"`
	Indices []int     `json:"indices"`
	Data    []float64 `json:"data"`
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) {
	return m.Rows, m.Cols
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	return len(m.Data)
}

// Density is the stored share of all cells.
func (m *Matrix) Density() float64 {
	if m.Rows == 0 || m.Cols == 0 {
		return 0
	}
	return float64(m.NNZ()) / float64(m.Rows*m.Cols)
}

// Row returns the column indices and values of row i. The slices alias the
// matrix and must not be modified.
func (m *Matrix) Row(i int) ([]int, []float64) {
	lo, hi := m.Indptr[i], m.Indptr[i+1]
	return m.Indices[lo:hi], m.Data[lo:hi]
}

// At returns cell (i, j).
func (m *Matrix) At(i, j int) float64 {
	cols, vals := m.Row(i)
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return vals[k]
	}
	return 0
}

// RowSum returns the total weight of row i.
func (m *Matrix) RowSum(i int) float64 {
	_, vals := m.Row(i)
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

// Sparse converts to a james-bowman/sparse CSR matrix. The data is copied.
func (m *Matrix) Sparse() *sparse.CSR {
	indptr := append([]int(nil), m.Indptr...)
	indices := append([]int(nil), m.Indices...)
	data := append([]float64(nil), m.Data...)
	return sparse.NewCSR(m.Rows, m.Cols, indptr, indices, data)
}

// Validate checks the CSR structure, e.g. after loading from disk.
func (m *Matrix) Validate() error {
	if m.Rows < 0 || m.Cols < 0 {
		return fmt.Errorf("matrix: negative dimensions %dx%d: %w", m.Rows, m.Cols, internalerr.ErrInvalidInput)
	}
	if len(m.Indptr) != m.Rows+1 {
		return fmt.Errorf("matrix: indptr has %d entries, want %d: %w", len(m.Indptr), m.Rows+1, internalerr.ErrInvalidInput)
	}
	if len(m.Indices) != len(m.Data) {
		return fmt.Errorf("matrix: %d indices but %d values: %w", len(m.Indices), len(m.Data), internalerr.ErrInvalidInput)
	}
	if m.Indptr[0] != 0 || m.Indptr[m.Rows] != len(m.Data) {
		return fmt.Errorf("matrix: indptr does not span data: %w", internalerr.ErrInvalidInput)
	}
	for i := 0; i < m.Rows; i++ {
		lo, hi := m.Indptr[i], m.Indptr[i+1]
		if lo > hi {
			return fmt.Errorf("matrix: row %d has decreasing indptr: %w", i, internalerr.ErrInvalidInput)
		}
		for k := lo; k < hi; k++ {
			c := m.Indices[k]
			if c < 0 || c >= m.Cols || (k > lo && m.Indices[k-1] >= c) {
				return fmt.Errorf("matrix: row %d has bad column %d: %w", i, c, internalerr.ErrInvalidInput)
			}
			if m.Data[k] < 0 {
				return fmt.Errorf("matrix: negative value at (%d,%d): %w", i, c, internalerr.ErrInvalidInput)
			}
		}
	}
	return nil
}
