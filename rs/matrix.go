package rs

import (
	"fmt"

	"github.com/saorsa-labs/saorsa-fec/errs"
	"github.com/saorsa-labs/saorsa-fec/gf"
)

// matrix is a dense row-major matrix over GF(2^8).
type matrix struct {
	rows, cols int
	data       []byte // rows*cols, row-major
}

func newMatrix(rows, cols int) *matrix {
	return &matrix{rows: rows, cols: cols, data: make([]byte, rows*cols)}
}

func (m *matrix) at(r, c int) byte      { return m.data[r*m.cols+c] }
func (m *matrix) set(r, c int, v byte)  { m.data[r*m.cols+c] = v }
func (m *matrix) row(r int) []byte      { return m.data[r*m.cols : (r+1)*m.cols] }

// identity returns the n x n identity matrix.
func identity(n int) *matrix {
	m := newMatrix(n, n)
	for i := 0; i < n; i++ {
		m.set(i, i, 1)
	}
	return m
}

// vandermonde builds a rows x cols Vandermonde-style matrix with
// distinct evaluation points 0..rows-1: vand[r][c] = r^c (with 0^0 = 1).
// This is the same construction github.com/klauspost/reedsolomon uses
// for its default generator, so the Pure and Accelerated codecs produce
// identical parity bytes.
func vandermonde(rows, cols int) *matrix {
	m := newMatrix(rows, cols)
	for r := 0; r < rows; r++ {
		point := byte(r)
		for c := 0; c < cols; c++ {
			m.set(r, c, gf.Pow(point, c))
		}
	}
	return m
}

// submatrix extracts the rows at the given indices (len(rows) == m.cols,
// i.e. a square submatrix suitable for inversion).
func (m *matrix) submatrixRows(rowIdx []int) *matrix {
	out := newMatrix(len(rowIdx), m.cols)
	for i, r := range rowIdx {
		copy(out.row(i), m.row(r))
	}
	return out
}

// multiply returns m * other, where m is (rows x cols) and other is
// (cols x otherCols).
func (m *matrix) multiply(other *matrix) (*matrix, error) {
	if m.cols != other.rows {
		return nil, fmt.Errorf("matrix dimension mismatch: %dx%d * %dx%d", m.rows, m.cols, other.rows, other.cols)
	}
	out := newMatrix(m.rows, other.cols)
	for r := 0; r < m.rows; r++ {
		for k := 0; k < m.cols; k++ {
			coef := m.at(r, k)
			if coef == 0 {
				continue
			}
			gf.VecMac(out.row(r), other.row(k), coef)
		}
	}
	return out, nil
}

// invert computes the inverse of a square matrix via Gauss-Jordan
// elimination over GF(2^8). Callers must check for a singular
// submatrix rather than assume invertibility.
func (m *matrix) invert() (*matrix, error) {
	if m.rows != m.cols {
		return nil, fmt.Errorf("cannot invert non-square matrix %dx%d", m.rows, m.cols)
	}
	n := m.rows

	// Augment [m | I] and reduce the left half to I.
	aug := newMatrix(n, 2*n)
	for r := 0; r < n; r++ {
		copy(aug.row(r)[:n], m.row(r))
		aug.set(r, n+r, 1)
	}

	for col := 0; col < n; col++ {
		// Find a pivot with a non-zero entry in this column.
		pivot := -1
		for r := col; r < n; r++ {
			if aug.at(r, col) != 0 {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			return nil, fmt.Errorf("%w: singular matrix", errs.ErrInsufficientShards)
		}
		if pivot != col {
			tmp := make([]byte, 2*n)
			copy(tmp, aug.row(pivot))
			copy(aug.row(pivot), aug.row(col))
			copy(aug.row(col), tmp)
		}

		// Normalize the pivot row so aug[col][col] == 1.
		inv := gf.Inv(aug.at(col, col))
		if inv != 1 {
			row := aug.row(col)
			for i, v := range row {
				row[i] = gf.Mul(v, inv)
			}
		}

		// Eliminate this column from every other row.
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug.at(r, col)
			if factor == 0 {
				continue
			}
			rowR := aug.row(r)
			rowCol := aug.row(col)
			for i := range rowR {
				rowR[i] ^= gf.Mul(factor, rowCol[i])
			}
		}
	}

	out := newMatrix(n, n)
	for r := 0; r < n; r++ {
		copy(out.row(r), aug.row(r)[n:])
	}
	return out, nil
}

// buildGenerator constructs the systematic (k+m) x k generator matrix
// for NSpec s: a Vandermonde matrix whose top k rows are forced to the
// identity by multiplying through the inverse of that top block.
func buildGenerator(s NSpec) (*matrix, error) {
	n := s.N()
	vand := vandermonde(n, s.K)
	top := vand.submatrixRows(seq(s.K))
	topInv, err := top.invert()
	if err != nil {
		return nil, fmt.Errorf("building generator for %s: %w", s, err)
	}
	gen, err := vand.multiply(topInv)
	if err != nil {
		return nil, err
	}
	return gen, nil
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
