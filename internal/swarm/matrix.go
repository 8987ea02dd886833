package swarm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Matrix is a dense row-major matrix of float64 values. Rows index agents,
// columns index state or force components.
type Matrix struct {
	rows int
	cols int
	data []float64
}

func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// NewMatrixFrom wraps data as a rows x cols matrix. The slice is used
// directly, not copied.
func NewMatrixFrom(rows, cols int, data []float64) (*Matrix, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: matrix data has %d values, want %d (%dx%d)",
			ErrDimension, len(data), rows*cols, rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) At(i, j int) float64     { return m.data[i*m.cols+j] }
func (m *Matrix) Set(i, j int, v float64) { m.data[i*m.cols+j] = v }

// Row returns a view of row i backed by the matrix storage.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// Data returns the backing slice in row-major order.
func (m *Matrix) Data() []float64 { return m.data }

func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.rows, m.cols)
	copy(c.data, m.data)
	return c
}

// CopyFrom copies the contents of o into m. Shapes must match.
func (m *Matrix) CopyFrom(o *Matrix) {
	copy(m.data, o.data)
}

func (m *Matrix) Zero() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// Add accumulates o into m element-wise. Shapes must match.
func (m *Matrix) Add(o *Matrix) {
	floats.Add(m.data, o.data)
}

// AddScaled accumulates f*o into m element-wise. Shapes must match.
func (m *Matrix) AddScaled(f float64, o *Matrix) {
	floats.AddScaled(m.data, f, o.data)
}

func (m *Matrix) Scale(f float64) {
	floats.Scale(f, m.data)
}

// MulElem multiplies m by o element-wise. Shapes must match.
func (m *Matrix) MulElem(o *Matrix) {
	floats.Mul(m.data, o.data)
}

func (m *Matrix) Fill(v float64) {
	for i := range m.data {
		m.data[i] = v
	}
}

// IsZero reports whether every element is exactly zero.
func (m *Matrix) IsZero() bool {
	for _, v := range m.data {
		if v != 0 {
			return false
		}
	}
	return true
}

// FirstNonFinite returns the position and value of the first NaN or Inf
// element in row-major order, or ok=false if all elements are finite.
func (m *Matrix) FirstNonFinite() (i, j int, v float64, ok bool) {
	for k, x := range m.data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return k / m.cols, k % m.cols, x, true
		}
	}
	return 0, 0, 0, false
}

func (m *Matrix) IsFinite() bool {
	_, _, _, bad := m.FirstNonFinite()
	return !bad
}
