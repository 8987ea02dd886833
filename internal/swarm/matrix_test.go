package swarm

import (
	"math"
	"testing"
)

func TestMatrix_Shape(t *testing.T) {
	m := NewMatrix(3, 2)
	if m.Rows() != 3 || m.Cols() != 2 {
		t.Errorf("shape = %dx%d, want 3x2", m.Rows(), m.Cols())
	}
	if len(m.Data()) != 6 {
		t.Errorf("backing length = %d, want 6", len(m.Data()))
	}

	m.Set(2, 1, 7.5)
	if m.At(2, 1) != 7.5 {
		t.Errorf("At(2,1) = %v, want 7.5", m.At(2, 1))
	}
	if m.Row(2)[1] != 7.5 {
		t.Errorf("Row(2)[1] = %v, want 7.5", m.Row(2)[1])
	}
}

func TestNewMatrixFrom(t *testing.T) {
	m, err := NewMatrixFrom(2, 2, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("NewMatrixFrom: %v", err)
	}
	if m.At(1, 0) != 3 {
		t.Errorf("At(1,0) = %v, want 3", m.At(1, 0))
	}

	if _, err := NewMatrixFrom(2, 2, []float64{1, 2, 3}); err == nil {
		t.Error("expected error for short data slice")
	}
}

func TestMatrix_CloneIndependence(t *testing.T) {
	m := NewMatrix(2, 2)
	m.Set(0, 0, 1)

	c := m.Clone()
	c.Set(0, 0, 99)

	if m.At(0, 0) != 1 {
		t.Errorf("clone mutation leaked into original: %v", m.At(0, 0))
	}
}

func TestMatrix_Arithmetic(t *testing.T) {
	a, _ := NewMatrixFrom(2, 2, []float64{1, 2, 3, 4})
	b, _ := NewMatrixFrom(2, 2, []float64{10, 20, 30, 40})

	a.Add(b)
	if a.At(0, 0) != 11 || a.At(1, 1) != 44 {
		t.Errorf("Add failed: %v", a.Data())
	}

	a.AddScaled(2, b)
	if a.At(0, 1) != 62 {
		t.Errorf("AddScaled failed: %v", a.Data())
	}

	a.Scale(0.5)
	if a.At(0, 0) != 15.5 {
		t.Errorf("Scale failed: %v", a.Data())
	}

	a.Zero()
	if !a.IsZero() {
		t.Errorf("Zero left values: %v", a.Data())
	}
}

func TestMatrix_FirstNonFinite(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		bad   bool
		row   int
		col   int
	}{
		{"all finite", []float64{1, 2, 3, 4}, false, 0, 0},
		{"nan", []float64{1, 2, math.NaN(), 4}, true, 1, 0},
		{"inf", []float64{1, 2, 3, math.Inf(1)}, true, 1, 1},
		{"neg inf first", []float64{math.Inf(-1), 2, 3, 4}, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := NewMatrixFrom(2, 2, tt.data)
			i, j, _, ok := m.FirstNonFinite()
			if ok != tt.bad {
				t.Fatalf("FirstNonFinite ok = %v, want %v", ok, tt.bad)
			}
			if ok && (i != tt.row || j != tt.col) {
				t.Errorf("FirstNonFinite at (%d,%d), want (%d,%d)", i, j, tt.row, tt.col)
			}
			if m.IsFinite() == tt.bad {
				t.Errorf("IsFinite() = %v, want %v", m.IsFinite(), !tt.bad)
			}
		})
	}
}

func TestMatrixPool(t *testing.T) {
	pool := NewMatrixPool()

	m := pool.Get(4, 2)
	if m.Rows() != 4 || m.Cols() != 2 {
		t.Fatalf("pool returned %dx%d, want 4x2", m.Rows(), m.Cols())
	}

	m.Set(0, 0, 3)
	pool.Put(m)

	m2 := pool.Get(4, 2)
	if !m2.IsZero() {
		t.Error("pool did not zero recycled matrix")
	}
}
