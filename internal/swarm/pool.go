package swarm

import "sync"

// MatrixPool recycles scratch matrices by shape. Integrators and the
// simulator borrow per-tick buffers from it instead of allocating on every
// step.
type MatrixPool struct {
	mu    sync.Mutex
	pools map[[2]int]*sync.Pool
}

func NewMatrixPool() *MatrixPool {
	return &MatrixPool{pools: make(map[[2]int]*sync.Pool)}
}

// Get returns a zeroed rows x cols matrix.
func (p *MatrixPool) Get(rows, cols int) *Matrix {
	p.mu.Lock()
	pool, ok := p.pools[[2]int{rows, cols}]
	if !ok {
		pool = &sync.Pool{New: func() any { return NewMatrix(rows, cols) }}
		p.pools[[2]int{rows, cols}] = pool
	}
	p.mu.Unlock()

	m := pool.Get().(*Matrix)
	m.Zero()
	return m
}

func (p *MatrixPool) Put(m *Matrix) {
	if m == nil {
		return
	}
	p.mu.Lock()
	pool, ok := p.pools[[2]int{m.Rows(), m.Cols()}]
	p.mu.Unlock()
	if ok {
		pool.Put(m)
	}
}
