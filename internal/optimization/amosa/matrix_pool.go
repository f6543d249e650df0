package amosa

import "gonum.org/v1/gonum/mat"

// MatrixPool provides a pool of reusable distance matrices to reduce allocations
type MatrixPool struct {
	symPools []*mat.SymDense
}

// NewMatrixPool creates a new MatrixPool
func NewMatrixPool() *MatrixPool {
	return &MatrixPool{
		symPools: make([]*mat.SymDense, 0, 4),
	}
}

// GetSymDense returns an n×n symmetric matrix, reusing pooled storage when possible.
// The contents are zero.
func (p *MatrixPool) GetSymDense(n int) *mat.SymDense {
	if p == nil || len(p.symPools) == 0 {
		return mat.NewSymDense(n, nil)
	}
	m := p.symPools[len(p.symPools)-1]
	p.symPools = p.symPools[:len(p.symPools)-1]
	m.Reset()
	m.ReuseAsSym(n)
	return m
}

// PutSymDense returns a symmetric matrix to the pool
func (p *MatrixPool) PutSymDense(m *mat.SymDense) {
	if p == nil || m == nil {
		return
	}
	p.symPools = append(p.symPools, m)
}
