package utils

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LinearSolver solves A*x = b for the implicit time integrator. Implementations
// report the number of iterations spent so callers can log convergence.
type LinearSolver interface {
	Solve(A *BlockSparse, b, x []float64) (iters int, err error)
}

// BlockJacobi is a block-Jacobi preconditioned Richardson iteration:
//
//	x_{k+1} = x_k + D^{-1} (b - A x_k)
//
// where D is the block diagonal of A. Cheap, matrix-free beyond the block
// inverses, and adequate as the approximate smoother the implicit scheme needs.
type BlockJacobi struct {
	MaxIters int
	Tol      float64 // relative to ||b||
}

func NewBlockJacobi() *BlockJacobi {
	return &BlockJacobi{
		MaxIters: 25,
		Tol:      1.e-6,
	}
}

func (bj *BlockJacobi) Solve(A *BlockSparse, b, x []float64) (iters int, err error) {
	var (
		nb    = A.BSize
		n     = A.NBlocks * nb
		block = make([]float64, nb*nb)
		dinv  = make([]*mat.Dense, A.NBlocks)
		r     = make([]float64, n)
		ax    = make([]float64, n)
	)
	if len(b) != n || len(x) != n {
		err = fmt.Errorf("Solve: system dim %d, rhs %d, solution %d", n, len(b), len(x))
		return
	}
	for i := 0; i < A.NBlocks; i++ {
		A.DiagBlock(i, block)
		var inv mat.Dense
		if ierr := inv.Inverse(mat.NewDense(nb, nb, block)); ierr != nil {
			err = fmt.Errorf("Solve: singular diagonal block at point %d: %w", i, ierr)
			return
		}
		dinv[i] = &inv
	}
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		for i := range x {
			x[i] = 0
		}
		return
	}
	for i := range x {
		x[i] = 0
	}
	for iters = 0; iters < bj.MaxIters; iters++ {
		A.MulVec(x, ax)
		for i := range r {
			r[i] = b[i] - ax[i]
		}
		if floats.Norm(r, 2) <= bj.Tol*bnorm {
			return
		}
		for i := 0; i < A.NBlocks; i++ {
			ri := mat.NewVecDense(nb, r[i*nb:(i+1)*nb])
			var dx mat.VecDense
			dx.MulVec(dinv[i], ri)
			for ii := 0; ii < nb; ii++ {
				x[i*nb+ii] += dx.AtVec(ii)
			}
		}
	}
	return
}
