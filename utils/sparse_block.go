package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// BlockSparse is a square sparse matrix composed of bSize x bSize dense
// blocks, one block row/column per mesh point. Blocks are accumulated
// additively during residual assembly; entries never written are implicitly
// zero. Storage is a DOK during assembly, converted to CSR for products.
type BlockSparse struct {
	NBlocks int // number of block rows (= block columns)
	BSize   int // scalar rows per block
	M       *sparse.DOK
	csr     *sparse.CSR // built lazily, invalidated by writes
}

func NewBlockSparse(nBlocks, bSize int) (R *BlockSparse) {
	n := nBlocks * bSize
	R = &BlockSparse{
		NBlocks: nBlocks,
		BSize:   bSize,
		M:       sparse.NewDOK(n, n),
	}
	return
}

// Zero drops all stored blocks, keeping dimensions
func (bs *BlockSparse) Zero() {
	n := bs.NBlocks * bs.BSize
	bs.M = sparse.NewDOK(n, n)
	bs.csr = nil
}

// AddBlock accumulates the row-major bSize x bSize block b into block (i,j)
func (bs *BlockSparse) AddBlock(i, j int, b []float64) {
	var (
		nb = bs.BSize
		r0 = i * nb
		c0 = j * nb
	)
	if len(b) != nb*nb {
		panic(fmt.Errorf("block length %d, need %d", len(b), nb*nb))
	}
	for ii := 0; ii < nb; ii++ {
		for jj := 0; jj < nb; jj++ {
			v := b[ii*nb+jj]
			if v != 0 {
				bs.M.Set(r0+ii, c0+jj, bs.M.At(r0+ii, c0+jj)+v)
			}
		}
	}
	bs.csr = nil
}

// SubtractBlock accumulates the negation of b into block (i,j)
func (bs *BlockSparse) SubtractBlock(i, j int, b []float64) {
	var (
		nb = bs.BSize
		r0 = i * nb
		c0 = j * nb
	)
	if len(b) != nb*nb {
		panic(fmt.Errorf("block length %d, need %d", len(b), nb*nb))
	}
	for ii := 0; ii < nb; ii++ {
		for jj := 0; jj < nb; jj++ {
			v := b[ii*nb+jj]
			if v != 0 {
				bs.M.Set(r0+ii, c0+jj, bs.M.At(r0+ii, c0+jj)-v)
			}
		}
	}
	bs.csr = nil
}

// AddToDiag adds v to every scalar diagonal entry of block (i,i)
func (bs *BlockSparse) AddToDiag(i int, v float64) {
	r0 := i * bs.BSize
	for ii := 0; ii < bs.BSize; ii++ {
		bs.M.Set(r0+ii, r0+ii, bs.M.At(r0+ii, r0+ii)+v)
	}
	bs.csr = nil
}

// SetIdentityRow clears block row i and installs the identity in block (i,i).
// Used for degenerate cells (zero time step) to keep the system non-singular.
func (bs *BlockSparse) SetIdentityRow(i int) {
	var (
		r0   = i * bs.BSize
		r1   = r0 + bs.BSize
		rows []int
		cols []int
	)
	bs.M.DoNonZero(func(r, c int, v float64) {
		if r >= r0 && r < r1 {
			rows = append(rows, r)
			cols = append(cols, c)
		}
	})
	for k := range rows {
		bs.M.Set(rows[k], cols[k], 0)
	}
	for ii := 0; ii < bs.BSize; ii++ {
		bs.M.Set(r0+ii, r0+ii, 1)
	}
	bs.csr = nil
}

// DiagBlock copies block (i,i) into dst, a row-major bSize x bSize scratch
func (bs *BlockSparse) DiagBlock(i int, dst []float64) {
	var (
		nb = bs.BSize
		r0 = i * nb
	)
	for ii := 0; ii < nb; ii++ {
		for jj := 0; jj < nb; jj++ {
			dst[ii*nb+jj] = bs.M.At(r0+ii, r0+jj)
		}
	}
}

// MulVec computes y = A*x over the stored nonzeros
func (bs *BlockSparse) MulVec(x, y []float64) {
	n := bs.NBlocks * bs.BSize
	if len(x) != n || len(y) != n {
		panic(fmt.Errorf("vector length mismatch: matrix dim %d, x %d, y %d",
			n, len(x), len(y)))
	}
	if bs.csr == nil {
		bs.csr = bs.M.ToCSR()
	}
	for i := range y {
		y[i] = 0
	}
	bs.csr.DoNonZero(func(r, c int, v float64) {
		y[r] += v * x[c]
	})
}
