package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockSparse(t *testing.T) {
	near := func(a, b float64) bool {
		return math.Abs(a-b) < 1.e-12
	}
	{ // AddBlock accumulates, SubtractBlock negates, MulVec applies the sum
		A := NewBlockSparse(3, 2)
		A.AddBlock(0, 0, []float64{1, 2, 3, 4})
		A.AddBlock(0, 0, []float64{1, 0, 0, 1})
		A.SubtractBlock(0, 0, []float64{0, 2, 0, 0})
		A.AddBlock(1, 2, []float64{5, 0, 0, 5})
		x := []float64{1, 1, 0, 0, 2, 3}
		y := make([]float64, 6)
		A.MulVec(x, y)
		// block (0,0) is [2,0;3,5], block (1,2) is 5*I
		assert.True(t, near(y[0], 2))
		assert.True(t, near(y[1], 8))
		assert.True(t, near(y[2], 10))
		assert.True(t, near(y[3], 15))
		assert.True(t, near(y[4], 0))
		assert.True(t, near(y[5], 0))
	}
	{ // AddToDiag touches only the scalar diagonal of one block
		A := NewBlockSparse(2, 3)
		A.AddBlock(1, 1, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1})
		A.AddToDiag(1, 10)
		d := make([]float64, 9)
		A.DiagBlock(1, d)
		assert.True(t, near(d[0], 11))
		assert.True(t, near(d[4], 11))
		assert.True(t, near(d[8], 11))
		assert.True(t, near(d[1], 1))
		A.DiagBlock(0, d)
		for _, v := range d {
			assert.True(t, near(v, 0))
		}
	}
	{ // SetIdentityRow wipes the block row including off-diagonal couplings
		A := NewBlockSparse(3, 2)
		A.AddBlock(1, 0, []float64{7, 7, 7, 7})
		A.AddBlock(1, 1, []float64{3, 1, 1, 3})
		A.AddBlock(1, 2, []float64{-2, 0, 0, -2})
		A.AddBlock(2, 1, []float64{4, 0, 0, 4})
		A.SetIdentityRow(1)
		x := []float64{1, 2, 3, 4, 5, 6}
		y := make([]float64, 6)
		A.MulVec(x, y)
		assert.True(t, near(y[2], 3))
		assert.True(t, near(y[3], 4))
		// rows outside the cleared block row are untouched
		assert.True(t, near(y[4], 12))
		assert.True(t, near(y[5], 16))
	}
	{ // Zero drops every stored entry, dimensions survive
		A := NewBlockSparse(2, 2)
		A.AddBlock(0, 1, []float64{1, 2, 3, 4})
		A.Zero()
		x := []float64{1, 1, 1, 1}
		y := []float64{9, 9, 9, 9}
		A.MulVec(x, y)
		for _, v := range y {
			assert.True(t, near(v, 0))
		}
		assert.Equal(t, 2, A.NBlocks)
		assert.Equal(t, 2, A.BSize)
	}
	{ // size mismatches panic rather than corrupt
		A := NewBlockSparse(2, 2)
		assert.Panics(t, func() { A.AddBlock(0, 0, []float64{1, 2, 3}) })
		assert.Panics(t, func() { A.MulVec(make([]float64, 3), make([]float64, 4)) })
	}
}
