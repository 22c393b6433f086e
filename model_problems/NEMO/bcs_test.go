package NEMO

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timjim333/SU2/utils"
)

func TestBoundaryConditions(t *testing.T) {
	{ // Supersonic outlet degenerates to the projected interior flux
		geom := NewBoxMesh(4, 3, 0.1, 0.1,
			utils.BCFarfield, utils.BCSupersonicOutflow, utils.BCFarfield, utils.BCFarfield)
		c := newTestSolver(t, testConfig(), geom)
		c.Preprocessing()
		c.zeroResidual()
		for _, m := range c.Geom.Markers() {
			if m.Kind == utils.BCSupersonicOutflow {
				c.bcSupersonicOutlet(m)
				for _, bv := range m.Vertices {
					var (
						i     = bv.Node
						nv    = c.Ix.NVar
						exact = make([]float64, nv)
					)
					ProjectedFlux(c.Ix, c.Nodes.ConsSlice(i), c.Nodes.PrimSlice(i),
						bv.Normal, exact)
					for k := 0; k < nv; k++ {
						assert.True(t, near(exact[k], c.LinSysRes[i*nv+k], 1.e-10),
							"vertex %d var %d", i, k)
					}
				}
			}
		}
	}
	{ // Euler wall feeds only pressure into the momentum rows
		geom := NewBoxMesh(4, 3, 0.1, 0.1,
			utils.BCFarfield, utils.BCFarfield, utils.BCSlipWall, utils.BCFarfield)
		c := newTestSolver(t, testConfig(), geom)
		c.Preprocessing()
		c.zeroResidual()
		for _, m := range c.Geom.Markers() {
			if m.Kind == utils.BCSlipWall {
				c.bcEulerWall(m)
				for _, bv := range m.Vertices {
					var (
						i  = bv.Node
						nv = c.Ix.NVar
						ns = c.Ix.NSpecies
						P  = c.Nodes.Prim(i).P()
					)
					for k := 0; k < nv; k++ {
						want := 0.0
						if k >= ns && k < ns+c.Ix.NDim {
							want = P * bv.Normal[k-ns]
						}
						assert.True(t, near(want, c.LinSysRes[i*nv+k], 1.e-10),
							"vertex %d var %d: want %v got %v", i, k, want, c.LinSysRes[i*nv+k])
					}
				}
			}
		}
	}
	{ // Subsonic outlet at the interior pressure reproduces the interior flux
		cfg := testConfig()
		cfg.Mach = 0.4
		cfg.BackPressure = map[string]float64{"east": cfg.Pressure}
		geom := NewBoxMesh(4, 3, 0.1, 0.1,
			utils.BCFarfield, utils.BCOutflow, utils.BCFarfield, utils.BCFarfield)
		c := newTestSolver(t, cfg, geom)
		c.Preprocessing()
		c.zeroResidual()
		for _, m := range c.Geom.Markers() {
			if m.Kind == utils.BCOutflow {
				c.bcOutlet(m)
				for _, bv := range m.Vertices {
					var (
						i     = bv.Node
						nv    = c.Ix.NVar
						exact = make([]float64, nv)
					)
					ProjectedFlux(c.Ix, c.Nodes.ConsSlice(i), c.Nodes.PrimSlice(i),
						bv.Normal, exact)
					for k := 0; k < nv; k++ {
						assert.True(t, near(exact[k], c.LinSysRes[i*nv+k], 1.e-6),
							"vertex %d var %d: want %v got %v", i, k, exact[k], c.LinSysRes[i*nv+k])
					}
				}
			}
		}
	}
	{ // Supersonic back-pressure outlet ignores the imposed pressure entirely
		cfg := testConfig()
		cfg.Mach = 2.5
		cfg.BackPressure = map[string]float64{"east": 2 * cfg.Pressure}
		geom := NewBoxMesh(4, 3, 0.1, 0.1,
			utils.BCFarfield, utils.BCOutflow, utils.BCFarfield, utils.BCFarfield)
		c := newTestSolver(t, cfg, geom)
		c.Preprocessing()
		c.zeroResidual()
		for _, m := range c.Geom.Markers() {
			if m.Kind == utils.BCOutflow {
				c.bcOutlet(m)
				for _, bv := range m.Vertices {
					var (
						i     = bv.Node
						nv    = c.Ix.NVar
						exact = make([]float64, nv)
					)
					ProjectedFlux(c.Ix, c.Nodes.ConsSlice(i), c.Nodes.PrimSlice(i),
						bv.Normal, exact)
					for k := 0; k < nv; k++ {
						assert.True(t, near(exact[k], c.LinSysRes[i*nv+k], 1.e-10))
					}
				}
			}
		}
	}
	{ // Far field against an identical interior state is flux-free in sum
		c := newTestSolver(t, testConfig(), farfieldBox(3, 3))
		c.Preprocessing()
		c.zeroResidual()
		assert.NoError(t, c.BoundaryResidual())
		var (
			nv  = c.Ix.NVar
			sum = make([]float64, nv)
		)
		for i := 0; i < c.Geom.NumPoints(); i++ {
			for k := 0; k < nv; k++ {
				sum[k] += c.LinSysRes[i*nv+k]
			}
		}
		// closed boundary: F(U_infty)·sum(n) == 0
		scale := math.Abs(c.NodeInfty.U[c.Ix.EIdx])
		for k := 0; k < nv; k++ {
			assert.True(t, math.Abs(sum[k]) < 1.e-10*scale)
		}
	}
	{ // An inlet marker appearing after construction still fails at apply time
		c := newTestSolver(t, testConfig(), farfieldBox(3, 3))
		dm := c.Geom.(*DualMesh)
		dm.AddMarker("bad_inlet", utils.BCInflow,
			BoundaryVertex{Node: 0, Normal: []float64{-0.05, 0}})
		c.Preprocessing()
		c.zeroResidual()
		err := c.BoundaryResidual()
		assert.Error(t, err)
		var cerr *ConfigError
		assert.ErrorAs(t, err, &cerr)
	}
}
