package NEMO

import (
	"fmt"
	"math"
	"strings"
)

type TimeSchemeType uint

const (
	TS_ExplicitEuler TimeSchemeType = iota
	TS_RungeKutta
	TS_ImplicitEuler
)

var (
	TimeSchemeNames = map[string]TimeSchemeType{
		"explicit_euler": TS_ExplicitEuler,
		"runge_kutta":    TS_RungeKutta,
		"rk":             TS_RungeKutta,
		"implicit_euler": TS_ImplicitEuler,
	}
	TimeSchemePrintNames = []string{"Explicit Euler", "Runge-Kutta", "Implicit Euler"}
)

func (ts TimeSchemeType) Print() (txt string) {
	txt = TimeSchemePrintNames[ts]
	return
}

func (ts TimeSchemeType) Implicit() bool {
	return ts == TS_ImplicitEuler
}

func NewTimeSchemeType(label string) (ts TimeSchemeType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if ts, ok = TimeSchemeNames[label]; !ok {
		err = fmt.Errorf("unable to use time scheme named %s", label)
		panic(err)
	}
	return
}

func (c *Solver) initResidualMonitor() {
	for k := 0; k < c.Ix.NVar; k++ {
		c.ResRMS[k] = 0
		c.ResMax[k] = 0
		c.ResMaxPoint[k] = -1
	}
}

func (c *Solver) monitorResidual(i int, res []float64) {
	for k, r := range res {
		c.ResRMS[k] += r * r
		if a := math.Abs(r); a > c.ResMax[k] {
			c.ResMax[k] = a
			c.ResMaxPoint[k] = i
			copy(c.ResMaxCoord[k], c.Geom.Coord(i))
		}
	}
}

// finalizeResidualMonitor reduces the RMS norms globally. Max norms stay
// rank-local alongside their offending point; the printed maximum is the
// global reduction.
func (c *Solver) finalizeResidualMonitor() {
	nGlobal := c.Comm.AllReduceInt(c.Geom.NumPointsDomain(), SumOp)
	for k := 0; k < c.Ix.NVar; k++ {
		sum := c.Comm.AllReduce(c.ResRMS[k], SumOp)
		c.ResRMS[k] = math.Sqrt(sum / float64(nGlobal))
		c.ResMax[k] = reduceMax(c.Comm, c.ResMax[k])
	}
}

/*
	ExplicitEulerIteration applies U += -Δt/Vol (R + R_trunc) per point.
	Zero-volume or zero-step points are excluded from the update but still
	monitored. Continuous-adjoint runs skip the state update entirely,
	deferring to the adjoint path.
*/
func (c *Solver) ExplicitEulerIteration() {
	c.rkUpdate(1.0)
}

// ExplicitRKIteration is the stage update of a low-storage Runge-Kutta
// scheme, the explicit Euler update scaled by the stage coefficient.
func (c *Solver) ExplicitRKIteration(stage int) {
	c.rkUpdate(c.RKCoeffs[stage])
}

func (c *Solver) rkUpdate(alpha float64) {
	var (
		ix  = c.Ix
		nv  = ix.NVar
		nc  = c.Nodes
		res [MaxVar]float64
	)
	c.initResidualMonitor()
	for i := 0; i < c.Geom.NumPointsDomain(); i++ {
		var (
			vol = c.Geom.Volume(i)
			dt  = nc.DeltaT[i]
		)
		for k := 0; k < nv; k++ {
			res[k] = c.LinSysRes[i*nv+k] + nc.ResTruncError[i*nv+k]
		}
		c.monitorResidual(i, res[:nv])
		if vol <= 0 || dt <= 0 || c.ContinuousAdjoint {
			continue
		}
		delta := alpha * dt / vol
		U := nc.ConsSlice(i)
		for k := 0; k < nv; k++ {
			U[k] -= res[k] * delta
		}
	}
	c.Comm.InitiateExchange(SolutionField)
	c.Comm.CompleteExchange(SolutionField)
	c.finalizeResidualMonitor()
}

/*
	ImplicitEulerIteration assembles and solves J ΔU = -(R + R_trunc) with
	the diagonal boosted by Vol/Δt. A degenerate point (Δt == 0) gets an
	identity row and zero right-hand side so the system stays non-singular.
	The external linear solver reports its iteration count; the update is
	scaled by the per-point under-relaxation factor.
*/
func (c *Solver) ImplicitEulerIteration() (linIters int, err error) {
	var (
		ix  = c.Ix
		nv  = ix.NVar
		nc  = c.Nodes
		res [MaxVar]float64
	)
	c.initResidualMonitor()
	for i := 0; i < c.Geom.NumPointsDomain(); i++ {
		var (
			vol = c.Geom.Volume(i)
			dt  = nc.DeltaT[i]
		)
		for k := 0; k < nv; k++ {
			res[k] = c.LinSysRes[i*nv+k] + nc.ResTruncError[i*nv+k]
		}
		c.monitorResidual(i, res[:nv])
		if dt > 0 && vol > 0 {
			c.Jacobian.AddToDiag(i, vol/dt)
			for k := 0; k < nv; k++ {
				c.LinSysRHS[i*nv+k] = -res[k]
			}
		} else {
			c.Jacobian.SetIdentityRow(i)
			for k := 0; k < nv; k++ {
				c.LinSysRHS[i*nv+k] = 0
			}
		}
	}
	// halo rows are owned elsewhere; pin them so the local system closes
	for i := c.Geom.NumPointsDomain(); i < c.Geom.NumPoints(); i++ {
		c.Jacobian.SetIdentityRow(i)
		for k := 0; k < nv; k++ {
			c.LinSysRHS[i*nv+k] = 0
		}
	}
	if linIters, err = c.LinSolver.Solve(c.Jacobian, c.LinSysRHS, c.LinSysSol); err != nil {
		return
	}
	for i := 0; i < c.Geom.NumPointsDomain(); i++ {
		if c.ContinuousAdjoint {
			break
		}
		relax := nc.UnderRelaxation[i]
		U := nc.ConsSlice(i)
		for k := 0; k < nv; k++ {
			U[k] += relax * c.LinSysSol[i*nv+k]
		}
	}
	c.Comm.InitiateExchange(SolutionField)
	c.Comm.CompleteExchange(SolutionField)
	c.finalizeResidualMonitor()
	return
}

/*
	DualTimeResidual adds the physical-time derivative to the residual for
	dual-time runs, first or second order backward differences:

		BDF1: Vol (U^{n+1} - U^n) / Δt
		BDF2: Vol (3 U^{n+1} - 4 U^n + U^{n-1}) / (2 Δt)

	A solution constant across the stored time levels contributes exactly
	zero. The implicit diagonal gets the matching BDF coefficient.
*/
func (c *Solver) DualTimeResidual() {
	var (
		ix     = c.Ix
		nv     = ix.NVar
		nc     = c.Nodes
		dt     = c.PhysicalDeltaT
		second = c.TimeMarching == TM_DualTime2nd
		res    [MaxVar]float64
	)
	if dt <= 0 {
		return
	}
	for i := 0; i < c.Geom.NumPointsDomain(); i++ {
		vol := c.Geom.Volume(i)
		U := nc.ConsSlice(i)
		for k := 0; k < nv; k++ {
			un := nc.UTimeN[i*nv+k]
			if second {
				un1 := nc.UTimeN1[i*nv+k]
				res[k] = vol * (3*U[k] - 4*un + un1) / (2 * dt)
			} else {
				res[k] = vol * (U[k] - un) / dt
			}
		}
		c.addRes(i, res[:nv])
		if c.Implicit() {
			coeff := 1.0
			if second {
				coeff = 1.5
			}
			c.Jacobian.AddToDiag(i, coeff*vol/dt)
		}
	}
}
