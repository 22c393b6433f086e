package NEMO

import (
	"fmt"
	"math"
	"strings"
)

type TimeMarchingType uint

const (
	TM_Steady TimeMarchingType = iota
	TM_TimeStepping
	TM_DualTime1st
	TM_DualTime2nd
)

var (
	TimeMarchingNames = map[string]TimeMarchingType{
		"steady":        TM_Steady,
		"time_stepping": TM_TimeStepping,
		"dual_time_1st": TM_DualTime1st,
		"dual_time_2nd": TM_DualTime2nd,
	}
	TimeMarchingPrintNames = []string{
		"Steady", "Time Stepping", "Dual Time (BDF1)", "Dual Time (BDF2)",
	}
)

func (tm TimeMarchingType) Print() (txt string) {
	txt = TimeMarchingPrintNames[tm]
	return
}

func NewTimeMarchingType(label string) (tm TimeMarchingType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if tm, ok = TimeMarchingNames[label]; !ok {
		err = fmt.Errorf("unable to use time marching named %s", label)
		panic(err)
	}
	return
}

func (tm TimeMarchingType) Unsteady() bool {
	return tm == TM_DualTime1st || tm == TM_DualTime2nd
}

// viscous time-step safety factor
const kViscous = 0.5

/*
	SetTimeStep computes per-point pseudo-time steps from inviscid and
	viscous spectral radii accumulated over dual faces. Interior edges use
	arithmetic-mean face states; boundary faces use one-sided values. Grid
	motion subtracts the face-projected grid velocity before the absolute
	value is taken.
*/
func (c *Solver) SetTimeStep() {
	var (
		ix   = c.Ix
		nd   = ix.NDim
		geom = c.Geom
		nc   = c.Nodes
	)
	for i := range nc.LambdaInv {
		nc.LambdaInv[i] = 0
		nc.LambdaVisc[i] = 0
	}

	for _, e := range geom.Edges() {
		i, j := e.Nodes[0], e.Nodes[1]
		Vi, Vj := nc.Prim(i), nc.Prim(j)
		var area, projVel float64
		for d := 0; d < nd; d++ {
			area += e.Normal[d] * e.Normal[d]
			projVel += 0.5 * (Vi.Vel(d) + Vj.Vel(d)) * e.Normal[d]
		}
		area = math.Sqrt(area)
		if gvI, gvJ := geom.GridVelocity(i), geom.GridVelocity(j); gvI != nil && gvJ != nil {
			for d := 0; d < nd; d++ {
				projVel -= 0.5 * (gvI[d] + gvJ[d]) * e.Normal[d]
			}
		}
		lambda := math.Abs(projVel) + 0.5*(Vi.A()+Vj.A())*area
		nc.LambdaInv[i] += lambda
		nc.LambdaInv[j] += lambda

		if c.Viscous {
			var (
				rhoM = 0.5 * (Vi.Rho() + Vj.Rho())
				muM  = 0.5 * (nc.Mu[i] + nc.Mu[j])
				kM   = 0.5 * (nc.Ktr[i] + nc.Kve[i] + nc.Ktr[j] + nc.Kve[j])
				cvM  = 0.5 * ((Vi.RhoCvtr()+Vi.RhoCvve())/Vi.Rho() +
					(Vj.RhoCvtr()+Vj.RhoCvve())/Vj.Rho())
			)
			lv := (4.0/3.0*muM + kM/cvM) * area * area / rhoM
			nc.LambdaVisc[i] += lv
			nc.LambdaVisc[j] += lv
		}
	}

	for _, m := range geom.Markers() {
		for _, bv := range m.Vertices {
			i := bv.Node
			Vi := nc.Prim(i)
			var area, projVel float64
			for d := 0; d < nd; d++ {
				area += bv.Normal[d] * bv.Normal[d]
				projVel += Vi.Vel(d) * bv.Normal[d]
			}
			area = math.Sqrt(area)
			if gv := geom.GridVelocity(i); gv != nil {
				for d := 0; d < nd; d++ {
					projVel -= gv[d] * bv.Normal[d]
				}
			}
			nc.LambdaInv[i] += math.Abs(projVel) + Vi.A()*area
			if c.Viscous {
				cv := (Vi.RhoCvtr() + Vi.RhoCvve()) / Vi.Rho()
				nc.LambdaVisc[i] += (4.0/3.0*nc.Mu[i] + (nc.Ktr[i]+nc.Kve[i])/cv) *
					area * area / Vi.Rho()
			}
		}
	}

	// The centered scheme's dissipation scales on the same spectral radius
	copy(nc.MaxLambda, nc.LambdaInv)

	var (
		minDT = math.MaxFloat64
		maxDT = 0.0
	)
	for i := 0; i < geom.NumPoints(); i++ {
		var dt float64
		vol := geom.Volume(i)
		if vol > 0 && nc.LambdaInv[i] > 0 {
			dt = c.CFL * vol / nc.LambdaInv[i]
			if c.Viscous && nc.LambdaVisc[i] > 0 {
				dtVisc := c.CFL * kViscous * vol * vol / nc.LambdaVisc[i]
				dt = math.Min(dt, dtVisc)
			}
			if c.MaxDeltaTime > 0 {
				dt = math.Min(dt, c.MaxDeltaTime)
			}
		}
		nc.DeltaT[i] = dt
		if geom.IsDomain(i) {
			minDT = math.Min(minDT, dt)
			maxDT = math.Max(maxDT, dt)
		}
	}
	c.MinDeltaT = reduceMin(c.Comm, minDT)
	c.MaxDeltaT = reduceMax(c.Comm, maxDT)

	switch c.TimeMarching {
	case TM_TimeStepping:
		// one global step, the tightest local constraint everywhere
		global := c.MinDeltaT
		if c.MaxDeltaTime > 0 {
			global = math.Min(global, c.MaxDeltaTime)
		}
		for i := range nc.DeltaT {
			nc.DeltaT[i] = global
		}
	case TM_DualTime1st, TM_DualTime2nd:
		// explicit pseudo-stepping goes unstable past 2/3 of the physical
		// step; implicit inner iterations carry no such restriction
		if !c.TimeScheme.Implicit() {
			pseudoCap := 2.0 / 3.0 * c.PhysicalDeltaT
			for i := range nc.DeltaT {
				nc.DeltaT[i] = math.Min(nc.DeltaT[i], pseudoCap)
			}
		}
	}
}
