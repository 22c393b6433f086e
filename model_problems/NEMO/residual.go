package NEMO

import "math"

func (c *Solver) addRes(i int, v []float64) {
	r := c.LinSysRes[i*c.Ix.NVar : (i+1)*c.Ix.NVar]
	for k := range v {
		r[k] += v[k]
	}
}

func (c *Solver) subRes(i int, v []float64) {
	r := c.LinSysRes[i*c.Ix.NVar : (i+1)*c.Ix.NVar]
	for k := range v {
		r[k] -= v[k]
	}
}

func (c *Solver) zeroResidual() {
	for i := range c.LinSysRes {
		c.LinSysRes[i] = 0
	}
	if c.Implicit() {
		c.Jacobian.Zero()
	}
}

/*
	CenteredResidual accumulates the centered convective residual over
	interior edges: mean projected flux plus scalar artificial dissipation,
	antisymmetric across the edge, with matching Jacobian blocks when
	implicit. A NaN anywhere in an edge's contribution discards that edge
	entirely so the global system is never corrupted.
*/
func (c *Solver) CenteredResidual() {
	var (
		ix       = c.Ix
		nv       = ix.NVar
		nc       = c.Nodes
		geom     = c.Geom
		res      [MaxVar]float64
		conv     [MaxVar]float64
		diss     [MaxVar]float64
		jacI     [MaxVar * MaxVar]float64
		jacJ     [MaxVar * MaxVar]float64
		implicit = c.Implicit()
	)
	for _, e := range geom.Edges() {
		i, j := e.Nodes[0], e.Nodes[1]
		CentralFlux(ix, nc.ConsSlice(i), nc.PrimSlice(i),
			nc.ConsSlice(j), nc.PrimSlice(j), e.Normal,
			nc.MaxLambda[i], nc.MaxLambda[j],
			geom.NumNeighbors(i), geom.NumNeighbors(j),
			conv[:nv], diss[:nv])
		for k := 0; k < nv; k++ {
			res[k] = conv[k] + diss[k]
		}
		ok := finiteSlice(res[:nv])
		if ok && implicit {
			CentralJacobians(ix, nc.ConsSlice(i), nc.PrimSlice(i), nc.DPdUSlice(i),
				nc.ConsSlice(j), nc.PrimSlice(j), nc.DPdUSlice(j), e.Normal,
				nc.MaxLambda[i], nc.MaxLambda[j],
				geom.NumNeighbors(i), geom.NumNeighbors(j),
				jacI[:nv*nv], jacJ[:nv*nv])
			ok = finiteSlice(jacI[:nv*nv]) && finiteSlice(jacJ[:nv*nv])
		}
		if !ok {
			c.Counters.EdgeNaN++
			continue
		}
		c.addRes(i, res[:nv])
		c.subRes(j, res[:nv])
		if implicit {
			c.Jacobian.AddBlock(i, i, jacI[:nv*nv])
			c.Jacobian.AddBlock(i, j, jacJ[:nv*nv])
			c.Jacobian.SubtractBlock(j, i, jacI[:nv*nv])
			c.Jacobian.SubtractBlock(j, j, jacJ[:nv*nv])
		}
	}
}

/*
	UpwindResidual accumulates the upwind convective residual, with MUSCL
	reconstruction to the face midpoint when second order is enabled. The
	two endpoints share a single limiter blend: the smaller of the two
	per-point minima over all variables. A reconstructed state the fluid
	model flags non-physical silently reverts that edge to first order. No
	Jacobian is assembled on this path.
*/
func (c *Solver) UpwindResidual() {
	var (
		ix   = c.Ix
		ns   = ix.NSpecies
		nd   = ix.NDim
		nv   = ix.NVar
		nc   = c.Nodes
		geom = c.Geom
		res  [MaxVar]float64

		uL, uR         [MaxVar]float64
		vL, vR         [MaxPrimVar]float64
		dPL, dTL, dVL  [MaxVar]float64
		dPR, dTR, dVR  [MaxVar]float64
		evL, cvL       [MaxSpecies]float64
		evR, cvR       [MaxSpecies]float64
		dxI, dxJ       [MaxNDim]float64
	)
	for _, e := range geom.Edges() {
		i, j := e.Nodes[0], e.Nodes[1]
		var (
			Ui, Vi = nc.ConsSlice(i), nc.PrimSlice(i)
			Uj, Vj = nc.ConsSlice(j), nc.PrimSlice(j)
			UL, VL = Ui, Vi
			UR, VR = Uj, Vj
		)
		if c.MUSCL {
			ci, cj := geom.Coord(i), geom.Coord(j)
			for d := 0; d < nd; d++ {
				dxI[d] = 0.5 * (cj[d] - ci[d])
				dxJ[d] = 0.5 * (ci[d] - cj[d])
			}
			blend := 1.0
			if c.Limiter != LIMITER_None {
				limI, limJ := nc.LimiterSlice(i), nc.LimiterSlice(j)
				minI, minJ := 1.0, 1.0
				for k := 0; k < nv; k++ {
					minI = math.Min(minI, limI[k])
					minJ = math.Min(minJ, limJ[k])
				}
				blend = math.Min(minI, minJ)
			}
			for k := 0; k < nv; k++ {
				gi, gj := nc.GradSlice(i, k), nc.GradSlice(j, k)
				var pI, pJ float64
				for d := 0; d < nd; d++ {
					pI += gi[d] * dxI[d]
					pJ += gj[d] * dxJ[d]
				}
				uL[k] = Ui[k] + blend*pI
				uR[k] = Uj[k] + blend*pJ
			}
			badL := c.Fluid.Cons2PrimVar(uL[:nv], vL[:ix.NPrimVar],
				dPL[:nv], dTL[:nv], dVL[:nv], evL[:ns], cvL[:ns])
			badR := c.Fluid.Cons2PrimVar(uR[:nv], vR[:ix.NPrimVar],
				dPR[:nv], dTR[:nv], dVR[:nv], evR[:ns], cvR[:ns])
			if !badL && !badR {
				UL, VL = uL[:nv], vL[:ix.NPrimVar]
				UR, VR = uR[:nv], vR[:ix.NPrimVar]
			}
		}
		c.UpwindFlux(ix, UL, VL, UR, VR, e.Normal, res[:nv])
		if !finiteSlice(res[:nv]) {
			c.Counters.EdgeNaN++
			continue
		}
		c.addRes(i, res[:nv])
		c.subRes(j, res[:nv])
	}
}

/*
	SourceResidual integrates the three per-cell source types. Signs:
	axisymmetric is added, chemistry and vibrational relaxation are
	subtracted. A non-finite source increments its named counter and only
	that term is skipped for that point. Implicit diagonal blocks are
	one-sided finite differences of each source functor.
*/
func (c *Solver) SourceResidual() {
	var (
		ix       = c.Ix
		nv       = ix.NVar
		nc       = c.Nodes
		geom     = c.Geom
		res      [MaxVar]float64
		jac      [MaxVar * MaxVar]float64
		implicit = c.Implicit()
		doAxi    = c.Axisymmetric && ix.NDim == 2
		doChem   = !c.Frozen && !c.Fluid.MonoatomicOnly()
		doVib    = !c.Fluid.MonoatomicOnly()
	)
	for i := 0; i < geom.NumPointsDomain(); i++ {
		var (
			vol   = geom.Volume(i)
			coord = geom.Coord(i)
		)
		if doAxi {
			if AxisymmetricSource(ix, nc.ConsSlice(i), nc.PrimSlice(i), coord, vol, res[:nv]) {
				c.addRes(i, res[:nv])
				if implicit {
					if c.sourceJacobianFD(i, vol, coord, axiSourceEval, jac[:nv*nv]) {
						c.Jacobian.AddBlock(i, i, jac[:nv*nv])
					}
				}
			} else {
				c.Counters.AxiNaN++
			}
		}
		if doChem {
			if ChemistrySource(ix, c.Fluid, nc.PrimSlice(i), nc.EveSlice(i), vol, res[:nv]) {
				c.subRes(i, res[:nv])
				if implicit {
					if c.sourceJacobianFD(i, vol, coord, chemSourceEval, jac[:nv*nv]) {
						c.Jacobian.SubtractBlock(i, i, jac[:nv*nv])
					}
				}
			} else {
				c.Counters.ChemNaN++
			}
		}
		if doVib {
			if VibRelaxSource(ix, c.Fluid, nc.PrimSlice(i), vol, res[:nv]) {
				c.subRes(i, res[:nv])
				if implicit {
					if c.sourceJacobianFD(i, vol, coord, vibSourceEval, jac[:nv*nv]) {
						c.Jacobian.SubtractBlock(i, i, jac[:nv*nv])
					}
				}
			} else {
				c.Counters.VibNaN++
			}
		}
	}
}

// sourceEval evaluates one source type at an arbitrary conserved state
type sourceEval func(c *Solver, U, V, eves, coord []float64, vol float64, res []float64) bool

func axiSourceEval(c *Solver, U, V, eves, coord []float64, vol float64, res []float64) bool {
	return AxisymmetricSource(c.Ix, U, V, coord, vol, res)
}

func chemSourceEval(c *Solver, U, V, eves, coord []float64, vol float64, res []float64) bool {
	return ChemistrySource(c.Ix, c.Fluid, V, eves, vol, res)
}

func vibSourceEval(c *Solver, U, V, eves, coord []float64, vol float64, res []float64) bool {
	return VibRelaxSource(c.Ix, c.Fluid, V, vol, res)
}

// sourceJacobianFD builds a one-sided finite-difference diagonal Jacobian
// block for a source functor. Returns false when any entry is non-finite.
func (c *Solver) sourceJacobianFD(i int, vol float64, coord []float64,
	eval sourceEval, jac []float64) (ok bool) {
	var (
		ix   = c.Ix
		ns   = ix.NSpecies
		nv   = ix.NVar
		nc   = c.Nodes
		res0 [MaxVar]float64
		resP [MaxVar]float64
		uP   [MaxVar]float64
		vP   [MaxPrimVar]float64
		dP, dT, dV [MaxVar]float64
		ev, cv     [MaxSpecies]float64
	)
	if !eval(c, nc.ConsSlice(i), nc.PrimSlice(i), nc.EveSlice(i), coord, vol, res0[:nv]) {
		return false
	}
	U := nc.ConsSlice(i)
	for k := 0; k < nv; k++ {
		copy(uP[:nv], U)
		eps := 1.e-6*math.Abs(U[k]) + 1.e-12
		uP[k] += eps
		c.Fluid.Cons2PrimVar(uP[:nv], vP[:ix.NPrimVar], dP[:nv], dT[:nv], dV[:nv], ev[:ns], cv[:ns])
		if !eval(c, uP[:nv], vP[:ix.NPrimVar], ev[:ns], coord, vol, resP[:nv]) {
			return false
		}
		for r := 0; r < nv; r++ {
			jac[r*nv+k] = (resP[r] - res0[r]) / eps
		}
	}
	return finiteSlice(jac[:nv*nv])
}
