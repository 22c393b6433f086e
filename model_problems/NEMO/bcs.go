package NEMO

import (
	"fmt"
	"math"

	"github.com/timjim333/SU2/utils"
)

/*
	FreeStream holds the reference far-field state: nondimensional primitive
	and conserved vectors plus the derivative arrays boundary fluxes need.
	Built once at construction, immutable afterwards.
*/
type FreeStream struct {
	Mach, Alpha, Beta float64

	Density, Pressure, Temperature, TemperatureVE float64
	SoundSpeed                                    float64
	Velocity                                      []float64
	MassFrac                                      []float64

	U, V               []float64
	DPdU, DTdU, DTvedU []float64
	Eve, Cvve          []float64
}

// BoundaryResidual applies every marker's boundary flux. Unsupported marker
// kinds are rejected here as well as at Validate, so the hot loop can trust
// the marker set.
func (c *Solver) BoundaryResidual() (err error) {
	for _, m := range c.Geom.Markers() {
		switch m.Kind {
		case utils.BCSlipWall, utils.BCSymmetry:
			c.bcEulerWall(m)
		case utils.BCFarfield:
			c.bcFarField(m)
		case utils.BCOutflow:
			c.bcOutlet(m)
		case utils.BCSupersonicOutflow:
			c.bcSupersonicOutlet(m)
		case utils.BCInflow:
			err = &ConfigError{
				Func: "BoundaryResidual",
				Msg:  fmt.Sprintf("marker %q: inlet boundaries are not operational for the two-temperature model", m.Name),
			}
			return
		case utils.BCSupersonicInflow:
			err = &ConfigError{
				Func: "BoundaryResidual",
				Msg:  fmt.Sprintf("marker %q: supersonic inlet requires fluid-model extensions not yet available", m.Name),
			}
			return
		default:
			err = &ConfigError{
				Func: "BoundaryResidual",
				Msg:  fmt.Sprintf("marker %q: unsupported boundary kind %s", m.Name, m.Kind),
			}
			return
		}
	}
	return
}

/*
	bcEulerWall imposes flow tangency: the boundary flux reduces to the
	pressure acting on the face, so only momentum rows are filled. The
	implicit block is the projected-flux Jacobian evaluated at the
	wall-tangent state, whose pressure rows come directly from dPdU.
*/
func (c *Solver) bcEulerWall(m Marker) {
	var (
		ix       = c.Ix
		ns       = ix.NSpecies
		nd       = ix.NDim
		nv       = ix.NVar
		nc       = c.Nodes
		res      [MaxVar]float64
		jac      [MaxVar * MaxVar]float64
		uT       [MaxVar]float64
		vT       [MaxPrimVar]float64
		implicit = c.Implicit()
	)
	for _, bv := range m.Vertices {
		i := bv.Node
		if !c.Geom.IsDomain(i) {
			continue
		}
		P := nc.Prim(i).P()
		for k := 0; k < nv; k++ {
			res[k] = 0
		}
		for d := 0; d < nd; d++ {
			res[ns+d] = P * bv.Normal[d]
		}
		if !finiteSlice(res[:nv]) {
			c.Counters.EdgeNaN++
			continue
		}
		c.addRes(i, res[:nv])
		if implicit {
			unit, _ := utils.UnitVector(bv.Normal)
			copy(uT[:nv], nc.ConsSlice(i))
			copy(vT[:ix.NPrimVar], nc.PrimSlice(i))
			var vn float64
			for d := 0; d < nd; d++ {
				vn += vT[ix.VelIdx+d] * unit[d]
			}
			rho := vT[ix.RhoIdx]
			for d := 0; d < nd; d++ {
				vT[ix.VelIdx+d] -= vn * unit[d]
				uT[ns+d] = rho * vT[ix.VelIdx+d]
			}
			for k := 0; k < nv*nv; k++ {
				jac[k] = 0
			}
			ProjectedJacobian(ix, uT[:nv], vT[:ix.NPrimVar], nc.DPdUSlice(i),
				bv.Normal, 1.0, jac[:nv*nv])
			if finiteSlice(jac[:nv*nv]) {
				c.Jacobian.AddBlock(i, i, jac[:nv*nv])
			}
		}
	}
}

// bcFarField closes every boundary face against the free-stream reference
// state through the shared Riemann functor.
func (c *Solver) bcFarField(m Marker) {
	var (
		ix  = c.Ix
		nv  = ix.NVar
		nc  = c.Nodes
		res [MaxVar]float64
	)
	for _, bv := range m.Vertices {
		i := bv.Node
		if !c.Geom.IsDomain(i) {
			continue
		}
		c.UpwindFlux(ix, nc.ConsSlice(i), nc.PrimSlice(i),
			c.NodeInfty.U, c.NodeInfty.V, bv.Normal, res[:nv])
		if !finiteSlice(res[:nv]) {
			c.Counters.EdgeNaN++
			continue
		}
		c.addRes(i, res[:nv])
		c.boundaryJacobian(i, bv.Normal)
	}
}

/*
	bcOutlet imposes a back pressure. Supersonic exits copy the interior
	state; subsonic exits extrapolate entropy, tangential velocity and the
	temperatures along the outgoing characteristics, impose the exit
	pressure, and rebuild the ghost state through the fluid model.
*/
func (c *Solver) bcOutlet(m Marker) {
	var (
		ix   = c.Ix
		ns   = ix.NSpecies
		nd   = ix.NDim
		nv   = ix.NVar
		nc   = c.Nodes
		res  [MaxVar]float64
		uOut [MaxVar]float64
		vOut [MaxPrimVar]float64
		dP, dT, dV [MaxVar]float64
		ev, cv     [MaxSpecies]float64
		ys         [MaxSpecies]float64
		vel        [MaxNDim]float64
		pExit      = c.BackPressure[m.Name]
	)
	for _, bv := range m.Vertices {
		i := bv.Node
		if !c.Geom.IsDomain(i) {
			continue
		}
		var (
			Vi       = nc.Prim(i)
			UOut, VOut []float64
		)
		unit, _ := utils.UnitVector(bv.Normal)
		mach := math.Sqrt(Vi.VelocitySq()) / Vi.A()
		if mach >= 1 {
			// no characteristic enters the domain
			UOut, VOut = nc.ConsSlice(i), nc.PrimSlice(i)
		} else {
			var (
				rhoDom = Vi.Rho()
				pDom   = Vi.P()
				tDom   = Vi.T()
				rMix   = pDom / (rhoDom * tDom)
				gamma  = 1 + pDom/(tDom*Vi.RhoCvtr())
			)
			entropy := pDom / math.Pow(rhoDom, gamma)
			rhoOut := math.Pow(pExit/entropy, 1/gamma)
			aOut := math.Sqrt(gamma * pExit / rhoOut)
			vnDom := Vi.ProjectedVelocity(unit)
			vnOut := vnDom + 2*(Vi.A()-aOut)/(gamma-1)
			var sqOut float64
			for d := 0; d < nd; d++ {
				vel[d] = Vi.Vel(d) + (vnOut-vnDom)*unit[d]
				sqOut += vel[d] * vel[d]
			}
			tOut := pExit / (rhoOut * rMix)
			tveOut := Vi.Tve()
			Vi.MassFractions(ys[:ns])
			c.Fluid.SetState(pExit, ys[:ns], tOut, tveOut)
			e, eve := c.Fluid.MixtureEnergies()
			for s := 0; s < ns; s++ {
				uOut[s] = rhoOut * ys[s]
			}
			for d := 0; d < nd; d++ {
				uOut[ns+d] = rhoOut * vel[d]
			}
			uOut[ix.EIdx] = rhoOut * (e + 0.5*sqOut)
			uOut[ix.EveIdx] = rhoOut * eve
			c.Fluid.Cons2PrimVar(uOut[:nv], vOut[:ix.NPrimVar],
				dP[:nv], dT[:nv], dV[:nv], ev[:ns], cv[:ns])
			UOut, VOut = uOut[:nv], vOut[:ix.NPrimVar]
		}
		c.UpwindFlux(ix, nc.ConsSlice(i), nc.PrimSlice(i), UOut, VOut, bv.Normal, res[:nv])
		if !finiteSlice(res[:nv]) {
			c.Counters.EdgeNaN++
			continue
		}
		c.addRes(i, res[:nv])
		c.boundaryJacobian(i, bv.Normal)
	}
}

// bcSupersonicOutlet copies the interior state verbatim; the upwind flux
// degenerates to pure extrapolation F(U)·n.
func (c *Solver) bcSupersonicOutlet(m Marker) {
	var (
		ix  = c.Ix
		nv  = ix.NVar
		nc  = c.Nodes
		res [MaxVar]float64
	)
	for _, bv := range m.Vertices {
		i := bv.Node
		if !c.Geom.IsDomain(i) {
			continue
		}
		c.UpwindFlux(ix, nc.ConsSlice(i), nc.PrimSlice(i),
			nc.ConsSlice(i), nc.PrimSlice(i), bv.Normal, res[:nv])
		if !finiteSlice(res[:nv]) {
			c.Counters.EdgeNaN++
			continue
		}
		c.addRes(i, res[:nv])
		c.boundaryJacobian(i, bv.Normal)
	}
}

// boundaryJacobian adds the direct implicit block for flux-functor markers:
// the projected-flux Jacobian at the interior state. Exact for supersonic
// outflow, a first-order approximation otherwise.
func (c *Solver) boundaryJacobian(i int, normal []float64) {
	if !c.Implicit() {
		return
	}
	var (
		nv  = c.Ix.NVar
		jac [MaxVar * MaxVar]float64
	)
	for k := 0; k < nv*nv; k++ {
		jac[k] = 0
	}
	ProjectedJacobian(c.Ix, c.Nodes.ConsSlice(i), c.Nodes.PrimSlice(i),
		c.Nodes.DPdUSlice(i), normal, 1.0, jac[:nv*nv])
	if finiteSlice(jac[:nv*nv]) {
		c.Jacobian.AddBlock(i, i, jac[:nv*nv])
	}
}
