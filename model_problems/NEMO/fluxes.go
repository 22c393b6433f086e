package NEMO

import (
	"fmt"
	"math"
	"strings"
)

type ConvSchemeType uint

const (
	SCHEME_Centered ConvSchemeType = iota
	SCHEME_Upwind
)

var (
	ConvSchemeNames = map[string]ConvSchemeType{
		"centered": SCHEME_Centered,
		"lax":      SCHEME_Centered,
		"upwind":   SCHEME_Upwind,
		"ausm":     SCHEME_Upwind,
	}
	ConvSchemePrintNames = []string{"Centered (Lax)", "Upwind (AUSM)"}
)

func (st ConvSchemeType) Print() (txt string) {
	txt = ConvSchemePrintNames[st]
	return
}

func NewConvSchemeType(label string) (st ConvSchemeType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if st, ok = ConvSchemeNames[label]; !ok {
		err = fmt.Errorf("unable to use convective scheme named %s", label)
		panic(err)
	}
	return
}

// ProjectedFlux computes F(U)·n into flux, with n area-scaled
func ProjectedFlux(ix Indices, U, V, normal, flux []float64) {
	var (
		ns = ix.NSpecies
		nd = ix.NDim
		vn float64
	)
	for d := 0; d < nd; d++ {
		vn += V[ix.VelIdx+d] * normal[d]
	}
	for s := 0; s < ns; s++ {
		flux[s] = U[s] * vn
	}
	P := V[ix.PIdx]
	for d := 0; d < nd; d++ {
		flux[ns+d] = U[ns+d]*vn + P*normal[d]
	}
	flux[ix.EIdx] = (U[ix.EIdx] + P) * vn
	flux[ix.EveIdx] = U[ix.EveIdx] * vn
}

/*
	ProjectedJacobian accumulates scale * d(F·n)/dU into the row-major
	nVar x nVar block jac. The pressure coupling enters through dPdU, which
	carries the full two-temperature thermodynamics.
*/
func ProjectedJacobian(ix Indices, U, V, dPdU, normal []float64, scale float64, jac []float64) {
	var (
		ns   = ix.NSpecies
		nd   = ix.NDim
		nv   = ix.NVar
		rho  = V[ix.RhoIdx]
		vn   float64
	)
	for d := 0; d < nd; d++ {
		vn += V[ix.VelIdx+d] * normal[d]
	}
	H := (U[ix.EIdx] + V[ix.PIdx]) / rho
	eve := U[ix.EveIdx] / rho

	for r := 0; r < ns; r++ {
		ys := U[r] / rho
		for s := 0; s < ns; s++ {
			var d0 float64
			if r == s {
				d0 = 1
			}
			jac[r*nv+s] += scale * (d0 - ys) * vn
		}
		for d := 0; d < nd; d++ {
			jac[r*nv+ns+d] += scale * ys * normal[d]
		}
	}
	for d := 0; d < nd; d++ {
		row := ns + d
		u := V[ix.VelIdx+d]
		for s := 0; s < ns; s++ {
			jac[row*nv+s] += scale * (dPdU[s]*normal[d] - u*vn)
		}
		for e := 0; e < nd; e++ {
			var d0 float64
			if d == e {
				d0 = vn
			}
			jac[row*nv+ns+e] += scale * (d0 + u*normal[e] + dPdU[ns+e]*normal[d])
		}
		jac[row*nv+ix.EIdx] += scale * dPdU[ix.EIdx] * normal[d]
		jac[row*nv+ix.EveIdx] += scale * dPdU[ix.EveIdx] * normal[d]
	}
	rowE := ix.EIdx
	for s := 0; s < ns; s++ {
		jac[rowE*nv+s] += scale * vn * (dPdU[s] - H)
	}
	for d := 0; d < nd; d++ {
		jac[rowE*nv+ns+d] += scale * (H*normal[d] + vn*dPdU[ns+d])
	}
	jac[rowE*nv+ix.EIdx] += scale * vn * (1 + dPdU[ix.EIdx])
	jac[rowE*nv+ix.EveIdx] += scale * vn * dPdU[ix.EveIdx]

	rowV := ix.EveIdx
	for s := 0; s < ns; s++ {
		jac[rowV*nv+s] += scale * (-eve * vn)
	}
	for d := 0; d < nd; d++ {
		jac[rowV*nv+ns+d] += scale * eve * normal[d]
	}
	jac[rowV*nv+ix.EveIdx] += scale * vn
}

/*
	AUSMFlux is the Riemann-type flux for the two-temperature system:
	pressure-velocity splitting with the species/momentum/enthalpy/eve
	vector advected by the interface Mach number. Consistent in the sense
	AUSMFlux(U,U,n) == ProjectedFlux(U,n).
*/
func AUSMFlux(ix Indices, Ui, Vi, Uj, Vj, normal, flux []float64) {
	var (
		ns   = ix.NSpecies
		nd   = ix.NDim
		unit [MaxNDim]float64
		area float64
	)
	for d := 0; d < nd; d++ {
		area += normal[d] * normal[d]
	}
	area = math.Sqrt(area)
	for d := 0; d < nd; d++ {
		unit[d] = normal[d] / area
	}
	var vnI, vnJ float64
	for d := 0; d < nd; d++ {
		vnI += Vi[ix.VelIdx+d] * unit[d]
		vnJ += Vj[ix.VelIdx+d] * unit[d]
	}
	aI, aJ := Vi[ix.AIdx], Vj[ix.AIdx]
	mI, mJ := vnI/aI, vnJ/aJ

	var mLP, pLP, mRM, pRM float64
	if math.Abs(mI) <= 1 {
		mLP = 0.25 * (mI + 1) * (mI + 1)
		pLP = 0.25 * Vi[ix.PIdx] * (mI + 1) * (mI + 1) * (2 - mI)
	} else {
		mLP = 0.5 * (mI + math.Abs(mI))
		pLP = 0.5 * Vi[ix.PIdx] * (mI + math.Abs(mI)) / mI
	}
	if math.Abs(mJ) <= 1 {
		mRM = -0.25 * (mJ - 1) * (mJ - 1)
		pRM = 0.25 * Vj[ix.PIdx] * (mJ - 1) * (mJ - 1) * (2 + mJ)
	} else {
		mRM = 0.5 * (mJ - math.Abs(mJ))
		pRM = 0.5 * Vj[ix.PIdx] * (mJ - math.Abs(mJ)) / mJ
	}
	mF := mLP + mRM
	pF := pLP + pRM

	phi := func(U []float64, V []float64, k int) float64 {
		switch {
		case k < ns:
			return U[k]
		case k < ns+nd:
			return U[k]
		case k == ix.EIdx:
			return U[ix.EIdx] + V[ix.PIdx]
		default:
			return U[ix.EveIdx]
		}
	}
	mPlus := 0.5 * (mF + math.Abs(mF)) * aI * area
	mMinus := 0.5 * (mF - math.Abs(mF)) * aJ * area
	for k := 0; k < ix.NVar; k++ {
		flux[k] = mPlus*phi(Ui, Vi, k) + mMinus*phi(Uj, Vj, k)
	}
	for d := 0; d < nd; d++ {
		flux[ns+d] += pF * unit[d] * area
	}
}

/*
	CentralFlux is the Lax-Friedrichs-type centered scheme: arithmetic mean
	of the projected fluxes plus a scalar artificial dissipation built from
	the larger of the two stored spectral radii and a neighbor-count
	stretching factor. fluxConv and fluxDiss are returned separately so the
	caller can NaN-check and accumulate them together.
*/
func CentralFlux(ix Indices, Ui, Vi, Uj, Vj, normal []float64,
	lambdaI, lambdaJ float64, nNeighI, nNeighJ int,
	fluxConv, fluxDiss []float64) {
	var (
		nv   = ix.NVar
		work [MaxVar]float64
	)
	for k := 0; k < nv; k++ {
		fluxConv[k] = 0
	}
	ProjectedFlux(ix, Ui, Vi, normal, fluxConv)
	ProjectedFlux(ix, Uj, Vj, normal, work[:nv])
	for k := 0; k < nv; k++ {
		fluxConv[k] = 0.5 * (fluxConv[k] + work[k])
	}

	const kappa0 = 0.15
	meanLambda := math.Max(lambdaI, lambdaJ)
	sc := 3.0 * float64(nNeighI+nNeighJ) / float64(nNeighI*nNeighJ)
	eps := kappa0 * sc * meanLambda
	for k := 0; k < nv; k++ {
		fluxDiss[k] = eps * (Ui[k] - Uj[k])
	}
}

// CentralJacobians accumulates the implicit blocks matching CentralFlux:
// half the projected-flux Jacobian on each side plus the dissipation
// diagonal, signed for the i side (the caller negates for j).
func CentralJacobians(ix Indices, Ui, Vi, dPdUi, Uj, Vj, dPdUj, normal []float64,
	lambdaI, lambdaJ float64, nNeighI, nNeighJ int,
	jacI, jacJ []float64) {
	var nv = ix.NVar
	for k := 0; k < nv*nv; k++ {
		jacI[k] = 0
		jacJ[k] = 0
	}
	ProjectedJacobian(ix, Ui, Vi, dPdUi, normal, 0.5, jacI)
	ProjectedJacobian(ix, Uj, Vj, dPdUj, normal, 0.5, jacJ)

	const kappa0 = 0.15
	meanLambda := math.Max(lambdaI, lambdaJ)
	sc := 3.0 * float64(nNeighI+nNeighJ) / float64(nNeighI*nNeighJ)
	eps := kappa0 * sc * meanLambda
	for k := 0; k < nv; k++ {
		jacI[k*nv+k] += eps
		jacJ[k*nv+k] -= eps
	}
}

/*
	AxisymmetricSource fills the geometric source residual for a 2-D
	axisymmetric run, already scaled by cell volume. Points on the axis
	contribute nothing. Returns false when any entry is not finite.
*/
func AxisymmetricSource(ix Indices, U, V, coord []float64, vol float64, res []float64) (ok bool) {
	var (
		ns = ix.NSpecies
		y  = coord[1]
	)
	for k := 0; k < ix.NVar; k++ {
		res[k] = 0
	}
	if math.Abs(y) < 1.e-12 {
		return true
	}
	var (
		yinv = 1.0 / y
		v    = V[ix.VelIdx+1]
		fac  = yinv * vol * v
	)
	for s := 0; s < ns; s++ {
		res[s] = fac * U[s]
	}
	res[ns] = fac * U[ns]
	res[ns+1] = fac * U[ns+1]
	res[ix.EIdx] = fac * (U[ix.EIdx] + V[ix.PIdx])
	res[ix.EveIdx] = fac * U[ix.EveIdx]
	return finiteSlice(res)
}

// ChemistrySource fills the finite-rate chemistry residual, volume-scaled:
// species production plus the vibrational energy carried by produced mass.
func ChemistrySource(ix Indices, fluid FluidModel, V, eves []float64, vol float64, res []float64) (ok bool) {
	var (
		ns = ix.NSpecies
		ws [MaxSpecies]float64
	)
	for k := 0; k < ix.NVar; k++ {
		res[k] = 0
	}
	fluid.NetProductionRates(V, ws[:ns])
	for s := 0; s < ns; s++ {
		res[s] = ws[s] * vol
		res[ix.EveIdx] += ws[s] * eves[s] * vol
	}
	return finiteSlice(res)
}

// VibRelaxSource fills the translational->vibrational energy exchange
// residual, volume-scaled (vibrational energy row only).
func VibRelaxSource(ix Indices, fluid FluidModel, V []float64, vol float64, res []float64) (ok bool) {
	for k := 0; k < ix.NVar; k++ {
		res[k] = 0
	}
	res[ix.EveIdx] = fluid.VibRelaxationSource(V) * vol
	return finiteSlice(res)
}

func finiteSlice(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
