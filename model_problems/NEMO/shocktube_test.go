package NEMO

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timjim333/SU2/utils"
)

/*
	shockTubeExact evaluates the classical calorically-perfect shock-tube
	solution for a diaphragm at x0 between quiescent left and right states.
	Valid as a reference for frozen diatomic flow at moderate temperatures,
	where the two-temperature model reduces to an ideal gamma = 7/5 gas.
*/
type shockTubeExact struct {
	gamma          float64
	x0             float64
	rhoL, pL       float64
	rhoR, pR       float64
	cL             float64
	pPost, uPost   float64
	rhoPost        float64 // between contact and shock
	rhoMiddle      float64 // between rarefaction tail and contact
	shockSpeed, c2 float64
}

func newShockTubeExact(x0, rhoL, pL, rhoR, pR float64) (st *shockTubeExact) {
	st = &shockTubeExact{
		gamma: 1.4, x0: x0,
		rhoL: rhoL, pL: pL, rhoR: rhoR, pR: pR,
		cL: math.Sqrt(1.4 * pL / rhoL),
	}
	var (
		g  = st.gamma
		m2 = (g - 1) / (g + 1)
		cR = math.Sqrt(g * pR / rhoR)
		// shock side and rarefaction side of the pressure equation
		f = func(p float64) float64 {
			uShock := (p - pR) * math.Sqrt((1-m2)/(rhoR*(p+m2*pR)))
			uFan := 2 * st.cL / (g - 1) * (1 - math.Pow(p/pL, (g-1)/(2*g)))
			return uShock - uFan
		}
		lo, hi = pR, pL
	)
	_ = cR
	for iter := 0; iter < 200; iter++ {
		mid := 0.5 * (lo + hi)
		if f(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	st.pPost = 0.5 * (lo + hi)
	st.uPost = 2 * st.cL / (g - 1) * (1 - math.Pow(st.pPost/pL, (g-1)/(2*g)))
	st.rhoPost = rhoR * (st.pPost/pR + m2) / (1 + m2*st.pPost/pR)
	st.rhoMiddle = rhoL * math.Pow(st.pPost/pL, 1/g)
	st.shockSpeed = st.uPost * (st.rhoPost / rhoR) / (st.rhoPost/rhoR - 1)
	st.c2 = st.cL - 0.5*(g-1)*st.uPost
	return
}

// At samples density, pressure, and velocity at position x and time t.
func (st *shockTubeExact) At(x, t float64) (rho, p, u float64) {
	var (
		g  = st.gamma
		m2 = (g - 1) / (g + 1)
		x1 = st.x0 - st.cL*t
		x2 = st.x0 + (st.uPost-st.c2)*t
		x3 = st.x0 + st.uPost*t
		x4 = st.x0 + st.shockSpeed*t
	)
	switch {
	case x < x1:
		return st.rhoL, st.pL, 0
	case x < x2:
		c := m2*(st.x0-x)/t + (1-m2)*st.cL
		rho = st.rhoL * math.Pow(c/st.cL, 2/(g-1))
		p = st.pL * math.Pow(rho/st.rhoL, g)
		u = (1 - m2) * ((x-st.x0)/t + st.cL)
		return
	case x < x3:
		return st.rhoMiddle, st.pPost, st.uPost
	case x < x4:
		return st.rhoPost, st.pPost, st.uPost
	default:
		return st.rhoR, st.pR, 0
	}
}

func TestShockTube(t *testing.T) {
	{ // the exact solution satisfies the jump and isentrope relations
		st := newShockTubeExact(0.5, 1.0, 1.0, 0.125, 0.1)
		// classical solution of this diaphragm problem
		assert.True(t, near(0.30313, st.pPost, 1.e-3))
		assert.True(t, near(0.92745, st.uPost, 1.e-3))
		// Rankine-Hugoniot across the shock, in the shock frame
		var (
			mR = st.rhoR * (0 - st.shockSpeed)
			mP = st.rhoPost * (st.uPost - st.shockSpeed)
		)
		assert.True(t, near(mR, mP, 1.e-6))
		assert.True(t, near(st.pR+mR*(0-st.shockSpeed),
			st.pPost+mP*(st.uPost-st.shockSpeed), 1.e-6))
		// isentrope from the left state to the middle state
		assert.True(t, near(st.pL/math.Pow(st.rhoL, st.gamma),
			st.pPost/math.Pow(st.rhoMiddle, st.gamma), 1.e-6))
	}
	{ // frozen nitrogen reproduces the ideal-gas shock tube
		var (
			rhoL, pL, tL = 0.0, 1.e5, 300.0
			pR           = 1.e4
			n            = 201
			dx           = 1.0 / float64(n-1)
			tEnd         = 5.e-4
		)
		cfg := Config{
			Species:       []string{"N2"},
			MassFrac:      []float64{1},
			Mach:          0,
			Pressure:      pR,
			Temperature:   240, // right state, matching rhoR = rhoL/8
			TemperatureVE: 240,
			NonDim:        ND_Dimensional,
			ConvScheme:    SCHEME_Upwind,
			TimeScheme:    TS_ExplicitEuler,
			TimeMarching:  TM_TimeStepping,
			CFL:           0.4,
			MaxIterations: 10,
			Frozen:        true,
		}
		c := newTestSolver(t, cfg, NewLineMesh(n, dx, utils.BCFarfield, utils.BCFarfield))

		// left state through the same thermodynamics
		c.Fluid.SetState(pL, cfg.MassFrac, tL, tL)
		rhoL = c.Fluid.Density()
		eL, eveL := c.Fluid.MixtureEnergies()
		rhoR := c.NodeInfty.Density
		assert.True(t, near(8.0, rhoL/rhoR, 1.e-3))
		for i := 0; i < c.Geom.NumPoints(); i++ {
			if c.Geom.Coord(i)[0] >= 0.5 {
				break
			}
			U := c.Nodes.ConsSlice(i)
			U[0] = rhoL
			U[c.Ix.MomIdx] = 0
			U[c.Ix.EIdx] = rhoL * eL
			U[c.Ix.EveIdx] = rhoL * eveL
		}

		var elapsed float64
		for elapsed < tEnd {
			assert.NoError(t, c.Iterate())
			elapsed += c.Nodes.DeltaT[0]
		}

		st := newShockTubeExact(0.5, rhoL, pL, rhoR, pR)
		probe := func(x float64) (rho, p, u float64) {
			i := int(x/dx + 0.5)
			V := c.Nodes.PrimSlice(i)
			return V[c.Ix.RhoIdx], V[c.Ix.PIdx], V[c.Ix.VelIdx]
		}
		{ // undisturbed left state, ahead of the rarefaction
			_, p, _ := probe(0.25)
			assert.True(t, near(pL, p, 0.02))
		}
		{ // inside the rarefaction fan
			rhoE, pE, uE := st.At(0.40, elapsed)
			rho, p, u := probe(0.40)
			assert.True(t, near(pE, p, 0.08), "fan p = %v, want %v", p, pE)
			assert.True(t, near(rhoE, rho, 0.08))
			assert.True(t, math.Abs(u-uE) < 0.1*st.uPost, "fan u = %v, want %v", u, uE)
		}
		{ // post-shock plateau
			rhoE, pE, uE := st.At(0.70, elapsed)
			rho, p, u := probe(0.70)
			assert.True(t, near(pE, p, 0.10), "plateau p = %v, want %v", p, pE)
			assert.True(t, near(uE, u, 0.10), "plateau u = %v, want %v", u, uE)
			assert.True(t, near(rhoE, rho, 0.15))
		}
		{ // undisturbed right state, ahead of the shock
			_, p, u := probe(0.90)
			assert.True(t, near(pR, p, 0.02))
			assert.True(t, math.Abs(u) < 0.02*st.uPost)
		}
	}
}
