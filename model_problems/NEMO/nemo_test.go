package NEMO

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timjim333/SU2/utils"
)

func newSolverErr(cfg Config, geom Geometry) error {
	gas, err := NewTwoTemperatureGas(cfg.Species, cfg.Frozen)
	if err != nil {
		return err
	}
	_, err = NewSolver(cfg, geom, gas, SingleProcess{}, utils.NewBlockJacobi())
	return err
}

func TestSolverConstruction(t *testing.T) {
	{ // configuration rejections fail fast with ConfigError
		var cerr *ConfigError
		reject := func(name string, mutate func(*Config), geom Geometry) {
			cfg := testConfig()
			mutate(&cfg)
			err := newSolverErr(cfg, geom)
			assert.Error(t, err, name)
			assert.True(t, errors.As(err, &cerr), name)
		}
		box := farfieldBox(3, 3)
		reject("reynolds init", func(c *Config) { c.ReynoldsInit = true }, box)
		reject("mass frac count", func(c *Config) { c.MassFrac = []float64{1.0} }, box)
		reject("negative mass frac", func(c *Config) { c.MassFrac = []float64{1.23, -0.23} }, box)
		reject("mass frac sum", func(c *Config) { c.MassFrac = []float64{0.5, 0.4} }, box)
		reject("implicit with muscl", func(c *Config) {
			c.TimeScheme = TS_ImplicitEuler
			c.MUSCL = true
		}, box)
		reject("axisymmetric 1D", func(c *Config) { c.Axisymmetric = true },
			NewLineMesh(4, 0.1, utils.BCFarfield, utils.BCFarfield))
		reject("dual time without step", func(c *Config) {
			c.TimeMarching = TM_DualTime2nd
			c.PhysicalDeltaT = 0
		}, box)

		inlet := farfieldBox(3, 3)
		inlet.AddMarker("inlet", utils.BCInflow,
			BoundaryVertex{Node: 0, Normal: []float64{-0.05, 0}})
		reject("inlet marker", func(c *Config) {}, inlet)

		ssInlet := farfieldBox(3, 3)
		ssInlet.AddMarker("inlet", utils.BCSupersonicInflow,
			BoundaryVertex{Node: 0, Normal: []float64{-0.05, 0}})
		reject("supersonic inlet marker", func(c *Config) {}, ssInlet)

		outlet := farfieldBox(3, 3)
		outlet.AddMarker("exit", utils.BCOutflow,
			BoundaryVertex{Node: 2, Normal: []float64{0.05, 0}})
		reject("outlet without back pressure", func(c *Config) {}, outlet)
	}
	{ // unknown species is a fluid-model ConfigError
		var cerr *ConfigError
		cfg := testConfig()
		cfg.Species = []string{"N2", "Kr"}
		err := newSolverErr(cfg, farfieldBox(3, 3))
		assert.True(t, errors.As(err, &cerr))
	}
	{ // enum constructors panic on unknown labels, resolve known ones
		assert.Panics(t, func() { NewNonDimType("bogus") })
		assert.Panics(t, func() { NewConvSchemeType("bogus") })
		assert.Panics(t, func() { NewTimeSchemeType("bogus") })
		assert.Equal(t, ND_VelEqMach, NewNonDimType("freestream_vel_eq_mach"))
		assert.Equal(t, "Freestream Vel = Mach", ND_VelEqMach.Print())
	}
	{ // nondimensionalization policies land the free stream where promised
		velMag := func(c *Solver) (v float64) {
			for _, u := range c.NodeInfty.Velocity {
				v += u * u
			}
			return math.Sqrt(v)
		}
		cfg := testConfig()
		cfg.NonDim = ND_Dimensional
		c := newTestSolver(t, cfg, farfieldBox(3, 3))
		assert.True(t, near(101325.0, c.NodeInfty.Pressure, 1.e-12))
		aDim := c.NodeInfty.SoundSpeed

		cfg.NonDim = ND_PressEqOne
		c = newTestSolver(t, cfg, farfieldBox(3, 3))
		assert.True(t, near(1.0, c.NodeInfty.Pressure, 1.e-10))
		assert.True(t, near(1.0, c.NodeInfty.Density, 1.e-10))
		assert.True(t, near(1.0, c.NodeInfty.Temperature, 1.e-10))
		assert.True(t, near(aDim/c.Refs.Velocity, c.NodeInfty.SoundSpeed, 1.e-10))

		cfg.NonDim = ND_VelEqMach
		c = newTestSolver(t, cfg, farfieldBox(3, 3))
		assert.True(t, near(cfg.Mach, velMag(c), 1.e-10))
		assert.True(t, near(1.0, c.NodeInfty.SoundSpeed, 1.e-10))

		cfg.NonDim = ND_VelEqOne
		c = newTestSolver(t, cfg, farfieldBox(3, 3))
		assert.True(t, near(1.0, velMag(c), 1.e-10))
	}
	{ // free-stream conserved state is consistent with its primitives
		c := newTestSolver(t, testConfig(), farfieldBox(3, 3))
		var (
			ix = c.Ix
			fs = c.NodeInfty
		)
		assert.True(t, near(fs.Density, fs.V[ix.RhoIdx], 1.e-10))
		assert.True(t, near(fs.Pressure, fs.V[ix.PIdx], 1.e-10))
		assert.True(t, near(fs.Temperature, fs.V[ix.TIdx], 1.e-10))
		var rho float64
		for s := 0; s < ix.NSpecies; s++ {
			rho += fs.U[s]
		}
		assert.True(t, near(fs.Density, rho, 1.e-12))
	}
	{ // back pressures are stored in solver units
		cfg := testConfig()
		cfg.NonDim = ND_PressEqOne
		geom := farfieldBox(3, 3)
		geom.AddMarker("exit", utils.BCOutflow,
			BoundaryVertex{Node: 2, Normal: []float64{0.05, 0}})
		cfg.BackPressure = map[string]float64{"exit": 101325.0}
		c := newTestSolver(t, cfg, geom)
		assert.True(t, near(1.0, c.BackPressure["exit"], 1.e-10))
	}
	{ // a short explicit run on the free stream stays converged and finite
		cfg := testConfig()
		cfg.MaxIterations = 5
		cfg.ConvergenceTol = 0
		cfg.PrintInterval = 1000
		c := newTestSolver(t, cfg, farfieldBox(4, 4))
		assert.NoError(t, c.Solve())
		for i := 0; i < c.Geom.NumPoints(); i++ {
			for _, u := range c.Nodes.ConsSlice(i) {
				assert.False(t, math.IsNaN(u) || math.IsInf(u, 0))
			}
			assert.True(t, near(c.NodeInfty.U[c.Ix.EIdx],
				c.Nodes.ConsSlice(i)[c.Ix.EIdx], 1.e-8))
		}
		for k := 0; k < c.Ix.NVar; k++ {
			assert.False(t, math.IsNaN(c.ResRMS[k]))
		}
	}
	{ // convergence tolerance stops the free-stream run immediately
		cfg := testConfig()
		cfg.MaxIterations = 50
		cfg.ConvergenceTol = 1.e-3
		cfg.PrintInterval = 1000
		c := newTestSolver(t, cfg, farfieldBox(3, 3))
		assert.NoError(t, c.Solve())
		assert.True(t, c.Converged())
	}
}
