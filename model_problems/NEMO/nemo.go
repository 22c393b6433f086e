package NEMO

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/timjim333/SU2/utils"
)

type NonDimType uint

const (
	ND_Dimensional NonDimType = iota
	ND_PressEqOne
	ND_VelEqMach
	ND_VelEqOne
)

var (
	NonDimNames = map[string]NonDimType{
		"dimensional":             ND_Dimensional,
		"freestream_press_eq_one": ND_PressEqOne,
		"freestream_vel_eq_mach":  ND_VelEqMach,
		"freestream_vel_eq_one":   ND_VelEqOne,
	}
	NonDimPrintNames = []string{
		"Dimensional", "Freestream Press = 1", "Freestream Vel = Mach", "Freestream Vel = 1",
	}
)

func (nt NonDimType) Print() (txt string) {
	txt = NonDimPrintNames[nt]
	return
}

func NewNonDimType(label string) (nt NonDimType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if nt, ok = NonDimNames[label]; !ok {
		err = fmt.Errorf("unable to use nondimensionalization named %s", label)
		panic(err)
	}
	return
}

// RefValues are the reference scales dividing dimensional quantities
type RefValues struct {
	Length, Density, Pressure, Temperature float64
	Velocity, Time, Force, GasConstant     float64
	Viscosity, Conductivity, Energy        float64
}

// Config carries every run selection the solver core needs. The yaml layer
// maps onto it; tests build it directly.
type Config struct {
	Species  []string
	MassFrac []float64

	Mach, AoA, AoS                       float64 // angles in degrees
	Pressure, Temperature, TemperatureVE float64 // dimensional free stream
	ReynoldsInit                         bool    // unsupported initialization path
	NonDim                               NonDimType

	ConvScheme   ConvSchemeType
	MUSCL        bool
	Gradient     GradientType
	Limiter      LimiterType
	LimiterCoeff float64

	TimeScheme     TimeSchemeType
	TimeMarching   TimeMarchingType
	CFL            float64
	MaxDeltaTime   float64
	PhysicalDeltaT float64
	RKCoeffs       []float64

	MaxIterations  int
	ConvergenceTol float64
	PrintInterval  int

	Frozen, Axisymmetric, Viscous bool
	ContinuousAdjoint             bool

	BackPressure map[string]float64 // dimensional, per outlet marker
}

type ErrCounters struct {
	AxiNaN, ChemNaN, VibNaN, EdgeNaN int
}

/*
	Solver is the convective/source core of the two-temperature
	finite-volume solver. It owns the per-point state and the free-stream
	reference point; geometry, thermochemistry, linear solve and
	communication are borrowed collaborators.
*/
type Solver struct {
	Ix        Indices
	Geom      Geometry
	Fluid     FluidModel
	Comm      Communicator
	LinSolver utils.LinearSolver

	Nodes     *NodeContainer
	NodeInfty *FreeStream

	Jacobian                        *utils.BlockSparse
	LinSysRes, LinSysRHS, LinSysSol []float64

	// UpwindFlux is the Riemann functor shared by interior edges and
	// flux-based boundaries; replaceable for testing.
	UpwindFlux func(ix Indices, Ui, Vi, Uj, Vj, normal, flux []float64)

	ConvScheme   ConvSchemeType
	MUSCL        bool
	Gradient     GradientType
	Limiter      LimiterType
	LimiterCoeff float64

	TimeScheme     TimeSchemeType
	TimeMarching   TimeMarchingType
	CFL            float64
	MaxDeltaTime   float64
	PhysicalDeltaT float64
	RKCoeffs       []float64

	MaxIterations  int
	ConvergenceTol float64
	PrintInterval  int

	Frozen, Axisymmetric, Viscous bool
	ContinuousAdjoint             bool

	BackPressure map[string]float64 // nondimensional

	Refs RefValues

	ResRMS, ResMax       []float64
	ResMaxPoint          []int
	ResMaxCoord          [][]float64
	MinDeltaT, MaxDeltaT float64
	Counters             ErrCounters
	NonPhysPoints        int

	log *logrus.Logger
}

func (c *Solver) Implicit() bool { return c.TimeScheme.Implicit() }

func NewSolver(cfg Config, geom Geometry, fluid FluidModel,
	comm Communicator, linSolver utils.LinearSolver) (c *Solver, err error) {
	var ix Indices
	if ix, err = NewIndices(len(cfg.Species), geom.NumDim()); err != nil {
		return
	}
	if err = validateConfig(cfg, geom, fluid); err != nil {
		return
	}
	if cfg.RKCoeffs == nil {
		cfg.RKCoeffs = []float64{0.66667, 0.66667, 1.0}
	}
	if cfg.LimiterCoeff == 0 {
		cfg.LimiterCoeff = 0.05
	}
	if cfg.PrintInterval == 0 {
		cfg.PrintInterval = 50
	}
	np := geom.NumPoints()
	c = &Solver{
		Ix:                ix,
		Geom:              geom,
		Fluid:             fluid,
		Comm:              comm,
		LinSolver:         linSolver,
		Nodes:             NewNodeContainer(ix, np),
		LinSysRes:         make([]float64, np*ix.NVar),
		ConvScheme:        cfg.ConvScheme,
		MUSCL:             cfg.MUSCL,
		Gradient:          cfg.Gradient,
		Limiter:           cfg.Limiter,
		LimiterCoeff:      cfg.LimiterCoeff,
		TimeScheme:        cfg.TimeScheme,
		TimeMarching:      cfg.TimeMarching,
		CFL:               cfg.CFL,
		MaxDeltaTime:      cfg.MaxDeltaTime,
		PhysicalDeltaT:    cfg.PhysicalDeltaT,
		RKCoeffs:          cfg.RKCoeffs,
		MaxIterations:     cfg.MaxIterations,
		ConvergenceTol:    cfg.ConvergenceTol,
		PrintInterval:     cfg.PrintInterval,
		Frozen:            cfg.Frozen,
		Axisymmetric:      cfg.Axisymmetric,
		Viscous:           cfg.Viscous,
		ContinuousAdjoint: cfg.ContinuousAdjoint,
		ResRMS:            make([]float64, ix.NVar),
		ResMax:            make([]float64, ix.NVar),
		ResMaxPoint:       make([]int, ix.NVar),
		ResMaxCoord:       make([][]float64, ix.NVar),
		log:               logrus.New(),
	}
	for k := range c.ResMaxCoord {
		c.ResMaxCoord[k] = make([]float64, ix.NDim)
	}
	c.UpwindFlux = AUSMFlux
	if c.Implicit() {
		c.Jacobian = utils.NewBlockSparse(np, ix.NVar)
		c.LinSysRHS = make([]float64, np*ix.NVar)
		c.LinSysSol = make([]float64, np*ix.NVar)
	}

	c.setNondimensionalization(cfg)
	c.buildFreestream(cfg)
	c.BackPressure = make(map[string]float64, len(cfg.BackPressure))
	for name, p := range cfg.BackPressure {
		c.BackPressure[name] = p / c.Refs.Pressure
	}

	// seed the field with the free stream and count initial repairs
	for i := 0; i < np; i++ {
		copy(c.Nodes.ConsSlice(i), c.NodeInfty.U)
	}
	nonPhys := 0
	for i := 0; i < np; i++ {
		if c.Nodes.SetPrimVar(i, c.Fluid) {
			nonPhys++
		}
	}
	c.NonPhysPoints = comm.AllReduceInt(nonPhys, SumOp)
	if c.NonPhysPoints > 0 && comm.Rank() == 0 {
		c.log.Warnf("%d points repaired to a physical state during initialization", c.NonPhysPoints)
	}
	return
}

func validateConfig(cfg Config, geom Geometry, fluid FluidModel) (err error) {
	if cfg.ReynoldsInit {
		return &ConfigError{
			Func: "validateConfig",
			Msg: "Reynolds-number based initialization is not supported for the two-temperature model; " +
				"specify freestream pressure and temperatures instead",
		}
	}
	if len(cfg.MassFrac) != len(cfg.Species) {
		return &ConfigError{
			Func: "validateConfig",
			Msg: fmt.Sprintf("mass-fraction count %d does not match species count %d",
				len(cfg.MassFrac), len(cfg.Species)),
		}
	}
	var sum float64
	for _, y := range cfg.MassFrac {
		if y < 0 {
			return &ConfigError{Func: "validateConfig", Msg: "negative freestream mass fraction"}
		}
		sum += y
	}
	if math.Abs(sum-1) > 1.e-8 {
		return &ConfigError{
			Func: "validateConfig",
			Msg:  fmt.Sprintf("freestream mass fractions sum to %v, expected 1", sum),
		}
	}
	if cfg.TimeScheme.Implicit() && cfg.MUSCL {
		return &ConfigError{
			Func: "validateConfig",
			Msg: "second-order upwind reconstruction does not assemble an implicit Jacobian; " +
				"use an explicit scheme or disable MUSCL",
		}
	}
	if cfg.Axisymmetric && geom.NumDim() != 2 {
		return &ConfigError{
			Func: "validateConfig",
			Msg:  "axisymmetric sources require a two-dimensional mesh",
		}
	}
	if cfg.TimeMarching.Unsteady() && cfg.PhysicalDeltaT <= 0 {
		return &ConfigError{
			Func: "validateConfig",
			Msg:  "dual-time stepping requires a positive physical time step",
		}
	}
	for _, m := range geom.Markers() {
		switch m.Kind {
		case utils.BCInflow:
			return &ConfigError{
				Func: "validateConfig",
				Msg: fmt.Sprintf("marker %q: inlet boundaries are not operational for the two-temperature model "+
					"(species densities and vibrational energy are not resolved)", m.Name),
			}
		case utils.BCSupersonicInflow:
			return &ConfigError{
				Func: "validateConfig",
				Msg: fmt.Sprintf("marker %q: supersonic inlet requires fluid-model extensions not yet available",
					m.Name),
			}
		case utils.BCSlipWall, utils.BCSymmetry, utils.BCFarfield,
			utils.BCOutflow, utils.BCSupersonicOutflow:
		default:
			return &ConfigError{
				Func: "validateConfig",
				Msg:  fmt.Sprintf("marker %q: unsupported boundary kind %s", m.Name, m.Kind),
			}
		}
		if m.Kind == utils.BCOutflow {
			if _, ok := cfg.BackPressure[m.Name]; !ok {
				return &ConfigError{
					Func: "validateConfig",
					Msg:  fmt.Sprintf("marker %q: outlet requires a back pressure", m.Name),
				}
			}
		}
	}
	return nil
}

/*
	setNondimensionalization selects the reference scales per policy and
	derives the secondary references. The reference length is unity; the
	reference velocity is sqrt(P_ref/rho_ref) so pressure and dynamic
	pressure share a scale.
*/
func (c *Solver) setNondimensionalization(cfg Config) {
	c.Fluid.SetState(cfg.Pressure, cfg.MassFrac, cfg.Temperature, cfg.TemperatureVE)
	var (
		rhoInf = c.Fluid.Density()
		aInf   = c.Fluid.SoundSpeed()
		gamma  = aInf * aInf * rhoInf / cfg.Pressure
		r      = &c.Refs
	)
	switch cfg.NonDim {
	case ND_Dimensional:
		r.Pressure, r.Density, r.Temperature = 1, 1, 1
	case ND_PressEqOne:
		r.Pressure, r.Density, r.Temperature = cfg.Pressure, rhoInf, cfg.Temperature
	case ND_VelEqMach:
		r.Pressure, r.Density, r.Temperature = gamma*cfg.Pressure, rhoInf, cfg.Temperature
	case ND_VelEqOne:
		r.Pressure = cfg.Mach * cfg.Mach * gamma * cfg.Pressure
		r.Density, r.Temperature = rhoInf, cfg.Temperature
	}
	r.Length = 1
	r.Velocity = math.Sqrt(r.Pressure / r.Density)
	r.Time = r.Length / r.Velocity
	r.Force = r.Density * r.Velocity * r.Velocity * r.Length * r.Length
	r.GasConstant = r.Velocity * r.Velocity / r.Temperature
	r.Viscosity = r.Density * r.Velocity * r.Length
	r.Conductivity = r.Viscosity * r.GasConstant
	r.Energy = r.Velocity * r.Velocity
	c.Fluid.SetReferenceValues(r.Temperature, r.Velocity, r.Density, r.Time)
}

// buildFreestream constructs node_infty, the immutable far-field reference
// state, in nondimensional variables through the fluid model.
func (c *Solver) buildFreestream(cfg Config) {
	var (
		ix    = c.Ix
		ns    = ix.NSpecies
		nd    = ix.NDim
		pInf  = cfg.Pressure / c.Refs.Pressure
		tInf  = cfg.Temperature / c.Refs.Temperature
		tvInf = cfg.TemperatureVE / c.Refs.Temperature
	)
	c.Fluid.SetState(pInf, cfg.MassFrac, tInf, tvInf)
	var (
		rhoInf = c.Fluid.Density()
		aInf   = c.Fluid.SoundSpeed()
		velMag = cfg.Mach * aInf
		alpha  = cfg.AoA * math.Pi / 180
		beta   = cfg.AoS * math.Pi / 180
		fs     = &FreeStream{
			Mach: cfg.Mach, Alpha: cfg.AoA, Beta: cfg.AoS,
			Density: rhoInf, Pressure: pInf,
			Temperature: tInf, TemperatureVE: tvInf,
			SoundSpeed: aInf,
			Velocity:   make([]float64, nd),
			MassFrac:   append([]float64{}, cfg.MassFrac...),
			U:          make([]float64, ix.NVar),
			V:          make([]float64, ix.NPrimVar),
			DPdU:       make([]float64, ix.NVar),
			DTdU:       make([]float64, ix.NVar),
			DTvedU:     make([]float64, ix.NVar),
			Eve:        make([]float64, ns),
			Cvve:       make([]float64, ns),
		}
	)
	switch nd {
	case 1:
		fs.Velocity[0] = velMag
	case 2:
		fs.Velocity[0] = velMag * math.Cos(alpha)
		fs.Velocity[1] = velMag * math.Sin(alpha)
	case 3:
		fs.Velocity[0] = velMag * math.Cos(alpha) * math.Cos(beta)
		fs.Velocity[1] = velMag * math.Sin(beta)
		fs.Velocity[2] = velMag * math.Sin(alpha) * math.Cos(beta)
	}
	e, eve := c.Fluid.MixtureEnergies()
	var sq float64
	for d := 0; d < nd; d++ {
		sq += fs.Velocity[d] * fs.Velocity[d]
	}
	for s := 0; s < ns; s++ {
		fs.U[s] = rhoInf * cfg.MassFrac[s]
	}
	for d := 0; d < nd; d++ {
		fs.U[ns+d] = rhoInf * fs.Velocity[d]
	}
	fs.U[ix.EIdx] = rhoInf * (e + 0.5*sq)
	fs.U[ix.EveIdx] = rhoInf * eve
	c.Fluid.Cons2PrimVar(fs.U, fs.V, fs.DPdU, fs.DTdU, fs.DTvedU, fs.Eve, fs.Cvve)
	c.NodeInfty = fs
}

/*
	Preprocessing recomputes primitives from the exchanged solution, counts
	non-physical repairs, and prepares gradients and limiters when the
	upwind reconstruction needs them.
*/
func (c *Solver) Preprocessing() {
	c.Comm.InitiateExchange(SolutionField)
	c.Comm.CompleteExchange(SolutionField)

	nonPhys := 0
	for i := 0; i < c.Geom.NumPoints(); i++ {
		if c.Nodes.SetPrimVar(i, c.Fluid) {
			nonPhys++
		}
	}
	c.NonPhysPoints = c.Comm.AllReduceInt(nonPhys, SumOp)

	if c.Viscous {
		for i := 0; i < c.Geom.NumPoints(); i++ {
			v := c.Nodes.Prim(i)
			var ys [MaxSpecies]float64
			v.MassFractions(ys[:c.Ix.NSpecies])
			c.Fluid.SetState(v.P(), ys[:c.Ix.NSpecies], v.T(), v.Tve())
			c.Nodes.Mu[i] = c.Fluid.Viscosity()
			c.Nodes.Ktr[i], c.Nodes.Kve[i] = c.Fluid.ThermalConductivities()
		}
	}

	if c.ConvScheme == SCHEME_Upwind && c.MUSCL {
		switch c.Gradient {
		case GRAD_GreenGauss:
			c.SetSolutionGradientGG()
		default:
			c.SetSolutionGradientLS()
		}
		c.Comm.InitiateExchange(GradientField)
		c.Comm.CompleteExchange(GradientField)
		c.SetSolutionLimiter()
	}
}

// Iterate performs one pseudo-time iteration: residual assembly and update
func (c *Solver) Iterate() (err error) {
	c.Preprocessing()
	c.SetTimeStep()

	assemble := func() (aerr error) {
		c.zeroResidual()
		if c.ConvScheme == SCHEME_Centered {
			c.CenteredResidual()
		} else {
			c.UpwindResidual()
		}
		c.SourceResidual()
		if aerr = c.BoundaryResidual(); aerr != nil {
			return
		}
		if c.TimeMarching.Unsteady() {
			c.DualTimeResidual()
		}
		return
	}

	switch c.TimeScheme {
	case TS_RungeKutta:
		for stage := range c.RKCoeffs {
			if err = assemble(); err != nil {
				return
			}
			c.ExplicitRKIteration(stage)
			if stage+1 < len(c.RKCoeffs) {
				c.Preprocessing()
			}
		}
	case TS_ImplicitEuler:
		if err = assemble(); err != nil {
			return
		}
		var linIters int
		if linIters, err = c.ImplicitEulerIteration(); err != nil {
			return
		}
		c.log.Debugf("linear solver iterations: %d", linIters)
	default:
		if err = assemble(); err != nil {
			return
		}
		c.ExplicitEulerIteration()
	}
	return
}

// Solve runs the outer iteration loop to convergence or MaxIterations
func (c *Solver) Solve() (err error) {
	c.PrintInitialization()
	start := time.Now()
	for iter := 0; iter < c.MaxIterations; iter++ {
		if c.TimeMarching.Unsteady() && iter == 0 {
			c.Nodes.StoreTimeLevels()
			c.Nodes.StoreTimeLevels()
		}
		if err = c.Iterate(); err != nil {
			var reporter bool
			if err, reporter = CollectiveCheck(c.Comm, err); reporter {
				c.log.Error(err)
			}
			return
		}
		if iter%c.PrintInterval == 0 || iter == c.MaxIterations-1 {
			c.PrintUpdate(iter, time.Since(start))
		}
		if c.Converged() {
			if c.Comm.Rank() == 0 {
				fmt.Printf("converged at iteration %d\n", iter)
			}
			break
		}
	}
	c.reportCounters()
	return
}

func (c *Solver) Converged() bool {
	if c.ConvergenceTol <= 0 {
		return false
	}
	for _, r := range c.ResRMS {
		if r > c.ConvergenceTol {
			return false
		}
	}
	return true
}

// reportCounters emits the one process-wide summary of skipped source terms
func (c *Solver) reportCounters() {
	var (
		axi  = c.Comm.AllReduceInt(c.Counters.AxiNaN, SumOp)
		chem = c.Comm.AllReduceInt(c.Counters.ChemNaN, SumOp)
		vib  = c.Comm.AllReduceInt(c.Counters.VibNaN, SumOp)
		edge = c.Comm.AllReduceInt(c.Counters.EdgeNaN, SumOp)
	)
	if c.Comm.Rank() != 0 {
		return
	}
	if axi+chem+vib > 0 {
		c.log.Warnf("skipped source terms: axisymmetric %d, chemistry %d, vibrational %d",
			axi, chem, vib)
	}
	if edge > 0 {
		c.log.Warnf("discarded %d edge/face contributions containing NaN", edge)
	}
}

func (c *Solver) PrintInitialization() {
	if c.Comm.Rank() != 0 {
		return
	}
	fmt.Printf("Two-temperature solver: %d species, %dD, %d points\n",
		c.Ix.NSpecies, c.Ix.NDim, c.Geom.NumPoints())
	fmt.Printf("Scheme: %s, Time: %s, Marching: %s, CFL: %8.4f\n",
		c.ConvScheme.Print(), c.TimeScheme.Print(), c.TimeMarching.Print(), c.CFL)
	fmt.Printf("Nondimensionalization: P_ref %8.4g, rho_ref %8.4g, T_ref %8.4g, V_ref %8.4g\n",
		c.Refs.Pressure, c.Refs.Density, c.Refs.Temperature, c.Refs.Velocity)
	fmt.Printf("Freestream: Mach %5.2f, AoA %5.2f, P %8.4g, T %8.4g, Tve %8.4g\n",
		c.NodeInfty.Mach, c.NodeInfty.Alpha,
		c.NodeInfty.Pressure, c.NodeInfty.Temperature, c.NodeInfty.TemperatureVE)
	fmt.Printf("%10s%12s%12s%12s%12s\n",
		"iter", "time(s)", "dt(min)", "rms[rho0]", "rms[rhoE]")
}

func (c *Solver) PrintUpdate(iter int, elapsed time.Duration) {
	if c.Comm.Rank() != 0 {
		return
	}
	logRes := func(r float64) float64 {
		if r <= 0 {
			return -99
		}
		return math.Log10(r)
	}
	fmt.Printf("%10d%12.3f%12.3e%12.5f%12.5f\n",
		iter, elapsed.Seconds(), c.MinDeltaT,
		logRes(c.ResRMS[0]), logRes(c.ResRMS[c.Ix.EIdx]))
	if c.NonPhysPoints > 0 {
		c.log.Warnf("iteration %d: %d non-physical points repaired", iter, c.NonPhysPoints)
	}
}
