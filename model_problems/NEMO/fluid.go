package NEMO

import (
	"fmt"
	"math"
	"strings"
)

// Universal gas constant [J/(kmol K)]
const RuGas = 8314.462618

/*
	FluidModel supplies all thermochemistry to the solver core: equation of
	state, energies, derivative arrays, transport properties and finite-rate
	source terms. The solver depends only on this interface; alternative
	thermochemistry libraries plug in behind it.

	The Set/Get pair is stateful: SetState fixes the mixture state, the
	getters read it. Cons2PrimVar is stateless with respect to the model.
*/
type FluidModel interface {
	NSpecies() int
	SpeciesMolarMass() []float64
	MonoatomicOnly() bool

	// SetReferenceValues installs the nondimensionalization scales; all
	// subsequent inputs and outputs are in reference units. Defaults to
	// unity scales (dimensional operation).
	SetReferenceValues(TRef, velRef, rhoRef, timeRef float64)

	// SetState fixes the internal mixture state from pressure, mass
	// fractions and the two temperatures.
	SetState(P float64, massFrac []float64, T, Tve float64)
	Density() float64
	SoundSpeed() float64
	// MixtureEnergies returns total internal and vibrational-electronic
	// energy per unit mass at the current state (no kinetic contribution).
	MixtureEnergies() (e, eve float64)
	GasConstant() float64

	// SpeciesEve and SpeciesCvve evaluate per-species vibrational-electronic
	// energy and specific heat at the given Tve, filling dst.
	SpeciesEve(Tve float64, dst []float64)
	SpeciesCvve(Tve float64, dst []float64)

	// Cons2PrimVar converts a conserved state to primitives, filling V and
	// the four derivative arrays plus per-species eve/cvve. Returns true if
	// the state was non-physical (negative density, temperatures out of
	// range); the state is repaired in place so V is always usable.
	Cons2PrimVar(U, V, dPdU, dTdU, dTvedU, eves, cvves []float64) (nonPhys bool)

	Viscosity() float64
	ThermalConductivities() (ktr, kve float64)

	// NetProductionRates fills ws with per-species chemistry mass production
	// rates [kg/(m^3 s)] evaluated at the primitive state V.
	NetProductionRates(V []float64, ws []float64)
	// VibRelaxationSource returns the translational->vibrational energy
	// exchange rate [J/(m^3 s)] at the primitive state V.
	VibRelaxationSource(V []float64) float64
}

// SpeciesData holds the rigid-rotor / harmonic-oscillator parameters of one
// species. Molar mass in kg/kmol, formation enthalpy in J/kg, characteristic
// vibrational temperature in K (zero for atoms).
type SpeciesData struct {
	Name              string
	MolarMass         float64
	FormationEnthalpy float64
	ThetaV            float64
	RotModes          float64 // rotational degrees of freedom: 0 or 2
	DissociationTheta float64 // characteristic dissociation temperature, 0 if none
}

var speciesCatalog = map[string]SpeciesData{
	"N2": {"N2", 28.0134, 0, 3395.0, 2, 113200.0},
	"O2": {"O2", 31.9988, 0, 2239.0, 2, 59500.0},
	"NO": {"NO", 30.0061, 3.0091e6, 2817.0, 2, 75500.0},
	"N":  {"N", 14.0067, 3.3747e7, 0, 0, 0},
	"O":  {"O", 15.9994, 1.5420e7, 0, 0, 0},
}

// dissociation describes X2 + M <=> products + M with an Arrhenius forward
// rate kf = Cf * Tc^etaF * exp(-thetaD/Tc), Tc = sqrt(T*Tve), and a backward
// rate kb = kf/Keq with Keq = Ceq * T^etaEq * exp(-thetaD/T).
type dissociation struct {
	Molecule   string
	Products   [2]string
	Cf, EtaF   float64 // Cf in m^3/(kmol s) at Tc^EtaF
	Ceq, EtaEq float64 // Keq in kmol/m^3 at T^EtaEq
}

var dissociationCatalog = []dissociation{
	{"N2", [2]string{"N", "N"}, 7.0e18, -1.60, 18.0, 0.50},
	{"O2", [2]string{"O", "O"}, 2.0e18, -1.50, 1.2e3, 0.00},
	{"NO", [2]string{"N", "O"}, 5.0e12, 0.00, 4.0e3, 0.00},
}

/*
	TwoTemperatureGas is the user-defined nonequilibrium thermochemistry
	variant: a mixture of rigid-rotor/harmonic-oscillator species with
	translational-rotational energy at T and vibrational-electronic energy
	at Tve. Free electrons are not carried; pressure is the heavy-particle
	partial-pressure sum at T.
*/
type TwoTemperatureGas struct {
	Species []SpeciesData
	Rs      []float64 // per-species gas constants Ru/Ms
	Cvtrs   []float64 // per-species T-R specific heats (3/2 + rot/2) Rs
	Frozen  bool      // chemistry frozen

	TMin, TMax     float64
	TveMin, TveMax float64

	reactions []struct {
		mol, p0, p1 int
		d           dissociation
	}

	// Current mixture state, fixed by SetState, held in dimensional units
	rhos   []float64
	t, tve float64
	p, rho float64

	ref refScales

	// Sutherland reference viscosity
	MuRef, TMuRef, SMu float64
	Prandtl            float64
}

/*
	refScales converts between dimensional and reference units at the model
	boundary. The internal rate and energy constants stay dimensional, so
	the chemistry and relaxation formulas are evaluated unchanged under any
	nondimensionalization.
*/
type refScales struct {
	T, Vel, Rho, P, Time float64
	E, Cv, Mu, K         float64
}

func unityScales() refScales {
	return refScales{T: 1, Vel: 1, Rho: 1, P: 1, Time: 1, E: 1, Cv: 1, Mu: 1, K: 1}
}

func (g *TwoTemperatureGas) SetReferenceValues(TRef, velRef, rhoRef, timeRef float64) {
	g.ref = refScales{
		T: TRef, Vel: velRef, Rho: rhoRef,
		P:    rhoRef * velRef * velRef,
		Time: timeRef,
		E:    velRef * velRef,
		Cv:   velRef * velRef / TRef,
		Mu:   rhoRef * velRef,
		K:    rhoRef * velRef * velRef * velRef / TRef,
	}
}

func NewTwoTemperatureGas(names []string, frozen bool) (g *TwoTemperatureGas, err error) {
	var (
		ns = len(names)
	)
	if ns == 0 {
		err = &ConfigError{Func: "NewTwoTemperatureGas", Msg: "empty species list"}
		return
	}
	g = &TwoTemperatureGas{
		Species: make([]SpeciesData, ns),
		Rs:      make([]float64, ns),
		Cvtrs:   make([]float64, ns),
		Frozen:  frozen,
		TMin:    10, TMax: 5.e4,
		TveMin: 10, TveMax: 5.e4,
		rhos:    make([]float64, ns),
		MuRef:   1.716e-5, TMuRef: 273.15, SMu: 110.4,
		Prandtl: 0.72,
		ref:     unityScales(),
	}
	index := make(map[string]int, ns)
	for i, name := range names {
		sd, ok := speciesCatalog[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			err = &ConfigError{
				Func: "NewTwoTemperatureGas",
				Msg:  fmt.Sprintf("unknown species %q", name),
			}
			return
		}
		g.Species[i] = sd
		g.Rs[i] = RuGas / sd.MolarMass
		g.Cvtrs[i] = (3 + sd.RotModes) / 2 * g.Rs[i]
		index[sd.Name] = i
	}
	for _, d := range dissociationCatalog {
		mol, ok := index[d.Molecule]
		if !ok {
			continue
		}
		p0, ok0 := index[d.Products[0]]
		p1, ok1 := index[d.Products[1]]
		if !ok0 || !ok1 {
			continue
		}
		g.reactions = append(g.reactions, struct {
			mol, p0, p1 int
			d           dissociation
		}{mol, p0, p1, d})
	}
	return
}

func (g *TwoTemperatureGas) NSpecies() int { return len(g.Species) }

func (g *TwoTemperatureGas) SpeciesMolarMass() (ms []float64) {
	ms = make([]float64, len(g.Species))
	for i, sd := range g.Species {
		ms[i] = sd.MolarMass
	}
	return
}

func (g *TwoTemperatureGas) MonoatomicOnly() bool {
	for _, sd := range g.Species {
		if sd.ThetaV > 0 {
			return false
		}
	}
	return true
}

// effective formation energy: hf - Rs*Tref with Tref = 298.15 K
const refTemperature = 298.15

func (g *TwoTemperatureGas) formationEnergy(s int) float64 {
	return g.Species[s].FormationEnthalpy - g.Rs[s]*refTemperature
}

// eTR is the translational-rotational + formation energy of species s at T
func (g *TwoTemperatureGas) eTR(s int, T float64) float64 {
	return g.Cvtrs[s]*(T-refTemperature) + g.formationEnergy(s)
}

func (g *TwoTemperatureGas) eVib(s int, Tve float64) float64 {
	thv := g.Species[s].ThetaV
	if thv <= 0 {
		return 0
	}
	return g.Rs[s] * thv / (math.Exp(thv/Tve) - 1)
}

func (g *TwoTemperatureGas) cvVib(s int, Tve float64) float64 {
	thv := g.Species[s].ThetaV
	if thv <= 0 {
		return 0
	}
	x := thv / Tve
	ex := math.Exp(x)
	em1 := ex - 1
	return g.Rs[s] * x * x * ex / (em1 * em1)
}

func (g *TwoTemperatureGas) SpeciesEve(Tve float64, dst []float64) {
	Tve *= g.ref.T
	for s := range g.Species {
		dst[s] = g.eVib(s, Tve) / g.ref.E
	}
}

func (g *TwoTemperatureGas) SpeciesCvve(Tve float64, dst []float64) {
	Tve *= g.ref.T
	for s := range g.Species {
		dst[s] = g.cvVib(s, Tve) / g.ref.Cv
	}
}

func (g *TwoTemperatureGas) SetState(P float64, massFrac []float64, T, Tve float64) {
	P *= g.ref.P
	T *= g.ref.T
	Tve *= g.ref.T
	var rmix float64
	for s := range g.Species {
		rmix += massFrac[s] * g.Rs[s]
	}
	g.rho = P / (rmix * T)
	for s := range g.Species {
		g.rhos[s] = g.rho * massFrac[s]
	}
	g.t, g.tve, g.p = T, Tve, P
}

func (g *TwoTemperatureGas) Density() float64 { return g.rho / g.ref.Rho }

func (g *TwoTemperatureGas) GasConstant() (rmix float64) {
	for s := range g.Species {
		rmix += g.rhos[s] / g.rho * g.Rs[s]
	}
	rmix /= g.ref.Cv
	return
}

func (g *TwoTemperatureGas) MixtureEnergies() (e, eve float64) {
	for s := range g.Species {
		ys := g.rhos[s] / g.rho
		ev := g.eVib(s, g.tve)
		e += ys * (g.eTR(s, g.t) + ev)
		eve += ys * ev
	}
	e /= g.ref.E
	eve /= g.ref.E
	return
}

// SoundSpeed returns the frozen speed of sound a^2 = (1 + R/Cvtr) P/rho
// with R evaluated from the mixture molar concentration.
func (g *TwoTemperatureGas) SoundSpeed() float64 {
	var conc, rhoCvtr float64
	for s := range g.Species {
		conc += g.rhos[s] / g.Species[s].MolarMass
		rhoCvtr += g.rhos[s] * g.Cvtrs[s]
	}
	return math.Sqrt((1+RuGas*conc/rhoCvtr)*g.p/g.rho) / g.ref.Vel
}

// Viscosity is a Sutherland-law mixture viscosity at the current T
func (g *TwoTemperatureGas) Viscosity() float64 {
	T := g.t
	return g.MuRef * math.Pow(T/g.TMuRef, 1.5) * (g.TMuRef + g.SMu) / (T + g.SMu) / g.ref.Mu
}

// ThermalConductivities returns the T-R and V-E conductivities from a
// constant-Prandtl closure over the frozen specific heats.
func (g *TwoTemperatureGas) ThermalConductivities() (ktr, kve float64) {
	var cvtr, cvve, rmix float64
	for s := range g.Species {
		ys := g.rhos[s] / g.rho
		cvtr += ys * g.Cvtrs[s]
		cvve += ys * g.cvVib(s, g.tve)
		rmix += ys * g.Rs[s]
	}
	mu := g.Viscosity() * g.ref.Mu
	ktr = mu * (cvtr + rmix) / g.Prandtl / g.ref.K
	kve = mu * cvve / g.Prandtl / g.ref.K
	return
}

// scaleCons multiplies a conserved state by the per-variable scale factors
func scaleCons(U []float64, ix Indices, rho, mom, e float64) {
	for s := 0; s < ix.NSpecies; s++ {
		U[s] *= rho
	}
	for d := 0; d < ix.NDim; d++ {
		U[ix.MomIdx+d] *= mom
	}
	U[ix.EIdx] *= e
	U[ix.EveIdx] *= e
}

func (g *TwoTemperatureGas) Cons2PrimVar(U, V, dPdU, dTdU, dTvedU, eves, cvves []float64) (nonPhys bool) {
	var (
		ns    = len(g.Species)
		nd    = len(U) - ns - 2
		ix, _ = NewIndices(ns, nd)
		r     = g.ref
	)
	scaleCons(U, ix, r.Rho, r.Rho*r.Vel, r.Rho*r.E)
	defer func() {
		scaleCons(U, ix, 1/r.Rho, 1/(r.Rho*r.Vel), 1/(r.Rho*r.E))
		for s := 0; s < ns; s++ {
			V[s] /= r.Rho
			dPdU[s] /= r.E
			dTdU[s] *= r.Rho / r.T
			dTvedU[s] *= r.Rho / r.T
			eves[s] /= r.E
			cvves[s] /= r.Cv
		}
		for d := 0; d < nd; d++ {
			V[ix.VelIdx+d] /= r.Vel
			dPdU[ix.MomIdx+d] /= r.Vel
			dTdU[ix.MomIdx+d] *= r.Rho * r.Vel / r.T
			dTvedU[ix.MomIdx+d] *= r.Rho * r.Vel / r.T
		}
		V[ix.TIdx] /= r.T
		V[ix.TveIdx] /= r.T
		V[ix.PIdx] /= r.P
		V[ix.RhoIdx] /= r.Rho
		V[ix.HIdx] /= r.E
		V[ix.AIdx] /= r.Vel
		V[ix.RhoCvtrIdx] /= r.Rho * r.Cv
		V[ix.RhoCvveIdx] /= r.Rho * r.Cv
		dTdU[ix.EIdx] *= r.Rho * r.E / r.T
		dTdU[ix.EveIdx] *= r.Rho * r.E / r.T
		dTvedU[ix.EIdx] *= r.Rho * r.E / r.T
		dTvedU[ix.EveIdx] *= r.Rho * r.E / r.T
	}()

	// Partial densities, floored at a tiny positive value
	var rho float64
	for s := 0; s < ns; s++ {
		if U[s] < 0 {
			nonPhys = true
			U[s] = 1.e-30
		}
		rho += U[s]
	}

	var sqvel float64
	for d := 0; d < nd; d++ {
		u := U[ns+d] / rho
		V[ix.VelIdx+d] = u
		sqvel += u * u
	}

	// Translational-rotational temperature, direct from the energy balance
	var rhoCvtr, rhoEf, conc float64
	for s := 0; s < ns; s++ {
		rhoCvtr += U[s] * g.Cvtrs[s]
		rhoEf += U[s] * g.formationEnergy(s)
		conc += U[s] / g.Species[s].MolarMass
	}
	rhoE, rhoEve := U[ix.EIdx], U[ix.EveIdx]
	T := (rhoE-rhoEve-0.5*rho*sqvel-rhoEf)/rhoCvtr + refTemperature
	if T < g.TMin || T > g.TMax || math.IsNaN(T) {
		nonPhys = true
		T = math.Min(math.Max(T, g.TMin), g.TMax)
		if math.IsNaN(T) {
			T = g.TMin
		}
		// repair total energy to match the clamped temperature
		rhoE = rhoCvtr*(T-refTemperature) + rhoEf + 0.5*rho*sqvel + rhoEve
		U[ix.EIdx] = rhoE
	}

	// Vibrational-electronic temperature by Newton iteration on
	// sum_s rhos*eve_s(Tve) = rhoEve; the residual is monotone in Tve.
	Tve := T
	if Tve < g.TveMin {
		Tve = g.TveMin
	} else if Tve > g.TveMax {
		Tve = g.TveMax
	}
	var rhoCvve float64
	if g.MonoatomicOnly() {
		Tve = T
		if rhoEve != 0 {
			nonPhys = true
			rhoEve = 0
			U[ix.EveIdx] = 0
		}
	} else {
		evMin, evMax := 0., 0.
		for s := 0; s < ns; s++ {
			evMin += U[s] * g.eVib(s, g.TveMin)
			evMax += U[s] * g.eVib(s, g.TveMax)
		}
		switch {
		case rhoEve <= evMin || math.IsNaN(rhoEve):
			nonPhys = true
			Tve = g.TveMin
			rhoEve = evMin
			U[ix.EveIdx] = rhoEve
		case rhoEve >= evMax:
			nonPhys = true
			Tve = g.TveMax
			rhoEve = evMax
			U[ix.EveIdx] = rhoEve
		default:
			lo, hi := g.TveMin, g.TveMax
			for iter := 0; iter < 100; iter++ {
				var f, df float64
				for s := 0; s < ns; s++ {
					f += U[s] * g.eVib(s, Tve)
					df += U[s] * g.cvVib(s, Tve)
				}
				f -= rhoEve
				if f > 0 {
					hi = Tve
				} else {
					lo = Tve
				}
				dT := f / df
				next := Tve - dT
				if next <= lo || next >= hi {
					next = 0.5 * (lo + hi)
				}
				if math.Abs(next-Tve) < 1.e-8*Tve {
					Tve = next
					break
				}
				Tve = next
			}
		}
	}
	for s := 0; s < ns; s++ {
		eves[s] = g.eVib(s, Tve)
		cvves[s] = g.cvVib(s, Tve)
		rhoCvve += U[s] * cvves[s]
	}

	P := RuGas * conc * T
	if P <= 0 || math.IsNaN(P) {
		nonPhys = true
		P = RuGas * conc * g.TMin
	}
	a2 := (1 + RuGas*conc/rhoCvtr) * P / rho

	for s := 0; s < ns; s++ {
		V[s] = U[s]
	}
	V[ix.TIdx] = T
	V[ix.TveIdx] = Tve
	V[ix.PIdx] = P
	V[ix.RhoIdx] = rho
	V[ix.HIdx] = (rhoE + P) / rho
	V[ix.AIdx] = math.Sqrt(a2)
	V[ix.RhoCvtrIdx] = rhoCvtr
	V[ix.RhoCvveIdx] = rhoCvve

	// Derivative arrays
	gam := RuGas * conc / rhoCvtr
	for s := 0; s < ns; s++ {
		etr := g.eTR(s, T)
		dPdU[s] = g.Rs[s]*T + gam*(0.5*sqvel-etr)
		dTdU[s] = (0.5*sqvel - etr) / rhoCvtr
		if rhoCvve > 0 {
			dTvedU[s] = -eves[s] / rhoCvve
		} else {
			dTvedU[s] = 0
		}
	}
	for d := 0; d < nd; d++ {
		u := V[ix.VelIdx+d]
		dPdU[ns+d] = -gam * u
		dTdU[ns+d] = -u / rhoCvtr
		dTvedU[ns+d] = 0
	}
	dPdU[ix.EIdx] = gam
	dPdU[ix.EveIdx] = -gam
	dTdU[ix.EIdx] = 1 / rhoCvtr
	dTdU[ix.EveIdx] = -1 / rhoCvtr
	dTvedU[ix.EIdx] = 0
	if rhoCvve > 0 {
		dTvedU[ix.EveIdx] = 1 / rhoCvve
	} else {
		dTvedU[ix.EveIdx] = 0
	}
	return
}

func (g *TwoTemperatureGas) NetProductionRates(V []float64, ws []float64) {
	var (
		ns    = len(g.Species)
		ix, _ = NewIndices(ns, len(V)-ns-8)
		T     = V[ix.TIdx] * g.ref.T
		Tve   = V[ix.TveIdx] * g.ref.T
	)
	for s := range ws {
		ws[s] = 0
	}
	if g.Frozen || len(g.reactions) == 0 {
		return
	}
	// total molar concentration acts as the collider
	var concM float64
	for s := 0; s < ns; s++ {
		concM += V[s] * g.ref.Rho / g.Species[s].MolarMass
	}
	Tc := math.Sqrt(T * Tve) // Park rate-controlling temperature
	for _, rx := range g.reactions {
		var (
			cMol = V[rx.mol] * g.ref.Rho / g.Species[rx.mol].MolarMass
			c0   = V[rx.p0] * g.ref.Rho / g.Species[rx.p0].MolarMass
			c1   = V[rx.p1] * g.ref.Rho / g.Species[rx.p1].MolarMass
			thD  = g.Species[rx.mol].DissociationTheta
		)
		kf := rx.d.Cf * math.Pow(Tc, rx.d.EtaF) * math.Exp(-thD/Tc)
		keq := rx.d.Ceq * math.Pow(T, rx.d.EtaEq) * math.Exp(-thD/T)
		kb := kf / keq
		net := kf*cMol*concM - kb*c0*c1*concM // kmol/(m^3 s)
		ws[rx.mol] -= net * g.Species[rx.mol].MolarMass
		ws[rx.p0] += net * g.Species[rx.p0].MolarMass
		ws[rx.p1] += net * g.Species[rx.p1].MolarMass
	}
	// mass rate in reference units
	scale := g.ref.Time / g.ref.Rho
	for s := 0; s < ns; s++ {
		ws[s] *= scale
	}
}

// VibRelaxationSource is a Landau-Teller exchange with Millikan-White
// relaxation times.
func (g *TwoTemperatureGas) VibRelaxationSource(V []float64) (q float64) {
	var (
		ns    = len(g.Species)
		ix, _ = NewIndices(ns, len(V)-ns-8)
		T     = V[ix.TIdx] * g.ref.T
		Tve   = V[ix.TveIdx] * g.ref.T
		P     = V[ix.PIdx] * g.ref.P
	)
	if g.MonoatomicOnly() {
		return 0
	}
	pAtm := P / 101325.0
	if pAtm <= 0 {
		return 0
	}
	// mixture molar mass for the reduced-mass estimate
	var conc float64
	for s := 0; s < ns; s++ {
		conc += V[s] * g.ref.Rho / g.Species[s].MolarMass
	}
	mmix := V[ix.RhoIdx] * g.ref.Rho / conc
	for s := 0; s < ns; s++ {
		thv := g.Species[s].ThetaV
		if thv <= 0 {
			continue
		}
		mu := g.Species[s].MolarMass * mmix / (g.Species[s].MolarMass + mmix)
		A := 1.16e-3 * math.Sqrt(mu) * math.Pow(thv, 4.0/3.0)
		tau := math.Exp(A*(math.Pow(T, -1.0/3.0)-0.015*math.Pow(mu, 0.25))-18.42) / pAtm
		q += V[s] * g.ref.Rho * (g.eVib(s, T) - g.eVib(s, Tve)) / tau
	}
	q *= g.ref.Time / (g.ref.Rho * g.ref.E)
	return
}
