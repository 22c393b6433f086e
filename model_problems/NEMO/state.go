package NEMO

import "fmt"

// Static scratch-buffer limits. Construction fails if the configured species
// or dimension count exceeds these.
const (
	MaxNDim    = 3
	MaxSpecies = 8
	MaxVar     = MaxSpecies + MaxNDim + 2
	MaxPrimVar = MaxSpecies + MaxNDim + 8
)

/*
	Variable layouts, per point:

	Conserved U (nVar = nSpecies + nDim + 2):
		[rhos_0..rhos_ns-1, rho*u_0..rho*u_nd-1, rhoE, rhoEve]
	Primitive V (nPrimVar = nSpecies + nDim + 8):
		[rhos_0..rhos_ns-1, T, Tve, u_0..u_nd-1, P, rho, H, A, rhoCvtr, rhoCvve]
*/
type Indices struct {
	NSpecies, NDim     int
	NVar, NPrimVar     int
	MomIdx, EIdx, EveIdx int // conserved offsets
	TIdx, TveIdx, VelIdx, PIdx, RhoIdx, HIdx, AIdx, RhoCvtrIdx, RhoCvveIdx int
}

func NewIndices(nSpecies, nDim int) (ix Indices, err error) {
	if nSpecies < 1 || nSpecies > MaxSpecies || nDim < 1 || nDim > MaxNDim {
		err = &ConfigError{
			Func: "NewIndices",
			Msg: fmt.Sprintf("species count %d / dimension %d exceed compiled limits (%d / %d)",
				nSpecies, nDim, MaxSpecies, MaxNDim),
		}
		return
	}
	ix = Indices{
		NSpecies:   nSpecies,
		NDim:       nDim,
		NVar:       nSpecies + nDim + 2,
		NPrimVar:   nSpecies + nDim + 8,
		MomIdx:     nSpecies,
		EIdx:       nSpecies + nDim,
		EveIdx:     nSpecies + nDim + 1,
		TIdx:       nSpecies,
		TveIdx:     nSpecies + 1,
		VelIdx:     nSpecies + 2,
		PIdx:       nSpecies + nDim + 2,
		RhoIdx:     nSpecies + nDim + 3,
		HIdx:       nSpecies + nDim + 4,
		AIdx:       nSpecies + nDim + 5,
		RhoCvtrIdx: nSpecies + nDim + 6,
		RhoCvveIdx: nSpecies + nDim + 7,
	}
	return
}

// ConsView is a named accessor over one point's conserved-variable slice
type ConsView struct {
	D  []float64
	Ix Indices
}

func (u ConsView) Rhos(s int) float64     { return u.D[s] }
func (u ConsView) SetRhos(s int, v float64) { u.D[s] = v }
func (u ConsView) Momentum(d int) float64 { return u.D[u.Ix.MomIdx+d] }
func (u ConsView) SetMomentum(d int, v float64) { u.D[u.Ix.MomIdx+d] = v }
func (u ConsView) RhoE() float64          { return u.D[u.Ix.EIdx] }
func (u ConsView) SetRhoE(v float64)      { u.D[u.Ix.EIdx] = v }
func (u ConsView) RhoEve() float64        { return u.D[u.Ix.EveIdx] }
func (u ConsView) SetRhoEve(v float64)    { u.D[u.Ix.EveIdx] = v }

func (u ConsView) Density() (rho float64) {
	for s := 0; s < u.Ix.NSpecies; s++ {
		rho += u.D[s]
	}
	return
}

// PrimView is a named accessor over one point's primitive-variable slice
type PrimView struct {
	D  []float64
	Ix Indices
}

func (v PrimView) Rhos(s int) float64    { return v.D[s] }
func (v PrimView) T() float64            { return v.D[v.Ix.TIdx] }
func (v PrimView) Tve() float64          { return v.D[v.Ix.TveIdx] }
func (v PrimView) Vel(d int) float64     { return v.D[v.Ix.VelIdx+d] }
func (v PrimView) P() float64            { return v.D[v.Ix.PIdx] }
func (v PrimView) Rho() float64          { return v.D[v.Ix.RhoIdx] }
func (v PrimView) H() float64            { return v.D[v.Ix.HIdx] }
func (v PrimView) A() float64            { return v.D[v.Ix.AIdx] }
func (v PrimView) RhoCvtr() float64      { return v.D[v.Ix.RhoCvtrIdx] }
func (v PrimView) RhoCvve() float64      { return v.D[v.Ix.RhoCvveIdx] }

func (v PrimView) VelocitySq() (sq float64) {
	for d := 0; d < v.Ix.NDim; d++ {
		sq += v.Vel(d) * v.Vel(d)
	}
	return
}

func (v PrimView) ProjectedVelocity(normal []float64) (vn float64) {
	for d := 0; d < v.Ix.NDim; d++ {
		vn += v.Vel(d) * normal[d]
	}
	return
}

func (v PrimView) MassFractions(ys []float64) {
	rho := v.Rho()
	for s := 0; s < v.Ix.NSpecies; s++ {
		ys[s] = v.Rhos(s) / rho
	}
}

/*
	NodeContainer holds the full per-point solver state in flat contiguous
	slices, one stride per point. Growth never happens after construction;
	every field is sized to the mesh point count (owned + halo).
*/
type NodeContainer struct {
	Ix     Indices
	NPoint int

	U, V                []float64 // NPoint x NVar / NPrimVar
	DPdU, DTdU, DTvedU  []float64 // NPoint x NVar
	Eve, Cvve           []float64 // NPoint x NSpecies
	GradU               []float64 // NPoint x NVar x NDim
	Limiter             []float64 // NPoint x NVar
	UMin, UMax          []float64 // NPoint x NVar, neighborhood extrema for limiting
	Mu, Ktr, Kve        []float64 // per-point transport, filled for viscous runs
	DeltaT              []float64
	LambdaInv, LambdaVisc, MaxLambda []float64
	ResTruncError       []float64 // NPoint x NVar
	UnderRelaxation     []float64
	UTimeN, UTimeN1     []float64 // NPoint x NVar, previous physical time levels
	NonPhys             []bool
}

func NewNodeContainer(ix Indices, nPoint int) (nc *NodeContainer) {
	nc = &NodeContainer{
		Ix:              ix,
		NPoint:          nPoint,
		U:               make([]float64, nPoint*ix.NVar),
		V:               make([]float64, nPoint*ix.NPrimVar),
		DPdU:            make([]float64, nPoint*ix.NVar),
		DTdU:            make([]float64, nPoint*ix.NVar),
		DTvedU:          make([]float64, nPoint*ix.NVar),
		Eve:             make([]float64, nPoint*ix.NSpecies),
		Cvve:            make([]float64, nPoint*ix.NSpecies),
		GradU:           make([]float64, nPoint*ix.NVar*ix.NDim),
		Limiter:         make([]float64, nPoint*ix.NVar),
		UMin:            make([]float64, nPoint*ix.NVar),
		UMax:            make([]float64, nPoint*ix.NVar),
		Mu:              make([]float64, nPoint),
		Ktr:             make([]float64, nPoint),
		Kve:             make([]float64, nPoint),
		DeltaT:          make([]float64, nPoint),
		LambdaInv:       make([]float64, nPoint),
		LambdaVisc:      make([]float64, nPoint),
		MaxLambda:       make([]float64, nPoint),
		ResTruncError:   make([]float64, nPoint*ix.NVar),
		UnderRelaxation: make([]float64, nPoint),
		UTimeN:          make([]float64, nPoint*ix.NVar),
		UTimeN1:         make([]float64, nPoint*ix.NVar),
		NonPhys:         make([]bool, nPoint),
	}
	for i := range nc.UnderRelaxation {
		nc.UnderRelaxation[i] = 1
	}
	return
}

func (nc *NodeContainer) checkPoint(i int) {
	if i < 0 || i >= nc.NPoint {
		panic(fmt.Errorf("point index %d out of range [0,%d)", i, nc.NPoint))
	}
}

func (nc *NodeContainer) Cons(i int) (u ConsView) {
	nc.checkPoint(i)
	u = ConsView{D: nc.U[i*nc.Ix.NVar : (i+1)*nc.Ix.NVar], Ix: nc.Ix}
	return
}

func (nc *NodeContainer) Prim(i int) (v PrimView) {
	nc.checkPoint(i)
	v = PrimView{D: nc.V[i*nc.Ix.NPrimVar : (i+1)*nc.Ix.NPrimVar], Ix: nc.Ix}
	return
}

func (nc *NodeContainer) ConsSlice(i int) []float64 {
	nc.checkPoint(i)
	return nc.U[i*nc.Ix.NVar : (i+1)*nc.Ix.NVar]
}

func (nc *NodeContainer) PrimSlice(i int) []float64 {
	nc.checkPoint(i)
	return nc.V[i*nc.Ix.NPrimVar : (i+1)*nc.Ix.NPrimVar]
}

func (nc *NodeContainer) DPdUSlice(i int) []float64   { return nc.DPdU[i*nc.Ix.NVar : (i+1)*nc.Ix.NVar] }
func (nc *NodeContainer) DTdUSlice(i int) []float64   { return nc.DTdU[i*nc.Ix.NVar : (i+1)*nc.Ix.NVar] }
func (nc *NodeContainer) DTvedUSlice(i int) []float64 { return nc.DTvedU[i*nc.Ix.NVar : (i+1)*nc.Ix.NVar] }
func (nc *NodeContainer) EveSlice(i int) []float64    { return nc.Eve[i*nc.Ix.NSpecies : (i+1)*nc.Ix.NSpecies] }
func (nc *NodeContainer) CvveSlice(i int) []float64   { return nc.Cvve[i*nc.Ix.NSpecies : (i+1)*nc.Ix.NSpecies] }

func (nc *NodeContainer) LimiterSlice(i int) []float64 {
	return nc.Limiter[i*nc.Ix.NVar : (i+1)*nc.Ix.NVar]
}

// GradSlice returns the nDim-length gradient of conserved variable iVar at point i
func (nc *NodeContainer) GradSlice(i, iVar int) []float64 {
	nc.checkPoint(i)
	off := (i*nc.Ix.NVar + iVar) * nc.Ix.NDim
	return nc.GradU[off : off+nc.Ix.NDim]
}

// SetPrimVar recomputes the primitive state and derivative arrays at point i
// from its conserved state. Returns true when the state was non-physical and
// had to be repaired by the fluid model.
func (nc *NodeContainer) SetPrimVar(i int, fluid FluidModel) (nonPhys bool) {
	nonPhys = fluid.Cons2PrimVar(nc.ConsSlice(i), nc.PrimSlice(i),
		nc.DPdUSlice(i), nc.DTdUSlice(i), nc.DTvedUSlice(i),
		nc.EveSlice(i), nc.CvveSlice(i))
	nc.NonPhys[i] = nonPhys
	return
}

// StoreTimeLevels shifts the physical time levels for dual-time stepping:
// n -> n-1 and current -> n.
func (nc *NodeContainer) StoreTimeLevels() {
	copy(nc.UTimeN1, nc.UTimeN)
	copy(nc.UTimeN, nc.U)
}
