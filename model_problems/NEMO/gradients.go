package NEMO

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type GradientType uint

const (
	GRAD_GreenGauss GradientType = iota
	GRAD_WeightedLeastSquares
)

var (
	GradientNames = map[string]GradientType{
		"green_gauss":   GRAD_GreenGauss,
		"gg":            GRAD_GreenGauss,
		"least_squares": GRAD_WeightedLeastSquares,
		"wls":           GRAD_WeightedLeastSquares,
	}
	GradientPrintNames = []string{"Green-Gauss", "Weighted Least Squares"}
)

func (gt GradientType) Print() (txt string) {
	txt = GradientPrintNames[gt]
	return
}

func NewGradientType(label string) (gt GradientType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if gt, ok = GradientNames[label]; !ok {
		err = fmt.Errorf("unable to use gradient method named %s", label)
		panic(err)
	}
	return
}

type LimiterType uint

const (
	LIMITER_None LimiterType = iota
	LIMITER_BarthJespersen
	LIMITER_Venkatakrishnan
)

var (
	LimiterNames = map[string]LimiterType{
		"none":            LIMITER_None,
		"barth_jespersen": LIMITER_BarthJespersen,
		"venkatakrishnan": LIMITER_Venkatakrishnan,
		"venkat":          LIMITER_Venkatakrishnan,
	}
	LimiterPrintNames = []string{"None", "Barth-Jespersen", "Venkatakrishnan"}
)

func (lt LimiterType) Print() (txt string) {
	txt = LimiterPrintNames[lt]
	return
}

func NewLimiterType(label string) (lt LimiterType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if lt, ok = LimiterNames[label]; !ok {
		err = fmt.Errorf("unable to use limiter named %s", label)
		panic(err)
	}
	return
}

// SetSolutionGradientGG computes conserved-variable gradients with the
// Green-Gauss theorem over the dual faces.
func (c *Solver) SetSolutionGradientGG() {
	var (
		ix   = c.Ix
		nd   = ix.NDim
		geom = c.Geom
	)
	for i := range c.Nodes.GradU {
		c.Nodes.GradU[i] = 0
	}
	for _, e := range geom.Edges() {
		i, j := e.Nodes[0], e.Nodes[1]
		Ui, Uj := c.Nodes.ConsSlice(i), c.Nodes.ConsSlice(j)
		for k := 0; k < ix.NVar; k++ {
			um := 0.5 * (Ui[k] + Uj[k])
			gi := c.Nodes.GradSlice(i, k)
			gj := c.Nodes.GradSlice(j, k)
			for d := 0; d < nd; d++ {
				gi[d] += um * e.Normal[d]
				gj[d] -= um * e.Normal[d]
			}
		}
	}
	for _, m := range geom.Markers() {
		for _, bv := range m.Vertices {
			Ui := c.Nodes.ConsSlice(bv.Node)
			for k := 0; k < ix.NVar; k++ {
				gi := c.Nodes.GradSlice(bv.Node, k)
				for d := 0; d < nd; d++ {
					gi[d] += Ui[k] * bv.Normal[d]
				}
			}
		}
	}
	for i := 0; i < geom.NumPoints(); i++ {
		vol := geom.Volume(i)
		if vol <= 0 {
			continue
		}
		for k := 0; k < ix.NVar; k++ {
			gi := c.Nodes.GradSlice(i, k)
			for d := 0; d < nd; d++ {
				gi[d] /= vol
			}
		}
	}
}

/*
	SetSolutionGradientLS computes gradients by an inverse-distance-weighted
	least-squares fit over edge neighbors, solving the nd x nd normal
	equations per point. Exact for linear fields regardless of mesh
	stretching.
*/
func (c *Solver) SetSolutionGradientLS() {
	var (
		ix   = c.Ix
		nd   = ix.NDim
		geom = c.Geom
		np   = geom.NumPoints()
		smat = make([]float64, np*nd*nd)
		rhs  = make([]float64, np*ix.NVar*nd)
		dx   [MaxNDim]float64
	)
	for _, e := range geom.Edges() {
		i, j := e.Nodes[0], e.Nodes[1]
		ci, cj := geom.Coord(i), geom.Coord(j)
		var w float64
		for d := 0; d < nd; d++ {
			dx[d] = cj[d] - ci[d]
			w += dx[d] * dx[d]
		}
		if w == 0 {
			continue
		}
		w = 1.0 / w
		Ui, Uj := c.Nodes.ConsSlice(i), c.Nodes.ConsSlice(j)
		for _, p := range [2]int{i, j} {
			sp := smat[p*nd*nd : (p+1)*nd*nd]
			for d := 0; d < nd; d++ {
				for e2 := 0; e2 < nd; e2++ {
					sp[d*nd+e2] += w * dx[d] * dx[e2]
				}
			}
		}
		for k := 0; k < ix.NVar; k++ {
			du := Uj[k] - Ui[k]
			bi := rhs[(i*ix.NVar+k)*nd : (i*ix.NVar+k+1)*nd]
			bj := rhs[(j*ix.NVar+k)*nd : (j*ix.NVar+k+1)*nd]
			for d := 0; d < nd; d++ {
				bi[d] += w * dx[d] * du
				bj[d] += w * dx[d] * du
			}
		}
	}
	var sol mat.VecDense
	for i := 0; i < np; i++ {
		S := mat.NewDense(nd, nd, smat[i*nd*nd:(i+1)*nd*nd])
		for k := 0; k < ix.NVar; k++ {
			b := mat.NewVecDense(nd, rhs[(i*ix.NVar+k)*nd:(i*ix.NVar+k+1)*nd])
			gi := c.Nodes.GradSlice(i, k)
			if err := sol.SolveVec(S, b); err != nil {
				for d := 0; d < nd; d++ {
					gi[d] = 0
				}
				continue
			}
			for d := 0; d < nd; d++ {
				gi[d] = sol.AtVec(d)
			}
		}
	}
}

/*
	SetSolutionLimiter fills per-point, per-variable limiter values in [0,1]
	from neighborhood extrema and the half-edge extrapolations that the
	reconstruction will actually use.
*/
func (c *Solver) SetSolutionLimiter() {
	var (
		ix   = c.Ix
		nd   = ix.NDim
		geom = c.Geom
		nc   = c.Nodes
	)
	if c.Limiter == LIMITER_None {
		for i := range nc.Limiter {
			nc.Limiter[i] = 1
		}
		return
	}
	for i := 0; i < geom.NumPoints(); i++ {
		Ui := nc.ConsSlice(i)
		for k := 0; k < ix.NVar; k++ {
			nc.UMin[i*ix.NVar+k] = Ui[k]
			nc.UMax[i*ix.NVar+k] = Ui[k]
		}
	}
	for _, e := range geom.Edges() {
		i, j := e.Nodes[0], e.Nodes[1]
		Ui, Uj := nc.ConsSlice(i), nc.ConsSlice(j)
		for k := 0; k < ix.NVar; k++ {
			nc.UMin[i*ix.NVar+k] = math.Min(nc.UMin[i*ix.NVar+k], Uj[k])
			nc.UMax[i*ix.NVar+k] = math.Max(nc.UMax[i*ix.NVar+k], Uj[k])
			nc.UMin[j*ix.NVar+k] = math.Min(nc.UMin[j*ix.NVar+k], Ui[k])
			nc.UMax[j*ix.NVar+k] = math.Max(nc.UMax[j*ix.NVar+k], Ui[k])
		}
	}
	for i := range nc.Limiter {
		nc.Limiter[i] = 1
	}
	var dvec [MaxNDim]float64
	limitPoint := func(p int, other int) {
		cp, co := geom.Coord(p), geom.Coord(other)
		for d := 0; d < nd; d++ {
			dvec[d] = 0.5 * (co[d] - cp[d])
		}
		Up := nc.ConsSlice(p)
		for k := 0; k < ix.NVar; k++ {
			g := nc.GradSlice(p, k)
			var proj float64
			for d := 0; d < nd; d++ {
				proj += g[d] * dvec[d]
			}
			if proj == 0 {
				continue
			}
			var d1 float64
			if proj > 0 {
				d1 = nc.UMax[p*ix.NVar+k] - Up[k]
			} else {
				d1 = nc.UMin[p*ix.NVar+k] - Up[k]
			}
			var phi float64
			switch c.Limiter {
			case LIMITER_BarthJespersen:
				phi = math.Min(1, d1/proj)
			default:
				eps2 := c.venkatEps2(p)
				phi = (d1*d1 + 2*d1*proj + eps2) /
					(d1*d1 + 2*proj*proj + d1*proj + eps2)
			}
			if phi < 0 {
				phi = 0
			} else if phi > 1 {
				phi = 1
			}
			if phi < nc.Limiter[p*ix.NVar+k] {
				nc.Limiter[p*ix.NVar+k] = phi
			}
		}
	}
	for _, e := range geom.Edges() {
		limitPoint(e.Nodes[0], e.Nodes[1])
		limitPoint(e.Nodes[1], e.Nodes[0])
	}
	c.Comm.InitiateExchange(LimiterField)
	c.Comm.CompleteExchange(LimiterField)
}

func (c *Solver) venkatEps2(p int) float64 {
	href := math.Pow(c.Geom.Volume(p), 1.0/float64(c.Ix.NDim))
	ke := c.LimiterCoeff * href
	return ke * ke * ke
}
