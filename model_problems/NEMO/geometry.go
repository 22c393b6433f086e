package NEMO

import (
	"fmt"

	"github.com/timjim333/SU2/utils"
)

// Edge connects two interior points. Normal is area-scaled and oriented from
// Nodes[0] toward Nodes[1].
type Edge struct {
	Nodes  [2]int
	Normal []float64
}

// BoundaryVertex ties an interior point to a boundary face. Normal is
// area-scaled and points out of the domain.
type BoundaryVertex struct {
	Node   int
	Normal []float64
}

// Marker is a named boundary patch of a single kind
type Marker struct {
	Name     string
	Kind     utils.BCType
	Vertices []BoundaryVertex
}

/*
	Geometry is the mesh collaborator: a vertex-centered dual of an
	unstructured mesh. Points above NumPointsDomain() are halo copies owned
	by other partitions.
*/
type Geometry interface {
	NumDim() int
	NumPoints() int
	NumPointsDomain() int
	Edges() []Edge
	Markers() []Marker
	Volume(i int) float64
	Coord(i int) []float64
	IsDomain(i int) bool
	// GridVelocity returns nil for a static mesh
	GridVelocity(i int) []float64
	NumNeighbors(i int) int
}

// DualMesh is a concrete Geometry assembled point by point. Production runs
// build it from a mesh file; tests and the driver build it synthetically.
type DualMesh struct {
	NDim      int
	Points    [][]float64
	Volumes   []float64
	EdgeList  []Edge
	MarkerSet []Marker
	GridVel   [][]float64
	NOwned    int // points below this index are partition-owned
	neighbors []int
}

func NewDualMesh(nDim int) (dm *DualMesh) {
	dm = &DualMesh{NDim: nDim}
	return
}

func (dm *DualMesh) AddPoint(vol float64, coord ...float64) (id int) {
	if len(coord) != dm.NDim {
		panic(fmt.Errorf("coordinate dimension %d, mesh dimension %d", len(coord), dm.NDim))
	}
	id = len(dm.Points)
	c := make([]float64, dm.NDim)
	copy(c, coord)
	dm.Points = append(dm.Points, c)
	dm.Volumes = append(dm.Volumes, vol)
	dm.NOwned = len(dm.Points)
	return
}

func (dm *DualMesh) AddEdge(n0, n1 int, normal ...float64) {
	nrm := make([]float64, dm.NDim)
	copy(nrm, normal)
	dm.EdgeList = append(dm.EdgeList, Edge{Nodes: [2]int{n0, n1}, Normal: nrm})
	dm.neighbors = nil
}

func (dm *DualMesh) AddMarker(name string, kind utils.BCType, verts ...BoundaryVertex) {
	dm.MarkerSet = append(dm.MarkerSet, Marker{Name: name, Kind: kind, Vertices: verts})
}

func (dm *DualMesh) NumDim() int          { return dm.NDim }
func (dm *DualMesh) NumPoints() int       { return len(dm.Points) }
func (dm *DualMesh) NumPointsDomain() int { return dm.NOwned }
func (dm *DualMesh) Edges() []Edge        { return dm.EdgeList }
func (dm *DualMesh) Markers() []Marker    { return dm.MarkerSet }

func (dm *DualMesh) Volume(i int) float64  { return dm.Volumes[i] }
func (dm *DualMesh) Coord(i int) []float64 { return dm.Points[i] }
func (dm *DualMesh) IsDomain(i int) bool   { return i < dm.NOwned }

func (dm *DualMesh) GridVelocity(i int) []float64 {
	if dm.GridVel == nil {
		return nil
	}
	return dm.GridVel[i]
}

func (dm *DualMesh) NumNeighbors(i int) int {
	if dm.neighbors == nil {
		dm.neighbors = make([]int, len(dm.Points))
		for _, e := range dm.EdgeList {
			dm.neighbors[e.Nodes[0]]++
			dm.neighbors[e.Nodes[1]]++
		}
	}
	return dm.neighbors[i]
}

/*
	NewLineMesh builds a 1-D chain of n points spaced dx apart with unit face
	area, end faces tagged with the given marker kinds. Dual volumes are dx
	(half at the ends).
*/
func NewLineMesh(n int, dx float64, left, right utils.BCType) (dm *DualMesh) {
	dm = NewDualMesh(1)
	for i := 0; i < n; i++ {
		vol := dx
		if i == 0 || i == n-1 {
			vol = dx / 2
		}
		dm.AddPoint(vol, float64(i)*dx)
	}
	for i := 0; i < n-1; i++ {
		dm.AddEdge(i, i+1, 1.0)
	}
	dm.AddMarker("left", left, BoundaryVertex{Node: 0, Normal: []float64{-1}})
	dm.AddMarker("right", right, BoundaryVertex{Node: n - 1, Normal: []float64{1}})
	return
}

/*
	NewBoxMesh builds an nx x ny Cartesian vertex-centered mesh with spacing
	dx, dy. Side markers are named west/east/south/north.
*/
func NewBoxMesh(nx, ny int, dx, dy float64,
	west, east, south, north utils.BCType) (dm *DualMesh) {
	dm = NewDualMesh(2)
	id := func(i, j int) int { return i + nx*j }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			wx, wy := 1.0, 1.0
			if i == 0 || i == nx-1 {
				wx = 0.5
			}
			if j == 0 || j == ny-1 {
				wy = 0.5
			}
			dm.AddPoint(wx*wy*dx*dy, float64(i)*dx, float64(j)*dy)
		}
	}
	for j := 0; j < ny; j++ {
		ay := dy
		if j == 0 || j == ny-1 {
			ay = dy / 2
		}
		for i := 0; i < nx-1; i++ {
			dm.AddEdge(id(i, j), id(i+1, j), ay, 0)
		}
	}
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx; i++ {
			ax := dx
			if i == 0 || i == nx-1 {
				ax = dx / 2
			}
			dm.AddEdge(id(i, j), id(i, j+1), 0, ax)
		}
	}
	sideVerts := func(horizontal bool, fixed int, sign float64) (verts []BoundaryVertex) {
		if horizontal {
			for i := 0; i < nx; i++ {
				a := dx
				if i == 0 || i == nx-1 {
					a = dx / 2
				}
				verts = append(verts, BoundaryVertex{Node: id(i, fixed), Normal: []float64{0, sign * a}})
			}
			return
		}
		for j := 0; j < ny; j++ {
			a := dy
			if j == 0 || j == ny-1 {
				a = dy / 2
			}
			verts = append(verts, BoundaryVertex{Node: id(fixed, j), Normal: []float64{sign * a, 0}})
		}
		return
	}
	dm.AddMarker("west", west, sideVerts(false, 0, -1)...)
	dm.AddMarker("east", east, sideVerts(false, nx-1, 1)...)
	dm.AddMarker("south", south, sideVerts(true, 0, -1)...)
	dm.AddMarker("north", north, sideVerts(true, ny-1, 1)...)
	return
}
