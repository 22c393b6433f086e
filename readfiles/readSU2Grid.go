package readfiles

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/timjim333/SU2/model_problems/NEMO"
	"github.com/timjim333/SU2/utils"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle                     = 5
	ELType_Quadrilateral                = 9
	ELType_Tetrahedral                  = 10
	ELType_Hexahedral                   = 12
	ELType_Prism                        = 13
	ELType_Pyramid                      = 14
)

/*
	ReadSU2 reads a two-dimensional triangular mesh in SU2 format and
	assembles the median-dual control volumes the solver integrates over.
	Each vertex owns a cell bounded by segments joining element centroids
	to edge midpoints; boundary vertices additionally carry their share of
	the boundary faces.

	Marker tags double as boundary-condition names ("farfield",
	"slip_wall", "outlet", ...). Unknown tags map to BCNone and are
	rejected when the solver validates its marker set.
*/
func ReadSU2(filename string) (dm *NEMO.DualMesh, err error) {
	var (
		file   *os.File
		reader *bufio.Reader
	)
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open mesh file %s: %w", filename, err)
	}
	defer file.Close()
	reader = bufio.NewReader(file)

	if nDim := readNumber(reader); nDim != 2 {
		return nil, fmt.Errorf("mesh file %s is %dD, only 2D triangular meshes are supported",
			filename, nDim)
	}
	tris := readTriangles(reader)
	coords := readVertices(reader)
	dm = buildMedianDual(coords, tris)
	readMarkers(reader, coords, tris, dm)
	return
}

func readTriangles(reader *bufio.Reader) (tris [][3]int) {
	var (
		nType      int
		v1, v2, v3 int
		err        error
	)
	K := readNumber(reader)
	tris = make([][3]int, K)
	for k := 0; k < K; k++ {
		line := getLine(reader)
		if _, err = fmt.Sscanf(line, "%d %d %d %d", &nType, &v1, &v2, &v3); err != nil {
			panic(err)
		}
		if SU2ElementType(nType) != ELType_Triangle {
			panic("unable to deal with non-triangular elements right now")
		}
		tris[k] = [3]int{v1, v2, v3}
	}
	return
}

func readVertices(reader *bufio.Reader) (coords [][2]float64) {
	var (
		x, y float64
		err  error
	)
	Nv := readNumber(reader)
	coords = make([][2]float64, Nv)
	for i := 0; i < Nv; i++ {
		line := getLine(reader)
		if _, err = fmt.Sscanf(line, "%f %f", &x, &y); err != nil {
			panic(err)
		}
		coords[i] = [2]float64{x, y}
	}
	return
}

func canonical(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

/*
	buildMedianDual accumulates, per mesh edge, the dual-face normal formed
	by the two half-faces running from the edge midpoint to the adjacent
	element centroids, oriented from the lower-numbered vertex to the
	higher. Each element contributes a third of its area to each of its
	vertices.
*/
func buildMedianDual(coords [][2]float64, tris [][3]int) (dm *NEMO.DualMesh) {
	dm = NEMO.NewDualMesh(2)
	for _, c := range coords {
		dm.AddPoint(0, c[0], c[1])
	}
	faces := make(map[[2]int][2]float64)
	for k, tri := range tris {
		var (
			a, b, c = coords[tri[0]], coords[tri[1]], coords[tri[2]]
			area2   = (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
		)
		if area2 < 0 { // reorder to counterclockwise
			tri[1], tri[2] = tri[2], tri[1]
			tris[k] = tri
			b, c = c, b
			area2 = -area2
		}
		var (
			area = 0.5 * area2
			gx   = (a[0] + b[0] + c[0]) / 3
			gy   = (a[1] + b[1] + c[1]) / 3
		)
		for v := 0; v < 3; v++ {
			dm.Volumes[tri[v]] += area / 3
		}
		for v := 0; v < 3; v++ {
			var (
				p, q   = tri[v], tri[(v+1)%3]
				cp, cq = coords[p], coords[q]
				mx     = 0.5 * (cp[0] + cq[0])
				my     = 0.5 * (cp[1] + cq[1])
				// midpoint-to-centroid segment, rotated to point p -> q
				nx = gy - my
				ny = mx - gx
			)
			key := canonical(p, q)
			if p > q {
				nx, ny = -nx, -ny
			}
			f := faces[key]
			f[0] += nx
			f[1] += ny
			faces[key] = f
		}
	}
	keys := make([][2]int, 0, len(faces))
	for key := range faces {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, key := range keys {
		f := faces[key]
		dm.AddEdge(key[0], key[1], f[0], f[1])
	}
	return
}

/*
	readMarkers attaches the boundary faces. Each boundary segment splits
	at its midpoint between its two vertices; the normal is oriented
	outward, away from the third vertex of the adjacent element.
*/
func readMarkers(reader *bufio.Reader, coords [][2]float64, tris [][3]int, dm *NEMO.DualMesh) {
	opposite := make(map[[2]int]int)
	for _, tri := range tris {
		for v := 0; v < 3; v++ {
			opposite[canonical(tri[v], tri[(v+1)%3])] = tri[(v+2)%3]
		}
	}
	nMark := readNumber(reader)
	for n := 0; n < nMark; n++ {
		var (
			label  = readLabel(reader)
			nSegs  = readNumber(reader)
			accum  = make(map[int][2]float64)
			nType  int
			v1, v2 int
			err    error
		)
		for i := 0; i < nSegs; i++ {
			line := getLine(reader)
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				panic(err)
			}
			if SU2ElementType(nType) != ELType_LINE {
				panic("boundary markers should only contain line elements in 2D")
			}
			w, ok := opposite[canonical(v1, v2)]
			if !ok {
				panic(fmt.Errorf("boundary segment %d-%d borders no element", v1, v2))
			}
			var (
				cp, cq = coords[v1], coords[v2]
				cw     = coords[w]
				nx     = 0.5 * (cq[1] - cp[1])
				ny     = 0.5 * (cp[0] - cq[0])
				mx     = 0.5*(cp[0]+cq[0]) - cw[0]
				my     = 0.5*(cp[1]+cq[1]) - cw[1]
			)
			if nx*mx+ny*my < 0 {
				nx, ny = -nx, -ny
			}
			for _, v := range [2]int{v1, v2} {
				f := accum[v]
				f[0] += nx
				f[1] += ny
				accum[v] = f
			}
		}
		var (
			ids   = make([]int, 0, len(accum))
			verts = make([]NEMO.BoundaryVertex, 0, len(accum))
		)
		for id := range accum {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			f := accum[id]
			verts = append(verts, NEMO.BoundaryVertex{Node: id, Normal: []float64{f[0], f[1]}})
		}
		dm.AddMarker(label, utils.ParseBCName(label), verts...)
	}
}

func getToken(reader *bufio.Reader) (token string) {
	line := getLineNoComments(reader)
	ind := strings.Index(line, "=")
	if ind < 0 {
		err := fmt.Errorf("badly formed input line [%s], should have an =", line)
		panic(err)
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader) (label string) {
	var (
		err error
	)
	token := getToken(reader)
	if _, err = fmt.Sscanf(token, "%s", &label); err != nil {
		err = fmt.Errorf("unable to read label from token: [%s]", token)
		panic(err)
	}
	label = strings.Trim(label, " ")
	return
}

func readNumber(reader *bufio.Reader) (num int) {
	var (
		err error
	)
	token := getToken(reader)
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		err = fmt.Errorf("unable to read number from token: [%s]", token)
		panic(err)
	}
	return
}

func getLineNoComments(reader *bufio.Reader) (line string) {
	for {
		line = strings.Trim(getLine(reader), " ")
		ind := strings.Index(line, "%")
		if ind < 0 || ind != 0 {
			return
		}
	}
}

func getLine(reader *bufio.Reader) (line string) {
	var err error
	if line, err = reader.ReadString('\n'); err != nil && len(line) == 0 {
		panic(err)
	}
	line = strings.TrimRight(line, "\r\n")
	return
}
