package readfiles

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timjim333/SU2/utils"
)

// writeSquareMesh writes an n x n vertex triangulated unit square with
// farfield markers on three sides and a slip wall on the south side.
func writeSquareMesh(t *testing.T, n int) (filename string) {
	var (
		sb strings.Builder
		h  = 1.0 / float64(n-1)
		id = func(i, j int) int { return i*n + j }
	)
	sb.WriteString("% test grid\nNDIME= 2\n")
	nTri := 2 * (n - 1) * (n - 1)
	sb.WriteString(fmt.Sprintf("NELEM= %d\n", nTri))
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-1; j++ {
			sb.WriteString(fmt.Sprintf("5 %d %d %d\n", id(i, j), id(i+1, j), id(i+1, j+1)))
			sb.WriteString(fmt.Sprintf("5 %d %d %d\n", id(i, j), id(i+1, j+1), id(i, j+1)))
		}
	}
	sb.WriteString(fmt.Sprintf("NPOIN= %d\n", n*n))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sb.WriteString(fmt.Sprintf("%v %v %d\n", float64(i)*h, float64(j)*h, id(i, j)))
		}
	}
	side := func(name string, edge func(k int) (int, int)) {
		sb.WriteString(fmt.Sprintf("MARKER_TAG= %s\nMARKER_ELEMS= %d\n", name, n-1))
		for k := 0; k < n-1; k++ {
			a, b := edge(k)
			sb.WriteString(fmt.Sprintf("3 %d %d\n", a, b))
		}
	}
	sb.WriteString("NMARK= 4\n")
	side("slip_wall", func(k int) (int, int) { return id(k, 0), id(k+1, 0) })
	side("farfield", func(k int) (int, int) { return id(k, n-1), id(k+1, n-1) })
	side("farfield", func(k int) (int, int) { return id(0, k), id(0, k+1) })
	side("farfield", func(k int) (int, int) { return id(n-1, k), id(n-1, k+1) })

	filename = filepath.Join(t.TempDir(), "square.su2")
	assert.NoError(t, os.WriteFile(filename, []byte(sb.String()), 0644))
	return
}

func TestReadSU2(t *testing.T) {
	{ // geometry of the unit square comes back consistent
		dm, err := ReadSU2(writeSquareMesh(t, 4))
		assert.NoError(t, err)
		assert.Equal(t, 2, dm.NumDim())
		assert.Equal(t, 16, dm.NumPoints())

		var total float64
		for i := 0; i < dm.NumPoints(); i++ {
			assert.True(t, dm.Volume(i) > 0)
			total += dm.Volume(i)
		}
		assert.True(t, math.Abs(total-1.0) < 1.e-12, "total volume %v", total)

		// every dual cell closes: interior faces plus boundary faces sum to zero
		closure := make([][2]float64, dm.NumPoints())
		for _, e := range dm.Edges() {
			i, j := e.Nodes[0], e.Nodes[1]
			for d := 0; d < 2; d++ {
				closure[i][d] += e.Normal[d]
				closure[j][d] -= e.Normal[d]
			}
		}
		for _, m := range dm.Markers() {
			for _, bv := range m.Vertices {
				for d := 0; d < 2; d++ {
					closure[bv.Node][d] += bv.Normal[d]
				}
			}
		}
		for i, cl := range closure {
			assert.True(t, math.Abs(cl[0]) < 1.e-12 && math.Abs(cl[1]) < 1.e-12,
				"open dual cell at %d: %v", i, cl)
		}
	}
	{ // marker tags resolve to boundary kinds, normals point outward
		dm, err := ReadSU2(writeSquareMesh(t, 3))
		assert.NoError(t, err)
		assert.Equal(t, 4, len(dm.Markers()))
		kinds := map[utils.BCType]int{}
		for _, m := range dm.Markers() {
			kinds[m.Kind]++
		}
		assert.Equal(t, 1, kinds[utils.BCSlipWall])
		assert.Equal(t, 3, kinds[utils.BCFarfield])
		for _, m := range dm.Markers() {
			if m.Kind != utils.BCSlipWall {
				continue
			}
			// south wall: outward is -y, and the marker covers the full side
			var length float64
			for _, bv := range m.Vertices {
				assert.True(t, bv.Normal[1] < 0)
				length += math.Abs(bv.Normal[1])
			}
			assert.True(t, math.Abs(length-1.0) < 1.e-12)
		}
	}
	{ // winding order of the elements does not matter
		file := writeSquareMesh(t, 3)
		b, err := os.ReadFile(file)
		assert.NoError(t, err)
		// reverse one element's vertex order
		s := strings.Replace(string(b), "5 0 3 4\n", "5 0 4 3\n", 1)
		assert.NotEqual(t, string(b), s)
		assert.NoError(t, os.WriteFile(file, []byte(s), 0644))
		dm, err := ReadSU2(file)
		assert.NoError(t, err)
		var total float64
		for i := 0; i < dm.NumPoints(); i++ {
			total += dm.Volume(i)
		}
		assert.True(t, math.Abs(total-1.0) < 1.e-12)
	}
	{ // non-2D meshes are refused
		file := filepath.Join(t.TempDir(), "bad.su2")
		assert.NoError(t, os.WriteFile(file, []byte("NDIME= 3\n"), 0644))
		_, err := ReadSU2(file)
		assert.Error(t, err)
		_, err = ReadSU2(filepath.Join(t.TempDir(), "missing.su2"))
		assert.Error(t, err)
	}
}
