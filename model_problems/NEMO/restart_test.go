package NEMO

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timjim333/SU2/utils"
)

func TestRestart(t *testing.T) {
	{ // write then read recovers the perturbed field exactly
		dir := t.TempDir()
		file := filepath.Join(dir, "restart.dat")
		cfg := testConfig()
		c := newTestSolver(t, cfg, farfieldBox(4, 4))
		for i := 0; i < c.Geom.NumPoints(); i++ {
			co := c.Geom.Coord(i)
			bump := 1 + 0.05*math.Sin(7*co[0]+3*co[1])
			U := c.Nodes.ConsSlice(i)
			for k := range U {
				U[k] *= bump
			}
		}
		want := append([]float64{}, c.Nodes.U...)
		assert.NoError(t, c.WriteRestart(file))

		c2 := newTestSolver(t, cfg, farfieldBox(4, 4))
		assert.NoError(t, c2.ReadRestart(file))
		for i := range want {
			assert.Equal(t, want[i], c2.Nodes.U[i])
		}
	}
	{ // extra trailing fields per point are skipped
		dir := t.TempDir()
		file := filepath.Join(dir, "restart_extra.dat")
		cfg := testConfig()
		c := newTestSolver(t, cfg, farfieldBox(3, 3))
		var (
			ix = c.Ix
			np = c.Geom.NumPointsDomain()
			h  = restartHeader{
				Magic:   restartMagic,
				NFields: int32(ix.NDim + ix.NVar + 2),
				NPoints: int32(np),
				NDim:    int32(ix.NDim),
			}
		)
		f, err := os.Create(file)
		assert.NoError(t, err)
		assert.NoError(t, binary.Write(f, binary.LittleEndian, h))
		record := make([]float64, h.NFields)
		for i := 0; i < np; i++ {
			copy(record, c.Geom.Coord(i))
			copy(record[ix.NDim:], c.NodeInfty.U)
			record[len(record)-2] = 99 // turbulence-style extras
			record[len(record)-1] = 98
			assert.NoError(t, binary.Write(f, binary.LittleEndian, record))
		}
		assert.NoError(t, f.Close())
		assert.NoError(t, c.ReadRestart(file))
		for i := 0; i < np; i++ {
			U := c.Nodes.ConsSlice(i)
			for k := 0; k < ix.NVar; k++ {
				assert.Equal(t, c.NodeInfty.U[k], U[k])
			}
		}
	}
	{ // mesh-size mismatch is a MismatchError
		dir := t.TempDir()
		file := filepath.Join(dir, "restart_small.dat")
		cfg := testConfig()
		c := newTestSolver(t, cfg, farfieldBox(3, 3))
		assert.NoError(t, c.WriteRestart(file))
		c2 := newTestSolver(t, cfg, farfieldBox(4, 4))
		err := c2.ReadRestart(file)
		var merr *MismatchError
		assert.True(t, errors.As(err, &merr))
	}
	{ // dimensionality mismatch is a MismatchError
		dir := t.TempDir()
		file := filepath.Join(dir, "restart_1d.dat")
		cfg := testConfig()
		line := newTestSolver(t, cfg, NewLineMesh(9, 0.1, utils.BCFarfield, utils.BCFarfield))
		assert.NoError(t, line.WriteRestart(file))
		c2 := newTestSolver(t, cfg, farfieldBox(3, 3))
		err := c2.ReadRestart(file)
		var merr *MismatchError
		assert.True(t, errors.As(err, &merr))
	}
	{ // truncated file is a MismatchError
		dir := t.TempDir()
		file := filepath.Join(dir, "restart_trunc.dat")
		cfg := testConfig()
		c := newTestSolver(t, cfg, farfieldBox(3, 3))
		assert.NoError(t, c.WriteRestart(file))
		b, err := os.ReadFile(file)
		assert.NoError(t, err)
		assert.NoError(t, os.WriteFile(file, b[:len(b)-16], 0644))
		err = c.ReadRestart(file)
		var merr *MismatchError
		assert.True(t, errors.As(err, &merr))
	}
	{ // missing file and bad magic are ConfigError
		dir := t.TempDir()
		cfg := testConfig()
		c := newTestSolver(t, cfg, farfieldBox(3, 3))
		var cerr *ConfigError
		err := c.ReadRestart(filepath.Join(dir, "nope.dat"))
		assert.True(t, errors.As(err, &cerr))

		junk := filepath.Join(dir, "junk.dat")
		assert.NoError(t, os.WriteFile(junk, make([]byte, 64), 0644))
		err = c.ReadRestart(junk)
		assert.True(t, errors.As(err, &cerr))
	}
}
