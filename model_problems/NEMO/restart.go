package NEMO

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const restartMagic = int32(535532)

/*
	Restart files are flat binary: a small header, then one record per
	domain point laid out as [coords(nDim), solution(nVar), extras...].
	Extra trailing fields (turbulence variables, grid velocities) are
	skipped on read, so a file written by a larger model restarts the
	convective core.
*/
type restartHeader struct {
	Magic   int32
	NFields int32
	NPoints int32
	NDim    int32
}

func (c *Solver) WriteRestart(fileName string) (err error) {
	var (
		f  *os.File
		ix = c.Ix
		h  = restartHeader{
			Magic:   restartMagic,
			NFields: int32(ix.NDim + ix.NVar),
			NPoints: int32(c.Comm.AllReduceInt(c.Geom.NumPointsDomain(), SumOp)),
			NDim:    int32(ix.NDim),
		}
	)
	if c.Comm.Size() > 1 {
		return &ConfigError{Func: "WriteRestart", Msg: "parallel restart output is not implemented"}
	}
	if f, err = os.Create(fileName); err != nil {
		return
	}
	defer f.Close()
	if err = binary.Write(f, binary.LittleEndian, h); err != nil {
		return
	}
	record := make([]float64, ix.NDim+ix.NVar)
	for i := 0; i < c.Geom.NumPointsDomain(); i++ {
		copy(record, c.Geom.Coord(i))
		copy(record[ix.NDim:], c.Nodes.ConsSlice(i))
		if err = binary.Write(f, binary.LittleEndian, record); err != nil {
			return
		}
	}
	return
}

/*
	ReadRestart loads the conserved field. A point-count mismatch is
	reported collectively so every rank fails together with the same
	message.
*/
func (c *Solver) ReadRestart(fileName string) (err error) {
	err = c.readRestartLocal(fileName)
	var reporter bool
	if err, reporter = CollectiveCheck(c.Comm, err); err != nil && reporter {
		c.log.Error(err)
	}
	return
}

func (c *Solver) readRestartLocal(fileName string) (err error) {
	var (
		f  *os.File
		h  restartHeader
		ix = c.Ix
	)
	if f, err = os.Open(fileName); err != nil {
		return &ConfigError{Func: "ReadRestart", Msg: err.Error()}
	}
	defer f.Close()
	if err = binary.Read(f, binary.LittleEndian, &h); err != nil {
		return &ConfigError{Func: "ReadRestart", Msg: "unable to read restart header: " + err.Error()}
	}
	if h.Magic != restartMagic {
		return &ConfigError{Func: "ReadRestart", Msg: "not a recognized restart file"}
	}
	nGlobal := c.Comm.AllReduceInt(c.Geom.NumPointsDomain(), SumOp)
	if int(h.NPoints) != nGlobal {
		return &MismatchError{
			Func: "ReadRestart",
			Msg: fmt.Sprintf("restart file holds %d points, mesh has %d; "+
				"the restart must match the current mesh", h.NPoints, nGlobal),
		}
	}
	if int(h.NDim) != ix.NDim {
		return &MismatchError{
			Func: "ReadRestart",
			Msg:  fmt.Sprintf("restart file is %dD, mesh is %dD", h.NDim, ix.NDim),
		}
	}
	if int(h.NFields) < ix.NDim+ix.NVar {
		return &MismatchError{
			Func: "ReadRestart",
			Msg: fmt.Sprintf("restart file holds %d fields per point, need at least %d",
				h.NFields, ix.NDim+ix.NVar),
		}
	}
	// skip the leading coordinates, read exactly nVar, skip any extras
	record := make([]float64, h.NFields)
	for i := 0; i < c.Geom.NumPointsDomain(); i++ {
		if err = binary.Read(f, binary.LittleEndian, record); err != nil {
			if err == io.ErrUnexpectedEOF || err == io.EOF {
				return &MismatchError{Func: "ReadRestart", Msg: "restart file truncated"}
			}
			return &ConfigError{Func: "ReadRestart", Msg: err.Error()}
		}
		copy(c.Nodes.ConsSlice(i), record[ix.NDim:ix.NDim+ix.NVar])
	}
	c.Comm.InitiateExchange(SolutionField)
	c.Comm.CompleteExchange(SolutionField)
	return nil
}
