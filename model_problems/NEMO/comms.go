package NEMO

import "math"

type ReduceOp uint8

const (
	MinOp ReduceOp = iota
	MaxOp
	SumOp
)

// Field names a halo-exchanged per-point quantity
type Field uint8

const (
	SolutionField Field = iota
	GradientField
	LimiterField
	TimeStepField
)

/*
	Communicator hides the partition-to-partition exchange and global
	reductions. A distributed implementation wraps MPI-style messaging;
	SingleProcess serves serial runs and tests. Initiate/Complete pairs allow
	overlap; callers must pair them per field before reading halo values.
*/
type Communicator interface {
	Rank() int
	Size() int
	InitiateExchange(f Field)
	CompleteExchange(f Field)
	AllReduce(v float64, op ReduceOp) float64
	AllReduceInt(v int, op ReduceOp) int
}

// SingleProcess is the trivial Communicator for serial execution
type SingleProcess struct{}

func (SingleProcess) Rank() int                { return 0 }
func (SingleProcess) Size() int                { return 1 }
func (SingleProcess) InitiateExchange(f Field) {}
func (SingleProcess) CompleteExchange(f Field) {}

func (SingleProcess) AllReduce(v float64, op ReduceOp) float64 { return v }
func (SingleProcess) AllReduceInt(v int, op ReduceOp) int      { return v }

/*
	CollectiveCheck implements the collective-abort protocol for fatal
	errors: every rank calls it with its local error (or nil). If any rank
	errored, all ranks return a non-nil error, and exactly one rank - the
	minimum rank that observed the error - is the authoritative reporter.
*/
func CollectiveCheck(comm Communicator, err error) (collective error, reporter bool) {
	local := 0
	if err != nil {
		local = 1
	}
	if comm.AllReduceInt(local, MaxOp) == 0 {
		return nil, false
	}
	rank := comm.Size()
	if err != nil {
		rank = comm.Rank()
	}
	minRank := comm.AllReduceInt(rank, MinOp)
	reporter = err != nil && comm.Rank() == minRank
	collective = err
	if collective == nil {
		collective = &ConfigError{
			Func: "CollectiveCheck",
			Msg:  "terminating: a fatal error was raised on another rank",
		}
	}
	return
}

// reduce helpers used by the time-step engine and residual monitors

func reduceMin(comm Communicator, v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return comm.AllReduce(v, MinOp)
}

func reduceMax(comm Communicator, v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return comm.AllReduce(v, MaxOp)
}
