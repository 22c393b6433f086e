package NEMO

import "fmt"

// ConfigError is a fatal configuration problem: unsupported option, marker
// kind, or undersized compiled limit. It is raised at setup (or first use)
// and terminates the run; numerical trouble is never a ConfigError.
type ConfigError struct {
	Func string // function that raised the error
	Msg  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Func, e.Msg)
}

// MismatchError is a fatal inconsistency between persisted state and the
// mesh, detected collectively so no partition misses it.
type MismatchError struct {
	Func string
	Msg  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Func, e.Msg)
}
