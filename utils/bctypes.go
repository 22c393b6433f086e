package utils

import "strings"

// BCType represents boundary condition types for compressible-flow markers
type BCType uint16

const (
	// BCNone indicates no boundary condition (interior face)
	BCNone BCType = iota

	BCInflow            // Subsonic total-conditions / mass-flow inlet
	BCOutflow           // Back-pressure outlet
	BCSlipWall          // Slip/inviscid (Euler) wall
	BCSymmetry          // Symmetry plane
	BCFarfield          // Far-field boundary
	BCSupersonicInflow  // Fully specified supersonic inlet
	BCSupersonicOutflow // Pure-extrapolation supersonic outlet
)

// String returns the string representation of a BCType
func (bc BCType) String() string {
	names := map[BCType]string{
		BCNone:              "None",
		BCInflow:            "Inflow",
		BCOutflow:           "Outflow",
		BCSlipWall:          "SlipWall",
		BCSymmetry:          "Symmetry",
		BCFarfield:          "Farfield",
		BCSupersonicInflow:  "SupersonicInflow",
		BCSupersonicOutflow: "SupersonicOutflow",
	}

	if name, ok := names[bc]; ok {
		return name
	}
	return "Unknown"
}

// BCNameMap provides a mapping from common boundary condition names to BCType
// Keys are lowercase for case-insensitive matching
var BCNameMap = map[string]BCType{
	"inlet":  BCInflow,
	"inflow": BCInflow,

	"outlet":          BCOutflow,
	"outflow":         BCOutflow,
	"exit":            BCOutflow,
	"pressure_outlet": BCOutflow,

	"euler_wall":    BCSlipWall,
	"slip":          BCSlipWall,
	"slip_wall":     BCSlipWall,
	"inviscid_wall": BCSlipWall,

	"symmetry":   BCSymmetry,
	"symmetric":  BCSymmetry,
	"farfield":   BCFarfield,
	"far_field":  BCFarfield,
	"freestream": BCFarfield,

	"supersonic_inlet":  BCSupersonicInflow,
	"supersonic_outlet": BCSupersonicOutflow,
}

// ParseBCName converts a boundary condition name string to BCType.
// The matching is case-insensitive and trims whitespace; unknown names map
// to BCNone so configuration validation can reject them by name.
func ParseBCName(name string) BCType {
	lowerName := strings.ToLower(strings.TrimSpace(name))

	if bcType, ok := BCNameMap[lowerName]; ok {
		return bcType
	}
	return BCNone
}
