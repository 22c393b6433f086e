package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
)

// MeshSpec selects the grid: an SU2-format mesh file when File is set,
// otherwise the built-in Cartesian mesh, a line when NY is zero, a box
// otherwise. Cartesian boundary kinds are named per side.
type MeshSpec struct {
	File  string  `yaml:"File"`
	NX    int     `yaml:"NX"`
	NY    int     `yaml:"NY"`
	DX    float64 `yaml:"DX"`
	DY    float64 `yaml:"DY"`
	West  string  `yaml:"West"`
	East  string  `yaml:"East"`
	South string  `yaml:"South"`
	North string  `yaml:"North"`
}

// Parameters obtained from the YAML input file
type InputParametersNEMO struct {
	Title string `yaml:"Title"`

	Species       []string  `yaml:"Species"`
	MassFractions []float64 `yaml:"MassFractions"`

	Mach          float64 `yaml:"Mach"`
	AoA           float64 `yaml:"AoA"` // degrees
	AoS           float64 `yaml:"AoS"`
	Pressure      float64 `yaml:"Pressure"`    // Pa
	Temperature   float64 `yaml:"Temperature"` // K
	TemperatureVE float64 `yaml:"TemperatureVE"`
	ReynoldsInit  bool    `yaml:"ReynoldsInit"`
	NonDim        string  `yaml:"NonDim"`

	ConvScheme   string  `yaml:"ConvScheme"`
	MUSCL        bool    `yaml:"MUSCL"`
	Gradient     string  `yaml:"Gradient"`
	Limiter      string  `yaml:"Limiter"`
	LimiterCoeff float64 `yaml:"LimiterCoeff"`

	TimeScheme     string  `yaml:"TimeScheme"`
	TimeMarching   string  `yaml:"TimeMarching"`
	CFL            float64 `yaml:"CFL"`
	MaxDeltaTime   float64 `yaml:"MaxDeltaTime"`
	PhysicalDeltaT float64 `yaml:"PhysicalDeltaT"`

	MaxIterations  int     `yaml:"MaxIterations"`
	ConvergenceTol float64 `yaml:"ConvergenceTol"`
	PrintInterval  int     `yaml:"PrintInterval"`

	Frozen       bool `yaml:"Frozen"`
	Axisymmetric bool `yaml:"Axisymmetric"`
	Viscous      bool `yaml:"Viscous"`

	BackPressure map[string]float64 `yaml:"BackPressure"` // Pa, per outlet marker

	RestartSolution bool   `yaml:"RestartSolution"`
	RestartFile     string `yaml:"RestartFile"`

	Mesh MeshSpec `yaml:"Mesh"`
}

func (ip *InputParametersNEMO) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	ip.applyDefaults()
	return nil
}

func (ip *InputParametersNEMO) applyDefaults() {
	def := func(s *string, v string) {
		if len(*s) == 0 {
			*s = v
		}
	}
	def(&ip.NonDim, "dimensional")
	def(&ip.ConvScheme, "ausm")
	def(&ip.Gradient, "green_gauss")
	def(&ip.Limiter, "venkatakrishnan")
	def(&ip.TimeScheme, "explicit_euler")
	def(&ip.TimeMarching, "steady")
	if ip.CFL == 0 {
		ip.CFL = 0.5
	}
	if ip.MaxIterations == 0 {
		ip.MaxIterations = 1000
	}
	if ip.TemperatureVE == 0 {
		ip.TemperatureVE = ip.Temperature
	}
}

// enumCheck verifies a named selection against the set of legal names
func enumCheck(field, label string, legal []string) error {
	for _, l := range legal {
		if strings.ToLower(label) == l {
			return nil
		}
	}
	return fmt.Errorf("%s: unknown selection %q, expected one of [%s]",
		field, label, strings.Join(legal, ", "))
}

// Validate runs the pure-text checks; physical consistency is checked when
// the solver is constructed.
func (ip *InputParametersNEMO) Validate() (err error) {
	if len(ip.Species) == 0 {
		return fmt.Errorf("species list is empty")
	}
	if len(ip.MassFractions) != len(ip.Species) {
		return fmt.Errorf("MassFractions length %d does not match Species length %d",
			len(ip.MassFractions), len(ip.Species))
	}
	if ip.Pressure <= 0 || ip.Temperature <= 0 {
		return fmt.Errorf("freestream pressure and temperature must be positive")
	}
	checks := []struct {
		field, label string
		legal        []string
	}{
		{"NonDim", ip.NonDim, []string{"dimensional", "freestream_press_eq_one",
			"freestream_vel_eq_mach", "freestream_vel_eq_one"}},
		{"ConvScheme", ip.ConvScheme, []string{"centered", "lax", "upwind", "ausm"}},
		{"Gradient", ip.Gradient, []string{"green_gauss", "gg", "least_squares", "wls"}},
		{"Limiter", ip.Limiter, []string{"none", "barth_jespersen", "venkatakrishnan", "venkat"}},
		{"TimeScheme", ip.TimeScheme, []string{"explicit_euler", "runge_kutta", "rk", "implicit_euler"}},
		{"TimeMarching", ip.TimeMarching, []string{"steady", "time_stepping",
			"dual_time_1st", "dual_time_2nd"}},
	}
	for _, c := range checks {
		if err = enumCheck(c.field, c.label, c.legal); err != nil {
			return
		}
	}
	if len(ip.Mesh.File) == 0 {
		if ip.Mesh.NX < 2 {
			return fmt.Errorf("Mesh.NX must be at least 2")
		}
		if ip.Mesh.DX <= 0 {
			return fmt.Errorf("Mesh.DX must be positive")
		}
		if ip.Mesh.NY > 0 && (ip.Mesh.NY < 2 || ip.Mesh.DY <= 0) {
			return fmt.Errorf("box mesh requires NY >= 2 and positive DY")
		}
	}
	return nil
}

func (ip *InputParametersNEMO) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%v\t= Species\n", ip.Species)
	fmt.Printf("%8.5f\t\t= Mach\n", ip.Mach)
	fmt.Printf("%8.5f\t\t= AoA\n", ip.AoA)
	fmt.Printf("%8.4g\t\t= Pressure\n", ip.Pressure)
	fmt.Printf("%8.4g\t\t= Temperature\n", ip.Temperature)
	fmt.Printf("%8.4g\t\t= TemperatureVE\n", ip.TemperatureVE)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("[%s]\t\t\t= ConvScheme\n", ip.ConvScheme)
	fmt.Printf("[%s]\t\t\t= TimeScheme\n", ip.TimeScheme)
	fmt.Printf("[%s]\t\t\t= TimeMarching\n", ip.TimeMarching)
	fmt.Printf("[%v]\t\t\t= MUSCL\n", ip.MUSCL)
	keys := make([]string, len(ip.BackPressure))
	i := 0
	for k := range ip.BackPressure {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BackPressure[%s] = %v\n", key, ip.BackPressure[key])
	}
}
