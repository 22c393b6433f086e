/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timjim333/SU2/InputParameters"
	"github.com/timjim333/SU2/model_problems/NEMO"
	"github.com/timjim333/SU2/readfiles"
	"github.com/timjim333/SU2/utils"
)

// NEMOCmd represents the nonequilibrium solver command
var NEMOCmd = &cobra.Command{
	Use:   "NEMO",
	Short: "Nonequilibrium two-temperature flow solver",
	Long: `Solves the inviscid flow of a two-temperature gas mixture on a
built-in Cartesian mesh, with finite-rate chemistry and vibrational
relaxation sources. Case setup is read from a YAML input file.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err    error
			icFile string
		)
		if icFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		ip := processNEMOInput(icFile)
		if err = RunNEMO(ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	NEMOCmd.Flags().StringP("inputConditionsFile", "I", "",
		"YAML case file with freestream, species, scheme and mesh settings")
}

func processNEMOInput(icFile string) (ip *InputParameters.InputParametersNEMO) {
	var (
		err error
	)
	if len(icFile) == 0 {
		fmt.Printf("error: must supply an input parameters file (-I, --inputConditionsFile)\n")
		exampleFile := `
########################################
Title: "Mach 5 air"
Species: [N2, O2]
MassFractions: [0.77, 0.23]
Mach: 5.
Pressure: 101325.
Temperature: 300.
ConvScheme: ausm
TimeScheme: explicit_euler
CFL: 0.5
MaxIterations: 1000
Mesh: {NX: 33, NY: 17, DX: 0.1, DY: 0.1,
  West: farfield, East: supersonic_outlet,
  South: slip_wall, North: farfield}
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = os.ReadFile(icFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.InputParametersNEMO{}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	if err = ip.Validate(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	ip.Print()
	return
}

func buildMesh(ms InputParameters.MeshSpec) (NEMO.Geometry, error) {
	if len(ms.File) != 0 {
		return readfiles.ReadSU2(ms.File)
	}
	if ms.NY == 0 {
		return NEMO.NewLineMesh(ms.NX, ms.DX,
			utils.ParseBCName(ms.West), utils.ParseBCName(ms.East)), nil
	}
	return NEMO.NewBoxMesh(ms.NX, ms.NY, ms.DX, ms.DY,
		utils.ParseBCName(ms.West), utils.ParseBCName(ms.East),
		utils.ParseBCName(ms.South), utils.ParseBCName(ms.North)), nil
}

func RunNEMO(ip *InputParameters.InputParametersNEMO) (err error) {
	var (
		gas  *NEMO.TwoTemperatureGas
		c    *NEMO.Solver
		geom NEMO.Geometry
	)
	if geom, err = buildMesh(ip.Mesh); err != nil {
		return
	}
	if gas, err = NEMO.NewTwoTemperatureGas(ip.Species, ip.Frozen); err != nil {
		return
	}
	cfg := NEMO.Config{
		Species:        ip.Species,
		MassFrac:       ip.MassFractions,
		Mach:           ip.Mach,
		AoA:            ip.AoA,
		AoS:            ip.AoS,
		Pressure:       ip.Pressure,
		Temperature:    ip.Temperature,
		TemperatureVE:  ip.TemperatureVE,
		ReynoldsInit:   ip.ReynoldsInit,
		NonDim:         NEMO.NewNonDimType(ip.NonDim),
		ConvScheme:     NEMO.NewConvSchemeType(ip.ConvScheme),
		MUSCL:          ip.MUSCL,
		Gradient:       NEMO.NewGradientType(ip.Gradient),
		Limiter:        NEMO.NewLimiterType(ip.Limiter),
		LimiterCoeff:   ip.LimiterCoeff,
		TimeScheme:     NEMO.NewTimeSchemeType(ip.TimeScheme),
		TimeMarching:   NEMO.NewTimeMarchingType(ip.TimeMarching),
		CFL:            ip.CFL,
		MaxDeltaTime:   ip.MaxDeltaTime,
		PhysicalDeltaT: ip.PhysicalDeltaT,
		MaxIterations:  ip.MaxIterations,
		ConvergenceTol: ip.ConvergenceTol,
		PrintInterval:  ip.PrintInterval,
		Frozen:         ip.Frozen,
		Axisymmetric:   ip.Axisymmetric,
		Viscous:        ip.Viscous,
		BackPressure:   ip.BackPressure,
	}
	if c, err = NEMO.NewSolver(cfg, geom, gas, NEMO.SingleProcess{}, utils.NewBlockJacobi()); err != nil {
		return
	}
	if ip.RestartSolution {
		if err = c.ReadRestart(ip.RestartFile); err != nil {
			return
		}
	}
	if err = c.Solve(); err != nil {
		return
	}
	if len(ip.RestartFile) != 0 && !ip.RestartSolution {
		err = c.WriteRestart(ip.RestartFile)
	}
	return
}
