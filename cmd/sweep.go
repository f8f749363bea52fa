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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/notargets/globtim/InputParameters"
	"github.com/notargets/globtim/pipeline"
	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/report"
)

// SweepCmd represents the sweep command
var SweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the pipeline over a sequence of total degrees",
	Long: `
Fits the problem at every listed degree on the same grid and reports the L2
approximation error and the critical point counts per degree.

globtim sweep -I problem.yaml --degrees 2,4,6,8 --csv sweep.csv`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip      *InputParameters.InputParameters
			d       problem.Domain
			cfg     pipeline.Config
			entries []pipeline.SweepEntry
		)
		icFile, _ := cmd.Flags().GetString("inputConditionsFile")
		degrees, _ := cmd.Flags().GetIntSlice("degrees")
		csvFile, _ := cmd.Flags().GetString("csv")
		if ip, err = processInput(icFile); err != nil {
			return
		}
		if len(degrees) == 0 {
			degrees = ip.Sweep
		}
		if len(degrees) == 0 {
			return fmt.Errorf("no degrees to sweep, use --degrees or Sweep in the input file")
		}
		ip.Sweep, ip.Degrees = degrees, nil
		if d, cfg, err = pipelineSetup(ip); err != nil {
			return
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if entries, err = pipeline.DegreeSweep(ctx, d, cfg, degrees); err != nil {
			return
		}
		fmt.Printf("%8s %8s %14s %12s %8s %8s %14s\n", "degree", "coeffs", "L2", "cond", "points", "minima", "best")
		for _, e := range entries {
			fmt.Printf("%8s %8d %14.6e %12.4e %8d %8d %14.8g", e.Degree, e.Coefficients, e.L2Norm, e.Cond,
				e.Points, e.Minima, e.BestValue)
			if e.Err != nil {
				fmt.Printf("  (%v)", e.Err)
			}
			fmt.Println()
		}
		if csvFile == "" {
			return
		}
		var f *os.File
		if f, err = os.Create(csvFile); err != nil {
			return
		}
		defer f.Close()
		return report.WriteSweepCSV(f, d.Objective.Name, entries)
	},
}

func init() {
	rootCmd.AddCommand(SweepCmd)
	SweepCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for problem parameters")
	SweepCmd.Flags().IntSlice("degrees", nil, "total degrees to run, overrides Sweep in the input file")
	SweepCmd.Flags().String("csv", "", "write the sweep to this CSV file")
}
