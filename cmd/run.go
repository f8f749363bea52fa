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
	"log/slog"
	"os"
	"os/signal"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/globtim/InputParameters"
	"github.com/notargets/globtim/pipeline"
	"github.com/notargets/globtim/problem"
	"github.com/notargets/globtim/report"
)

type RunOptions struct {
	ICFile   string
	CSVFile  string
	XLSXFile string
	Profile  string
	Degree   int
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Approximate, solve and classify the critical points of one problem",
	Long: `
Runs the full pipeline on the problem described by a YAML input file and
prints the classified critical points.

globtim run -I problem.yaml --csv points.csv --xlsx run.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ro  = &RunOptions{}
			ip  *InputParameters.InputParameters
			res *pipeline.Result
		)
		ro.ICFile, _ = cmd.Flags().GetString("inputConditionsFile")
		ro.CSVFile, _ = cmd.Flags().GetString("csv")
		ro.XLSXFile, _ = cmd.Flags().GetString("xlsx")
		ro.Profile, _ = cmd.Flags().GetString("profile")
		ro.Degree, _ = cmd.Flags().GetInt("degree")
		if ip, err = processInput(ro.ICFile); err != nil {
			return
		}
		if ro.Degree > 0 {
			ip.Degree, ip.Degrees = ro.Degree, nil
		}
		switch ro.Profile {
		case "":
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		default:
			return fmt.Errorf("unknown profile mode %q, use cpu or mem", ro.Profile)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if res, err = Run(ctx, ip); err != nil {
			return
		}
		fmt.Print(res.Summary())
		fmt.Print(res.Metrics)
		if ro.CSVFile != "" {
			if err = writeCSVFile(ro.CSVFile, res); err != nil {
				return
			}
		}
		if ro.XLSXFile != "" {
			if err = report.WriteXLSX(ro.XLSXFile, res); err != nil {
				return
			}
			slog.Info("wrote workbook", "path", ro.XLSXFile)
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for problem parameters like:\n\t- Function, Dimension, Center, Range\n\t- Degree, GN, Basis, Solver")
	RunCmd.Flags().String("csv", "", "write the critical point table to this CSV file")
	RunCmd.Flags().String("xlsx", "", "write the run workbook to this XLSX file")
	RunCmd.Flags().String("profile", "", "profile the run: cpu or mem")
	RunCmd.Flags().IntP("degree", "n", 0, "total degree, overrides the input file")
}

func processInput(ICFile string) (ip *InputParameters.InputParameters, err error) {
	var data []byte
	if len(ICFile) == 0 {
		fmt.Printf("Example File:%s\n", InputParameters.ExampleFile)
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
	}
	if data, err = os.ReadFile(ICFile); err != nil {
		return
	}
	ip = &InputParameters.InputParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ICFile, err)
	}
	if err = ip.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input %s: %w", ICFile, err)
	}
	ip.Print()
	return
}

// pipelineSetup turns validated input into the domain and configuration of a
// run, applying the global worker setting.
func pipelineSetup(ip *InputParameters.InputParameters) (d problem.Domain, cfg pipeline.Config, err error) {
	if d, err = ip.Domain(); err != nil {
		return
	}
	if cfg, err = ip.PipelineConfig(); err != nil {
		return
	}
	if cfg.Workers == 0 {
		cfg.Workers = viper.GetInt("workers")
	}
	cfg.Logger = slog.Default()
	return
}

func Run(ctx context.Context, ip *InputParameters.InputParameters) (res *pipeline.Result, err error) {
	var (
		d   problem.Domain
		cfg pipeline.Config
	)
	if d, cfg, err = pipelineSetup(ip); err != nil {
		return
	}
	return pipeline.Run(ctx, d, cfg)
}

func writeCSVFile(path string, res *pipeline.Result) (err error) {
	var f *os.File
	if f, err = os.Create(path); err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err = report.WriteCSV(f, res.Table); err != nil {
		return
	}
	slog.Info("wrote critical points", "path", path, "rows", len(res.Table))
	return
}
