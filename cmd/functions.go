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

	"github.com/spf13/cobra"

	"github.com/notargets/globtim/testfunctions"
)

// FunctionsCmd lists the registered test functions
var FunctionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the test functions usable in input files",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range testfunctions.Names() {
			b, _ := testfunctions.Lookup(name)
			dim := "n"
			if b.Dim != 0 {
				dim = fmt.Sprint(b.Dim)
			}
			fmt.Printf("%-12s dim=%-2s center=%v range=%v\n\t%s\n", name, dim, b.Center, b.Range, b.Description)
		}
	},
}

var Version = "dev"

// VersionCmd prints the build version
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("globtim", Version)
	},
}

func init() {
	rootCmd.AddCommand(FunctionsCmd)
	rootCmd.AddCommand(VersionCmd)
}
