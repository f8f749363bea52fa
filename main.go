package main

import "github.com/notargets/globtim/cmd"

func main() {
	cmd.Execute()
}
