package main

import (
	"os"

	coursewisecmder "github.com/papercomputeco/coursewise/cmd/coursewise"
)

func main() {
	cmd := coursewisecmder.NewCoursewiseCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
