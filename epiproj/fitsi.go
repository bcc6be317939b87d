package main

import (
	"fmt"
	"math"

	"bitbucket.org/Davydov/epiproj/dist"
)

// fit-si command options
var (
	fitCmd = app.Command("fit-si", "fit a discretized gamma distribution to observed serial intervals")

	intervalsFileName = fitCmd.Arg("intervals", "observed serial intervals in days").Required().ExistingFile()
	fitW              = fitCmd.Flag("w", "discretization offset, 0 puts [k, k+1) to k, 0.5 centers").Default("0").Float64()
)

func runFit() {
	v, err := readFloatsFile(*intervalsFileName)
	if err != nil {
		log.Fatal(err)
	}
	x := make([]int, len(v))
	for i, f := range v {
		if f != math.Trunc(f) {
			log.Fatalf("Interval %v is not a whole number of days", f)
		}
		x[i] = int(f)
	}
	log.Infof("Read %d serial intervals", len(x))

	g, err := dist.FitDiscreteGamma(x, *fitW)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("shape=%v\tscale=%v\tmean=%v\tlnL=%v\n", g.Shape, g.Scale, g.Mean(), g.LogLikelihood(x))
	fmt.Printf("--si-gamma %v,%v\n", g.Shape, g.Scale)
}
