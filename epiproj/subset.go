package main

import (
	"fmt"

	"bitbucket.org/Davydov/epiproj/archive"
	"bitbucket.org/Davydov/epiproj/fanplot"
	"bitbucket.org/Davydov/epiproj/projection"
)

// subset and list command options
var (
	subsetCmd = app.Command("subset", "subset a stored projection")

	subsetKey        = subsetCmd.Arg("key", "archive key").Required().String()
	from             = subsetCmd.Flag("from", "first date to keep (YYYY-MM-DD or 1-based day index)").String()
	to               = subsetCmd.Flag("to", "last date to keep (YYYY-MM-DD or 1-based day index)").String()
	sims             = subsetCmd.Flag("sim", "simulation to keep, numbered from 1 as in the csv output; repeat for more").Ints()
	subsetOutF       = subsetCmd.Flag("out", "write projection to a csv file instead of stdout").String()
	subsetLong       = subsetCmd.Flag("long", "write csv in long format (date, sim, count)").Bool()
	subsetCumulative = subsetCmd.Flag("cumulative", "output cumulative counts").Bool()
	subsetPlotF      = subsetCmd.Flag("plot", "draw the projection to a file (png, svg, pdf)").String()

	listCmd = app.Command("list", "list stored projections")
)

// simIndices converts simulation numbers as printed in the csv output
// to column indices.
func simIndices(sims []int) []int {
	res := make([]int, len(sims))
	for i, s := range sims {
		res[i] = s - 1
	}
	return res
}

// openArchive opens the --db archive or exits.
func openArchive() *archive.Archive {
	if *dbFileName == "" {
		log.Fatal("No archive specified (use --db or EPIPROJ_DB)")
	}
	a, err := archive.Open(*dbFileName)
	if err != nil {
		log.Fatal("Error opening archive:", err)
	}
	return a
}

func runSubset() {
	a := openArchive()
	rec, err := a.Load(*subsetKey)
	a.Close()
	if err != nil {
		log.Fatal(err)
	}

	opts := projection.SubsetOptions{}
	if opts.From, err = parseBound(*from); err != nil {
		log.Fatal(err)
	}
	if opts.To, err = parseBound(*to); err != nil {
		log.Fatal(err)
	}
	if len(*sims) > 0 {
		opts.Sims = projection.SimIndices(simIndices(*sims)...)
	}

	p, err := rec.Projection.Subset(opts)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Subset from %v to %v: %d days, %d simulations", opts.From, opts.To, p.NDays(), p.NSim())

	writeProjection(p, *subsetOutF, *subsetLong, *subsetCumulative, *subsetPlotF, fanplot.DefaultOptions())
}

func runList() {
	a := openArchive()
	defer a.Close()
	keys, err := a.Keys()
	if err != nil {
		log.Fatal(err)
	}
	for _, k := range keys {
		fmt.Println(k)
	}
}
