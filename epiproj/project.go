package main

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/exp/rand"

	"bitbucket.org/Davydov/epiproj/archive"
	"bitbucket.org/Davydov/epiproj/fanplot"
	"bitbucket.org/Davydov/epiproj/projection"
	"bitbucket.org/Davydov/epiproj/renewal"
)

// project command options
var (
	projectCmd = app.Command("project", "simulate future incidence")

	incidenceFileName = projectCmd.Arg("incidence", "daily incidence (csv: date,count)").Required().ExistingFile()
	group             = projectCmd.Flag("group", "use a single group of a multi-group incidence").String()

	// serial interval
	siGamma  = projectCmd.Flag("si-gamma", "gamma serial interval: shape,scale").String()
	siMeanCV = projectCmd.Flag("si-mean-cv", "gamma serial interval: mean,cv").String()
	siFile   = projectCmd.Flag("si-file", "serial interval masses for lags 0, 1, 2, ...").ExistingFile()

	// reproduction number
	rPools = projectCmd.Flag("R", "comma separated pool of reproduction numbers, "+
		"repeat for every time period").Strings()
	rFiles = projectCmd.Flag("R-file", "file with a pool of reproduction numbers, "+
		"repeat for every time period").ExistingFiles()
	timeChange = projectCmd.Flag("time-change", "simulated day at which the next R pool is used, "+
		"day 1 is the day after the last observation; repeat for more periods").Ints()
	fixWithin = projectCmd.Flag("fixed", "draw R once per trajectory and time period instead of every day").Bool()

	// simulation
	nSim   = projectCmd.Flag("nsim", "number of simulated trajectories").Default(strconv.Itoa(defaults.NSim)).Int()
	nDays  = projectCmd.Flag("ndays", "number of days to simulate").Default(strconv.Itoa(defaults.NDays)).Int()
	model  = projectCmd.Flag("model", "count distribution (poisson or negbin)").Default(defaults.Model).Enum("poisson", "negbin")
	nbSize = projectCmd.Flag("size", "negative binomial size per expected case").Default(strconv.FormatFloat(defaults.Size, 'g', -1, 64)).Float64()

	// output
	outF       = projectCmd.Flag("out", "write projection to a csv file instead of stdout").String()
	long       = projectCmd.Flag("long", "write csv in long format (date, sim, count)").Bool()
	cumulative = projectCmd.Flag("cumulative", "output cumulative counts").Bool()
	plotF      = projectCmd.Flag("plot", "draw the projection to a file (png, svg, pdf)").String()
	jsonF      = projectCmd.Flag("json", "write json summary to a file").String()
	key        = projectCmd.Flag("key", "store the projection in the archive (--db) under this key").String()
)

// writeProjection writes csv output and the plot.
func writeProjection(p *projection.Projection, outFileName string, long, cumulative bool, plotFileName string, opts fanplot.Options) {
	var err error
	if cumulative {
		p, err = p.Cumulate()
		if err != nil {
			log.Fatal(err)
		}
		opts.Observed = nil
	}

	f := os.Stdout
	if outFileName != "" {
		f, err = os.Create(outFileName)
		if err != nil {
			log.Fatal("Error creating output file:", err)
		}
		defer f.Close()
	}
	if err := p.WriteCSV(f, long); err != nil {
		log.Fatal("Error writing projection:", err)
	}

	if plotFileName != "" {
		if err := fanplot.Save(p, plotFileName, opts); err != nil {
			log.Error("Error drawing projection:", err)
		} else {
			log.Infof("Plot saved to %s", plotFileName)
		}
	}
}

func runProject() {
	startTime := time.Now()

	x, err := readIncidence(*incidenceFileName, *group)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Read %v", x)

	si, err := getKernel(*siGamma, *siMeanCV, *siFile)
	if err != nil {
		log.Fatal(err)
	}

	r, err := getReproduction(*rPools, *rFiles)
	if err != nil {
		log.Fatal(err)
	}

	m, err := renewal.ParseModel(*model)
	if err != nil {
		log.Fatal(err)
	}

	s := renewal.DefaultSettings()
	s.NSim = *nSim
	s.NDays = *nDays
	s.FixWithin = *fixWithin
	s.Model = m
	s.Size = *nbSize
	s.TimeChange = *timeChange
	s.Threads = *nThreads

	sim, err := renewal.New(x, r, si, s)
	if err != nil {
		log.Fatal(err)
	}

	rng := rand.New(rand.NewSource(uint64(*seed)))
	p, err := sim.Run(rng)
	if err != nil {
		log.Fatal(err)
	}
	log.Debug(p)

	if *key != "" {
		if *dbFileName == "" {
			log.Fatal("Archive key given without --db")
		}
		a, err := archive.Open(*dbFileName)
		if err != nil {
			log.Fatal("Error opening archive:", err)
		}
		err = a.Save(*key, &archive.Record{
			Projection: p,
			Settings:   s,
			Seed:       *seed,
			Input:      *incidenceFileName,
		})
		a.Close()
		if err != nil {
			log.Fatal(err)
		}
	}

	opts := fanplot.DefaultOptions()
	opts.Observed = x
	writeProjection(p, *outF, *long, *cumulative, *plotF, opts)

	if *jsonF != "" {
		ps, err := p.Summary(nil)
		if err != nil {
			log.Fatal(err)
		}
		saveJSON(*jsonF, &RunSummary{
			Version:     version,
			CommandLine: os.Args,
			Seed:        *seed,
			NThreads:    runtime.GOMAXPROCS(0),
			Input:       *incidenceFileName,
			Settings:    s,
			Key:         *key,
			Projection:  ps,
			Time:        time.Since(startTime).Seconds(),
		})
	}

	log.Noticef("Running time: %v", time.Since(startTime))
}
