/*

Epiproj projects future daily incidence of an outbreak from observed
incidence, a serial interval distribution and a sample of plausible
reproduction numbers.

The basic usage of epiproj looks like this:

	epiproj project --si-gamma 1.5,2 --R 1.2,1.4,1.8 cases.csv

, this will simulate 100 trajectories over 7 days with a Poisson
model and print the projected counts.

Reproduction numbers can change over time:

	epiproj project --si-gamma 1.5,2 --R 1.5,2 --R 0.6,0.9 --time-change 10 cases.csv

Runs can be stored in a database and subset later:

	epiproj --db runs.db project --key run1 ... cases.csv
	epiproj --db runs.db subset --from 2020-04-10 --to 2020-04-20 run1

To see all the options run:

	epiproj --help

*/
package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"strconv"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/epiproj/config"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("epiproj")
var formatter = logging.MustStringFormatter(`%{message}`)

// defaults are read from the environment before parsing the command line.
var defaults = loadDefaults()

func loadDefaults() config.Defaults {
	d, err := config.LoadDefaults()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading environment:", err)
		os.Exit(1)
	}
	return d
}

// command-line options
var (
	// application
	app = kingpin.New("epiproj", "epidemic incidence projections").Version(version)

	// technical
	nThreads   = app.Flag("nt", "number of threads; with more than one thread every trajectory uses its own random generator").Default(strconv.Itoa(defaults.Threads)).Int()
	seed       = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()
	cpuProfile = app.Flag("cpuprofile", "write cpu profile to file").String()
	dbFileName = app.Flag("db", "projection archive database").Default(defaults.DB).String()

	// logging
	outLogF  = app.Flag("log", "write log to a file").String()
	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default(defaults.LogLevel).
		Enum("critical", "error", "warning", "notice", "info", "debug")
)

func setupLogging() (closeLog func()) {
	logging.SetFormatter(formatter)

	closeLog = func() {}
	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		closeLog = func() { f.Close() }
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	for _, module := range []string{"epiproj", "renewal", "archive", "dist"} {
		logging.SetLevel(level, module)
	}
	return
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	closeLog := setupLogging()
	defer closeLog()

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *seed == -1 {
		*seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", *seed)

	if *nThreads > 0 {
		runtime.GOMAXPROCS(*nThreads)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	switch command {
	case projectCmd.FullCommand():
		runProject()
	case subsetCmd.FullCommand():
		runSubset()
	case listCmd.FullCommand():
		runList()
	case fitCmd.FullCommand():
		runFit()
	}
}
