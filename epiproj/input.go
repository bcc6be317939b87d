package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/Davydov/epiproj/dist"
	"bitbucket.org/Davydov/epiproj/incidence"
	"bitbucket.org/Davydov/epiproj/projection"
	"bitbucket.org/Davydov/epiproj/reproduction"
	"bitbucket.org/Davydov/epiproj/serial"
)

// parseFloats parses a comma separated list of numbers.
func parseFloats(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	res := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("No numbers in %q", s)
	}
	return res, nil
}

// readFloats reads whitespace separated numbers.
func readFloats(r io.Reader) (res []float64, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, scanner.Err()
}

// readFloatsFile reads whitespace separated numbers from a file.
func readFloatsFile(fn string) ([]float64, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readFloats(f)
}

// readIncidence reads the incidence file and selects a group if
// requested.
func readIncidence(fn, group string) (*incidence.Incidence, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := incidence.ReadCSV(f)
	if err != nil {
		return nil, err
	}
	if group == "" {
		return x, nil
	}
	for g, name := range x.Groups() {
		if name == group {
			return incidence.New(x.Dates(), x.Counts(g))
		}
	}
	return nil, fmt.Errorf("No group %q in %s", group, fn)
}

// getReproduction creates the reproduction number specification from
// the command line pools and pool files.
func getReproduction(pools []string, files []string) (reproduction.Spec, error) {
	var res [][]float64
	for _, s := range pools {
		pool, err := parseFloats(s)
		if err != nil {
			return nil, err
		}
		res = append(res, pool)
	}
	for _, fn := range files {
		pool, err := readFloatsFile(fn)
		if err != nil {
			return nil, err
		}
		res = append(res, pool)
	}
	switch len(res) {
	case 0:
		return nil, errors.New("No reproduction number specified (use --R or --R-file)")
	case 1:
		return reproduction.SinglePeriod(res[0]), nil
	}
	return reproduction.MultiPeriod(res), nil
}

// getKernel creates the serial interval kernel from one of the
// command line options.
func getKernel(gamma, meanCV, fn string) (serial.Kernel, error) {
	n := 0
	for _, s := range []string{gamma, meanCV, fn} {
		if s != "" {
			n++
		}
	}
	if n != 1 {
		return nil, errors.New("Specify exactly one of --si-gamma, --si-mean-cv and --si-file")
	}

	switch {
	case gamma != "":
		par, err := parseFloats(gamma)
		if err != nil || len(par) != 2 {
			return nil, fmt.Errorf("--si-gamma expects shape,scale, got %q", gamma)
		}
		g, err := dist.NewGamma(par[0], par[1])
		if err != nil {
			return nil, err
		}
		log.Infof("Serial interval: %v", g)
		return serial.Continuous{Dist: g}, nil
	case meanCV != "":
		par, err := parseFloats(meanCV)
		if err != nil || len(par) != 2 {
			return nil, fmt.Errorf("--si-mean-cv expects mean,cv, got %q", meanCV)
		}
		g, err := dist.GammaFromMeanCV(par[0], par[1])
		if err != nil {
			return nil, err
		}
		log.Infof("Serial interval: %v", g)
		return serial.Continuous{Dist: g}, nil
	}
	w, err := readFloatsFile(fn)
	if err != nil {
		return nil, err
	}
	log.Infof("Serial interval: %d masses from %s", len(w), fn)
	return serial.Discrete(w), nil
}

// parseBound parses a subset bound: a 1-based day index or a date.
func parseBound(s string) (projection.Bound, error) {
	if s == "" {
		return projection.Bound{}, nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return projection.AtDay(i), nil
	}
	d, err := time.Parse(incidence.DateLayout, s)
	if err != nil {
		return projection.Bound{}, fmt.Errorf("Bound %q is neither a day index nor a date", s)
	}
	return projection.AtDate(d), nil
}
