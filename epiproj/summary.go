package main

import (
	"encoding/json"
	"os"

	"bitbucket.org/Davydov/epiproj/projection"
	"bitbucket.org/Davydov/epiproj/renewal"
)

// RunSummary is storing epiproj run summary information.
type RunSummary struct {
	// Version stores epiproj version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed"`
	// NThreads is the number of threads used.
	NThreads int `json:"nThreads"`
	// Input is the incidence file name.
	Input string `json:"input"`
	// Settings are the projection settings.
	Settings renewal.Settings `json:"settings"`
	// Key is the archive key, if the run was stored.
	Key string `json:"key,omitempty"`
	// Projection is the per date summary of the trajectories.
	Projection *projection.Summary `json:"projection"`
	// Time is the computations time in seconds.
	Time float64 `json:"time"`
}

// saveJSON writes v as json to a file.
func saveJSON(fn string, v interface{}) {
	j, err := json.Marshal(v)
	if err != nil {
		log.Error(err)
		return
	}
	log.Debug(string(j))
	f, err := os.Create(fn)
	if err != nil {
		log.Error("Error creating json output file:", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(j); err != nil {
		log.Error("Error writing json output file:", err)
	}
}
