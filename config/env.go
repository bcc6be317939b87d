package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Defaults are the operator-tunable defaults of the command line tool.
type Defaults struct {
	NSim     int     `env:"EPIPROJ_NSIM"     envDefault:"100"`
	NDays    int     `env:"EPIPROJ_NDAYS"    envDefault:"7"`
	Model    string  `env:"EPIPROJ_MODEL"    envDefault:"poisson"`
	Size     float64 `env:"EPIPROJ_SIZE"     envDefault:"0.03"`
	Threads  int     `env:"EPIPROJ_THREADS"  envDefault:"1"`
	DB       string  `env:"EPIPROJ_DB"`
	LogLevel string  `env:"EPIPROJ_LOGLEVEL" envDefault:"notice"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target interface{}) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDefaults reads Defaults from the environment.
func LoadDefaults() (Defaults, error) {
	var d Defaults
	if err := ParseEnv(&d); err != nil {
		return d, err
	}
	if d.NSim < 1 {
		return d, Errorf("EPIPROJ_NSIM", "must be positive, got %d", d.NSim)
	}
	if d.NDays < 1 {
		return d, Errorf("EPIPROJ_NDAYS", "must be positive, got %d", d.NDays)
	}
	return d, nil
}
