package renewal

import (
	"fmt"

	"bitbucket.org/Davydov/epiproj/config"
)

// Model is the observation model for the daily counts.
type Model int

// Observation models.
const (
	// Poisson draws counts from a Poisson distribution.
	Poisson Model = iota
	// NegBin draws counts from a negative binomial distribution
	// with size proportional to the mean.
	NegBin
)

// ParseModel returns a model from its name.
func ParseModel(name string) (Model, error) {
	switch name {
	case "poisson":
		return Poisson, nil
	case "negbin":
		return NegBin, nil
	}
	return Poisson, config.Errorf("model", "unknown model %q", name)
}

func (m Model) String() string {
	switch m {
	case Poisson:
		return "poisson"
	case NegBin:
		return "negbin"
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// Settings are the parameters of a projection run.
type Settings struct {
	// NSim is the number of trajectories.
	NSim int `json:"nSim"`
	// NDays is the number of simulated days.
	NDays int `json:"nDays"`
	// FixWithin draws the reproduction number of a trajectory once
	// per time period instead of every day.
	FixWithin bool `json:"fixWithin"`
	// Model is the observation model.
	Model Model `json:"model"`
	// Size is the dispersion parameter of NegBin: the size of the
	// negative binomial is the expected count multiplied by Size.
	Size float64 `json:"size"`
	// TimeChange are the simulated days (day 1 is the day after the
	// last observation) at which the next reproduction number pool
	// becomes active.
	TimeChange []int `json:"timeChange,omitempty"`
	// Threads > 1 gives every trajectory its own generator and
	// simulates trajectories in parallel.
	Threads int `json:"threads"`
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	return Settings{
		NSim:    100,
		NDays:   7,
		Model:   Poisson,
		Size:    0.03,
		Threads: 1,
	}
}

// check validates the settings.
func (s *Settings) check() error {
	if s.NSim < 1 {
		return config.Errorf("n_sim", "should be positive, got %d", s.NSim)
	}
	if s.NDays < 1 {
		return config.Errorf("n_days", "should be positive, got %d", s.NDays)
	}
	switch s.Model {
	case Poisson:
	case NegBin:
		if !(s.Size > 0) {
			return config.Errorf("size", "should be positive, got %v", s.Size)
		}
	default:
		return config.Errorf("model", "unknown model %v", s.Model)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Model) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Model) UnmarshalText(b []byte) (err error) {
	*m, err = ParseModel(string(b))
	return
}
