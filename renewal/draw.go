package renewal

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// draw returns a count with expectation mu under the model.
func (m Model) draw(rng *rand.Rand, mu, size float64) float64 {
	if m == NegBin {
		return negBinomial(rng, mu, dispersion(mu, size))
	}
	return poisson(rng, mu)
}

// dispersion returns the negative binomial size for the expected
// count mu. A zero mean would give a zero size, it is replaced by 1.
func dispersion(mu, size float64) float64 {
	if mu == 0 {
		return 1
	}
	return mu * size
}

func poisson(rng *rand.Rand, lambda float64) float64 {
	if lambda <= 0 {
		return 0
	}
	return distuv.Poisson{Lambda: lambda, Src: rng}.Rand()
}

// negBinomial draws from the gamma-Poisson mixture with mean mu and
// size k. The mean zero distribution is a point mass at zero.
func negBinomial(rng *rand.Rand, mu, k float64) float64 {
	if mu <= 0 {
		return 0
	}
	lambda := distuv.Gamma{Alpha: k, Beta: k / mu, Src: rng}.Rand()
	return poisson(rng, lambda)
}
