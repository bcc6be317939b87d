package reproduction

import (
	"golang.org/x/exp/rand"
)

// Draw draws one value uniformly from the pool.
func Draw(rng *rand.Rand, pool []float64) float64 {
	if len(pool) == 1 {
		return pool[0]
	}
	return pool[rng.Intn(len(pool))]
}

// Sample draws n values from the pool uniformly with replacement.
// If dst is long enough it is reused.
func Sample(rng *rand.Rand, pool []float64, n int, dst []float64) []float64 {
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = Draw(rng, pool)
	}
	return dst
}
