package roll

import (
	"errors"
	"math"
)

var ErrInvalidProb = errors.New("invalid probability p; must be 0..1")

// Draw is one Bernoulli trial: it reports whether a roll from rng lands under p.
// p of 0 never hits and p of 1 always hits without consuming randomness, so
// seeded sequences stay aligned when a probability is switched off.
func Draw(p float64, rng RandomSource) (bool, error) {
	switch {
	case math.IsNaN(p), p < 0, p > 1:
		return false, ErrInvalidProb
	case p == 0:
		return false, nil
	case p == 1:
		return true, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return rng.Float64() < p, nil
}
