// Package roll supplies the randomness behind spawning: the slot's rank, the
// power-up roll with its optional pity guarantee, and the power-up kind. Games
// take a RandomSource so runs can be replayed from a seed.
package roll

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource yields uniform floats in [0, 1).
type RandomSource interface {
	Float64() float64
}

// cryptoRNG is the default for live play, where spawns must not be
// predictable from earlier ones.
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	// top 53 bits fill a float64 mantissa exactly
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// NewSeededRNG returns a PCG source for tests, the simulator and replays. The
// same seed always yields the same spawn sequence.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

type seededRNG struct{ r *rand.Rand }

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// Intn returns a uniform integer in [0, n). n <= 0 yields 0.
func Intn(rng RandomSource, n int) int {
	if n <= 1 {
		return 0
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	i := int(rng.Float64() * float64(n))
	if i >= n { // guards sources that return exactly 1
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Range returns a uniform integer in [lo, hi] inclusive.
func Range(rng RandomSource, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + Intn(rng, hi-lo+1)
}

// Between returns a uniform float in [lo, hi).
func Between(rng RandomSource, lo, hi float64) float64 {
	if rng == nil {
		rng = DefaultRNG()
	}
	return lo + (hi-lo)*rng.Float64()
}
