// Package entropy provides the random source threaded through every engine
// that needs narrative variety. Engines never reach for a global RNG:
// callers inject a Source, and tests inject a seeded one so reaction and
// template choices stay assertable.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
	"sync"
)

// Source yields uniform random values. The seeded source is safe for
// concurrent use; engines treat whichever Source they are given as shared.
type Source interface {
	// Float returns a uniform float64 in [0, 1).
	Float() float64
	// Intn returns a uniform int in [0, n). n must be > 0.
	Intn(n int) int
	// Range returns a uniform float64 in [lo, hi).
	Range(lo, hi float64) float64
}

// seeded is a deterministic Source backed by math/rand.
type seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded returns a deterministic Source for the given seed.
func NewSeeded(seed int64) Source {
	return &seeded{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *seeded) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *seeded) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *seeded) Range(lo, hi float64) float64 {
	return lo + s.Float()*(hi-lo)
}

// cryptoSource is a Source backed by crypto/rand, used when no seed is wanted.
type cryptoSource struct{}

// NewCrypto returns a non-deterministic Source backed by crypto/rand.
func NewCrypto() Source {
	return cryptoSource{}
}

func (cryptoSource) Float() float64 {
	return cryptoRandFloat()
}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("entropy: Intn with non-positive n")
	}
	return int(math.Floor(cryptoRandFloat() * float64(n)))
}

func (cryptoSource) Range(lo, hi float64) float64 {
	return lo + cryptoRandFloat()*(hi-lo)
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
