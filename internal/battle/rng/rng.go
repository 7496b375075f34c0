// Package rng provides the deterministic random source battles draw from.
//
// A generator is seeded explicitly and its full state can be captured and
// restored, so any emission can be replayed bit for bit.
package rng

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	// ErrInvalidProbability is returned for probabilities outside [0, 1]
	// or percentages outside [0, 100].
	ErrInvalidProbability = errors.New("probability out of range")
	// ErrInvalidRange is returned when min > max.
	ErrInvalidRange = errors.New("invalid integer range")
	// ErrEmptyChoice is returned when choosing from an empty slice.
	ErrEmptyChoice = errors.New("cannot choose from an empty slice")
)

// streamSalt is the second PCG word; the seed supplies the first.
const streamSalt = 0x9e3779b97f4a7c15

// RNG is a seeded PCG generator. It is not safe for concurrent use.
type RNG struct {
	seed uint64
	src  *rand.PCG
	r    *rand.Rand
}

// New creates a generator for seed.
func New(seed uint64) *RNG {
	src := rand.NewPCG(seed, streamSalt)
	return &RNG{
		seed: seed,
		src:  src,
		r:    rand.New(src),
	}
}

// Seed returns the seed the generator was last (re)seeded with.
func (g *RNG) Seed() uint64 {
	return g.seed
}

// Reseed resets the generator as if it had been created with seed.
func (g *RNG) Reseed(seed uint64) {
	g.seed = seed
	g.src.Seed(seed, streamSalt)
}

// Float returns a uniform float in [0, 1).
func (g *RNG) Float() float64 {
	return g.r.Float64()
}

// IntRange returns a uniform integer N with min <= N <= max.
func (g *RNG) IntRange(min, max int) (int, error) {
	if min > max {
		return 0, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, min, max)
	}
	return min + g.r.IntN(max-min+1), nil
}

// Chance returns true with probability p.
func (g *RNG) Chance(p float64) (bool, error) {
	if p < 0 || p > 1 {
		return false, fmt.Errorf("%w: %v not in [0, 1]", ErrInvalidProbability, p)
	}
	return g.Float() < p, nil
}

// Percent returns true with the given percentage chance.
func (g *RNG) Percent(pct float64) (bool, error) {
	if pct < 0 || pct > 100 {
		return false, fmt.Errorf("%w: %v not in [0, 100]", ErrInvalidProbability, pct)
	}
	return g.Chance(pct / 100)
}

// Shuffle pseudo-randomly permutes n elements using swap.
func (g *RNG) Shuffle(n int, swap func(i, j int)) {
	g.r.Shuffle(n, swap)
}

// State returns an opaque snapshot of the generator state.
func (g *RNG) State() ([]byte, error) {
	state, err := g.src.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to capture rng state: %w", err)
	}
	return state, nil
}

// Restore rewinds the generator to a snapshot taken with State.
func (g *RNG) Restore(state []byte) error {
	if err := g.src.UnmarshalBinary(state); err != nil {
		return fmt.Errorf("failed to restore rng state: %w", err)
	}
	return nil
}

// Choice returns a uniformly chosen element of options.
func Choice[T any](g *RNG, options []T) (T, error) {
	var zero T
	if len(options) == 0 {
		return zero, ErrEmptyChoice
	}
	return options[g.r.IntN(len(options))], nil
}
