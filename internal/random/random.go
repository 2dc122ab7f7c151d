// Package random provides the seeded linear-congruential generator behind all
// generated demo data. A Rand is an explicit value passed to whoever needs it;
// there is no package-level instance.
package random

import (
	"fmt"
	"math"
	"sync"
)

// DefaultSeed seeds a generator when no seed is given.
const DefaultSeed = 12345

// LCG parameters.
const (
	multiplier = 9301
	increment  = 49297
	modulus    = 233280
)

// Rand is a deterministic pseudo-random source. Identical seeds produce
// identical sequences. Safe for concurrent use.
type Rand struct {
	mu   sync.Mutex
	seed int64
}

// New returns a generator seeded with seed.
func New(seed int64) *Rand {
	return &Rand{seed: seed}
}

// Reseed replaces the state. All later draws follow the new sequence.
func (r *Rand) Reseed(seed int64) {
	r.mu.Lock()
	r.seed = seed
	r.mu.Unlock()
}

// Seed returns the current internal state.
func (r *Rand) Seed() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seed
}

// Next advances the state and returns a float in [0,1).
func (r *Rand) Next() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seed = (r.seed*multiplier + increment) % modulus
	if r.seed < 0 {
		// Negative seeds keep Go's sign-preserving remainder in range.
		r.seed += modulus
	}
	return float64(r.seed) / modulus
}

// Int returns an integer in [min,max] inclusive.
func (r *Rand) Int(min, max int) int {
	return int(math.Floor(r.Next()*float64(max-min+1))) + min
}

// Float returns a float in [min,max).
func (r *Rand) Float(min, max float64) float64 {
	return min + r.Next()*(max-min)
}

// Bool returns true with probability p.
func (r *Rand) Bool(p float64) bool {
	return r.Next() < p
}

// Pick returns a uniformly chosen element. The list must not be empty.
func Pick[T any](r *Rand, list []T) T {
	if len(list) == 0 {
		panic("random: Pick from empty list")
	}
	return list[r.Int(0, len(list)-1)]
}

// Subset returns count distinct elements of list in shuffled order. The list
// is copied and shuffled in full before slicing; count is clamped to
// [0, len(list)].
func Subset[T any](r *Rand, list []T, count int) []T {
	shuffled := make([]T, len(list))
	copy(shuffled, list)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Int(0, i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if count < 0 {
		count = 0
	}
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}

// Choice is one weighted option for Weighted.
type Choice[T any] struct {
	Item   T
	Weight float64
}

// Weighted picks an item with probability proportional to its weight. When
// rounding leaves no item selected after the cumulative subtraction, the
// first item is returned. The list must not be empty.
func Weighted[T any](r *Rand, choices []Choice[T]) T {
	if len(choices) == 0 {
		panic("random: Weighted from empty list")
	}
	var total float64
	for _, c := range choices {
		total += c.Weight
	}
	return pickWeighted(choices, r.Next()*total)
}

// pickWeighted walks the cumulative weights for draw.
func pickWeighted[T any](choices []Choice[T], draw float64) T {
	for _, c := range choices {
		draw -= c.Weight
		if draw <= 0 {
			return c.Item
		}
	}
	return choices[0].Item
}

// String implements fmt.Stringer for debugging output.
func (r *Rand) String() string {
	return fmt.Sprintf("random.Rand{seed: %d}", r.Seed())
}
