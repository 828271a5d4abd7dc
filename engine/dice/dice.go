// Package dice provides a deterministic, seedable RNG whose position can be
// saved and restored, so replays and reloaded games roll the same numbers.
package dice

import "math/rand"

// countingSource counts every draw from the underlying source. Position is
// measured in source draws, not rolls, because one roll may need several.
type countingSource struct {
	src rand.Source
	n   int64
}

func (c *countingSource) Int63() int64 {
	c.n++
	return c.src.Int63()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
	c.n = 0
}

// RNG wraps math/rand.Rand with position tracking.
type RNG struct {
	seed int64
	src  *countingSource
	rand *rand.Rand
}

// New creates an RNG from a seed.
func New(seed int64) *RNG {
	src := &countingSource{src: rand.NewSource(seed)}
	return &RNG{seed: seed, src: src, rand: rand.New(src)}
}

// Restore creates an RNG and advances it to a saved position.
func Restore(seed, position int64) *RNG {
	r := New(seed)
	for r.src.n < position {
		r.src.Int63()
	}
	return r
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of source draws since creation.
func (r *RNG) Position() int64 {
	return r.src.n
}

// Roll returns a random integer in [1, sides]. Sides below 1 roll as 1.
func (r *RNG) Roll(sides int) int {
	if sides < 1 {
		return 1
	}
	return r.rand.Intn(sides) + 1
}

// RollDice sums count rolls of a sides-sided die, e.g. 2d6.
func (r *RNG) RollDice(count, sides int) int {
	if count < 1 {
		count = 1
	}
	total := 0
	for i := 0; i < count; i++ {
		total += r.Roll(sides)
	}
	return total
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := r.rand.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
