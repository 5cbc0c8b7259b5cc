// Package engine implements the core match engine: deterministic world
// generation, grid geometry, action resolution, and pathfinding. It has no
// I/O; everything operates on in-memory snapshots so callers can clone,
// mutate, and persist atomically.
package engine

import "math"

// SeedingVersion is baked into every seed key so that future changes to the
// generation algorithm produce new worlds instead of silently diverging from
// previously recorded ones.
const SeedingVersion = "v1.1"

const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

// HashSeed mixes a seed string into a 32-bit value using FNV-1a.
func HashSeed(s string) uint32 {
	h := uint32(fnvOffset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime32
	}
	return h
}

// Stream is a mulberry32 generator yielding uniform values in [0, 1).
// Identical seeds produce bit-identical sequences on every platform; world
// generation and tests depend on this.
type Stream struct {
	state uint32
}

// NewStream creates a stream from a raw 32-bit seed.
func NewStream(seed uint32) *Stream {
	return &Stream{state: seed}
}

// SubStream derives a namespaced stream from a seed key, e.g.
// SubStream("S:abc|W:16|H:16|V:v1.1", "loot").
func SubStream(seedKey, namespace string) *Stream {
	return NewStream(HashSeed(seedKey + "|" + namespace))
}

// Float64 returns the next value in [0, 1).
func (s *Stream) Float64() float64 {
	s.state += 0x6D2B79F5
	z := s.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return float64(z^(z>>14)) / 4294967296.0
}

// Choice returns a uniformly chosen element. Panics on an empty slice, which
// callers guard against.
func Choice[T any](s *Stream, arr []T) T {
	return arr[int(s.Float64()*float64(len(arr)))]
}

// Weighted pairs a value with a selection weight.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// WeightedChoice selects proportionally to weight. Weights need not be
// normalized. Ties (zero-width intervals) resolve in declaration order.
func WeightedChoice[T any](s *Stream, items []Weighted[T]) T {
	total := 0.0
	for _, it := range items {
		total += it.Weight
	}
	r := s.Float64() * total
	acc := 0.0
	for _, it := range items {
		acc += it.Weight
		if r < acc {
			return it.Value
		}
	}
	return items[len(items)-1].Value
}

// ShuffleInPlace performs a Fisher-Yates shuffle driven by the stream.
func ShuffleInPlace[T any](s *Stream, arr []T) {
	for i := len(arr) - 1; i > 0; i-- {
		j := int(math.Floor(s.Float64() * float64(i+1)))
		arr[i], arr[j] = arr[j], arr[i]
	}
}
