// internal/seed/seed.go

// Package seed turns free-text keywords into reproducible pseudo-random streams.
//
// Every simulation builds its own generator with New, so concurrent requests
// never share generator state. Two calls with the same keyword yield identical
// sequences; keywords whose code points sum to the same value (anagrams) share a
// stream.
package seed

import (
	"math/rand/v2"
)

// Sum returns the sum of the Unicode code points of s. The empty string sums to 0.
func Sum(s string) uint64 {
	var total uint64
	for _, r := range s {
		total += uint64(r)
	}
	return total
}

// New returns a generator seeded from keyword.
func New(keyword string) *rand.Rand {
	return FromValue(Sum(keyword))
}

// FromValue returns a generator seeded directly from v.
func FromValue(v uint64) *rand.Rand {
	return rand.New(rand.NewPCG(v, v))
}

// Between returns a uniform integer in the closed interval [lo, hi].
func Between(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// Choice returns a uniformly chosen element of items, or "" when items is empty.
func Choice(r *rand.Rand, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[r.IntN(len(items))]
}
