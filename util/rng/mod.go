// Package rng implements the xoshiro256** generator used by the benchmark.
//
// https://prng.di.unimi.it/xoshiro256starstar.c
//
// A generator is a single mutable state and must not be shared between
// goroutines without external locking. Give every worker its own.
package rng

// Source is what the estimators need from a generator.
type Source interface {
	Next() uint64
	NextDouble() float64
}

// jumpImpl advances state by the distance encoded in the jump polynomial.
// Every bit of the table costs one state permutation.
func jumpImpl(state *[4]uint64, table [4]uint64) {
	var s [4]uint64

	for i := 0; i < len(table); i++ {
		for b := 0; b < 64; b++ {
			if table[i]&(uint64(1)<<b) != 0 {
				for j := 0; j < len(state); j++ {
					s[j] ^= state[j]
				}
			}
			_ = xoshiro256SSPermuteState(state)
		}
	}

	*state = s
}
