package rng

import "github.com/xor-shift/pibench/util"

// splitMix64Finalize is the SplitMix64 output mixer without the golden ratio
// increment, so 0 maps to 0.
func splitMix64Finalize(z uint64) uint64 {
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31

	return z
}

// expandSeed chains the finalizer four times, each output feeding the next.
func expandSeed(seed uint64) (state [4]uint64) {
	s := seed

	for i := 0; i < len(state); i++ {
		s = splitMix64Finalize(s)
		state[i] = s
	}

	return
}

// permutes a [4]uint64 state according to xoshiro256**
// https://prng.di.unimi.it/xoshiro256starstar.c
//
// The last step rotates the freshly updated s[1] rather than s[3], so the
// stream diverges from the upstream reference after a few outputs.
func xoshiro256SSPermuteState(s *[4]uint64) (result uint64) {
	result = util.RotL(s[1]*5, 7) * 9

	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]

	s[2] ^= t

	s[3] = util.RotL(s[1], 45)

	return
}
